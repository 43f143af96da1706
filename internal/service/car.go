package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/cache"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type carService struct {
	carRepo repository.CarRepository
	cache   *cache.Client
}

func NewCarService(carRepo repository.CarRepository, cacheClient *cache.Client) CarService {
	return &carService{carRepo: carRepo, cache: cacheClient}
}

func (s *carService) AddCar(ctx context.Context, actor domain.Actor, car *domain.Car) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized("admin access required")
	}
	if err := validateCar(car); err != nil {
		return err
	}
	if car.Status == "" {
		car.Status = domain.CarStatusAvailable
	}

	if err := s.carRepo.Create(ctx, car); err != nil {
		return apperr.Internal(err)
	}
	s.cache.DeleteByPrefix(ctx, "cars:catalog:")
	return nil
}

func (s *carService) GetCar(ctx context.Context, id int32) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("car not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return car, nil
}

func (s *carService) UpdateCar(ctx context.Context, actor domain.Actor, car *domain.Car) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized("admin access required")
	}
	if err := validateCar(car); err != nil {
		return err
	}
	if _, err := s.GetCar(ctx, car.ID); err != nil {
		return err
	}

	if err := s.carRepo.Update(ctx, car); err != nil {
		return apperr.Internal(err)
	}
	s.cache.DeleteByPrefix(ctx, "cars:catalog:")
	return nil
}

func (s *carService) DeleteCar(ctx context.Context, actor domain.Actor, id int32) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized("admin access required")
	}

	car, err := s.GetCar(ctx, id)
	if err != nil {
		return err
	}
	if car.Status == domain.CarStatusBooked {
		return apperr.Conflict("cannot delete a car with an active booking hold")
	}

	if err := s.carRepo.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	s.cache.DeleteByPrefix(ctx, "cars:catalog:")
	return nil
}

func (s *carService) SetCarStatus(ctx context.Context, actor domain.Actor, id int32, status domain.CarStatus) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized("admin access required")
	}
	switch status {
	case domain.CarStatusAvailable, domain.CarStatusBooked, domain.CarStatusMaintenance:
	default:
		return apperr.Validation("invalid car status: %s", status)
	}
	if _, err := s.GetCar(ctx, id); err != nil {
		return err
	}

	if err := s.carRepo.UpdateStatus(ctx, id, status); err != nil {
		return apperr.Internal(err)
	}
	s.cache.DeleteByPrefix(ctx, "cars:catalog:")
	return nil
}

// ListCars serves the public catalog through the read cache. Each distinct
// filter and page combination is cached independently.
func (s *carService) ListCars(ctx context.Context, filter domain.CarFilter, page, pageSize int32) ([]domain.Car, int32, error) {
	type cachedPage struct {
		Cars  []domain.Car `json:"cars"`
		Total int32        `json:"total"`
	}

	key := fmt.Sprintf(cache.KeyCarCatalog, filterDigest(filter), page, pageSize)
	var cached cachedPage
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached.Cars, cached.Total, nil
	}

	cars, total, err := s.carRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}

	s.cache.SetJSON(ctx, key, cachedPage{Cars: cars, Total: total}, cache.TTLCatalog)
	return cars, total, nil
}

func filterDigest(f domain.CarFilter) string {
	return fmt.Sprintf("%s|%s|%s|%d|%s", f.Brand, f.FuelType, f.Transmission, f.MaxPriceCents, f.Status)
}

func validateCar(car *domain.Car) error {
	if car.Brand == "" || car.Model == "" {
		return apperr.Validation("brand and model are required")
	}
	if car.PricePerDayCents <= 0 {
		return apperr.Validation("price per day must be positive")
	}
	if car.PlateNumber == "" {
		return apperr.Validation("plate number is required")
	}
	return nil
}
