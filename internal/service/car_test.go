package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

func TestCarService_AddCar(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}
	customer := domain.Actor{ID: 1, Role: domain.RoleCustomer}

	car := &domain.Car{
		Brand:            "Toyota",
		Model:            "Corolla",
		PricePerDayCents: 4500,
		PlateNumber:      "AB-123-CD",
	}

	t.Run("Admin adds car, defaults to available", func(t *testing.T) {
		carRepo := new(MockCarRepo)
		svc := service.NewCarService(carRepo, nil)
		carRepo.On("Create", ctx, mock.AnythingOfType("*domain.Car")).Return(nil)

		fresh := *car
		err := svc.AddCar(ctx, admin, &fresh)
		assert.NoError(t, err)
		assert.Equal(t, domain.CarStatusAvailable, fresh.Status)
	})

	t.Run("Customer rejected", func(t *testing.T) {
		carRepo := new(MockCarRepo)
		svc := service.NewCarService(carRepo, nil)

		fresh := *car
		err := svc.AddCar(ctx, customer, &fresh)
		assert.Error(t, err)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
		carRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing price rejected", func(t *testing.T) {
		carRepo := new(MockCarRepo)
		svc := service.NewCarService(carRepo, nil)

		err := svc.AddCar(ctx, admin, &domain.Car{Brand: "Toyota", Model: "Corolla", PlateNumber: "X"})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestCarService_DeleteCar(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: 2, Role: domain.RoleAdmin}

	t.Run("Booked car cannot be deleted", func(t *testing.T) {
		carRepo := new(MockCarRepo)
		svc := service.NewCarService(carRepo, nil)
		carRepo.On("GetByID", ctx, int32(5)).Return(&domain.Car{ID: 5, Status: domain.CarStatusBooked}, nil)

		err := svc.DeleteCar(ctx, admin, 5)
		assert.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		carRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Unknown car", func(t *testing.T) {
		carRepo := new(MockCarRepo)
		svc := service.NewCarService(carRepo, nil)
		carRepo.On("GetByID", ctx, int32(9)).Return(nil, sql.ErrNoRows)

		err := svc.DeleteCar(ctx, admin, 9)
		assert.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestCarService_ListCars(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache disabled falls through to repository", func(t *testing.T) {
		carRepo := new(MockCarRepo)
		svc := service.NewCarService(carRepo, nil)
		filter := domain.CarFilter{Brand: "Toyota"}
		carRepo.On("List", ctx, filter, int32(1), int32(20)).
			Return([]domain.Car{{ID: 5, Brand: "Toyota"}}, int32(1), nil)

		cars, total, err := svc.ListCars(ctx, filter, 1, 20)
		assert.NoError(t, err)
		assert.Len(t, cars, 1)
		assert.Equal(t, int32(1), total)
	})
}
