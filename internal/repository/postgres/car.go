package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

const carColumns = `id, brand, model, year, transmission, fuel_type, seating_capacity,
	price_per_day_cents, availability_status, color, plate_number, mileage, description,
	created_on, updated_on`

type carRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) repository.CarRepository {
	return &carRepository{db: db}
}

func scanCar(row rowScanner) (*domain.Car, error) {
	c := &domain.Car{}
	err := row.Scan(
		&c.ID, &c.Brand, &c.Model, &c.Year, &c.Transmission, &c.FuelType, &c.SeatingCapacity,
		&c.PricePerDayCents, &c.Status, &c.Color, &c.PlateNumber, &c.Mileage, &c.Description,
		&c.CreatedOn, &c.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *carRepository) Create(ctx context.Context, c *domain.Car) error {
	now := time.Now()
	query := `INSERT INTO cars (brand, model, year, transmission, fuel_type, seating_capacity,
			price_per_day_cents, availability_status, color, plate_number, mileage, description,
			created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.Brand, c.Model, c.Year, c.Transmission, c.FuelType, c.SeatingCapacity,
		c.PricePerDayCents, c.Status, c.Color, c.PlateNumber, c.Mileage, c.Description,
		now, now,
	).Scan(&c.ID)
}

func (r *carRepository) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	return scanCar(r.db.QueryRowContext(ctx, query, id))
}

func (r *carRepository) Update(ctx context.Context, c *domain.Car) error {
	query := `UPDATE cars SET brand=$1, model=$2, year=$3, transmission=$4, fuel_type=$5,
			seating_capacity=$6, price_per_day_cents=$7, color=$8, plate_number=$9,
			mileage=$10, description=$11, updated_on=$12
		 WHERE id=$13`
	_, err := r.db.ExecContext(ctx, query,
		c.Brand, c.Model, c.Year, c.Transmission, c.FuelType,
		c.SeatingCapacity, c.PricePerDayCents, c.Color, c.PlateNumber,
		c.Mileage, c.Description, time.Now(), c.ID,
	)
	return err
}

func (r *carRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	return err
}

func (r *carRepository) UpdateStatus(ctx context.Context, id int32, status domain.CarStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cars SET availability_status = $1, updated_on = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	return err
}

func (r *carRepository) List(ctx context.Context, filter domain.CarFilter, page, pageSize int32) ([]domain.Car, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + carColumns + ` FROM cars WHERE TRUE`

	var args []any
	argIdx := 1
	if filter.Brand != "" {
		query += fmt.Sprintf(" AND brand ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Brand+"%")
		argIdx++
	}
	if filter.FuelType != "" {
		query += fmt.Sprintf(" AND fuel_type = $%d", argIdx)
		args = append(args, filter.FuelType)
		argIdx++
	}
	if filter.Transmission != "" {
		query += fmt.Sprintf(" AND transmission = $%d", argIdx)
		args = append(args, filter.Transmission)
		argIdx++
	}
	if filter.MaxPriceCents > 0 {
		query += fmt.Sprintf(" AND price_per_day_cents <= $%d", argIdx)
		args = append(args, filter.MaxPriceCents)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND availability_status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY brand, model LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, err
		}
		cars = append(cars, *c)
	}
	return cars, count, rows.Err()
}
