package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental-backend/internal/apperr"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

const bookingColumns = `id, reference, customer_id, car_id, start_date, end_date, pickup_time, total_days,
	price_per_day_cents, total_price_cents, status, payment_status, purpose, special_requirements,
	pickup_location, return_location, driver_license, actual_pickup_date, actual_return_date,
	mileage_at_pickup, mileage_at_return, fuel_at_pickup, fuel_at_return, pickup_notes, return_notes,
	damage_reported, cancellation_reason, cancelled_by, cancelled_at, created_on, updated_on`

// holdingStatusList renders domain.HoldingStatuses as a SQL IN list so the
// queries and the domain definition of "holds the calendar" cannot drift.
var holdingStatusList = func() string {
	quoted := make([]string, 0, 3)
	for _, s := range domain.HoldingStatuses() {
		quoted = append(quoted, "'"+string(s)+"'")
	}
	return strings.Join(quoted, ", ")
}()

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID, &b.Reference, &b.CustomerID, &b.CarID, &b.StartDate, &b.EndDate, &b.PickupTime, &b.TotalDays,
		&b.PricePerDayCents, &b.TotalPriceCents, &b.Status, &b.PaymentStatus, &b.Purpose, &b.SpecialRequirements,
		&b.PickupLocation, &b.ReturnLocation, &b.DriverLicense, &b.ActualPickupDate, &b.ActualReturnDate,
		&b.MileageAtPickup, &b.MileageAtReturn, &b.FuelAtPickup, &b.FuelAtReturn, &b.PickupNotes, &b.ReturnNotes,
		&b.DamageReported, &b.CancellationReason, &b.CancelledBy, &b.CancelledAt, &b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateExclusive performs the whole booking-creation critical section in one
// transaction. The car row is locked with FOR UPDATE before the overlap
// re-check, which serializes concurrent creation attempts per car and closes
// the check-then-act window between the availability read and the insert.
func (r *bookingRepository) CreateExclusive(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err)
	}
	defer tx.Rollback()

	var carStatus domain.CarStatus
	err = tx.QueryRowContext(ctx,
		`SELECT availability_status FROM cars WHERE id = $1 FOR UPDATE`, b.CarID,
	).Scan(&carStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("car not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if carStatus != domain.CarStatusAvailable {
		return apperr.Conflict("car is not available for booking")
	}

	var conflicts int32
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM bookings
		 WHERE car_id = $1
		   AND status IN (`+holdingStatusList+`)
		   AND start_date <= $3 AND end_date >= $2`,
		b.CarID, b.StartDate, b.EndDate,
	).Scan(&conflicts)
	if err != nil {
		return apperr.Internal(err)
	}
	if conflicts > 0 {
		return apperr.Conflict("car is already booked for the selected dates")
	}

	now := time.Now()
	logger.DatabaseCall("INSERT", "bookings", "carID", b.CarID, "customerID", b.CustomerID)
	err = tx.QueryRowContext(ctx,
		`INSERT INTO bookings (reference, customer_id, car_id, start_date, end_date, pickup_time, total_days,
			price_per_day_cents, total_price_cents, status, payment_status, purpose, special_requirements,
			pickup_location, return_location, driver_license, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id`,
		b.Reference, b.CustomerID, b.CarID, b.StartDate, b.EndDate, b.PickupTime, b.TotalDays,
		b.PricePerDayCents, b.TotalPriceCents, b.Status, b.PaymentStatus, b.Purpose, b.SpecialRequirements,
		b.PickupLocation, b.ReturnLocation, b.DriverLicense, now, now,
	).Scan(&b.ID)
	logger.DatabaseResult("INSERT", err, "bookingID", b.ID)
	if err != nil {
		return apperr.Internal(err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cars SET availability_status = $1, updated_on = $2 WHERE id = $3`,
		domain.CarStatusBooked, now, b.CarID,
	)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal(err)
	}

	b.CreatedOn = now
	b.UpdatedOn = now
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return b, nil
}

const bookingUpdateSet = `status = $1, payment_status = $2, actual_pickup_date = $3, actual_return_date = $4,
	mileage_at_pickup = $5, mileage_at_return = $6, fuel_at_pickup = $7, fuel_at_return = $8,
	pickup_notes = $9, return_notes = $10, damage_reported = $11, cancellation_reason = $12,
	cancelled_by = $13, cancelled_at = $14, updated_on = $15`

func bookingUpdateArgs(b *domain.Booking, now time.Time) []any {
	return []any{
		b.Status, b.PaymentStatus, b.ActualPickupDate, b.ActualReturnDate,
		b.MileageAtPickup, b.MileageAtReturn, b.FuelAtPickup, b.FuelAtReturn,
		b.PickupNotes, b.ReturnNotes, b.DamageReported, b.CancellationReason,
		b.CancelledBy, b.CancelledAt, now,
	}
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	now := time.Now()
	query := `UPDATE bookings SET ` + bookingUpdateSet + ` WHERE id = $16`
	args := append(bookingUpdateArgs(b, now), b.ID)
	_, err := r.db.ExecContext(ctx, query, args...)
	if err == nil {
		b.UpdatedOn = now
	}
	return err
}

func applyBookingAndCar(ctx context.Context, tx *sql.Tx, b *domain.Booking, carStatus domain.CarStatus, carMileage *int32, now time.Time) error {
	query := `UPDATE bookings SET ` + bookingUpdateSet + ` WHERE id = $16`
	args := append(bookingUpdateArgs(b, now), b.ID)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	if carMileage != nil {
		_, err := tx.ExecContext(ctx,
			`UPDATE cars SET availability_status = $1, mileage = $2, updated_on = $3 WHERE id = $4`,
			carStatus, *carMileage, now, b.CarID,
		)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE cars SET availability_status = $1, updated_on = $2 WHERE id = $3`,
		carStatus, now, b.CarID,
	)
	return err
}

// UpdateWithCar applies the booking update and the car status change as one
// transaction so a failed car write never leaves a half-applied transition.
func (r *bookingRepository) UpdateWithCar(ctx context.Context, b *domain.Booking, carStatus domain.CarStatus, carMileage *int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err)
	}
	defer tx.Rollback()

	now := time.Now()
	if err := applyBookingAndCar(ctx, tx, b, carStatus, carMileage, now); err != nil {
		return apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal(err)
	}

	b.UpdatedOn = now
	return nil
}

// CompleteWithAward is UpdateWithCar plus the customer's loyalty award, all in
// the same transaction. The award cannot be applied twice because the booking
// row only passes through the COMPLETED transition once.
func (r *bookingRepository) CompleteWithAward(ctx context.Context, b *domain.Booking, carStatus domain.CarStatus, carMileage *int32, loyaltyPoints int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err)
	}
	defer tx.Rollback()

	now := time.Now()
	if err := applyBookingAndCar(ctx, tx, b, carStatus, carMileage, now); err != nil {
		return apperr.Internal(err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET loyalty_points = loyalty_points + $1, total_bookings = total_bookings + 1,
			updated_on = $2
		 WHERE id = $3`,
		loyaltyPoints, now, b.CustomerID,
	)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal(err)
	}

	b.UpdatedOn = now
	return nil
}

func (r *bookingRepository) ListHolding(ctx context.Context, carID, excludeBookingID int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		 WHERE car_id = $1
		   AND status IN (` + holdingStatusList + `)
		   AND id <> $2
		 ORDER BY start_date`
	return r.queryBookings(ctx, query, carID, excludeBookingID)
}

func (r *bookingRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		 WHERE status = 'ACTIVE' AND end_date < $1
		 ORDER BY end_date`
	return r.queryBookings(ctx, query, asOf)
}

func (r *bookingRepository) ListStartingOn(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		 WHERE status = 'CONFIRMED' AND start_date = $1
		 ORDER BY id`
	return r.queryBookings(ctx, query, day)
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, `customer_id = $1`, []any{customerID}, status, page, pageSize)
}

func (r *bookingRepository) List(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, `TRUE`, nil, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, where string, args []any, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where

	argIdx := len(args) + 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) Stats(ctx context.Context) (*domain.BookingStats, error) {
	stats := &domain.BookingStats{}
	query := `SELECT count(*),
		count(*) FILTER (WHERE status = 'PENDING'),
		count(*) FILTER (WHERE status = 'ACTIVE'),
		count(*) FILTER (WHERE status = 'COMPLETED'),
		count(*) FILTER (WHERE status = 'CANCELLED'),
		COALESCE(sum(total_price_cents) FILTER (WHERE status = 'COMPLETED' AND payment_status = 'PAID'), 0)
	 FROM bookings`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalBookings, &stats.PendingBookings, &stats.ActiveBookings,
		&stats.CompletedBookings, &stats.CancelledBookings, &stats.TotalRevenueCents,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
