package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"adspace-backend/internal/domain"
)

type bookingRepository struct {
	q dbtx
}

const bookingColumns = `id, unit_id, start_date, end_date, status, created_by_id, created_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = domain.BookingStatusUnderProcess
	}
	b.CreatedOn = time.Now()
	query := `INSERT INTO bookings (id, unit_id, start_date, end_date, status, created_by_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.ExecContext(ctx, query, b.ID, b.UnitID, b.StartDate, b.EndDate, b.Status, b.CreatedByID, b.CreatedOn)
	return err
}

func (r *bookingRepository) FindLatestByUnitAndStatus(ctx context.Context, unitID string, status domain.BookingStatus) (*domain.Booking, error) {
	b := &domain.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE unit_id = $1 AND status = $2 ORDER BY created_on DESC LIMIT 1`
	err := r.q.QueryRowContext(ctx, query, unitID, status).Scan(
		&b.ID, &b.UnitID, &b.StartDate, &b.EndDate, &b.Status, &b.CreatedByID, &b.CreatedOn,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByUnit(ctx context.Context, unitID string) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE unit_id = $1 ORDER BY created_on DESC`
	rows, err := r.q.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UnitID, &b.StartDate, &b.EndDate, &b.Status, &b.CreatedByID, &b.CreatedOn); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
