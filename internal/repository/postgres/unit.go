package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"adspace-backend/internal/domain"
)

type unitRepository struct {
	q dbtx
}

const unitColumns = `id, code, city, area, landmark, road_name, side, width_cm, height_cm, group_id, status, workflow_state, booked_by_id, booked_at, created_on, updated_on`

func (r *unitRepository) Create(ctx context.Context, u *domain.Unit) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = domain.UnitStatusAvailable
	}
	query := `INSERT INTO units (id, code, city, area, landmark, road_name, side, width_cm, height_cm, group_id, status, workflow_state, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	now := time.Now()
	_, err := r.q.ExecContext(ctx, query, u.ID, u.Code, u.City, u.Area, u.Landmark, u.RoadName, u.Side, u.WidthCm, u.HeightCm, u.GroupID, u.Status, u.WorkflowState, now, now)
	return err
}

func (r *unitRepository) GetByID(ctx context.Context, id string) (*domain.Unit, error) {
	u := &domain.Unit{}
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Code, &u.City, &u.Area, &u.Landmark, &u.RoadName, &u.Side,
		&u.WidthCm, &u.HeightCm, &u.GroupID, &u.Status, &u.WorkflowState,
		&u.BookedByID, &u.BookedAt, &u.CreatedOn, &u.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *unitRepository) UpdateStatus(ctx context.Context, id string, status domain.UnitStatus) error {
	query := `UPDATE units SET status = $2, updated_on = $3 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *unitRepository) ClaimForProcessing(ctx context.Context, id string) (bool, error) {
	query := `UPDATE units SET status = $2, updated_on = $3
	          WHERE id = $1 AND status NOT IN ($4, $5, $6)`
	res, err := r.q.ExecContext(ctx, query, id, domain.UnitStatusInProcess, time.Now(),
		domain.UnitStatusInProcess, domain.UnitStatusLive, domain.UnitStatusBooked)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *unitRepository) FinalizeBooked(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	query := `UPDATE units SET status = $2, workflow_state = NULL, booked_by_id = $3, booked_at = $4, updated_on = $4
	          WHERE id = $1 AND status = $5`
	res, err := r.q.ExecContext(ctx, query, id, domain.UnitStatusBooked, actorID, at, domain.UnitStatusLive)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *unitRepository) SetWorkflowState(ctx context.Context, id string, state *string) error {
	query := `UPDATE units SET workflow_state = $2, updated_on = $3 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id, state, time.Now())
	return err
}

func (r *unitRepository) SetLive(ctx context.Context, id string) error {
	query := `UPDATE units SET status = $2, workflow_state = NULL, updated_on = $3 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id, domain.UnitStatusLive, time.Now())
	return err
}
