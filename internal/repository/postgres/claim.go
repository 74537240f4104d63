package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"adspace-backend/internal/domain"
	"adspace-backend/internal/repository"
)

type claimRepository struct {
	q dbtx
}

const claimColumns = `id, unit_id, agent_id, client_id, date_from, date_to, duration_months, notes, status, queue_position, expires_at,
	designer_id, design_status, fitter_id, fitter_status, fitter_assigned_at, fitter_started_at, fitter_completed_at, installation_proofs,
	created_on, updated_on`

func scanClaim(row interface{ Scan(...interface{}) error }) (*domain.Claim, error) {
	c := &domain.Claim{}
	var proofs []byte
	err := row.Scan(
		&c.ID, &c.UnitID, &c.AgentID, &c.ClientID, &c.DateFrom, &c.DateTo,
		&c.DurationMonths, &c.Notes, &c.Status, &c.QueuePosition, &c.ExpiresAt,
		&c.DesignerID, &c.DesignStatus, &c.FitterID, &c.FitterStatus,
		&c.FitterAssignedAt, &c.FitterStartedAt, &c.FitterCompletedAt, &proofs,
		&c.CreatedOn, &c.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	if len(proofs) > 0 {
		if err := json.Unmarshal(proofs, &c.InstallationProofs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *claimRepository) queryClaims(ctx context.Context, query string, args ...interface{}) ([]domain.Claim, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

func (r *claimRepository) Create(ctx context.Context, c *domain.Claim) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.ClaimStatusActive
	}
	if c.DesignStatus == "" {
		c.DesignStatus = domain.StagePending
	}
	if c.FitterStatus == "" {
		c.FitterStatus = domain.StagePending
	}
	proofs, err := json.Marshal(c.InstallationProofs)
	if err != nil {
		return err
	}
	now := time.Now()
	c.CreatedOn = now
	query := `INSERT INTO claims (id, unit_id, agent_id, client_id, date_from, date_to, duration_months, notes, status, queue_position, expires_at,
	            design_status, fitter_status, installation_proofs, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.ExecContext(ctx, query, c.ID, c.UnitID, c.AgentID, c.ClientID, c.DateFrom, c.DateTo,
		c.DurationMonths, c.Notes, c.Status, c.QueuePosition, c.ExpiresAt,
		c.DesignStatus, c.FitterStatus, proofs, now, now)
	return err
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	return scanClaim(r.q.QueryRowContext(ctx, query, id))
}

func (r *claimRepository) FindActiveByUnitAndAgent(ctx context.Context, unitID, agentID string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims
	          WHERE unit_id = $1 AND agent_id = $2 AND status = $3
	          ORDER BY created_on DESC LIMIT 1`
	c, err := scanClaim(r.q.QueryRowContext(ctx, query, unitID, agentID, domain.ClaimStatusActive))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *claimRepository) ListOverlapping(ctx context.Context, unitID string, from, to time.Time, statuses []domain.ClaimStatus) ([]domain.Claim, error) {
	in := make([]string, len(statuses))
	for i, s := range statuses {
		in[i] = string(s)
	}
	query := `SELECT ` + claimColumns + ` FROM claims
	          WHERE unit_id = $1 AND date_from <= $2 AND date_to >= $3 AND status = ANY($4)
	          ORDER BY created_on ASC`
	return r.queryClaims(ctx, query, unitID, to, from, pq.Array(in))
}

func (r *claimRepository) ListActiveByUnit(ctx context.Context, unitID string) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims
	          WHERE unit_id = $1 AND status = $2 ORDER BY queue_position ASC`
	return r.queryClaims(ctx, query, unitID, domain.ClaimStatusActive)
}

func (r *claimRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims
	          WHERE status = $1 AND expires_at < $2 ORDER BY expires_at ASC`
	return r.queryClaims(ctx, query, domain.ClaimStatusActive, now)
}

func (r *claimRepository) ListByAgent(ctx context.Context, agentID string) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims
	          WHERE agent_id = $1 ORDER BY created_on DESC`
	return r.queryClaims(ctx, query, agentID)
}

func (r *claimRepository) ListByDesigner(ctx context.Context, designerID string) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims
	          WHERE designer_id = $1 AND status = $2 ORDER BY created_on DESC`
	return r.queryClaims(ctx, query, designerID, domain.ClaimStatusConfirmed)
}

func (r *claimRepository) ListByFitter(ctx context.Context, fitterID string) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims
	          WHERE fitter_id = $1 AND status = $2 ORDER BY created_on DESC`
	return r.queryClaims(ctx, query, fitterID, domain.ClaimStatusConfirmed)
}

func (r *claimRepository) ListRecent(ctx context.Context, f repository.ClaimFilter) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE 1=1`
	var args []interface{}
	idx := 1
	add := func(clause string, val interface{}) {
		query += clause
		args = append(args, val)
		idx++
	}
	if f.UnitID != "" {
		add(` AND unit_id = $`+strconv.Itoa(idx), f.UnitID)
	}
	if f.AgentID != "" {
		add(` AND agent_id = $`+strconv.Itoa(idx), f.AgentID)
	}
	if !f.From.IsZero() {
		add(` AND created_on >= $`+strconv.Itoa(idx), f.From)
	}
	if !f.To.IsZero() {
		add(` AND created_on <= $`+strconv.Itoa(idx), f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_on DESC LIMIT $` + strconv.Itoa(idx)
	args = append(args, limit)
	return r.queryClaims(ctx, query, args...)
}

func (r *claimRepository) SetQueuePosition(ctx context.Context, id string, position int32) error {
	query := `UPDATE claims SET queue_position = $2, updated_on = $3 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id, position, time.Now())
	return err
}

func (r *claimRepository) UpdateStatus(ctx context.Context, id string, status domain.ClaimStatus) error {
	query := `UPDATE claims SET status = $2, updated_on = $3 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *claimRepository) CancelMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE claims SET status = $2, updated_on = $3 WHERE id = ANY($1)`
	_, err := r.q.ExecContext(ctx, query, pq.Array(ids), domain.ClaimStatusCancelled, time.Now())
	return err
}

func (r *claimRepository) ExpireIfActive(ctx context.Context, id string) (bool, error) {
	query := `UPDATE claims SET status = $2, updated_on = $3 WHERE id = $1 AND status = $4`
	res, err := r.q.ExecContext(ctx, query, id, domain.ClaimStatusExpired, time.Now(), domain.ClaimStatusActive)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *claimRepository) ConfirmWithDesigner(ctx context.Context, id, designerID string) error {
	query := `UPDATE claims SET status = $2, designer_id = $3, design_status = $4, updated_on = $5 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id, domain.ClaimStatusConfirmed, designerID, domain.StagePending, time.Now())
	return err
}

func (r *claimRepository) BindFitter(ctx context.Context, id, fitterID string, at time.Time) (bool, error) {
	query := `UPDATE claims SET fitter_id = $2, fitter_status = $3, fitter_assigned_at = $4, updated_on = $4
	          WHERE id = $1 AND fitter_id IS NULL`
	res, err := r.q.ExecContext(ctx, query, id, fitterID, domain.StagePending, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *claimRepository) SetDesignStatus(ctx context.Context, id string, status domain.StageStatus) error {
	query := `UPDATE claims SET design_status = $2, updated_on = $3 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *claimRepository) SetFitterStatus(ctx context.Context, id string, status domain.StageStatus, at time.Time) error {
	switch status {
	case domain.StageInProgress:
		query := `UPDATE claims SET fitter_status = $2, fitter_started_at = $3, updated_on = $3 WHERE id = $1`
		_, err := r.q.ExecContext(ctx, query, id, status, at)
		return err
	case domain.StageCompleted:
		query := `UPDATE claims SET fitter_status = $2, fitter_completed_at = $3, updated_on = $3 WHERE id = $1`
		_, err := r.q.ExecContext(ctx, query, id, status, at)
		return err
	default:
		query := `UPDATE claims SET fitter_status = $2, updated_on = $3 WHERE id = $1`
		_, err := r.q.ExecContext(ctx, query, id, status, at)
		return err
	}
}

func (r *claimRepository) CompleteInstallation(ctx context.Context, id string, proofs []domain.ProofImage, at time.Time) error {
	data, err := json.Marshal(proofs)
	if err != nil {
		return err
	}
	query := `UPDATE claims SET installation_proofs = $2, fitter_status = $3, fitter_completed_at = $4, updated_on = $4 WHERE id = $1`
	_, err = r.q.ExecContext(ctx, query, id, data, domain.StageCompleted, at)
	return err
}
