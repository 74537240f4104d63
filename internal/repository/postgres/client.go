package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"adspace-backend/internal/domain"
)

type clientRepository struct {
	q dbtx
}

const clientColumns = `id, name, phone, email, company_name, created_by_id, created_on`

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedOn = time.Now()
	query := `INSERT INTO clients (id, name, phone, email, company_name, created_by_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.ExecContext(ctx, query, c.ID, c.Name, c.Phone, c.Email, c.CompanyName, c.CreatedByID, c.CreatedOn)
	return err
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	c := &domain.Client{}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CompanyName, &c.CreatedByID, &c.CreatedOn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) FindByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	c := &domain.Client{}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE phone = $1`
	err := r.q.QueryRowContext(ctx, query, phone).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CompanyName, &c.CreatedByID, &c.CreatedOn)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
