package postgres

import (
	"context"

	"github.com/lib/pq"

	"adspace-backend/internal/domain"
)

type userRepository struct {
	q dbtx
}

const userColumns = `id, name, email, phone, role, is_active, created_on`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.IsActive, &u.CreatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) ListActiveByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error) {
	in := make([]string, len(roles))
	for i, role := range roles {
		in[i] = string(role)
	}
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE is_active = TRUE AND role = ANY($1) ORDER BY created_on ASC`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(in))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.IsActive, &u.CreatedOn); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
