package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"adspace-backend/internal/repository"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repositories need, so the
// same implementations serve both plain and transactional stores.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db   *sql.DB
	inTx bool

	units         repository.UnitRepository
	claims        repository.ClaimRepository
	bookings      repository.BookingRepository
	clients       repository.ClientRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db, false)
}

func newStore(db *sql.DB, q dbtx, inTx bool) *Store {
	return &Store{
		db:            db,
		inTx:          inTx,
		units:         &unitRepository{q: q},
		claims:        &claimRepository{q: q},
		bookings:      &bookingRepository{q: q},
		clients:       &clientRepository{q: q},
		users:         &userRepository{q: q},
		notifications: &notificationRepository{q: q},
	}
}

func (s *Store) Units() repository.UnitRepository                 { return s.units }
func (s *Store) Claims() repository.ClaimRepository               { return s.claims }
func (s *Store) Bookings() repository.BookingRepository           { return s.bookings }
func (s *Store) Clients() repository.ClientRepository             { return s.clients }
func (s *Store) Users() repository.UserRepository                 { return s.users }
func (s *Store) Notifications() repository.NotificationRepository { return s.notifications }

// ExecTx runs fn with every repository bound to one transaction. Nested
// calls reuse the surrounding transaction.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(newStore(s.db, tx, true)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}
