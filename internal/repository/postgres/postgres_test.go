package postgres_test

import (
	"context"
	"testing"

	"adspace-backend/internal/domain"
	"adspace-backend/internal/repository"
	"adspace-backend/internal/repository/postgres"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestStore_ExecTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits when fn succeeds", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()

		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE claims SET queue_position = \\$2").
			WithArgs("claim-1", int32(1), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.ExecTx(ctx, func(tx repository.Store) error {
			return tx.Claims().SetQueuePosition(ctx, "claim-1", 1)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when fn fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()

		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err = store.ExecTx(ctx, func(tx repository.Store) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nested ExecTx reuses the transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()

		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE claims SET status = \\$2").
			WithArgs("claim-1", domain.ClaimStatusCancelled, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.ExecTx(ctx, func(tx repository.Store) error {
			return tx.ExecTx(ctx, func(inner repository.Store) error {
				return inner.Claims().UpdateStatus(ctx, "claim-1", domain.ClaimStatusCancelled)
			})
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
