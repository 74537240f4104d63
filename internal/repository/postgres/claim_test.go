package postgres_test

import (
	"context"
	"testing"
	"time"

	"adspace-backend/internal/domain"
	"adspace-backend/internal/repository"
	"adspace-backend/internal/repository/postgres"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func claimRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "unit_id", "agent_id", "client_id", "date_from", "date_to",
		"duration_months", "notes", "status", "queue_position", "expires_at",
		"designer_id", "design_status", "fitter_id", "fitter_status",
		"fitter_assigned_at", "fitter_started_at", "fitter_completed_at",
		"installation_proofs", "created_on", "updated_on",
	})
}

func TestClaimRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()
	now := time.Now()

	t.Run("Success with jsonb proofs", func(t *testing.T) {
		proofs := []byte(`[{"filename":"proof.jpg","url":"https://cdn/proof.jpg","uploaded_at":"2026-08-01T10:00:00Z"}]`)
		rows := claimRows().
			AddRow("claim-1", "unit-1", "agent-1", "client-1", now, now.AddDate(0, 6, 0),
				6, "", "CONFIRMED", 1, now.Add(24*time.Hour),
				"designer-1", "COMPLETED", "fitter-1", "COMPLETED",
				now, now, now, proofs, now, now)

		mock.ExpectQuery("(?s)SELECT (.+) FROM claims WHERE id = \\$1").
			WithArgs("claim-1").
			WillReturnRows(rows)

		claim, err := repo.GetByID(ctx, "claim-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusConfirmed, claim.Status)
		if assert.Len(t, claim.InstallationProofs, 1) {
			assert.Equal(t, "proof.jpg", claim.InstallationProofs[0].Filename)
		}
		if assert.NotNil(t, claim.DesignerID) {
			assert.Equal(t, "designer-1", *claim.DesignerID)
		}
	})

	t.Run("Empty proofs column stays nil", func(t *testing.T) {
		rows := claimRows().
			AddRow("claim-2", "unit-1", "agent-1", "client-1", now, now.AddDate(0, 3, 0),
				3, "", "ACTIVE", 2, now.Add(24*time.Hour),
				nil, "PENDING", nil, "PENDING",
				nil, nil, nil, nil, now, now)

		mock.ExpectQuery("(?s)SELECT (.+) FROM claims WHERE id = \\$1").
			WithArgs("claim-2").
			WillReturnRows(rows)

		claim, err := repo.GetByID(ctx, "claim-2")
		assert.NoError(t, err)
		assert.Nil(t, claim.InstallationProofs)
		assert.Nil(t, claim.DesignerID)
		assert.Nil(t, claim.FitterID)
	})
}

func TestClaimRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()

	claim := &domain.Claim{
		UnitID:         "unit-1",
		AgentID:        "agent-1",
		ClientID:       "client-1",
		DateFrom:       time.Now(),
		DateTo:         time.Now().AddDate(0, 6, 0),
		DurationMonths: 6,
		QueuePosition:  999999,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}

	mock.ExpectExec("INSERT INTO claims").
		WithArgs(sqlmock.AnyArg(), "unit-1", "agent-1", "client-1", claim.DateFrom, claim.DateTo,
			int32(6), "", domain.ClaimStatusActive, int32(999999), claim.ExpiresAt,
			domain.StagePending, domain.StagePending, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, claim)
	assert.NoError(t, err)
	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, domain.ClaimStatusActive, claim.Status)
	assert.Equal(t, domain.StagePending, claim.DesignStatus)
}

func TestClaimRepository_ListOverlapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()
	now := time.Now()
	from := now
	to := now.AddDate(0, 6, 0)

	rows := claimRows().
		AddRow("claim-1", "unit-1", "agent-1", "client-1", from, to,
			6, "", "ACTIVE", 1, now.Add(24*time.Hour),
			nil, "PENDING", nil, "PENDING", nil, nil, nil, nil, now, now).
		AddRow("claim-2", "unit-1", "agent-2", "client-2", from, to,
			6, "", "ACTIVE", 2, now.Add(24*time.Hour),
			nil, "PENDING", nil, "PENDING", nil, nil, nil, nil, now, now)

	mock.ExpectQuery("(?s)SELECT (.+) FROM claims").
		WithArgs("unit-1", to, from, pq.Array([]string{"ACTIVE", "CONFIRMED"})).
		WillReturnRows(rows)

	claims, err := repo.ListOverlapping(ctx, "unit-1", from, to,
		[]domain.ClaimStatus{domain.ClaimStatusActive, domain.ClaimStatusConfirmed})
	assert.NoError(t, err)
	assert.Len(t, claims, 2)
	assert.Equal(t, "claim-1", claims[0].ID)
}

func TestClaimRepository_ExpireIfActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()

	t.Run("Active claim expires", func(t *testing.T) {
		mock.ExpectExec("UPDATE claims SET status = \\$2").
			WithArgs("claim-1", domain.ClaimStatusExpired, sqlmock.AnyArg(), domain.ClaimStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 1))

		expired, err := repo.ExpireIfActive(ctx, "claim-1")
		assert.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("Already confirmed claim is untouched", func(t *testing.T) {
		mock.ExpectExec("UPDATE claims SET status = \\$2").
			WithArgs("claim-1", domain.ClaimStatusExpired, sqlmock.AnyArg(), domain.ClaimStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 0))

		expired, err := repo.ExpireIfActive(ctx, "claim-1")
		assert.NoError(t, err)
		assert.False(t, expired)
	})
}

func TestClaimRepository_BindFitter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()
	at := time.Now()

	t.Run("First bind wins", func(t *testing.T) {
		mock.ExpectExec("UPDATE claims SET fitter_id = \\$2").
			WithArgs("claim-1", "fitter-1", domain.StagePending, at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		bound, err := repo.BindFitter(ctx, "claim-1", "fitter-1", at)
		assert.NoError(t, err)
		assert.True(t, bound)
	})

	t.Run("Second bind is rejected by the null guard", func(t *testing.T) {
		mock.ExpectExec("UPDATE claims SET fitter_id = \\$2").
			WithArgs("claim-1", "fitter-2", domain.StagePending, at).
			WillReturnResult(sqlmock.NewResult(0, 0))

		bound, err := repo.BindFitter(ctx, "claim-1", "fitter-2", at)
		assert.NoError(t, err)
		assert.False(t, bound)
	})
}

func TestClaimRepository_CancelMany(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()

	t.Run("Cancels all ids at once", func(t *testing.T) {
		mock.ExpectExec("UPDATE claims SET status = \\$2").
			WithArgs(pq.Array([]string{"claim-2", "claim-3"}), domain.ClaimStatusCancelled, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.CancelMany(ctx, []string{"claim-2", "claim-3"})
		assert.NoError(t, err)
	})

	t.Run("Empty id list issues no query", func(t *testing.T) {
		err := repo.CancelMany(ctx, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_ListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()
	now := time.Now()

	t.Run("Filters compose in order", func(t *testing.T) {
		rows := claimRows().
			AddRow("claim-1", "unit-1", "agent-1", "client-1", now, now.AddDate(0, 3, 0),
				3, "", "ACTIVE", 1, now.Add(24*time.Hour),
				nil, "PENDING", nil, "PENDING", nil, nil, nil, nil, now, now)

		mock.ExpectQuery("(?s)SELECT (.+) FROM claims WHERE 1=1 AND unit_id = \\$1 AND agent_id = \\$2 ORDER BY created_on DESC LIMIT \\$3").
			WithArgs("unit-1", "agent-1", int32(50)).
			WillReturnRows(rows)

		claims, err := repo.ListRecent(ctx, repository.ClaimFilter{UnitID: "unit-1", AgentID: "agent-1"})
		assert.NoError(t, err)
		assert.Len(t, claims, 1)
	})
}

func TestClaimRepository_SetFitterStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewStore(db).Claims()
	ctx := context.Background()
	at := time.Now()

	t.Run("In progress stamps the start time", func(t *testing.T) {
		mock.ExpectExec("UPDATE claims SET fitter_status = \\$2, fitter_started_at = \\$3").
			WithArgs("claim-1", domain.StageInProgress, at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetFitterStatus(ctx, "claim-1", domain.StageInProgress, at)
		assert.NoError(t, err)
	})

	t.Run("Completed stamps the completion time", func(t *testing.T) {
		mock.ExpectExec("UPDATE claims SET fitter_status = \\$2, fitter_completed_at = \\$3").
			WithArgs("claim-1", domain.StageCompleted, at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetFitterStatus(ctx, "claim-1", domain.StageCompleted, at)
		assert.NoError(t, err)
	})
}
