package repository

import (
	"context"
	"time"

	"adspace-backend/internal/domain"
)

// Get* methods return an error when the row is absent; Find* methods return
// (nil, nil) instead. Methods returning a bool report whether the conditional
// update matched a row; that row count is the sole arbiter for every
// contended transition (unit claim, fitter bind, finalize, expiry).

type UnitRepository interface {
	Create(ctx context.Context, unit *domain.Unit) error
	GetByID(ctx context.Context, id string) (*domain.Unit, error)
	UpdateStatus(ctx context.Context, id string, status domain.UnitStatus) error
	// ClaimForProcessing moves the unit to IN_PROCESS unless it is already
	// in process, live or booked. Exactly one concurrent confirmer wins.
	ClaimForProcessing(ctx context.Context, id string) (bool, error)
	// FinalizeBooked moves the unit from LIVE to BOOKED and records who did it.
	FinalizeBooked(ctx context.Context, id, actorID string, at time.Time) (bool, error)
	SetWorkflowState(ctx context.Context, id string, state *string) error
	// SetLive marks installation done: status LIVE, workflow state cleared.
	SetLive(ctx context.Context, id string) error
}

// ClaimFilter narrows ListRecent. Zero values mean "any".
type ClaimFilter struct {
	UnitID  string
	AgentID string
	From    time.Time
	To      time.Time
	Limit   int32
}

type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.Claim) error
	GetByID(ctx context.Context, id string) (*domain.Claim, error)
	FindActiveByUnitAndAgent(ctx context.Context, unitID, agentID string) (*domain.Claim, error)
	// ListOverlapping returns claims on the unit whose [date_from, date_to]
	// intersects [from, to] and whose status is in statuses, oldest first.
	ListOverlapping(ctx context.Context, unitID string, from, to time.Time, statuses []domain.ClaimStatus) ([]domain.Claim, error)
	ListActiveByUnit(ctx context.Context, unitID string) ([]domain.Claim, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]domain.Claim, error)
	ListByAgent(ctx context.Context, agentID string) ([]domain.Claim, error)
	ListByDesigner(ctx context.Context, designerID string) ([]domain.Claim, error)
	ListByFitter(ctx context.Context, fitterID string) ([]domain.Claim, error)
	ListRecent(ctx context.Context, filter ClaimFilter) ([]domain.Claim, error)

	SetQueuePosition(ctx context.Context, id string, position int32) error
	UpdateStatus(ctx context.Context, id string, status domain.ClaimStatus) error
	CancelMany(ctx context.Context, ids []string) error
	// ExpireIfActive marks the claim EXPIRED only while it is still ACTIVE,
	// making the expiry sweep idempotent.
	ExpireIfActive(ctx context.Context, id string) (bool, error)
	// ConfirmWithDesigner advances the claim to CONFIRMED with the resolved
	// designer bound and the design stage reset to PENDING.
	ConfirmWithDesigner(ctx context.Context, id, designerID string) error
	// BindFitter assigns the fitter only if none is bound yet.
	BindFitter(ctx context.Context, id, fitterID string, at time.Time) (bool, error)
	SetDesignStatus(ctx context.Context, id string, status domain.StageStatus) error
	SetFitterStatus(ctx context.Context, id string, status domain.StageStatus, at time.Time) error
	// CompleteInstallation stores the full proof list and marks the fitter
	// stage COMPLETED.
	CompleteInstallation(ctx context.Context, id string, proofs []domain.ProofImage, at time.Time) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	FindLatestByUnitAndStatus(ctx context.Context, unitID string, status domain.BookingStatus) (*domain.Booking, error)
	ListByUnit(ctx context.Context, unitID string) ([]domain.Booking, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Client, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListActiveByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error)
}

type NotificationRepository interface {
	// Create persists the notification and reports whether a row was
	// inserted; a duplicate dedupe key suppresses the insert.
	Create(ctx context.Context, note *domain.Notification) (bool, error)
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID string) error
}

// Store aggregates the repositories and scopes them to one database handle.
// ExecTx runs fn against a store bound to a single transaction; the claim
// insert + queue rerank and the whole confirm path depend on it.
type Store interface {
	Units() UnitRepository
	Claims() ClaimRepository
	Bookings() BookingRepository
	Clients() ClientRepository
	Users() UserRepository
	Notifications() NotificationRepository
	ExecTx(ctx context.Context, fn func(Store) error) error
}
