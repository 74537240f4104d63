package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"adspace-backend/internal/apperr"
	"adspace-backend/internal/domain"
	"adspace-backend/internal/repository"
)

// Actor identifies the caller of an operation. Role gating happens in the
// services; authentication is the transport layer's problem.
type Actor struct {
	ID   string
	Role domain.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

type ClientInfo struct {
	Name        string
	Phone       string
	Email       string
	CompanyName string
}

type CreateClaimInput struct {
	UnitID         string
	Actor          Actor
	DateFrom       time.Time
	DurationMonths int32
	Notes          string
	Client         ClientInfo
}

type CreateClaimResult struct {
	ClaimID       string
	QueuePosition int32
	Client        domain.Client
}

type ClaimService interface {
	CreateClaim(ctx context.Context, in CreateClaimInput) (*CreateClaimResult, error)
	CancelClaim(ctx context.Context, claimID string, actor Actor) error
	ConfirmClaim(ctx context.Context, claimID string, actor Actor, designerID string) error
	GetClaimDetails(ctx context.Context, claimID string, actor Actor) (*domain.Claim, error)
	ListMyClaims(ctx context.Context, agentID string) ([]domain.Claim, error)
	ListQueue(ctx context.Context, unitID string, from, to time.Time) ([]domain.Claim, error)
	ListRecentClaims(ctx context.Context, filter repository.ClaimFilter) ([]domain.Claim, error)
	// ExpireAndPromote is the periodic sweep: expire overdue claims, notify
	// the new head of each queue, recompute unit statuses.
	ExpireAndPromote(ctx context.Context) (int, error)
}

type WorkflowService interface {
	UpdateDesignStatus(ctx context.Context, claimID string, actor Actor, next domain.StageStatus) error
	AssignFitter(ctx context.Context, claimID string, actor Actor, fitterID string) error
	UpdateFitterStatus(ctx context.Context, claimID string, actor Actor, next domain.StageStatus) error
	CompleteInstallationWithProof(ctx context.Context, claimID string, actor Actor, proofs []domain.ProofImage) error
	ListAssignedToDesigner(ctx context.Context, designerID string) ([]domain.Claim, error)
	ListAssignedToFitter(ctx context.Context, fitterID string) ([]domain.Claim, error)
	ListActiveFitters(ctx context.Context) ([]domain.User, error)
}

type UnitService interface {
	// FinalizeStatus marks a LIVE unit as BOOKED. Any other current status is
	// rejected; losing the race reports who already finalized.
	FinalizeStatus(ctx context.Context, unitID string, actor Actor, next domain.UnitStatus) error
	// RecomputeStatus re-derives the unit's availability from its live claims
	// and in-flight bookings. LIVE and BOOKED units are left untouched.
	RecomputeStatus(ctx context.Context, unitID string) error
}

// NotificationService persists in-app notices and delivers best-effort email.
// Notify methods are fire-and-forget: failures are logged, never returned.
type NotificationService interface {
	NotifyUsers(ctx context.Context, userIDs []string, title, body, link string)
	NotifyUsersIdempotent(ctx context.Context, userIDs []string, title, body, link, dedupeBase string)
	GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
}

type EmailService interface {
	SendNotificationEmail(ctx context.Context, to, subject, body string) error
}

// asNotFound translates a storage miss into the typed NotFound failure.
func asNotFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(format, args...)
	}
	return err
}
