package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"adspace-backend/internal/apperr"
	"adspace-backend/internal/domain"
	"adspace-backend/internal/events"
	"adspace-backend/internal/logger"
	"adspace-backend/internal/repository"
	"adspace-backend/internal/utils"
)

// provisionalQueuePosition is the placeholder rank a claim is inserted with
// before the in-transaction rerank assigns its real position.
const provisionalQueuePosition = 999999

const defaultClaimTTL = 24 * time.Hour

// ClaimOptions tunes the lifecycle; zero values take defaults.
type ClaimOptions struct {
	TTL                  time.Duration
	EscalateToManagement bool
}

type claimService struct {
	store    repository.Store
	notifier NotificationService
	units    UnitService
	bus      *events.Bus
	opts     ClaimOptions
}

func NewClaimService(
	store repository.Store,
	notifier NotificationService,
	units UnitService,
	bus *events.Bus,
	opts ClaimOptions,
) ClaimService {
	if opts.TTL <= 0 {
		opts.TTL = defaultClaimTTL
	}
	return &claimService{
		store:    store,
		notifier: notifier,
		units:    units,
		bus:      bus,
		opts:     opts,
	}
}

func (s *claimService) CreateClaim(ctx context.Context, in CreateClaimInput) (*CreateClaimResult, error) {
	if in.UnitID == "" {
		return nil, apperr.InvalidInput("unit is required")
	}
	if in.DateFrom.IsZero() {
		return nil, apperr.InvalidInput("claim start date is required")
	}
	if !domain.AllowedDuration(in.DurationMonths) {
		return nil, apperr.InvalidInput("invalid claim duration; allowed durations (months): 3, 6, 9, 12")
	}
	if in.Client.Phone == "" {
		return nil, apperr.InvalidInput("client phone is required")
	}
	dateTo := utils.AddMonths(in.DateFrom, int(in.DurationMonths))

	unit, err := s.store.Units().GetByID(ctx, in.UnitID)
	if err != nil {
		return nil, asNotFound(err, "unit not found")
	}
	switch unit.Status {
	case domain.UnitStatusBooked:
		return nil, apperr.Conflict("this unit is already booked and cannot be claimed")
	case domain.UnitStatusLive:
		return nil, apperr.PreconditionFailed("this unit is live and cannot be claimed")
	case domain.UnitStatusInProcess:
		return nil, apperr.PreconditionFailed("this unit is under process and cannot be claimed")
	}

	client, err := s.findOrCreateClient(ctx, in.Client, in.Actor.ID)
	if err != nil {
		return nil, err
	}

	// The same agent may not stack a second live claim on the unit.
	existing, err := s.store.Claims().FindActiveByUnitAndAgent(ctx, in.UnitID, in.Actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		remaining := utils.FormatRemaining(time.Until(existing.ExpiresAt))
		return nil, apperr.Conflict("you already hold a claim on this unit; you can claim again after: %s", remaining)
	}

	claim := &domain.Claim{
		UnitID:         in.UnitID,
		AgentID:        in.Actor.ID,
		ClientID:       client.ID,
		DateFrom:       in.DateFrom,
		DateTo:         dateTo,
		DurationMonths: in.DurationMonths,
		Notes:          in.Notes,
		Status:         domain.ClaimStatusActive,
		QueuePosition:  provisionalQueuePosition,
		ExpiresAt:      time.Now().Add(s.opts.TTL),
	}

	// Insert and rerank atomically; concurrent creations on the same unit
	// must never observe an inconsistent queue.
	err = s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Claims().Create(ctx, claim); err != nil {
			return err
		}
		queue, err := tx.Claims().ListOverlapping(ctx, in.UnitID, in.DateFrom, dateTo,
			[]domain.ClaimStatus{domain.ClaimStatusActive, domain.ClaimStatusConfirmed})
		if err != nil {
			return err
		}
		position := int32(1)
		for _, item := range queue {
			if err := tx.Claims().SetQueuePosition(ctx, item.ID, position); err != nil {
				return err
			}
			if item.ID == claim.ID {
				claim.QueuePosition = position
			}
			position++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	link := "/claims/" + claim.ID
	s.notifier.NotifyUsers(ctx, []string{in.Actor.ID},
		"Claim created",
		fmt.Sprintf("You are #%d in queue for %s.", claim.QueuePosition, unit.Code),
		link)

	if s.opts.EscalateToManagement && in.Actor.Role == domain.RoleAgent {
		if supervisors := s.managementIDs(ctx, in.Actor.ID); len(supervisors) > 0 {
			agentName := s.userName(ctx, in.Actor.ID, "An agent")
			s.notifier.NotifyUsers(ctx, supervisors,
				"Unit claimed",
				fmt.Sprintf("%s claimed by %s for client %s (%d months). Queue #%d.",
					unit.Code, agentName, client.Name, in.DurationMonths, claim.QueuePosition),
				link)
		}
	}

	s.recomputeUnitStatus(ctx, in.UnitID)

	return &CreateClaimResult{
		ClaimID:       claim.ID,
		QueuePosition: claim.QueuePosition,
		Client:        *client,
	}, nil
}

func (s *claimService) CancelClaim(ctx context.Context, claimID string, actor Actor) error {
	if actor.Role == domain.RoleAgent {
		return apperr.Forbidden("agents cannot cancel claims")
	}
	if !actor.Role.Management() {
		return apperr.Forbidden("not allowed")
	}

	claim, err := s.store.Claims().GetByID(ctx, claimID)
	if err != nil {
		return asNotFound(err, "claim not found")
	}
	if claim.Status != domain.ClaimStatusActive {
		return apperr.PreconditionFailed("only active claims can be cancelled")
	}

	if err := s.store.Claims().UpdateStatus(ctx, claimID, domain.ClaimStatusCancelled); err != nil {
		return err
	}

	s.notifier.NotifyUsers(ctx, []string{claim.AgentID},
		"Claim cancelled",
		"Your claim was cancelled by management.",
		"/units/"+claim.UnitID)

	s.recomputeUnitStatus(ctx, claim.UnitID)
	return nil
}

// GetClaimDetails lets managers see everything; agents, designers and
// fitters only see claims bound to them.
func (s *claimService) GetClaimDetails(ctx context.Context, claimID string, actor Actor) (*domain.Claim, error) {
	claim, err := s.store.Claims().GetByID(ctx, claimID)
	if err != nil {
		return nil, asNotFound(err, "claim not found")
	}
	switch actor.Role {
	case domain.RoleAgent:
		if claim.AgentID != actor.ID {
			return nil, apperr.Forbidden("not allowed")
		}
	case domain.RoleDesigner:
		if claim.DesignerID == nil || *claim.DesignerID != actor.ID {
			return nil, apperr.Forbidden("not allowed")
		}
	case domain.RoleFitter:
		if claim.FitterID == nil || *claim.FitterID != actor.ID {
			return nil, apperr.Forbidden("not allowed")
		}
	}
	return claim, nil
}

func (s *claimService) ListMyClaims(ctx context.Context, agentID string) ([]domain.Claim, error) {
	return s.store.Claims().ListByAgent(ctx, agentID)
}

func (s *claimService) ListQueue(ctx context.Context, unitID string, from, to time.Time) ([]domain.Claim, error) {
	claims, err := s.store.Claims().ListOverlapping(ctx, unitID, from, to,
		[]domain.ClaimStatus{domain.ClaimStatusActive, domain.ClaimStatusConfirmed})
	if err != nil {
		return nil, err
	}
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].QueuePosition < claims[j].QueuePosition
	})
	return claims, nil
}

func (s *claimService) ListRecentClaims(ctx context.Context, filter repository.ClaimFilter) ([]domain.Claim, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.store.Claims().ListRecent(ctx, filter)
}

// ExpireAndPromote is invoked by the scheduler. Re-running it over an
// already-expired claim is a no-op: the ACTIVE-only conditional update
// guards every step behind it.
func (s *claimService) ExpireAndPromote(ctx context.Context) (int, error) {
	due, err := s.store.Claims().ListExpiredActive(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, claim := range due {
		expired, err := s.store.Claims().ExpireIfActive(ctx, claim.ID)
		if err != nil {
			logger.Error("Failed to expire claim", "claim_id", claim.ID, "error", err)
			continue
		}
		if !expired {
			// Confirmed or cancelled since we listed it.
			continue
		}
		count++

		s.notifier.NotifyUsers(ctx, []string{claim.AgentID},
			"Claim expired",
			"Your claim expired.",
			"/units/"+claim.UnitID)

		remaining, err := s.store.Claims().ListOverlapping(ctx, claim.UnitID, claim.DateFrom, claim.DateTo,
			[]domain.ClaimStatus{domain.ClaimStatusActive})
		if err != nil {
			logger.Error("Failed to list queue after expiry", "claim_id", claim.ID, "error", err)
		} else if len(remaining) > 0 {
			sort.Slice(remaining, func(i, j int) bool {
				return remaining[i].QueuePosition < remaining[j].QueuePosition
			})
			head := remaining[0]
			s.notifier.NotifyUsers(ctx, []string{head.AgentID},
				"Claim promoted",
				"You are now first in queue. Please confirm before expiry.",
				"/units/"+claim.UnitID)
		}

		s.recomputeUnitStatus(ctx, claim.UnitID)
	}
	return count, nil
}

// recomputeUnitStatus only logs failures: the triggering state change has
// already committed and must not appear failed to its caller.
func (s *claimService) recomputeUnitStatus(ctx context.Context, unitID string) {
	if err := s.units.RecomputeStatus(ctx, unitID); err != nil {
		logger.Warn("Failed to recompute unit status", "unit_id", unitID, "error", err)
	}
}

func (s *claimService) findOrCreateClient(ctx context.Context, info ClientInfo, agentID string) (*domain.Client, error) {
	client, err := s.store.Clients().FindByPhone(ctx, info.Phone)
	if err != nil {
		return nil, err
	}
	if client != nil {
		return client, nil
	}
	client = &domain.Client{
		Name:        info.Name,
		Phone:       info.Phone,
		Email:       info.Email,
		CompanyName: info.CompanyName,
		CreatedByID: agentID,
	}
	if err := s.store.Clients().Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// managementIDs returns active owner and manager ids, excluding the actor.
func (s *claimService) managementIDs(ctx context.Context, excludeID string) []string {
	users, err := s.store.Users().ListActiveByRoles(ctx, domain.RoleOwner, domain.RoleManager)
	if err != nil {
		logger.Warn("Failed to list management users", "error", err)
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, u := range users {
		if u.ID == "" || u.ID == excludeID || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		ids = append(ids, u.ID)
	}
	return ids
}

func (s *claimService) userName(ctx context.Context, userID, fallback string) string {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil || user.Name == "" {
		return fallback
	}
	return user.Name
}
