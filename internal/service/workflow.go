package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adspace-backend/internal/apperr"
	"adspace-backend/internal/domain"
	"adspace-backend/internal/events"
	"adspace-backend/internal/logger"
	"adspace-backend/internal/repository"
)

type workflowService struct {
	store    repository.Store
	notifier NotificationService
	bus      *events.Bus
}

func NewWorkflowService(
	store repository.Store,
	notifier NotificationService,
	bus *events.Bus,
) WorkflowService {
	return &workflowService{
		store:    store,
		notifier: notifier,
		bus:      bus,
	}
}

// UpdateDesignStatus advances the design stage. Only the bound designer may
// move it, same-state updates are no-ops, and stages never go backwards or
// skip.
func (s *workflowService) UpdateDesignStatus(ctx context.Context, claimID string, actor Actor, next domain.StageStatus) error {
	if !next.Valid() {
		return apperr.InvalidInput("invalid design status")
	}

	claim, err := s.store.Claims().GetByID(ctx, claimID)
	if err != nil {
		return asNotFound(err, "claim not found")
	}
	if claim.Status != domain.ClaimStatusConfirmed {
		return apperr.PreconditionFailed("design workflow is not active")
	}
	if claim.DesignerID == nil || *claim.DesignerID != actor.ID {
		return apperr.Forbidden("only the assigned designer can update design status")
	}

	current := claim.DesignStatus
	if !current.CanTransitionTo(next) {
		return apperr.PreconditionFailed("invalid design status transition from %s to %s", current, next)
	}

	if next != current {
		if err := s.store.Claims().SetDesignStatus(ctx, claimID, next); err != nil {
			return err
		}
	}

	s.bus.Publish(events.Event{
		Type:    events.TypeDesignStatus,
		UnitID:  claim.UnitID,
		ClaimID: claimID,
		Status:  string(next),
	})

	if next == domain.StageCompleted && current != domain.StageCompleted {
		if supervisors := s.managementIDs(ctx, actor.ID); len(supervisors) > 0 {
			designerName := s.userName(ctx, actor.ID, "Designer")
			unitCode := s.unitCode(ctx, claim.UnitID)
			s.notifier.NotifyUsers(ctx, supervisors,
				"Design completed",
				fmt.Sprintf("%s marked design completed for %s.", designerName, unitCode),
				"/claims/"+claimID+"?from=notification")
		}
	}
	return nil
}

// AssignFitter binds a fitter to a confirmed claim at most once. The
// fitter_id-IS-NULL conditional update decides races; everyone else gets a
// conflict.
func (s *workflowService) AssignFitter(ctx context.Context, claimID string, actor Actor, fitterID string) error {
	if !actor.Role.Management() {
		return apperr.Forbidden("not allowed")
	}

	claim, err := s.store.Claims().GetByID(ctx, claimID)
	if err != nil {
		return asNotFound(err, "claim not found")
	}
	if claim.Status != domain.ClaimStatusConfirmed {
		return apperr.PreconditionFailed("installation workflow is not active")
	}
	if claim.DesignStatus != domain.StageCompleted {
		return apperr.PreconditionFailed("design must be completed before assigning a fitter")
	}
	if claim.FitterID != nil {
		return apperr.Conflict("this unit has already been assigned by another user")
	}

	resolvedFitter, err := s.resolveFitter(ctx, fitterID)
	if err != nil {
		return err
	}

	now := time.Now()
	bound, err := s.store.Claims().BindFitter(ctx, claimID, resolvedFitter.ID, now)
	if err != nil {
		return err
	}
	if !bound {
		return apperr.Conflict("this unit has already been assigned by another user")
	}

	// Workflow marker on the unit, separate from availability status.
	state := domain.UnitWorkflowFitterAssigned
	if err := s.store.Units().SetWorkflowState(ctx, claim.UnitID, &state); err != nil {
		logger.Warn("Failed to set unit workflow state", "unit_id", claim.UnitID, "error", err)
	}

	s.bus.Publish(events.Event{
		Type:    events.TypeFitterStatus,
		UnitID:  claim.UnitID,
		ClaimID: claimID,
		Status:  string(domain.StagePending),
	})

	body := buildJobContext(ctx, s.store, claim)
	body += "\nDesign: Completed"
	if claim.DesignerID != nil {
		if designer, err := s.store.Users().GetByID(ctx, *claim.DesignerID); err == nil {
			body += fmt.Sprintf(" (by %s)", designer.Name)
		}
	}
	body += fmt.Sprintf("\nAssigned to: %s", resolvedFitter.Name)
	s.notifier.NotifyUsersIdempotent(ctx, []string{resolvedFitter.ID},
		"New installation assigned",
		body,
		"/claims/"+claimID+"?from=notification",
		fmt.Sprintf("ASSIGN_FITTER:%s:%s", claim.UnitID, resolvedFitter.ID))
	return nil
}

// UpdateFitterStatus advances the installation stage. Starting requires the
// design to be done; completing requires proof already on file.
func (s *workflowService) UpdateFitterStatus(ctx context.Context, claimID string, actor Actor, next domain.StageStatus) error {
	if !next.Valid() {
		return apperr.InvalidInput("invalid installation status")
	}

	claim, err := s.store.Claims().GetByID(ctx, claimID)
	if err != nil {
		return asNotFound(err, "claim not found")
	}
	if claim.Status != domain.ClaimStatusConfirmed {
		return apperr.PreconditionFailed("installation workflow is not active")
	}
	if claim.DesignStatus != domain.StageCompleted {
		return apperr.PreconditionFailed("design must be completed before installation can start")
	}
	if claim.FitterID == nil || *claim.FitterID != actor.ID {
		return apperr.Forbidden("only the assigned fitter can update installation status")
	}

	current := claim.FitterStatus
	if !current.CanTransitionTo(next) {
		return apperr.PreconditionFailed("invalid installation status transition from %s to %s", current, next)
	}

	if next == domain.StageCompleted && current != domain.StageCompleted {
		if len(claim.InstallationProofs) == 0 {
			return apperr.PreconditionFailed("installation proof image(s) are required before completion")
		}
	}

	now := time.Now()
	if next != current {
		if err := s.store.Claims().SetFitterStatus(ctx, claimID, next, now); err != nil {
			return err
		}
	}

	s.bus.Publish(events.Event{
		Type:    events.TypeFitterStatus,
		UnitID:  claim.UnitID,
		ClaimID: claimID,
		Status:  string(next),
	})

	if next == domain.StageCompleted && current != domain.StageCompleted {
		s.markInstalled(ctx, claim, actor.ID)
	}
	return nil
}

// CompleteInstallationWithProof appends proof artifacts and performs the
// IN_PROGRESS→COMPLETED transition in one step.
func (s *workflowService) CompleteInstallationWithProof(ctx context.Context, claimID string, actor Actor, proofs []domain.ProofImage) error {
	if len(proofs) == 0 {
		return apperr.InvalidInput("at least one installation proof image is required")
	}

	claim, err := s.store.Claims().GetByID(ctx, claimID)
	if err != nil {
		return asNotFound(err, "claim not found")
	}
	if claim.Status != domain.ClaimStatusConfirmed {
		return apperr.PreconditionFailed("installation workflow is not active")
	}
	if claim.DesignStatus != domain.StageCompleted {
		return apperr.PreconditionFailed("design must be completed before installation can start")
	}
	if claim.FitterID == nil || *claim.FitterID != actor.ID {
		return apperr.Forbidden("only the assigned fitter can submit installation proof")
	}
	if claim.FitterStatus != domain.StageInProgress {
		return apperr.PreconditionFailed("installation must be in progress before it can be completed")
	}

	now := time.Now()
	merged := append([]domain.ProofImage{}, claim.InstallationProofs...)
	for _, p := range proofs {
		if p.UploadedAt.IsZero() {
			p.UploadedAt = now
		}
		merged = append(merged, p)
	}
	if err := s.store.Claims().CompleteInstallation(ctx, claimID, merged, now); err != nil {
		return err
	}

	s.bus.Publish(events.Event{
		Type:    events.TypeFitterStatus,
		UnitID:  claim.UnitID,
		ClaimID: claimID,
		Status:  string(domain.StageCompleted),
	})

	s.markInstalled(ctx, claim, actor.ID)
	return nil
}

// markInstalled flips the unit to LIVE and tells the people who can
// finalize. Runs after the completing update; failures only log.
func (s *workflowService) markInstalled(ctx context.Context, claim *domain.Claim, actorID string) {
	if err := s.store.Units().SetLive(ctx, claim.UnitID); err != nil {
		logger.Error("Failed to mark unit live", "unit_id", claim.UnitID, "error", err)
	} else {
		s.bus.Publish(events.Event{
			Type:   events.TypeUnitStatus,
			UnitID: claim.UnitID,
			Status: string(domain.UnitStatusLive),
		})
	}

	recipients := s.managementIDs(ctx, actorID)
	if claim.AgentID != "" && claim.AgentID != actorID {
		recipients = append(recipients, claim.AgentID)
	}
	if len(recipients) == 0 {
		return
	}
	unitCode := s.unitCode(ctx, claim.UnitID)
	s.notifier.NotifyUsersIdempotent(ctx, recipients,
		"Unit is live",
		fmt.Sprintf("%s is now live. Mark as booked when ready.", unitCode),
		"/units/"+claim.UnitID+"?from=notification",
		fmt.Sprintf("READY_TO_BOOK:%s:%s", claim.UnitID, claim.ID))
}

func (s *workflowService) resolveFitter(ctx context.Context, fitterID string) (*domain.User, error) {
	if strings.TrimSpace(fitterID) != "" {
		fitter, err := s.store.Users().GetByID(ctx, strings.TrimSpace(fitterID))
		if err != nil {
			return nil, asNotFound(err, "selected fitter is not available")
		}
		if !fitter.IsActive {
			return nil, apperr.InvalidInput("selected fitter is not available")
		}
		if fitter.Role != domain.RoleFitter {
			return nil, apperr.InvalidInput("selected user is not a fitter")
		}
		return fitter, nil
	}

	fitters, err := s.store.Users().ListActiveByRoles(ctx, domain.RoleFitter)
	if err != nil {
		return nil, err
	}
	switch len(fitters) {
	case 1:
		return &fitters[0], nil
	case 0:
		return nil, apperr.InvalidInput("no fitters available to assign")
	default:
		return nil, apperr.InvalidInput("please select a fitter to assign")
	}
}

func (s *workflowService) ListAssignedToDesigner(ctx context.Context, designerID string) ([]domain.Claim, error) {
	return s.store.Claims().ListByDesigner(ctx, designerID)
}

func (s *workflowService) ListAssignedToFitter(ctx context.Context, fitterID string) ([]domain.Claim, error) {
	return s.store.Claims().ListByFitter(ctx, fitterID)
}

func (s *workflowService) ListActiveFitters(ctx context.Context) ([]domain.User, error) {
	return s.store.Users().ListActiveByRoles(ctx, domain.RoleFitter)
}

// managementIDs returns active owner and manager ids, excluding the actor.
func (s *workflowService) managementIDs(ctx context.Context, excludeID string) []string {
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

func (s *workflowService) userName(ctx context.Context, userID, fallback string) string {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil || user.Name == "" {
		return fallback
	}
	return user.Name
}

func (s *workflowService) unitCode(ctx context.Context, unitID string) string {
	unit, err := s.store.Units().GetByID(ctx, unitID)
	if err != nil || unit.Code == "" {
		return unitID
	}
	return unit.Code
}
