package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adspace-backend/internal/apperr"
	"adspace-backend/internal/domain"
	"adspace-backend/internal/events"
	"adspace-backend/internal/repository"
)

type confirmResult struct {
	claimID           string
	unitID            string
	agentID           string
	designerID        string
	cancelledAgentIDs []string
}

// ConfirmClaim converts a claim into a binding commitment. Everything up to
// and including rival cancellation runs in one transaction; the conditional
// unit update is the sole arbiter of which confirmer wins. Notifications go
// out only after the transaction commits.
func (s *claimService) ConfirmClaim(ctx context.Context, claimID string, actor Actor, designerID string) error {
	if actor.Role == domain.RoleAgent {
		return apperr.Forbidden("agents cannot confirm claims")
	}

	now := time.Now()
	var res confirmResult

	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		claim, err := tx.Claims().GetByID(ctx, claimID)
		if err != nil {
			return asNotFound(err, "claim not found")
		}

		if claim.DesignerID != nil && designerID != "" && *claim.DesignerID != designerID {
			return apperr.Conflict("claim is already assigned to another designer")
		}

		// A unit already under process yields the same conflict even when
		// this claim is no longer ACTIVE, so late confirmers get a stable
		// answer naming the winner.
		unit, err := tx.Units().GetByID(ctx, claim.UnitID)
		if err != nil {
			return asNotFound(err, "unit not found")
		}
		if unit.Status == domain.UnitStatusInProcess {
			return s.underProcessConflict(ctx, tx, claim.UnitID)
		}

		if claim.Status != domain.ClaimStatusActive {
			return apperr.Conflict("claim is not active")
		}
		if !actor.IsAdmin() {
			if claim.ExpiresAt.Before(now) {
				return apperr.Forbidden("claim has expired")
			}
			if claim.QueuePosition != 1 {
				return apperr.Forbidden("not first in queue")
			}
		}

		resolvedDesignerID, err := s.resolveDesigner(ctx, tx, designerID)
		if err != nil {
			return err
		}

		// Atomic claim of the unit: first conditional update to land wins,
		// regardless of request ordering.
		won, err := tx.Units().ClaimForProcessing(ctx, claim.UnitID)
		if err != nil {
			return err
		}
		if !won {
			return s.underProcessConflict(ctx, tx, claim.UnitID)
		}

		booking := &domain.Booking{
			UnitID:      claim.UnitID,
			StartDate:   claim.DateFrom,
			EndDate:     claim.DateTo,
			Status:      domain.BookingStatusUnderProcess,
			CreatedByID: actor.ID,
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}

		if err := tx.Claims().ConfirmWithDesigner(ctx, claim.ID, resolvedDesignerID); err != nil {
			return err
		}

		// Cancel every rival ACTIVE claim in the same window.
		rivals, err := tx.Claims().ListOverlapping(ctx, claim.UnitID, claim.DateFrom, claim.DateTo,
			[]domain.ClaimStatus{domain.ClaimStatusActive})
		if err != nil {
			return err
		}
		var rivalIDs []string
		seen := make(map[string]bool)
		var cancelledAgents []string
		for _, rival := range rivals {
			if rival.ID == claim.ID {
				continue
			}
			rivalIDs = append(rivalIDs, rival.ID)
			if !seen[rival.AgentID] {
				seen[rival.AgentID] = true
				cancelledAgents = append(cancelledAgents, rival.AgentID)
			}
		}
		if err := tx.Claims().CancelMany(ctx, rivalIDs); err != nil {
			return err
		}

		res = confirmResult{
			claimID:           claim.ID,
			unitID:            claim.UnitID,
			agentID:           claim.AgentID,
			designerID:        resolvedDesignerID,
			cancelledAgentIDs: cancelledAgents,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyConfirmed(ctx, res, actor)
	return nil
}

// underProcessConflict builds the stable "already under process" conflict,
// naming the role that won when the audit trail has it.
func (s *claimService) underProcessConflict(ctx context.Context, tx repository.Store, unitID string) error {
	booking, err := tx.Bookings().FindLatestByUnitAndStatus(ctx, unitID, domain.BookingStatusUnderProcess)
	if err == nil && booking != nil {
		if user, uerr := tx.Users().GetByID(ctx, booking.CreatedByID); uerr == nil {
			return apperr.Conflict("this unit is already under process (confirmed by %s)", strings.ToLower(string(user.Role)))
		}
	}
	return apperr.Conflict("this unit is already under process")
}

// resolveDesigner validates an explicit designer id, or auto-picks when
// exactly one active designer exists. Zero and multiple candidates fail
// differently on purpose: the first has no remedy, the second does.
func (s *claimService) resolveDesigner(ctx context.Context, tx repository.Store, designerID string) (string, error) {
	if strings.TrimSpace(designerID) != "" {
		designer, err := tx.Users().GetByID(ctx, strings.TrimSpace(designerID))
		if err != nil {
			return "", asNotFound(err, "selected designer is not available")
		}
		if !designer.IsActive {
			return "", apperr.InvalidInput("selected designer is not available")
		}
		if designer.Role != domain.RoleDesigner {
			return "", apperr.InvalidInput("selected user is not a designer")
		}
		return designer.ID, nil
	}

	designers, err := tx.Users().ListActiveByRoles(ctx, domain.RoleDesigner)
	if err != nil {
		return "", err
	}
	switch len(designers) {
	case 1:
		return designers[0].ID, nil
	case 0:
		return "", apperr.InvalidInput("no designers available to assign")
	default:
		return "", apperr.InvalidInput("please select a designer to assign")
	}
}

// notifyConfirmed dispatches all post-commit side effects. None of them can
// re-open the transaction: failures are logged inside the notifier.
func (s *claimService) notifyConfirmed(ctx context.Context, res confirmResult, actor Actor) {
	s.notifier.NotifyUsers(ctx, []string{res.agentID},
		"Claim confirmed",
		"Your claim was confirmed. Unit moved to under process.",
		"/claims/"+res.claimID)

	if len(res.cancelledAgentIDs) > 0 {
		s.notifier.NotifyUsers(ctx, res.cancelledAgentIDs,
			"Claim cancelled",
			"Another user confirmed a booking. Your claim was cancelled.",
			"/units/"+res.unitID)
	}

	s.bus.Publish(events.Event{
		Type:   events.TypeUnitStatus,
		UnitID: res.unitID,
		Status: string(domain.UnitStatusInProcess),
	})

	if res.designerID != "" {
		s.notifyDesignerAssigned(ctx, res)
	}

	// A manager confirming escalates to owners.
	if actor.Role == domain.RoleManager {
		owners, err := s.store.Users().ListActiveByRoles(ctx, domain.RoleOwner)
		if err != nil {
			return
		}
		var ownerIDs []string
		for _, o := range owners {
			if o.ID != actor.ID {
				ownerIDs = append(ownerIDs, o.ID)
			}
		}
		if len(ownerIDs) > 0 {
			managerName := s.userName(ctx, actor.ID, "Manager")
			unitCode := s.unitCode(ctx, res.unitID)
			s.notifier.NotifyUsers(ctx, ownerIDs,
				"Unit under process",
				fmt.Sprintf("%s marked %s as under process (via claim confirmation).", managerName, unitCode),
				"/units/"+res.unitID)
		}
	}
}

func (s *claimService) notifyDesignerAssigned(ctx context.Context, res confirmResult) {
	claim, err := s.store.Claims().GetByID(ctx, res.claimID)
	if err != nil {
		return
	}
	body := buildJobContext(ctx, s.store, claim)
	body += fmt.Sprintf("\nClaim: %d months | Start: %s", claim.DurationMonths, claim.DateFrom.Format("2006-01-02"))
	s.notifier.NotifyUsers(ctx, []string{res.designerID},
		"New design assigned",
		body,
		"/claims/"+res.claimID+"?from=notification")
}

// buildJobContext renders the unit + client details designers and fitters
// need to do the work on site.
func buildJobContext(ctx context.Context, store repository.Store, claim *domain.Claim) string {
	unitLine := claim.UnitID
	locationLine := "Location: N/A"
	if unit, err := store.Units().GetByID(ctx, claim.UnitID); err == nil {
		unitLine = fmt.Sprintf("%s | %s %s", unit.Code, unit.City, unit.Area)
		size := "N/A"
		if unit.WidthCm > 0 && unit.HeightCm > 0 {
			size = fmt.Sprintf("%dcm x %dcm", unit.WidthCm, unit.HeightCm)
		}
		landmark := unit.Landmark
		if landmark == "" {
			landmark = unit.RoadName
		}
		if landmark == "" {
			landmark = "N/A"
		}
		side := unit.Side
		if side == "" {
			side = "N/A"
		}
		locationLine = fmt.Sprintf("Location: %s | Side: %s | Size: %s", landmark, side, size)
	}
	clientLine := "Client: N/A"
	if client, err := store.Clients().GetByID(ctx, claim.ClientID); err == nil {
		clientLine = fmt.Sprintf("Client: %s | %s | %s", client.Name, client.Phone, client.Email)
	}
	return fmt.Sprintf("Unit: %s\n%s\n%s", unitLine, locationLine, clientLine)
}

func (s *claimService) unitCode(ctx context.Context, unitID string) string {
	unit, err := s.store.Units().GetByID(ctx, unitID)
	if err != nil || unit.Code == "" {
		return unitID
	}
	return unit.Code
}
