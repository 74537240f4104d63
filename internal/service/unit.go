package service

import (
	"context"
	"strings"
	"time"

	"adspace-backend/internal/apperr"
	"adspace-backend/internal/domain"
	"adspace-backend/internal/events"
	"adspace-backend/internal/repository"
)

type unitService struct {
	store repository.Store
	bus   *events.Bus
}

func NewUnitService(store repository.Store, bus *events.Bus) UnitService {
	return &unitService{store: store, bus: bus}
}

// RecomputeStatus derives availability from current state: any ACTIVE claim
// wins RESERVED, an in-flight booking means IN_PROCESS, otherwise AVAILABLE.
// LIVE and BOOKED are entered and left only through explicit workflow
// transitions, never by derivation.
func (s *unitService) RecomputeStatus(ctx context.Context, unitID string) error {
	unit, err := s.store.Units().GetByID(ctx, unitID)
	if err != nil {
		return asNotFound(err, "unit not found")
	}
	if unit.Status == domain.UnitStatusLive || unit.Status == domain.UnitStatusBooked {
		return nil
	}

	active, err := s.store.Claims().ListActiveByUnit(ctx, unitID)
	if err != nil {
		return err
	}

	next := domain.UnitStatusAvailable
	if len(active) > 0 {
		next = domain.UnitStatusReserved
	} else {
		bookings, err := s.store.Bookings().ListByUnit(ctx, unitID)
		if err != nil {
			return err
		}
		for _, b := range bookings {
			if b.InFlight() {
				next = domain.UnitStatusInProcess
				break
			}
		}
	}

	if next != unit.Status {
		if err := s.store.Units().UpdateStatus(ctx, unitID, next); err != nil {
			return err
		}
	}
	s.bus.Publish(events.Event{
		Type:           events.TypeUnitStatus,
		UnitID:         unitID,
		Status:         string(next),
		HasActiveClaim: len(active) > 0,
	})
	return nil
}

func (s *unitService) FinalizeStatus(ctx context.Context, unitID string, actor Actor, next domain.UnitStatus) error {
	switch actor.Role {
	case domain.RoleOwner, domain.RoleManager, domain.RoleAgent:
	default:
		return apperr.Forbidden("not allowed")
	}
	if next != domain.UnitStatusBooked {
		return apperr.InvalidInput("invalid final status; only BOOKED is accepted")
	}

	unit, err := s.store.Units().GetByID(ctx, unitID)
	if err != nil {
		return asNotFound(err, "unit not found")
	}
	if unit.Status == domain.UnitStatusBooked {
		return s.alreadyBookedConflict(ctx, unit)
	}
	if unit.Status != domain.UnitStatusLive {
		return apperr.PreconditionFailed("only live units can be marked as booked (current status: %s)", strings.ToLower(string(unit.Status)))
	}

	won, err := s.store.Units().FinalizeBooked(ctx, unitID, actor.ID, time.Now())
	if err != nil {
		return err
	}
	if !won {
		// Lost the race; report who got there first when we can tell.
		after, err := s.store.Units().GetByID(ctx, unitID)
		if err != nil {
			return asNotFound(err, "unit not found")
		}
		if after.Status == domain.UnitStatusBooked {
			return s.alreadyBookedConflict(ctx, after)
		}
		return apperr.Conflict("this unit has already been updated by another user")
	}

	s.bus.Publish(events.Event{
		Type:   events.TypeUnitStatus,
		UnitID: unitID,
		Status: string(domain.UnitStatusBooked),
	})
	return nil
}

// alreadyBookedConflict names the finalizer's role when the audit trail has
// it, so callers do not retry blindly.
func (s *unitService) alreadyBookedConflict(ctx context.Context, unit *domain.Unit) error {
	if unit.BookedByID != nil {
		if user, err := s.store.Users().GetByID(ctx, *unit.BookedByID); err == nil {
			return apperr.Conflict("already marked as booked by %s", strings.ToLower(string(user.Role)))
		}
	}
	return apperr.Conflict("already marked as booked")
}
