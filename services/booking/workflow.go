package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	auditlogRepo "roomlift/database/repository/auditlog"
	bookingRepo "roomlift/database/repository/booking"
	"roomlift/models"
	"roomlift/services/calendar"
	"roomlift/services/lifecycle"
	"roomlift/services/notification"
	"roomlift/services/tenant"
	"roomlift/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxDispatchAttempts  = 3
	maxEffectConcurrency = 4
	effectTimeout        = 5 * time.Second
)

// DefaultWorkflowService implements WorkflowService.
type DefaultWorkflowService struct {
	Repo      bookingRepo.BookingRepository
	AuditRepo auditlogRepo.AuditLogRepository
	Tenants   tenant.ConfigService
	Calendar  calendar.Service
	Notifier  notification.NotificationService
	Locker    Locker
}

// CreateBooking validates the request, fetches the tenant rule set once,
// starts a fresh lifecycle actor, persists the resulting snapshot and runs
// the initial entry effects. The booking may already be Approved on return
// when the auto-approval guards pass.
func (s *DefaultWorkflowService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, string, error) {
	if input.Tenant == "" {
		return nil, "", NewValidationError("tenant is required")
	}
	if len(input.RoomIDs) == 0 {
		return nil, "", NewValidationError("at least one room is required")
	}

	cfg, err := s.Tenants.GetConfig(ctx, input.Tenant)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load tenant rules: %w", err)
	}

	rooms := make([]models.Room, 0, len(input.RoomIDs))
	for _, roomID := range input.RoomIDs {
		rooms = append(rooms, models.Room{
			ID:                   roomID,
			AutoApprovalEligible: cfg.RoomEligibility(roomID),
		})
	}

	// Service flags are computed once here and frozen for the life of the
	// booking; only requested kinds are stored.
	var requested map[models.ServiceKind]bool
	if cfg.UsesServiceWorkflow && len(input.Services) > 0 {
		requested = make(map[models.ServiceKind]bool)
		for _, kind := range input.Services {
			if models.IsValidServiceKind(string(kind)) {
				requested[kind] = true
			}
		}
	}

	bctx := models.BookingContext{
		Tenant:            input.Tenant,
		CalendarEventID:   input.CalendarEventID,
		Email:             input.Email,
		Role:              input.Role,
		SelectedRooms:     rooms,
		IsWalkIn:          input.IsWalkIn,
		IsVip:             input.IsVip,
		ServicesRequested: requested,
	}

	actor, effects := lifecycle.Start(bctx, models.TenantRules{UsesServiceWorkflow: cfg.UsesServiceWorkflow})

	booking := &models.Booking{
		ID:       uuid.New().String(),
		Tenant:   input.Tenant,
		Email:    input.Email,
		Role:     input.Role,
		Rooms:    rooms,
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
		Snapshot: lifecycle.Encode(actor.Snapshot()),
	}
	if err := s.Repo.Create(ctx, booking); err != nil {
		return nil, "", fmt.Errorf("failed to persist booking: %w", err)
	}

	s.performEffects(booking, actor.Context(), input.Email, effects)
	return booking, lifecycle.LabelForValue(actor.Value()), nil
}

// DispatchEvent delivers one lifecycle event to a booking. The per-booking
// mutex guarantees at most one in-flight send; a snapshot write that loses
// the revision race is re-applied against the freshest snapshot. Events the
// current state does not accept are silent no-ops returning the unchanged
// status label.
func (s *DefaultWorkflowService) DispatchEvent(ctx context.Context, bookingID string, event lifecycle.Event, actorIdentity string) (string, error) {
	unlock, err := s.Locker.Acquire(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("failed to lock booking %s: %w", bookingID, err)
	}

	var (
		label   string
		effects []lifecycle.Effect
		booking *models.Booking
		bctx    models.BookingContext
	)
	dispatchErr := func() error {
		defer unlock()
		for attempt := 0; attempt < maxDispatchAttempts; attempt++ {
			b, err := s.Repo.GetByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if len(b.Snapshot) == 0 {
				return NewLegacyRecordError("booking has no lifecycle snapshot")
			}
			snap, err := lifecycle.Decode(b.Snapshot)
			if err != nil {
				return NewLegacyRecordError(err.Error())
			}

			actor := lifecycle.Resume(snap)
			effs := actor.Send(event)
			label = lifecycle.LabelForValue(actor.Value())
			if len(effs) == 0 {
				// No transition fired; nothing to persist.
				booking, effects = b, nil
				return nil
			}
			if err := s.Repo.UpdateSnapshot(ctx, bookingID, lifecycle.Encode(actor.Snapshot()), b.Revision); err != nil {
				if errors.Is(err, bookingRepo.ErrRevisionConflict) {
					utils.GetLogger().Info("booking snapshot superseded, retrying dispatch",
						zap.String("bookingId", bookingID),
						zap.String("event", string(event)))
					continue
				}
				return fmt.Errorf("failed to persist snapshot: %w", err)
			}
			booking, effects, bctx = b, effs, actor.Context()
			return nil
		}
		return NewConflictError(fmt.Sprintf("booking %s kept changing under event %s", bookingID, event))
	}()
	if dispatchErr != nil {
		return "", dispatchErr
	}

	if len(effects) > 0 {
		s.performEffects(booking, bctx, actorIdentity, effects)
	}
	return label, nil
}

// Status resolves the display status label for a booking, whether or not it
// carries a lifecycle snapshot.
func (s *DefaultWorkflowService) Status(ctx context.Context, bookingID string) (string, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	return lifecycle.ResolveStatus(b), nil
}

// AvailableActions lists the events the booking currently accepts, letting
// UI code decide which buttons to offer. Legacy records accept none.
func (s *DefaultWorkflowService) AvailableActions(ctx context.Context, bookingID string) ([]string, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if len(b.Snapshot) == 0 {
		return nil, nil
	}
	snap, err := lifecycle.Decode(b.Snapshot)
	if err != nil {
		return nil, nil
	}
	actor := lifecycle.Resume(snap)

	var actions []string
	for _, ev := range candidateEvents(actor.Context()) {
		if actor.CanSend(ev) {
			actions = append(actions, string(ev))
		}
	}
	return actions, nil
}

func candidateEvents(bctx models.BookingContext) []lifecycle.Event {
	events := []lifecycle.Event{
		lifecycle.EventApprove,
		lifecycle.EventDecline,
		lifecycle.EventCancel,
		lifecycle.EventCheckIn,
		lifecycle.EventCheckOut,
		lifecycle.EventNoShow,
		lifecycle.EventClose,
	}
	for _, kind := range bctx.RequestedServices() {
		events = append(events,
			lifecycle.ApproveServiceEvent(kind),
			lifecycle.DeclineServiceEvent(kind),
			lifecycle.CloseoutServiceEvent(kind),
		)
	}
	return events
}

// performEffects runs the transition's side effects in a short-lived task
// group with bounded concurrency. Each effect gets its own timeout; failures
// are logged with booking id and effect kind and never affect the committed
// transition.
func (s *DefaultWorkflowService) performEffects(b *models.Booking, bctx models.BookingContext, actorIdentity string, effects []lifecycle.Effect) {
	logger := utils.GetLogger()
	sem := make(chan struct{}, maxEffectConcurrency)
	var wg sync.WaitGroup

	for _, eff := range effects {
		wg.Add(1)
		sem <- struct{}{}
		go func(eff lifecycle.Effect) {
			defer wg.Done()
			defer func() { <-sem }()

			ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
			defer cancel()
			if err := s.performEffect(ctx, b, bctx, actorIdentity, eff); err != nil {
				logger.Warn("lifecycle effect failed",
					zap.String("bookingId", b.ID),
					zap.String("effect", string(eff.Kind)),
					zap.Error(err))
			}
		}(eff)
	}
	wg.Wait()
}

func (s *DefaultWorkflowService) performEffect(ctx context.Context, b *models.Booking, bctx models.BookingContext, actorIdentity string, eff lifecycle.Effect) error {
	switch eff.Kind {
	case lifecycle.EffectAudit:
		return s.AuditRepo.Append(ctx, models.BookingLogEntry{
			ID:        uuid.New().String(),
			BookingID: b.ID,
			Status:    eff.Label,
			Actor:     actorIdentity,
			Timestamp: time.Now(),
			Note:      eff.Note,
			Tenant:    b.Tenant,
		})
	case lifecycle.EffectCalendar:
		if bctx.CalendarEventID == "" {
			return nil
		}
		return s.Calendar.SetStatusPrefix(ctx, bctx.CalendarEventID, eff.Label)
	case lifecycle.EffectNotify:
		recipients := []string{"tenant-" + b.Tenant + "-bookings"}
		payload := map[string]string{
			"bookingId": b.ID,
			"note":      eff.Note,
		}
		return s.Notifier.Send(ctx, string(eff.Notify), recipients, payload)
	}
	return fmt.Errorf("unknown effect kind: %s", eff.Kind)
}
