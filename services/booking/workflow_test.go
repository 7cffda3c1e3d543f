package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "roomlift/database/repository/booking"
	"roomlift/models"
	"roomlift/services/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingRepo struct {
	mu              sync.Mutex
	bookings        map[string]*models.Booking
	updateCalls     int
	injectConflicts int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*models.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.CreatedAt = time.Now()
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) UpdateSnapshot(_ context.Context, id string, snapshot map[string]interface{}, fromRevision int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if r.injectConflicts > 0 {
		r.injectConflicts--
		// Simulate another writer winning the race.
		b.Revision++
		return bookingRepo.ErrRevisionConflict
	}
	if b.Revision != fromRevision {
		return bookingRepo.ErrRevisionConflict
	}
	b.Snapshot = snapshot
	b.Revision++
	return nil
}

func (r *fakeBookingRepo) ListNoShowCandidates(_ context.Context, _ time.Time, _ []string) ([]models.Booking, error) {
	return nil, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.BookingLogEntry
}

func (r *fakeAuditRepo) Append(_ context.Context, entry models.BookingLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListByBooking(_ context.Context, bookingID string) ([]models.BookingLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BookingLogEntry
	for _, e := range r.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) statuses(bookingID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.BookingID == bookingID {
			out = append(out, e.Status)
		}
	}
	return out
}

type fakeTenantService struct {
	cfg models.TenantConfig
}

func (s *fakeTenantService) GetConfig(_ context.Context, _ string) (*models.TenantConfig, error) {
	cfg := s.cfg
	return &cfg, nil
}

func (s *fakeTenantService) RoomEligibility(_ context.Context, _, roomID string) (bool, error) {
	return s.cfg.RoomEligibility(roomID), nil
}

func (s *fakeTenantService) Rules(_ context.Context, _ string) (models.TenantRules, error) {
	return models.TenantRules{UsesServiceWorkflow: s.cfg.UsesServiceWorkflow}, nil
}

type fakeCalendar struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (c *fakeCalendar) SetStatusPrefix(_ context.Context, eventID, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, eventID+"|"+label)
	if c.fail {
		return fmt.Errorf("calendar unavailable")
	}
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *fakeNotifier) Send(_ context.Context, kind string, _ []string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	return nil
}

type fakeLocker struct {
	mu       sync.Mutex
	acquired int
}

func (l *fakeLocker) Acquire(_ context.Context, _ string) (func(), error) {
	l.mu.Lock()
	l.acquired++
	l.mu.Unlock()
	return func() {}, nil
}

type testEnv struct {
	svc      *DefaultWorkflowService
	repo     *fakeBookingRepo
	audit    *fakeAuditRepo
	calendar *fakeCalendar
	notifier *fakeNotifier
	locker   *fakeLocker
}

func newTestEnv(cfg models.TenantConfig) *testEnv {
	env := &testEnv{
		repo:     newFakeBookingRepo(),
		audit:    &fakeAuditRepo{},
		calendar: &fakeCalendar{},
		notifier: &fakeNotifier{},
		locker:   &fakeLocker{},
	}
	env.svc = &DefaultWorkflowService{
		Repo:      env.repo,
		AuditRepo: env.audit,
		Tenants:   &fakeTenantService{cfg: cfg},
		Calendar:  env.calendar,
		Notifier:  env.notifier,
		Locker:    env.locker,
	}
	return env
}

func basicTenant() models.TenantConfig {
	return models.TenantConfig{
		Tenant: "acme",
		Rooms: []models.RoomConfig{
			{ID: "atrium", AutoApprovalEligible: true},
			{ID: "annex", AutoApprovalEligible: false},
		},
	}
}

func serviceTenant() models.TenantConfig {
	cfg := basicTenant()
	cfg.UsesServiceWorkflow = true
	return cfg
}

func TestCreateBookingAutoApproves(t *testing.T) {
	env := newTestEnv(basicTenant())

	b, status, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:          "acme",
		Email:           "guest@example.com",
		RoomIDs:         []string{"atrium"},
		CalendarEventID: "cal-1",
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateApproved, status)
	require.NotNil(t, b)
	assert.NotEmpty(t, b.Snapshot)

	assert.Equal(t, []string{lifecycle.StateApproved}, env.audit.statuses(b.ID))
	assert.Equal(t, []string{"cal-1|" + lifecycle.StateApproved}, env.calendar.calls)
	assert.Equal(t, []string{"approved"}, env.notifier.kinds)
}

func TestCreateBookingIneligibleRoomQueued(t *testing.T) {
	env := newTestEnv(basicTenant())

	b, status, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:  "acme",
		Email:   "guest@example.com",
		RoomIDs: []string{"atrium", "annex"},
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateRequested, status)
	assert.Equal(t, []string{lifecycle.StateRequested}, env.audit.statuses(b.ID))
	assert.Empty(t, env.calendar.calls)
}

func TestCreateBookingServicesTenant(t *testing.T) {
	env := newTestEnv(serviceTenant())

	_, status, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:   "acme",
		Email:    "guest@example.com",
		RoomIDs:  []string{"atrium"},
		IsWalkIn: true,
		Services: []models.ServiceKind{models.ServiceCleaning, models.ServiceSetup},
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateServicesRequest, status)
}

func TestDispatchEventAdvancesAndAudits(t *testing.T) {
	env := newTestEnv(basicTenant())
	b, _, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:  "acme",
		RoomIDs: []string{"annex"},
	})
	require.NoError(t, err)

	status, err := env.svc.DispatchEvent(context.Background(), b.ID, lifecycle.EventApprove, "staff@acme.test")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatePreApproved, status)
	assert.Equal(t, 1, env.locker.acquired)

	entries, err := env.audit.ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "staff@acme.test", entries[1].Actor)
	assert.Equal(t, lifecycle.StatePreApproved, entries[1].Status)
}

func TestDispatchInvalidEventIsNoOp(t *testing.T) {
	env := newTestEnv(basicTenant())
	b, _, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:  "acme",
		RoomIDs: []string{"atrium"},
	})
	require.NoError(t, err)

	before, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)

	status, err := env.svc.DispatchEvent(context.Background(), b.ID, lifecycle.EventDecline, "staff@acme.test")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateApproved, status)

	after, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Revision, after.Revision)
	// Only the creation entry exists; no-ops write nothing.
	assert.Len(t, env.audit.statuses(b.ID), 1)
}

func TestDispatchRetriesOnRevisionConflict(t *testing.T) {
	env := newTestEnv(basicTenant())
	b, _, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:  "acme",
		RoomIDs: []string{"annex"},
	})
	require.NoError(t, err)

	env.repo.injectConflicts = 1
	status, err := env.svc.DispatchEvent(context.Background(), b.ID, lifecycle.EventApprove, "staff@acme.test")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatePreApproved, status)
	assert.Equal(t, 2, env.repo.updateCalls)
}

func TestDispatchLegacyRecordRejected(t *testing.T) {
	env := newTestEnv(basicTenant())
	legacy := &models.Booking{
		ID:          "legacy-1",
		Tenant:      "acme",
		CheckedInAt: "2024-01-10T10:00:00Z",
	}
	require.NoError(t, env.repo.Create(context.Background(), legacy))

	_, err := env.svc.DispatchEvent(context.Background(), legacy.ID, lifecycle.EventApprove, "staff@acme.test")
	require.Error(t, err)
	var wfErr *WorkflowError
	require.True(t, errors.As(err, &wfErr))
	assert.Equal(t, "legacyRecordError", wfErr.Code)
}

func TestDispatchCalendarFailureDoesNotBlockTransition(t *testing.T) {
	env := newTestEnv(basicTenant())
	env.calendar.fail = true

	b, _, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:          "acme",
		RoomIDs:         []string{"annex"},
		CalendarEventID: "cal-9",
	})
	require.NoError(t, err)

	_, err = env.svc.DispatchEvent(context.Background(), b.ID, lifecycle.EventApprove, "staff@acme.test")
	require.NoError(t, err)
	status, err := env.svc.DispatchEvent(context.Background(), b.ID, lifecycle.EventApprove, "staff@acme.test")
	require.NoError(t, err)

	// The calendar collaborator failed; the transition still committed.
	assert.Equal(t, lifecycle.StateApproved, status)
	resolved, err := env.svc.Status(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateApproved, resolved)
}

func TestStatusFallsBackForLegacyRecords(t *testing.T) {
	env := newTestEnv(basicTenant())
	legacy := &models.Booking{
		ID:         "legacy-2",
		Tenant:     "acme",
		NoShowedAt: "2024-01-10T10:00:00Z",
	}
	require.NoError(t, env.repo.Create(context.Background(), legacy))

	status, err := env.svc.Status(context.Background(), legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateNoShow, status)
}

func TestAvailableActions(t *testing.T) {
	env := newTestEnv(serviceTenant())
	b, _, err := env.svc.CreateBooking(context.Background(), CreateBookingInput{
		Tenant:   "acme",
		RoomIDs:  []string{"atrium"},
		IsWalkIn: true,
		Services: []models.ServiceKind{models.ServiceCatering},
	})
	require.NoError(t, err)

	actions, err := env.svc.AvailableActions(context.Background(), b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"cancel",
		"approveCatering",
		"declineCatering",
	}, actions)
}
