package lifecycle

import (
	"testing"

	"roomlift/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	basicRules   = models.TenantRules{}
	serviceRules = models.TenantRules{UsesServiceWorkflow: true}
)

func effectKinds(effects []Effect) []EffectKind {
	kinds := make([]EffectKind, 0, len(effects))
	for _, e := range effects {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestStartAutoApprovesEligibleBooking(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		Email:         "guest@example.com",
		SelectedRooms: eligibleRooms(1),
	}
	actor, effects := Start(ctx, basicRules)

	assert.Equal(t, StateApproved, actor.Value().Name)
	assert.Equal(t, []EffectKind{EffectAudit, EffectCalendar, EffectNotify}, effectKinds(effects))
}

func TestStartQueuesIneligibleBookingForReview(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: []models.Room{{ID: "b"}},
	}
	actor, effects := Start(ctx, basicRules)

	assert.Equal(t, StateRequested, actor.Value().Name)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectAudit, effects[0].Kind)
	assert.Equal(t, StateRequested, effects[0].Label)

	// Two-step manual approval: Requested -> Pre-approved -> Approved.
	actor.Send(EventApprove)
	assert.Equal(t, StatePreApproved, actor.Value().Name)
	actor.Send(EventApprove)
	assert.Equal(t, StateApproved, actor.Value().Name)
}

func TestStartWalkInWithServicesEntersServicesRequest(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
		IsWalkIn:      true,
		ServicesRequested: map[models.ServiceKind]bool{
			models.ServiceCatering: true,
			models.ServiceSecurity: true,
		},
	}
	actor, _ := Start(ctx, serviceRules)

	value := actor.Value()
	assert.Equal(t, StateServicesRequest, value.Name)
	require.True(t, value.Composite())
	assert.Equal(t, RegionRequested, value.Regions[models.ServiceCatering])
	assert.Equal(t, RegionRequested, value.Regions[models.ServiceSecurity])
}

func TestStartRestoredBookingNeverReapproved(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:                     "acme",
		SelectedRooms:              eligibleRooms(1),
		RestoredFromExternalStatus: true,
	}
	actor, _ := Start(ctx, basicRules)
	assert.Equal(t, StateRequested, actor.Value().Name)
}

func TestServiceApprovalsExitCompositeInAnyOrder(t *testing.T) {
	orders := [][]models.ServiceKind{
		{models.ServiceCleaning, models.ServiceSetup},
		{models.ServiceSetup, models.ServiceCleaning},
	}
	for _, order := range orders {
		ctx := models.BookingContext{
			Tenant:        "acme",
			SelectedRooms: eligibleRooms(1),
			IsWalkIn:      true,
			IsVip:         true,
			ServicesRequested: map[models.ServiceKind]bool{
				models.ServiceCleaning: true,
				models.ServiceSetup:    true,
			},
		}
		actor, _ := Start(ctx, serviceRules)
		require.Equal(t, StateServicesRequest, actor.Value().Name)

		actor.Send(ApproveServiceEvent(order[0]))
		assert.Equal(t, StateServicesRequest, actor.Value().Name)

		effects := actor.Send(ApproveServiceEvent(order[1]))
		assert.Equal(t, StateApproved, actor.Value().Name)
		assert.False(t, actor.Value().Composite())
		// Exiting into plain Approved fires the approval entry actions.
		assert.Contains(t, effectKinds(effects), EffectCalendar)
		assert.Contains(t, effectKinds(effects), EffectNotify)
	}
}

func TestApproveUnrequestedServiceIsNoOp(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
		IsWalkIn:      true,
		ServicesRequested: map[models.ServiceKind]bool{
			models.ServiceStaff: true,
		},
	}
	actor, _ := Start(ctx, serviceRules)

	effects := actor.Send(ApproveServiceEvent(models.ServiceEquipment))
	assert.Empty(t, effects)
	assert.Equal(t, StateServicesRequest, actor.Value().Name)
	assert.False(t, actor.Context().ServicesApproved[models.ServiceEquipment])
}

func TestDeclinedServiceCanBeReapproved(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
		IsWalkIn:      true,
		ServicesRequested: map[models.ServiceKind]bool{
			models.ServiceStaff: true,
		},
	}
	actor, _ := Start(ctx, serviceRules)

	actor.Send(DeclineServiceEvent(models.ServiceStaff))
	assert.Equal(t, StateServicesRequest, actor.Value().Name)
	assert.Equal(t, RegionDeclined, actor.Value().Regions[models.ServiceStaff])

	actor.Send(ApproveServiceEvent(models.ServiceStaff))
	assert.Equal(t, StateApproved, actor.Value().Name)
}

func TestCancelWhileServicesPending(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
		IsWalkIn:      true,
		ServicesRequested: map[models.ServiceKind]bool{
			models.ServiceSetup: true,
		},
	}
	actor, _ := Start(ctx, serviceRules)

	actor.Send(EventCancel)
	assert.Equal(t, StateCanceled, actor.Value().Name)
	assert.True(t, actor.Done())
}

func TestNoServicesCheckOutClosesImmediately(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
	}
	actor, _ := Start(ctx, basicRules)
	require.Equal(t, StateApproved, actor.Value().Name)

	actor.Send(EventCheckIn)
	assert.Equal(t, StateCheckedIn, actor.Value().Name)

	effects := actor.Send(EventCheckOut)
	assert.Equal(t, StateClosed, actor.Value().Name)
	assert.True(t, actor.Done())

	// Both the transient Checked Out entry and the Closed entry are logged.
	labels := make([]string, 0, len(effects))
	for _, e := range effects {
		if e.Kind == EffectAudit {
			labels = append(labels, e.Label)
		}
	}
	assert.Equal(t, []string{StateCheckedOut, StateClosed}, labels)
}

func TestServiceCloseoutRunsAfterCheckOut(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
		IsWalkIn:      true,
		ServicesRequested: map[models.ServiceKind]bool{
			models.ServiceEquipment: true,
			models.ServiceCatering:  true,
		},
	}
	actor, _ := Start(ctx, serviceRules)
	actor.Send(ApproveServiceEvent(models.ServiceEquipment))
	actor.Send(ApproveServiceEvent(models.ServiceCatering))
	require.Equal(t, StateApproved, actor.Value().Name)

	actor.Send(EventCheckIn)
	actor.Send(EventCheckOut)
	value := actor.Value()
	require.Equal(t, StateServiceCloseout, value.Name)
	assert.Equal(t, RegionPending, value.Regions[models.ServiceEquipment])
	assert.Equal(t, RegionPending, value.Regions[models.ServiceCatering])

	actor.Send(CloseoutServiceEvent(models.ServiceCatering))
	assert.Equal(t, StateServiceCloseout, actor.Value().Name)

	actor.Send(CloseoutServiceEvent(models.ServiceEquipment))
	assert.Equal(t, StateClosed, actor.Value().Name)
	assert.True(t, actor.Done())
}

func TestInvalidEventIsSilentNoOp(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
	}
	actor, _ := Start(ctx, basicRules)
	require.Equal(t, StateApproved, actor.Value().Name)

	effects := actor.Send(EventDecline)
	assert.Empty(t, effects)
	assert.Equal(t, StateApproved, actor.Value().Name)
}

func TestTerminalStateAcceptsNothing(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: []models.Room{{ID: "b"}},
	}
	actor, _ := Start(ctx, basicRules)
	actor.Send(EventDecline)
	require.Equal(t, StateDeclined, actor.Value().Name)

	for _, ev := range []Event{EventApprove, EventCancel, EventCheckIn, EventNoShow, EventClose} {
		effects := actor.Send(ev)
		assert.Empty(t, effects)
		assert.Equal(t, StateDeclined, actor.Value().Name)
	}
}

func TestNoShowFromApprovedAndCheckedIn(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
	}
	actor, _ := Start(ctx, basicRules)
	actor.Send(EventNoShow)
	assert.Equal(t, StateNoShow, actor.Value().Name)

	actor2, _ := Start(ctx, basicRules)
	actor2.Send(EventCheckIn)
	actor2.Send(EventNoShow)
	assert.Equal(t, StateNoShow, actor2.Value().Name)
}

func TestCanSendMatchesSendWithoutMutation(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: eligibleRooms(1),
		IsWalkIn:      true,
		ServicesRequested: map[models.ServiceKind]bool{
			models.ServiceCleaning: true,
		},
	}
	actor, _ := Start(ctx, serviceRules)
	require.Equal(t, StateServicesRequest, actor.Value().Name)

	assert.True(t, actor.CanSend(EventCancel))
	assert.True(t, actor.CanSend(ApproveServiceEvent(models.ServiceCleaning)))
	assert.True(t, actor.CanSend(DeclineServiceEvent(models.ServiceCleaning)))
	assert.False(t, actor.CanSend(ApproveServiceEvent(models.ServiceStaff)))
	assert.False(t, actor.CanSend(EventCheckIn))
	assert.False(t, actor.CanSend(EventApprove))

	// Introspection must not move the machine.
	assert.Equal(t, StateServicesRequest, actor.Value().Name)
}

func TestResumeDoesNotRerunInitialGuards(t *testing.T) {
	ctx := models.BookingContext{
		Tenant:        "acme",
		SelectedRooms: []models.Room{{ID: "b"}},
	}
	actor, _ := Start(ctx, basicRules)
	actor.Send(EventApprove)
	require.Equal(t, StatePreApproved, actor.Value().Name)

	resumed := Resume(actor.Snapshot())
	assert.Equal(t, StatePreApproved, resumed.Value().Name)

	resumed.Send(EventApprove)
	assert.Equal(t, StateApproved, resumed.Value().Name)
}
