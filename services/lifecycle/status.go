package lifecycle

import (
	"roomlift/models"
	"roomlift/utils"

	"go.uber.org/zap"
)

// ResolveStatus derives the single display status label for a booking
// record. A decodable snapshot always wins; the legacy timestamp scan exists
// solely for records created before the engine and is never consulted when a
// snapshot is present and usable.
func ResolveStatus(b *models.Booking) string {
	if len(b.Snapshot) > 0 {
		snap, err := Decode(b.Snapshot)
		if err == nil {
			return LabelForValue(snap.Value)
		}
		utils.GetLogger().Warn("unusable booking snapshot, falling back to legacy status fields",
			zap.String("bookingId", b.ID),
			zap.Error(err))
	}
	return resolveLegacy(b)
}

// LabelForValue maps a state value to its display label. Leaf states map
// 1:1; composite values deliberately surface their own phase names
// ("Services Request", "Service Closeout") rather than collapsing to the
// nearest flat status, so callers can tell a pending-services booking apart
// from a plain approval.
func LabelForValue(v StateValue) string {
	return v.Name
}

// legacyCandidate pairs one historical timestamp field with its label. The
// slice order is the tie-break priority when timestamps compare equal.
type legacyCandidate struct {
	at    string
	label string
}

// resolveLegacy scans pre-engine timestamp fields in fixed priority. Among
// the post-approval timestamps the latest wins, with the declared order
// breaking textual ties.
func resolveLegacy(b *models.Booking) string {
	candidates := []legacyCandidate{
		{b.NoShowedAt, StateNoShow},
		{b.CanceledAt, StateCanceled},
		{b.CheckedOutAt, StateCheckedOut},
		{b.ClosedAt, StateClosed},
		{b.CheckedInAt, StateCheckedIn},
	}
	best := legacyCandidate{}
	for _, c := range candidates {
		if c.at == "" {
			continue
		}
		// ISO-8601 strings order chronologically; strictly-later wins, so an
		// equal timestamp keeps the earlier (higher priority) candidate.
		if best.at == "" || c.at > best.at {
			best = c
		}
	}
	if best.label != "" {
		return best.label
	}

	switch {
	case b.DeclinedAt != "":
		return StateDeclined
	case b.FinalApprovedAt != "":
		return StateApproved
	case b.FirstApprovedAt != "":
		return StatePreApproved
	case b.WalkedInAt != "":
		return StateApproved
	case b.RequestedAt != "":
		return StateRequested
	}
	return StatusUnknown
}
