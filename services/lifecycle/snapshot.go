package lifecycle

import (
	"time"

	"roomlift/models"
)

// Snapshot is the serializable representation of an actor: the machine id,
// the current state value, and the booking context. Between event-processing
// calls, ownership of the context transfers to the persisted snapshot.
type Snapshot struct {
	MachineID      string
	LastTransition time.Time
	Status         string
	Value          StateValue
	Context        models.BookingContext
	HistoryValue   map[string]interface{}
	Children       map[string]interface{}
}

// Encode flattens a snapshot into a storage-neutral nested map. Absent
// optional fields are dropped recursively; the target store does not support
// an undefined marker. Field names are fixed for compatibility.
func Encode(s Snapshot) map[string]interface{} {
	history := s.HistoryValue
	if history == nil {
		history = map[string]interface{}{}
	}
	children := s.Children
	if children == nil {
		children = map[string]interface{}{}
	}
	return map[string]interface{}{
		"machineId":      s.MachineID,
		"lastTransition": s.LastTransition.UTC().Format(time.RFC3339Nano),
		"snapshot": map[string]interface{}{
			"status":       s.Status,
			"value":        encodeValue(s.Value),
			"historyValue": history,
			"context":      encodeContext(s.Context),
			"children":     children,
		},
	}
}

func encodeValue(v StateValue) interface{} {
	if !v.Composite() {
		return v.Name
	}
	regions := make(map[string]interface{}, len(v.Regions))
	for kind, sub := range v.Regions {
		regions[string(kind)] = sub
	}
	return regions
}

func encodeContext(c models.BookingContext) map[string]interface{} {
	doc := map[string]interface{}{
		"tenant":                     c.Tenant,
		"isWalkIn":                   c.IsWalkIn,
		"isVip":                      c.IsVip,
		"restoredFromExternalStatus": c.RestoredFromExternalStatus,
	}
	if c.CalendarEventID != "" {
		doc["calendarEventId"] = c.CalendarEventID
	}
	if c.Email != "" {
		doc["email"] = c.Email
	}
	if c.Role != "" {
		doc["role"] = c.Role
	}
	if len(c.SelectedRooms) > 0 {
		rooms := make([]interface{}, 0, len(c.SelectedRooms))
		for _, r := range c.SelectedRooms {
			room := map[string]interface{}{
				"id":                   r.ID,
				"autoApprovalEligible": r.AutoApprovalEligible,
			}
			if r.Name != "" {
				room["name"] = r.Name
			}
			rooms = append(rooms, room)
		}
		doc["selectedRooms"] = rooms
	}
	if flags := encodeServiceFlags(c.ServicesRequested); flags != nil {
		doc["servicesRequested"] = flags
	}
	if flags := encodeServiceFlags(c.ServicesApproved); flags != nil {
		doc["servicesApproved"] = flags
	}
	if flags := encodeServiceFlags(c.ServicesClosed); flags != nil {
		doc["servicesClosed"] = flags
	}
	return doc
}

// encodeServiceFlags keeps only set flags. A false entry reads the same as an
// absent one, so the encoded form is canonical and decode returns it unchanged.
func encodeServiceFlags(flags map[models.ServiceKind]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(flags))
	for kind, set := range flags {
		if set {
			out[string(kind)] = true
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Decode is the inverse of Encode. Unknown extra fields are ignored for
// forward compatibility; a structurally unusable document is a decode error
// and the caller must fall back to the legacy status path.
func Decode(doc map[string]interface{}) (Snapshot, error) {
	var s Snapshot

	machineID, ok := doc["machineId"].(string)
	if !ok || machineID == "" {
		return s, NewSnapshotError("missing or invalid machineId")
	}
	s.MachineID = machineID

	if raw, ok := doc["lastTransition"].(string); ok {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return s, NewSnapshotError("invalid lastTransition timestamp")
		}
		s.LastTransition = ts.UTC()
	}

	inner, ok := doc["snapshot"].(map[string]interface{})
	if !ok {
		return s, NewSnapshotError("missing snapshot body")
	}

	if status, ok := inner["status"].(string); ok {
		s.Status = status
	} else {
		s.Status = statusActive
	}

	value, err := decodeValue(inner["value"])
	if err != nil {
		return s, err
	}
	s.Value = value

	if rawCtx, ok := inner["context"].(map[string]interface{}); ok {
		s.Context = decodeContext(rawCtx)
	}

	s.HistoryValue = map[string]interface{}{}
	if history, ok := inner["historyValue"].(map[string]interface{}); ok {
		s.HistoryValue = history
	}
	s.Children = map[string]interface{}{}
	if children, ok := inner["children"].(map[string]interface{}); ok {
		s.Children = children
	}
	return s, nil
}

func decodeValue(raw interface{}) (StateValue, error) {
	switch v := raw.(type) {
	case string:
		if !isKnownLeaf(v) {
			return StateValue{}, NewSnapshotError("unknown state value: " + v)
		}
		return Leaf(v), nil
	case map[string]interface{}:
		if len(v) == 0 {
			return StateValue{}, NewSnapshotError("empty composite state value")
		}
		regions := make(map[models.ServiceKind]string, len(v))
		closeout := false
		for key, rawSub := range v {
			if !models.IsValidServiceKind(key) {
				return StateValue{}, NewSnapshotError("unknown service region: " + key)
			}
			sub, ok := rawSub.(string)
			if !ok {
				return StateValue{}, NewSnapshotError("invalid region sub-state for " + key)
			}
			regions[models.ServiceKind(key)] = sub
			if sub == RegionPending || sub == RegionClosed {
				closeout = true
			}
		}
		name := StateServicesRequest
		if closeout {
			name = StateServiceCloseout
		}
		return StateValue{Name: name, Regions: regions}, nil
	default:
		return StateValue{}, NewSnapshotError("missing or invalid state value")
	}
}

func decodeContext(doc map[string]interface{}) models.BookingContext {
	var c models.BookingContext
	c.Tenant, _ = doc["tenant"].(string)
	c.CalendarEventID, _ = doc["calendarEventId"].(string)
	c.Email, _ = doc["email"].(string)
	c.Role, _ = doc["role"].(string)
	c.IsWalkIn, _ = doc["isWalkIn"].(bool)
	c.IsVip, _ = doc["isVip"].(bool)
	c.RestoredFromExternalStatus, _ = doc["restoredFromExternalStatus"].(bool)

	if rawRooms, ok := doc["selectedRooms"].([]interface{}); ok {
		for _, rawRoom := range rawRooms {
			roomDoc, ok := rawRoom.(map[string]interface{})
			if !ok {
				continue
			}
			var room models.Room
			room.ID, _ = roomDoc["id"].(string)
			room.Name, _ = roomDoc["name"].(string)
			room.AutoApprovalEligible, _ = roomDoc["autoApprovalEligible"].(bool)
			c.SelectedRooms = append(c.SelectedRooms, room)
		}
	}

	c.ServicesRequested = decodeServiceFlags(doc["servicesRequested"])
	c.ServicesApproved = decodeServiceFlags(doc["servicesApproved"])
	c.ServicesClosed = decodeServiceFlags(doc["servicesClosed"])
	return c
}

func decodeServiceFlags(raw interface{}) map[models.ServiceKind]bool {
	doc, ok := raw.(map[string]interface{})
	if !ok || len(doc) == 0 {
		return nil
	}
	flags := make(map[models.ServiceKind]bool, len(doc))
	for key, rawSet := range doc {
		if !models.IsValidServiceKind(key) {
			continue
		}
		if set, ok := rawSet.(bool); ok && set {
			flags[models.ServiceKind(key)] = true
		}
	}
	if len(flags) == 0 {
		return nil
	}
	return flags
}
