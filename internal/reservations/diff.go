package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/pkg/patch"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

// ItemPatch is an edit session over one reservation item. Untouched fields
// are never sent; Diff compares against the capture taken when the edit
// started, not against whatever the server holds now.
type ItemPatch struct {
	Quantity  patch.Field[int]
	ProjectID patch.Field[uuid.UUID]
	ExpiresAt patch.Field[time.Time]
	Notes     patch.Field[string]
}

// Diff builds the wire payload for the edit. Keys are present only for
// fields that actually changed; an explicit null clears an optional field.
func (p ItemPatch) Diff(original remote.ReservationItem) patch.Payload {
	out := patch.NewPayload()
	patch.DiffScalar(out, "quantity", original.Quantity, p.Quantity)
	patch.DiffOptional(out, "projectId", original.ProjectID, p.ProjectID)
	diffTime(out, "expiresAt", original.ExpiresAt, p.ExpiresAt)
	patch.DiffOptional(out, "notes", original.Notes, p.Notes)
	return out
}

// ItemQuantityChange is one per-item quantity override inside a group edit.
type ItemQuantityChange struct {
	ReservationID uuid.UUID `json:"reservationId"`
	Quantity      int       `json:"quantity"`
}

// GroupPatch is an edit session over a group's shared fields plus optional
// per-item quantity overrides.
type GroupPatch struct {
	ProjectID      patch.Field[uuid.UUID]
	ExpiresAt      patch.Field[time.Time]
	Notes          patch.Field[string]
	ItemQuantities map[uuid.UUID]int
}

// Diff builds the wire payload for the group edit. Item quantities equal to
// the captured value are dropped; the "items" key is present only when at
// least one quantity actually changed.
func (p GroupPatch) Diff(original remote.ReservationGroup) patch.Payload {
	out := patch.NewPayload()
	patch.DiffOptional(out, "projectId", original.ProjectID, p.ProjectID)
	diffTime(out, "expiresAt", original.ExpiresAt, p.ExpiresAt)
	patch.DiffOptional(out, "notes", original.Notes, p.Notes)

	changes := make([]ItemQuantityChange, 0, len(p.ItemQuantities))
	for _, item := range original.Items {
		next, ok := p.ItemQuantities[item.ID]
		if !ok || next == item.Quantity {
			continue
		}
		changes = append(changes, ItemQuantityChange{ReservationID: item.ID, Quantity: next})
	}
	if len(changes) > 0 {
		out["items"] = changes
	}
	return out
}

// diffTime mirrors patch.DiffOptional for timestamps, comparing with Equal
// so wall-clock-identical instants in different locations do not produce a
// spurious diff.
func diffTime(p patch.Payload, key string, original *time.Time, edited patch.Field[time.Time]) {
	if edited.Cleared() {
		if original != nil {
			p[key] = nil
		}
		return
	}
	value, ok := edited.Value()
	if !ok {
		return
	}
	if original != nil && original.Equal(value) {
		return
	}
	p[key] = value.UTC()
}
