package enums

import "fmt"

// ReservationStatus tracks the per-item lifecycle of a reservation.
type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "RESERVED"
	ReservationStatusFulfilled ReservationStatus = "FULFILLED"
	ReservationStatusReleased  ReservationStatus = "RELEASED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusReserved,
	ReservationStatusFulfilled,
	ReservationStatusReleased,
	ReservationStatusCancelled,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
// RESERVED is the only live state; everything else is final.
func (s ReservationStatus) IsTerminal() bool {
	return s.IsValid() && s != ReservationStatusReserved
}

// CanRelease reports whether a client may request the RESERVED -> RELEASED
// transition from this status. The client never requests any other transition;
// FULFILLED and CANCELLED are applied server-side only.
func (s ReservationStatus) CanRelease() bool {
	return s == ReservationStatusReserved
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
