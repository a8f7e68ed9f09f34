package enums

import (
	"fmt"
	"strings"
)

// ReservationStatus tracks the moderation state of a table booking.
type ReservationStatus string

const (
	ReservationStatusPending  ReservationStatus = "pending"
	ReservationStatusAccepted ReservationStatus = "accepted"
	ReservationStatusRejected ReservationStatus = "rejected"
)

// ReservationStatusAll is the filter value meaning "any status".
const ReservationStatusAll = "all"

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusAccepted,
	ReservationStatusRejected,
}

func (s ReservationStatus) String() string {
	return string(s)
}

func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusAccepted || s == ReservationStatusRejected
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validReservationStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}

// ParseReservationStatusFilter parses a listing filter. An empty value or
// ReservationStatusAll yields nil.
func ParseReservationStatusFilter(value string) (*ReservationStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" || normalized == ReservationStatusAll {
		return nil, nil
	}
	status, err := ParseReservationStatus(normalized)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
