package session

import (
	"context"
	"errors"
	"time"

	"autobook/models"
)

var (
	// ErrSessionNotFound is returned when no active session has the call id.
	ErrSessionNotFound = errors.New("call session not found")
	// ErrDuplicateSession is returned when a session for the call id already exists.
	ErrDuplicateSession = errors.New("call session already exists")
	// ErrAlreadyBooked is returned when a session already holds an appointment.
	ErrAlreadyBooked = errors.New("session already has a booked appointment")
	// ErrSlotNotSelectable is returned when a slot is chosen on a finished session.
	ErrSlotNotSelectable = errors.New("session is not accepting a slot selection")
)

// Service is the concurrent registry of in-progress call sessions.
// Operations on distinct sessions never block each other; operations on the
// same session are serialized so near-simultaneous webhook deliveries can
// never produce a torn merge.
type Service interface {
	Create(callID, customerPhone string) (models.SessionSummary, error)
	Get(callID string) (models.SessionSummary, error)
	MergeInfo(callID string, update models.CustomerInfo, force bool) (models.SessionSummary, error)
	RequiredFieldsComplete(callID string) (bool, error)
	MissingFields(callID string) ([]string, error)
	SelectSlot(callID string, slot models.TimeSlot) (models.SessionSummary, error)
	RecordAppointment(callID, appointmentID string) error
	StateSummary(callID string) models.StateSummary
	End(callID string)
	ExpireInactive(now time.Time) int
	ReconcileDuplicates(customerPhone string) (models.SessionSummary, error)
	ListActive() []models.SessionSummary

	// Run sweeps expired sessions on the configured cadence until ctx ends.
	Run(ctx context.Context, interval time.Duration)
}
