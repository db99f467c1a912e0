package models

import "time"

// ConversationState is the stage a call session has reached.
type ConversationState string

const (
	StateGreeting             ConversationState = "greeting"
	StateCollectingInfo       ConversationState = "collecting_info"
	StateCheckingAvailability ConversationState = "checking_availability"
	StateConfirmingBooking    ConversationState = "confirming_booking"
	StateCompleted            ConversationState = "completed"
	StateCancelled            ConversationState = "cancelled"
	StateExpired              ConversationState = "expired"
)

// Terminal reports whether the state admits no further transitions.
func (s ConversationState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateExpired
}

// CallSession is the mutable state of one in-progress conversation. Owned
// exclusively by the session store and mutated only through its operations.
type CallSession struct {
	CallID        string            `json:"callId"`
	CustomerPhone string            `json:"customerPhone"`
	Customer      CustomerInfo      `json:"customerInfo"`
	State         ConversationState `json:"conversationState"`
	SelectedSlot  *TimeSlot         `json:"selectedSlot,omitempty"`
	AppointmentID string            `json:"appointmentId,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastActivity  time.Time         `json:"lastActivity"`
}

// SessionSummary is the read-only view of a session handed to callers.
type SessionSummary struct {
	CallID        string            `json:"callId"`
	CustomerPhone string            `json:"customerPhone"`
	State         ConversationState `json:"conversationState"`
	Customer      CustomerInfo      `json:"customerInfo"`
	SelectedSlot  *TimeSlot         `json:"selectedSlot,omitempty"`
	AppointmentID string            `json:"appointmentId,omitempty"`
	LastActivity  time.Time         `json:"lastActivity"`
	SessionAge    time.Duration     `json:"sessionAge"`
}

// StateSummary describes the conversation stage and the agent's next action.
type StateSummary struct {
	State         ConversationState `json:"state"`
	Message       string            `json:"message"`
	NextAction    string            `json:"nextAction"`
	RequiredInfo  []string          `json:"requiredInfo"`
	SelectedSlot  *TimeSlot         `json:"selectedSlot,omitempty"`
	AppointmentID string            `json:"appointmentId,omitempty"`
}
