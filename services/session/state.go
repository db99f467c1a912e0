package session

import "autobook/models"

// StateSummary describes where the conversation stands and what the voice
// agent should do next. Unknown sessions report an explanatory message
// instead of an error so the agent can recover gracefully mid-call.
func (s *DefaultSessionService) StateSummary(callID string) models.StateSummary {
	e, ok := s.lookup(callID)
	if !ok {
		return models.StateSummary{State: "unknown", Message: "Call session not found"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return models.StateSummary{State: "unknown", Message: "Call session not found"}
	}

	sess := e.sess
	switch sess.State {
	case models.StateGreeting:
		return models.StateSummary{
			State:        sess.State,
			Message:      "Welcome! I can help you book a service appointment.",
			NextAction:   "Ask for service type and location",
			RequiredInfo: []string{},
		}
	case models.StateCollectingInfo:
		return models.StateSummary{
			State:        sess.State,
			Message:      "I'm collecting your information to book the appointment.",
			NextAction:   "Continue gathering required information",
			RequiredInfo: sess.Customer.MissingRequired(),
		}
	case models.StateCheckingAvailability:
		return models.StateSummary{
			State:        sess.State,
			Message:      "I'm checking available appointment times.",
			NextAction:   "Present available time slots",
			RequiredInfo: []string{},
		}
	case models.StateConfirmingBooking:
		return models.StateSummary{
			State:        sess.State,
			Message:      "I'm ready to confirm your appointment.",
			NextAction:   "Confirm details and book appointment",
			RequiredInfo: []string{},
			SelectedSlot: sess.SelectedSlot,
		}
	case models.StateCompleted:
		return models.StateSummary{
			State:         sess.State,
			Message:       "Your appointment has been booked successfully!",
			NextAction:    "Provide confirmation details and end call",
			RequiredInfo:  []string{},
			AppointmentID: sess.AppointmentID,
		}
	default:
		return models.StateSummary{
			State:        sess.State,
			Message:      "This call session is no longer active.",
			NextAction:   "Start a new session",
			RequiredInfo: []string{},
		}
	}
}
