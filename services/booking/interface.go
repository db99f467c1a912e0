package booking

import (
	"context"

	"autobook/models"

	appointmentRepo "autobook/database/repository/appointment"
)

// UpdateRequest carries the changes for an appointment reschedule. Zero
// values mean "leave unchanged".
type UpdateRequest struct {
	Date        string `json:"date,omitempty"`
	Start       int    `json:"start,omitempty"`
	Location    string `json:"location,omitempty"`
	ServiceType string `json:"serviceType,omitempty"`
}

// Coordinator orchestrates validate, re-check availability, reserve as an
// atomic unit and is the only writer of confirmed appointments.
type Coordinator interface {
	Book(ctx context.Context, callID string) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Get(ctx context.Context, appointmentID string) (*models.Appointment, error)
	List(ctx context.Context, f appointmentRepo.Filters) ([]models.Appointment, error)
	Update(ctx context.Context, appointmentID string, req UpdateRequest) (*models.Appointment, error)
	AvailableSlots(ctx context.Context, date, location, serviceTypeID string) ([]models.TimeSlot, error)
	Statistics(ctx context.Context, date, location string) (*models.DayStatistics, error)
}
