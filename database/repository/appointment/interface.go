package appointmentRepo

import (
	"context"
	"errors"

	"autobook/models"
)

// ErrNotFound is returned when no appointment matches the given id.
var ErrNotFound = errors.New("appointment not found")

// Filters narrows a List call. Zero-value fields are ignored.
type Filters struct {
	Date         string
	Location     string
	Status       string
	ServiceType  string
	CustomerName string
}

// Repository is the durable record-store port for appointments, keyed by
// appointment id. The booking coordinator is the only writer of confirmed
// appointments; everything else reads.
type Repository interface {
	Create(ctx context.Context, appt models.Appointment) (string, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Update(ctx context.Context, appt models.Appointment) error
	ListByDateLocation(ctx context.Context, date, location string) ([]models.Appointment, error)
	List(ctx context.Context, f Filters) ([]models.Appointment, error)
}
