package booking

import (
	"context"
	"fmt"

	"autobook/models"
	"autobook/services/scheduling"
)

// Statistics summarizes one day's confirmed bookings at a location: booked
// count against slot capacity, utilization, and a per-service breakdown.
func (c *DefaultCoordinator) Statistics(ctx context.Context, date, location string) (*models.DayStatistics, error) {
	if !models.ValidLocation(location) {
		return nil, ErrInvalidLocation
	}

	capacity, err := scheduling.SlotCapacity(models.DefaultServiceTypeID, c.Hours)
	if err != nil {
		return nil, err
	}

	appts, err := c.Repo.ListByDateLocation(ctx, date, location)
	if err != nil {
		return nil, err
	}

	booked := 0
	breakdown := make(map[string]int)
	for _, appt := range appts {
		if appt.Status != models.StatusConfirmed {
			continue
		}
		booked++
		breakdown[appt.ServiceType]++
	}

	utilization := 0.0
	if capacity > 0 {
		utilization = float64(booked) / float64(capacity) * 100
	}

	return &models.DayStatistics{
		Date:             date,
		Location:         location,
		TotalBooked:      booked,
		TotalSlots:       capacity,
		AvailableSlots:   capacity - booked,
		UtilizationRate:  fmt.Sprintf("%.1f%%", utilization),
		ServiceBreakdown: breakdown,
	}, nil
}
