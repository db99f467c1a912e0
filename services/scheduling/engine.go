package scheduling

import (
	"errors"

	"autobook/models"
)

// ErrInvalidServiceType is returned when an availability query names a
// service outside the catalog.
var ErrInvalidServiceType = errors.New("invalid service type")

// slotStepMinutes is the spacing of candidate slot starts.
const slotStepMinutes = 60

// AvailableSlots computes the conflict-free slot set for one day at one
// location. It is a pure function of its inputs so the booking coordinator
// can re-run it at commit time against the current appointment set: no
// cached state, identical inputs always yield identical ordered output.
//
// Candidate starts run hourly from hours.Start through
// hours.LastAppointmentStart inclusive; a candidate is dropped when its end
// (start + active duration + wrap-up) would pass hours.ClosingTime. Only
// confirmed appointments at the same date and location block a candidate,
// using half-open overlap semantics so back-to-back bookings are allowed.
func AvailableSlots(date, location, serviceTypeID string, existing []models.Appointment, hours models.BusinessHours) ([]models.TimeSlot, error) {
	service, ok := models.ServiceTypeByID(serviceTypeID)
	if !ok {
		return nil, ErrInvalidServiceType
	}
	total := service.TotalDuration()

	var blocking []models.TimeSlot
	for _, appt := range existing {
		if appt.Date == date && appt.Location == location && appt.Status == models.StatusConfirmed {
			blocking = append(blocking, appt.Interval())
		}
	}

	slots := make([]models.TimeSlot, 0)
	for start := hours.Start; start <= hours.LastAppointmentStart; start += slotStepMinutes {
		end := start + total
		if end > hours.ClosingTime {
			continue
		}
		candidate := models.TimeSlot{Start: start, End: end, Available: true}

		conflict := false
		for _, b := range blocking {
			if models.Overlaps(candidate, b) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, candidate)
		}
	}
	return slots, nil
}

// SlotCapacity returns the number of candidate slots a day offers for the
// given service before any conflict filtering, used for utilization stats.
func SlotCapacity(serviceTypeID string, hours models.BusinessHours) (int, error) {
	service, ok := models.ServiceTypeByID(serviceTypeID)
	if !ok {
		return 0, ErrInvalidServiceType
	}
	total := service.TotalDuration()

	count := 0
	for start := hours.Start; start <= hours.LastAppointmentStart; start += slotStepMinutes {
		if start+total <= hours.ClosingTime {
			count++
		}
	}
	return count, nil
}
