package scheduling

import (
	"testing"

	"autobook/models"
)

func confirmed(date, location string, start, end int) models.Appointment {
	return models.Appointment{
		Date:     date,
		Start:    start,
		End:      end,
		Location: location,
		Status:   models.StatusConfirmed,
	}
}

func TestAvailableSlotsFullDay(t *testing.T) {
	slots, err := AvailableSlots("2026-09-01", "downtown", "oil_change", nil, models.DefaultBusinessHours())
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("expected 9 slots for an empty day, got %d", len(slots))
	}
	if slots[0].Start != 480 {
		t.Errorf("first slot start = %d, want 480 (08:00)", slots[0].Start)
	}
	if last := slots[len(slots)-1]; last.Start != 960 || last.End != 1020 {
		t.Errorf("last slot = %d-%d, want 960-1020 (16:00-17:00)", last.Start, last.End)
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Start <= slots[i-1].Start {
			t.Fatalf("slots not strictly ascending at index %d", i)
		}
	}
}

func TestAvailableSlotsFiltersConflicts(t *testing.T) {
	hours := models.DefaultBusinessHours()
	existing := []models.Appointment{
		confirmed("2026-09-01", "downtown", 540, 600), // 09:00-10:00
	}

	slots, err := AvailableSlots("2026-09-01", "downtown", "oil_change", existing, hours)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots with one booking, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Start == 540 {
			t.Errorf("booked 09:00 slot still offered")
		}
	}
	// Back-to-back 08:00-09:00 and 10:00-11:00 must both survive.
	var have8, have10 bool
	for _, s := range slots {
		if s.Start == 480 {
			have8 = true
		}
		if s.Start == 600 {
			have10 = true
		}
	}
	if !have8 || !have10 {
		t.Errorf("adjacent slots dropped: 08:00 present=%v 10:00 present=%v", have8, have10)
	}
}

func TestAvailableSlotsIgnoresOtherDaysAndStatuses(t *testing.T) {
	hours := models.DefaultBusinessHours()
	existing := []models.Appointment{
		confirmed("2026-09-02", "downtown", 540, 600),    // different day
		confirmed("2026-09-01", "north_york", 540, 600),  // different location
		{Date: "2026-09-01", Start: 540, End: 600, Location: "downtown", Status: models.StatusCancelled},
	}

	slots, err := AvailableSlots("2026-09-01", "downtown", "oil_change", existing, hours)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("expected 9 slots, got %d: other-day, other-location, and cancelled records must not block", len(slots))
	}
}

func TestAvailableSlotsSameInputsSameOutput(t *testing.T) {
	hours := models.DefaultBusinessHours()
	existing := []models.Appointment{
		confirmed("2026-09-01", "downtown", 480, 540),
		confirmed("2026-09-01", "downtown", 960, 1020),
	}

	first, err := AvailableSlots("2026-09-01", "downtown", "tire_rotation", existing, hours)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	second, err := AvailableSlots("2026-09-01", "downtown", "tire_rotation", existing, hours)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("repeat run changed slot count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeat run changed slot %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAvailableSlotsEmptyServiceDefaults(t *testing.T) {
	slots, err := AvailableSlots("2026-09-01", "downtown", "", nil, models.DefaultBusinessHours())
	if err != nil {
		t.Fatalf("empty service type should fall back to the default: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("expected 9 slots under the default service, got %d", len(slots))
	}
}

func TestAvailableSlotsUnknownService(t *testing.T) {
	if _, err := AvailableSlots("2026-09-01", "downtown", "detailing", nil, models.DefaultBusinessHours()); err != ErrInvalidServiceType {
		t.Fatalf("err = %v, want ErrInvalidServiceType", err)
	}
}

func TestAvailableSlotsWindowTooNarrow(t *testing.T) {
	// A day too short to fit even one 60-minute slot yields an empty
	// sequence, not an error.
	narrow := models.BusinessHours{Start: 480, LastAppointmentStart: 480, ClosingTime: 500}
	slots, err := AvailableSlots("2026-09-01", "downtown", "oil_change", nil, narrow)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots in a 20-minute day, got %d", len(slots))
	}

	n, err := SlotCapacity("oil_change", narrow)
	if err != nil {
		t.Fatalf("SlotCapacity: %v", err)
	}
	if n != 0 {
		t.Fatalf("capacity = %d, want 0", n)
	}
}

func TestSlotCapacity(t *testing.T) {
	n, err := SlotCapacity("oil_change", models.DefaultBusinessHours())
	if err != nil {
		t.Fatalf("SlotCapacity: %v", err)
	}
	if n != 9 {
		t.Fatalf("capacity = %d, want 9", n)
	}

	// A shorter day trims the tail candidates whose end would pass close.
	short := models.BusinessHours{Start: 480, LastAppointmentStart: 960, ClosingTime: 990}
	n, err = SlotCapacity("oil_change", short)
	if err != nil {
		t.Fatalf("SlotCapacity: %v", err)
	}
	if n != 8 {
		t.Fatalf("capacity with 16:30 close = %d, want 8", n)
	}
}
