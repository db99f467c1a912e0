package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	appointmentRepo "autobook/database/repository/appointment"
	"autobook/models"
	"autobook/services/reminder"
	"autobook/services/session"
)

// Fixed "today" for date-range validation: Tuesday 2026-09-01.
var testNow = time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

func newTestCoordinator(t *testing.T) (*DefaultCoordinator, *session.DefaultSessionService) {
	t.Helper()
	sessions := session.NewSessionService(30*time.Minute, zap.NewNop())
	c := NewCoordinator(appointmentRepo.NewMemoryRepo(), sessions, reminder.NopEnqueuer{}, models.DefaultBusinessHours(), zap.NewNop())
	c.Now = func() time.Time { return testNow }
	return c, sessions
}

func readySession(t *testing.T, sessions *session.DefaultSessionService, callID string, start int) {
	t.Helper()
	if _, err := sessions.Create(callID, "416-555-0134"); err != nil {
		t.Fatalf("Create session: %v", err)
	}
	_, err := sessions.MergeInfo(callID, models.CustomerInfo{
		Location:      "downtown",
		FullName:      "Sarah Chen",
		ServiceType:   "oil_change",
		PreferredDate: "2026-09-10",
		PreferredTime: start,
	}, false)
	if err != nil {
		t.Fatalf("MergeInfo: %v", err)
	}
}

func TestBookHappyPath(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	readySession(t, sessions, "call-1", 540)

	appt, err := c.Book(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.ID == "" {
		t.Fatalf("booked appointment has no id")
	}
	if appt.Start != 540 || appt.End != 600 {
		t.Errorf("slot = %d-%d, want 540-600", appt.Start, appt.End)
	}
	if appt.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", appt.Status)
	}

	sum, err := sessions.Get("call-1")
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if sum.State != models.StateCompleted || sum.AppointmentID != appt.ID {
		t.Errorf("session after booking = state %s appt %q", sum.State, sum.AppointmentID)
	}

	// The booked slot disappears from availability.
	slots, err := c.AvailableSlots(context.Background(), "2026-09-10", "downtown", "oil_change")
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	for _, s := range slots {
		if s.Start == 540 {
			t.Errorf("booked slot still offered")
		}
	}
	if len(slots) != 8 {
		t.Errorf("slots after one booking = %d, want 8", len(slots))
	}
}

func TestBookIncompleteInfo(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	sessions.Create("call-1", "416-555-0134")
	sessions.MergeInfo("call-1", models.CustomerInfo{FullName: "Sarah Chen"}, false)

	_, err := c.Book(context.Background(), "call-1")
	var incomplete IncompleteInfoError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteInfoError", err)
	}
	if len(incomplete.Missing) == 0 {
		t.Fatalf("IncompleteInfoError names no fields")
	}
}

func TestBookUnknownSession(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if _, err := c.Book(context.Background(), "ghost"); err != session.ErrSessionNotFound {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestBookTwiceSameSession(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	readySession(t, sessions, "call-1", 540)

	if _, err := c.Book(context.Background(), "call-1"); err != nil {
		t.Fatalf("first Book: %v", err)
	}
	if _, err := c.Book(context.Background(), "call-1"); err != session.ErrAlreadyBooked {
		t.Fatalf("second Book err = %v, want ErrAlreadyBooked", err)
	}
}

func TestBookDateRange(t *testing.T) {
	c, sessions := newTestCoordinator(t)

	for _, tt := range []struct {
		name string
		date string
	}{
		{"past", "2026-08-31"},
		{"beyond horizon", "2026-12-02"},
		{"malformed", "next tuesday"},
	} {
		callID := "call-" + tt.name
		sessions.Create(callID, "416-555-0134")
		sessions.MergeInfo(callID, models.CustomerInfo{
			Location: "downtown", FullName: "Sarah Chen",
			ServiceType: "oil_change", PreferredDate: tt.date, PreferredTime: 540,
		}, false)
		if _, err := c.Book(context.Background(), callID); err != ErrInvalidDateRange {
			t.Errorf("%s: err = %v, want ErrInvalidDateRange", tt.name, err)
		}
	}

	// Today and the horizon boundary itself are bookable.
	sessions.Create("today", "416-555-0134")
	sessions.MergeInfo("today", models.CustomerInfo{
		Location: "downtown", FullName: "Sarah Chen",
		ServiceType: "oil_change", PreferredDate: "2026-09-01", PreferredTime: 540,
	}, false)
	if _, err := c.Book(context.Background(), "today"); err != nil {
		t.Errorf("booking today: %v", err)
	}
	sessions.Create("edge", "416-555-0134")
	sessions.MergeInfo("edge", models.CustomerInfo{
		Location: "downtown", FullName: "Sarah Chen",
		ServiceType: "oil_change", PreferredDate: "2026-12-01", PreferredTime: 540,
	}, false)
	if _, err := c.Book(context.Background(), "edge"); err != nil {
		t.Errorf("booking at horizon edge: %v", err)
	}
}

func TestBookInvalidLocationAndService(t *testing.T) {
	c, sessions := newTestCoordinator(t)

	sessions.Create("bad-loc", "416-555-0134")
	sessions.MergeInfo("bad-loc", models.CustomerInfo{
		Location: "mississauga", FullName: "Sarah Chen",
		ServiceType: "oil_change", PreferredDate: "2026-09-10", PreferredTime: 540,
	}, false)
	if _, err := c.Book(context.Background(), "bad-loc"); err != ErrInvalidLocation {
		t.Errorf("err = %v, want ErrInvalidLocation", err)
	}
}

func TestConcurrentBookingsOneWinner(t *testing.T) {
	c, sessions := newTestCoordinator(t)

	const n = 8
	for i := 0; i < n; i++ {
		readySession(t, sessions, fmt.Sprintf("call-%d", i), 540)
	}

	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = c.Book(context.Background(), fmt.Sprintf("call-%d", i))
		}(i)
	}
	wg.Wait()

	wins, losses := 0, 0
	for i, err := range results {
		switch err {
		case nil:
			wins++
		case ErrSlotNoLongerAvailable:
			losses++
		default:
			t.Errorf("call-%d: unexpected err %v", i, err)
		}
	}
	if wins != 1 || losses != n-1 {
		t.Fatalf("wins=%d losses=%d, want exactly 1 winner", wins, losses)
	}

	appts, err := c.List(context.Background(), appointmentRepo.Filters{Date: "2026-09-10", Status: models.StatusConfirmed})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("confirmed appointments = %d, want 1", len(appts))
	}
}

func TestCancelFreesSlot(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	readySession(t, sessions, "call-1", 540)

	appt, err := c.Book(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	cancelled, err := c.Cancel(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	// Cancel is idempotent.
	if _, err := c.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("second Cancel: %v", err)
	}

	slots, err := c.AvailableSlots(context.Background(), "2026-09-10", "downtown", "oil_change")
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("slots after cancel = %d, want full 9", len(slots))
	}

	// The record survives for audit.
	got, err := c.Get(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("Get after cancel: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Errorf("retained record status = %s", got.Status)
	}

	// The session binding is permanent even after cancellation.
	if _, err := c.Book(context.Background(), "call-1"); err != session.ErrAlreadyBooked {
		t.Errorf("rebook after cancel err = %v, want ErrAlreadyBooked", err)
	}
}

func TestCancelUnknownAppointment(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if _, err := c.Cancel(context.Background(), "nope"); err != appointmentRepo.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateReschedules(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	readySession(t, sessions, "call-1", 540)
	appt, err := c.Book(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	moved, err := c.Update(context.Background(), appt.ID, UpdateRequest{Start: 660})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if moved.Start != 660 || moved.End != 720 {
		t.Errorf("moved slot = %d-%d, want 660-720", moved.Start, moved.End)
	}

	// Moving back onto its own original slot must not self-conflict.
	if _, err := c.Update(context.Background(), appt.ID, UpdateRequest{Start: 540}); err != nil {
		t.Fatalf("move back onto own slot: %v", err)
	}
}

func TestUpdateRejectsTakenSlot(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	readySession(t, sessions, "call-1", 540)
	readySession(t, sessions, "call-2", 660)

	first, err := c.Book(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("Book call-1: %v", err)
	}
	if _, err := c.Book(context.Background(), "call-2"); err != nil {
		t.Fatalf("Book call-2: %v", err)
	}

	if _, err := c.Update(context.Background(), first.ID, UpdateRequest{Start: 660}); err != ErrSlotNoLongerAvailable {
		t.Fatalf("err = %v, want ErrSlotNoLongerAvailable", err)
	}
}

func TestUpdateAcrossLocations(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	readySession(t, sessions, "call-1", 540)
	appt, err := c.Book(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	moved, err := c.Update(context.Background(), appt.ID, UpdateRequest{Location: "north_york", Start: 600})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if moved.Location != "north_york" || moved.Start != 600 {
		t.Errorf("moved = %s %d", moved.Location, moved.Start)
	}

	// Original location frees up.
	slots, err := c.AvailableSlots(context.Background(), "2026-09-10", "downtown", "oil_change")
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("downtown slots after move = %d, want 9", len(slots))
	}
}

func TestAvailableSlotsValidation(t *testing.T) {
	c, _ := newTestCoordinator(t)

	if _, err := c.AvailableSlots(context.Background(), "2026-09-10", "mississauga", "oil_change"); err != ErrInvalidLocation {
		t.Errorf("err = %v, want ErrInvalidLocation", err)
	}
	if _, err := c.AvailableSlots(context.Background(), "2026-08-01", "downtown", "oil_change"); err != ErrInvalidDateRange {
		t.Errorf("err = %v, want ErrInvalidDateRange", err)
	}
}

func TestStatistics(t *testing.T) {
	c, sessions := newTestCoordinator(t)

	stats, err := c.Statistics(context.Background(), "2026-09-10", "downtown")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalSlots != 9 || stats.TotalBooked != 0 || stats.AvailableSlots != 9 {
		t.Errorf("empty day stats = %+v", stats)
	}
	if stats.UtilizationRate != "0.0%" {
		t.Errorf("utilization = %q, want 0.0%%", stats.UtilizationRate)
	}

	readySession(t, sessions, "call-1", 540)
	if _, err := c.Book(context.Background(), "call-1"); err != nil {
		t.Fatalf("Book: %v", err)
	}
	appt2sess := "call-2"
	sessions.Create(appt2sess, "416-555-0135")
	sessions.MergeInfo(appt2sess, models.CustomerInfo{
		Location: "downtown", FullName: "Dev Patel",
		ServiceType: "tire_rotation", PreferredDate: "2026-09-10", PreferredTime: 660,
	}, false)
	cancelled, err := c.Book(context.Background(), appt2sess)
	if err != nil {
		t.Fatalf("Book call-2: %v", err)
	}
	appt3sess := "call-3"
	sessions.Create(appt3sess, "416-555-0136")
	sessions.MergeInfo(appt3sess, models.CustomerInfo{
		Location: "downtown", FullName: "Ana Costa",
		ServiceType: "tire_rotation", PreferredDate: "2026-09-10", PreferredTime: 780,
	}, false)
	if _, err := c.Book(context.Background(), appt3sess); err != nil {
		t.Fatalf("Book call-3: %v", err)
	}
	if _, err := c.Cancel(context.Background(), cancelled.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	stats, err = c.Statistics(context.Background(), "2026-09-10", "downtown")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalBooked != 2 || stats.AvailableSlots != 7 {
		t.Errorf("booked=%d available=%d, want 2/7", stats.TotalBooked, stats.AvailableSlots)
	}
	if stats.UtilizationRate != "22.2%" {
		t.Errorf("utilization = %q, want 22.2%%", stats.UtilizationRate)
	}
	if stats.ServiceBreakdown["oil_change"] != 1 || stats.ServiceBreakdown["tire_rotation"] != 1 {
		t.Errorf("breakdown = %v", stats.ServiceBreakdown)
	}

	if _, err := c.Statistics(context.Background(), "2026-09-10", "mississauga"); err != ErrInvalidLocation {
		t.Errorf("err = %v, want ErrInvalidLocation", err)
	}
}

func TestListFilters(t *testing.T) {
	c, sessions := newTestCoordinator(t)
	readySession(t, sessions, "call-1", 540)
	if _, err := c.Book(context.Background(), "call-1"); err != nil {
		t.Fatalf("Book: %v", err)
	}

	appts, err := c.List(context.Background(), appointmentRepo.Filters{CustomerName: "sarah"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("name filter matched %d, want 1", len(appts))
	}

	appts, err = c.List(context.Background(), appointmentRepo.Filters{Location: "north_york"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("location filter matched %d, want 0", len(appts))
	}
}
