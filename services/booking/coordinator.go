package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"autobook/models"
	"autobook/services/reminder"
	"autobook/services/scheduling"
	"autobook/services/session"

	appointmentRepo "autobook/database/repository/appointment"
)

// DefaultCoordinator implements Coordinator. The contention point is the
// appointment set for one (date, location); a mutex per such pair makes the
// re-validate-then-insert step a critical section, so two concurrent
// bookings for the same slot resolve to one success and one
// ErrSlotNoLongerAvailable.
type DefaultCoordinator struct {
	Repo          appointmentRepo.Repository
	Sessions      session.Service
	Reminders     reminder.Enqueuer
	Hours         models.BusinessHours
	HorizonMonths int
	Logger        *zap.Logger
	Now           func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator wires a coordinator with the standard three-month horizon.
func NewCoordinator(repo appointmentRepo.Repository, sessions session.Service, reminders reminder.Enqueuer, hours models.BusinessHours, logger *zap.Logger) *DefaultCoordinator {
	return &DefaultCoordinator{
		Repo:          repo,
		Sessions:      sessions,
		Reminders:     reminders,
		Hours:         hours,
		HorizonMonths: 3,
		Logger:        logger,
		Now:           time.Now,
	}
}

// dayLock returns the mutex serializing bookings for one (date, location).
func (c *DefaultCoordinator) dayLock(date, location string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks == nil {
		c.locks = make(map[string]*sync.Mutex)
	}
	key := date + "|" + location
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// validateDate rejects past dates and dates beyond the booking horizon.
func (c *DefaultCoordinator) validateDate(date string) error {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return ErrInvalidDateRange
	}
	now := c.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return ErrInvalidDateRange
	}
	if day.After(today.AddDate(0, c.HorizonMonths, 0)) {
		return ErrInvalidDateRange
	}
	return nil
}

// AvailableSlots returns the conflict-free slots for the given day,
// location and service against the current confirmed appointment set.
func (c *DefaultCoordinator) AvailableSlots(ctx context.Context, date, location, serviceTypeID string) ([]models.TimeSlot, error) {
	if !models.ValidLocation(location) {
		return nil, ErrInvalidLocation
	}
	if err := c.validateDate(date); err != nil {
		return nil, err
	}
	existing, err := c.Repo.ListByDateLocation(ctx, date, location)
	if err != nil {
		return nil, err
	}
	return scheduling.AvailableSlots(date, location, serviceTypeID, existing, c.Hours)
}

// Book reserves the session's selected slot. It re-runs the availability
// engine against the current appointment set inside the day's critical
// section; a stale earlier availability check never leaks into a booking.
func (c *DefaultCoordinator) Book(ctx context.Context, callID string) (*models.Appointment, error) {
	sess, err := c.Sessions.Get(callID)
	if err != nil {
		return nil, err
	}

	if missing := sess.Customer.MissingRequired(); len(missing) > 0 {
		return nil, IncompleteInfoError{Missing: missing}
	}
	if sess.AppointmentID != "" {
		return nil, session.ErrAlreadyBooked
	}

	info := sess.Customer
	if _, ok := models.ServiceTypeByID(info.ServiceType); !ok {
		return nil, scheduling.ErrInvalidServiceType
	}
	if !models.ValidLocation(info.Location) {
		return nil, ErrInvalidLocation
	}
	if err := c.validateDate(info.PreferredDate); err != nil {
		return nil, err
	}

	lock := c.dayLock(info.PreferredDate, info.Location)
	lock.Lock()
	defer lock.Unlock()

	existing, err := c.Repo.ListByDateLocation(ctx, info.PreferredDate, info.Location)
	if err != nil {
		return nil, err
	}
	slots, err := scheduling.AvailableSlots(info.PreferredDate, info.Location, info.ServiceType, existing, c.Hours)
	if err != nil {
		return nil, err
	}

	var chosen *models.TimeSlot
	for i := range slots {
		if slots[i].Start == info.PreferredTime {
			chosen = &slots[i]
			break
		}
	}
	if chosen == nil {
		c.Logger.Info("selected slot gone at commit time",
			zap.String("callId", callID),
			zap.String("date", info.PreferredDate),
			zap.String("time", models.MinutesToClock(info.PreferredTime)))
		return nil, ErrSlotNoLongerAvailable
	}

	appt := models.Appointment{
		Date:        info.PreferredDate,
		Start:       chosen.Start,
		End:         chosen.End,
		Location:    info.Location,
		ServiceType: info.ServiceType,
		Customer:    info,
		Status:      models.StatusConfirmed,
		CreatedAt:   c.Now(),
	}
	id, err := c.Repo.Create(ctx, appt)
	if err != nil {
		return nil, err
	}
	appt.ID = id

	if err := c.Sessions.RecordAppointment(callID, id); err != nil {
		// Another commit for this call won the race after our early check.
		// Cancel the just-created appointment so the slot frees up again.
		appt.Status = models.StatusCancelled
		if undoErr := c.Repo.Update(ctx, appt); undoErr != nil {
			c.Logger.Error("failed to roll back double-committed appointment",
				zap.String("appointmentId", id), zap.Error(undoErr))
		}
		return nil, err
	}

	c.Logger.Info("appointment booked",
		zap.String("appointmentId", id),
		zap.String("callId", callID),
		zap.String("date", appt.Date),
		zap.String("start", models.MinutesToClock(appt.Start)),
		zap.String("location", appt.Location))

	if c.Reminders != nil {
		c.Reminders.EnqueueConfirmation(appt)
	}
	return &appt, nil
}

// Cancel flips a confirmed appointment to cancelled, freeing its interval
// for future availability queries. The session's appointment binding is
// untouched; history is preserved.
func (c *DefaultCoordinator) Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appt, err := c.Repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.StatusCancelled {
		return appt, nil
	}

	lock := c.dayLock(appt.Date, appt.Location)
	lock.Lock()
	defer lock.Unlock()

	appt.Status = models.StatusCancelled
	if err := c.Repo.Update(ctx, *appt); err != nil {
		return nil, err
	}
	c.Logger.Info("appointment cancelled", zap.String("appointmentId", appointmentID))
	return appt, nil
}

// Get returns one appointment by id.
func (c *DefaultCoordinator) Get(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return c.Repo.GetByID(ctx, appointmentID)
}

// List returns appointments matching the filters, ordered by date and time.
func (c *DefaultCoordinator) List(ctx context.Context, f appointmentRepo.Filters) ([]models.Appointment, error) {
	return c.Repo.List(ctx, f)
}

// Update reschedules an appointment. The new slot is validated against the
// appointment set with the appointment being moved excluded, so moving
// within a day never conflicts with itself.
func (c *DefaultCoordinator) Update(ctx context.Context, appointmentID string, req UpdateRequest) (*models.Appointment, error) {
	appt, err := c.Repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	newDate := appt.Date
	if req.Date != "" {
		newDate = req.Date
	}
	newStart := appt.Start
	if req.Start != 0 {
		newStart = req.Start
	}
	newLocation := appt.Location
	if req.Location != "" {
		newLocation = req.Location
	}
	newService := appt.ServiceType
	if req.ServiceType != "" {
		newService = req.ServiceType
	}

	svc, ok := models.ServiceTypeByID(newService)
	if !ok {
		return nil, scheduling.ErrInvalidServiceType
	}
	if !models.ValidLocation(newLocation) {
		return nil, ErrInvalidLocation
	}
	if err := c.validateDate(newDate); err != nil {
		return nil, err
	}

	unlock := c.lockDays(
		dayKey{appt.Date, appt.Location},
		dayKey{newDate, newLocation},
	)
	defer unlock()

	existing, err := c.Repo.ListByDateLocation(ctx, newDate, newLocation)
	if err != nil {
		return nil, err
	}
	// Exclude the appointment being moved before re-checking availability.
	others := existing[:0:0]
	for _, a := range existing {
		if a.ID != appointmentID {
			others = append(others, a)
		}
	}
	slots, err := scheduling.AvailableSlots(newDate, newLocation, newService, others, c.Hours)
	if err != nil {
		return nil, err
	}
	found := false
	for _, s := range slots {
		if s.Start == newStart {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrSlotNoLongerAvailable
	}

	appt.Date = newDate
	appt.Start = newStart
	appt.End = newStart + svc.TotalDuration()
	appt.Location = newLocation
	appt.ServiceType = newService
	if err := c.Repo.Update(ctx, *appt); err != nil {
		return nil, err
	}
	c.Logger.Info("appointment rescheduled",
		zap.String("appointmentId", appointmentID),
		zap.String("date", newDate),
		zap.String("start", models.MinutesToClock(newStart)))
	return appt, nil
}

type dayKey struct {
	date     string
	location string
}

// lockDays acquires the day locks for the given keys in a stable order so
// a reschedule across locations cannot deadlock with a concurrent booking.
func (c *DefaultCoordinator) lockDays(keys ...dayKey) func() {
	seen := make(map[dayKey]bool, len(keys))
	ordered := keys[:0:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			ordered = append(ordered, k)
		}
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].date+ordered[j].location < ordered[i].date+ordered[i].location {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	var held []*sync.Mutex
	for _, k := range ordered {
		l := c.dayLock(k.date, k.location)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
