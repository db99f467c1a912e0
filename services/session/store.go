package session

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"autobook/models"
)

// DefaultSessionService keeps active sessions in a registry map guarded by
// an RWMutex; each session additionally carries its own mutex so updates to
// one call never block updates to another. Eviction (end-of-call, expiry,
// duplicate reconciliation) marks the entry gone under its own mutex, which
// means an in-flight merge either completes before the eviction or observes
// gone and reports ErrSessionNotFound, never a silent loss.
type DefaultSessionService struct {
	Timeout time.Duration
	Logger  *zap.Logger

	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	sess models.CallSession
	gone bool
}

// NewSessionService returns an empty session registry. timeout is the
// inactivity window after which a session may be swept.
func NewSessionService(timeout time.Duration, logger *zap.Logger) *DefaultSessionService {
	return &DefaultSessionService{
		Timeout:  timeout,
		Logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

func (s *DefaultSessionService) lookup(callID string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[callID]
	return e, ok
}

func summarize(sess models.CallSession, now time.Time) models.SessionSummary {
	return models.SessionSummary{
		CallID:        sess.CallID,
		CustomerPhone: sess.CustomerPhone,
		State:         sess.State,
		Customer:      sess.Customer,
		SelectedSlot:  sess.SelectedSlot,
		AppointmentID: sess.AppointmentID,
		LastActivity:  sess.LastActivity,
		SessionAge:    now.Sub(sess.CreatedAt),
	}
}

// Create registers a new session in the greeting state. The caller-supplied
// phone number is seeded into the customer snapshot.
func (s *DefaultSessionService) Create(callID, customerPhone string) (models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[callID]; exists {
		return models.SessionSummary{}, ErrDuplicateSession
	}

	now := s.now()
	sess := models.CallSession{
		CallID:        callID,
		CustomerPhone: customerPhone,
		Customer:      models.CustomerInfo{PhoneNumber: customerPhone},
		State:         models.StateGreeting,
		CreatedAt:     now,
		LastActivity:  now,
	}
	s.sessions[callID] = &entry{sess: sess}

	s.Logger.Info("call session created",
		zap.String("callId", callID), zap.String("phone", customerPhone))
	return summarize(sess, now), nil
}

// Get returns a read-only snapshot of the session. Reads do not refresh the
// activity timestamp; only mutations count as activity.
func (s *DefaultSessionService) Get(callID string) (models.SessionSummary, error) {
	e, ok := s.lookup(callID)
	if !ok {
		return models.SessionSummary{}, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return models.SessionSummary{}, ErrSessionNotFound
	}
	return summarize(e.sess, s.now()), nil
}

// MergeInfo folds a partial customer-info update into the session. Fields
// already collected are preserved unless force is set. The conversation
// advances out of greeting on the first update and into
// checking_availability once every required field is present.
func (s *DefaultSessionService) MergeInfo(callID string, update models.CustomerInfo, force bool) (models.SessionSummary, error) {
	e, ok := s.lookup(callID)
	if !ok {
		return models.SessionSummary{}, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return models.SessionSummary{}, ErrSessionNotFound
	}

	e.sess.Customer.Merge(update, force)
	e.sess.LastActivity = s.now()

	if e.sess.State == models.StateGreeting || e.sess.State == models.StateCollectingInfo {
		if len(e.sess.Customer.MissingRequired()) == 0 {
			e.sess.State = models.StateCheckingAvailability
		} else {
			e.sess.State = models.StateCollectingInfo
		}
	}

	s.Logger.Debug("customer info merged",
		zap.String("callId", callID), zap.Bool("force", force),
		zap.String("state", string(e.sess.State)))
	return summarize(e.sess, s.now()), nil
}

// RequiredFieldsComplete reports whether the session holds every field the
// scheduling decision needs.
func (s *DefaultSessionService) RequiredFieldsComplete(callID string) (bool, error) {
	missing, err := s.MissingFields(callID)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// MissingFields returns the names of required booking fields still unset.
func (s *DefaultSessionService) MissingFields(callID string) ([]string, error) {
	e, ok := s.lookup(callID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return nil, ErrSessionNotFound
	}
	return e.sess.Customer.MissingRequired(), nil
}

// SelectSlot records the caller's chosen slot and moves the conversation to
// confirming_booking.
func (s *DefaultSessionService) SelectSlot(callID string, slot models.TimeSlot) (models.SessionSummary, error) {
	e, ok := s.lookup(callID)
	if !ok {
		return models.SessionSummary{}, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return models.SessionSummary{}, ErrSessionNotFound
	}
	if e.sess.State.Terminal() {
		return models.SessionSummary{}, ErrSlotNotSelectable
	}

	chosen := slot
	e.sess.SelectedSlot = &chosen
	e.sess.Customer.PreferredTime = slot.Start
	e.sess.State = models.StateConfirmingBooking
	e.sess.LastActivity = s.now()

	s.Logger.Info("time slot selected",
		zap.String("callId", callID), zap.String("start", models.MinutesToClock(slot.Start)))
	return summarize(e.sess, s.now()), nil
}

// RecordAppointment binds the booked appointment to the session, exactly
// once. The binding is never released, not even when the appointment is
// later cancelled, so a call can book at most one appointment.
func (s *DefaultSessionService) RecordAppointment(callID, appointmentID string) error {
	e, ok := s.lookup(callID)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrSessionNotFound
	}
	if e.sess.AppointmentID != "" {
		return ErrAlreadyBooked
	}

	e.sess.AppointmentID = appointmentID
	e.sess.State = models.StateCompleted
	e.sess.LastActivity = s.now()

	s.Logger.Info("appointment recorded on session",
		zap.String("callId", callID), zap.String("appointmentId", appointmentID))
	return nil
}

// End evicts the session on explicit end-of-call. Ending an unknown session
// is a no-op.
func (s *DefaultSessionService) End(callID string) {
	s.mu.Lock()
	e, ok := s.sessions[callID]
	if ok {
		delete(s.sessions, callID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.gone = true
	if !e.sess.State.Terminal() {
		e.sess.State = models.StateCancelled
	}
	e.mu.Unlock()

	s.Logger.Info("call session ended", zap.String("callId", callID))
}

// ExpireInactive sweeps every session whose inactivity exceeds the timeout,
// transitioning it to expired and evicting it. Safe to run concurrently
// with merges: an in-flight merge holds the session mutex, so it either
// finishes first (refreshing the activity timestamp) or sees the session
// gone afterwards.
func (s *DefaultSessionService) ExpireInactive(now time.Time) int {
	s.mu.RLock()
	snapshot := make(map[string]*entry, len(s.sessions))
	for id, e := range s.sessions {
		snapshot[id] = e
	}
	s.mu.RUnlock()

	// Mark expired entries first, touching only each entry's own mutex. The
	// registry mutex is taken afterwards, never while an entry is held:
	// reconciliation locks in the opposite order, and holding both here
	// would deadlock against it.
	var expired []string
	for id, e := range snapshot {
		e.mu.Lock()
		if !e.gone && now.Sub(e.sess.LastActivity) > s.Timeout {
			e.gone = true
			e.sess.State = models.StateExpired
			expired = append(expired, id)
		}
		e.mu.Unlock()
	}
	if len(expired) == 0 {
		return 0
	}

	s.mu.Lock()
	for _, id := range expired {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.Logger.Info("expired call session swept", zap.String("callId", id))
	}
	return len(expired)
}

// ReconcileDuplicates merges all active sessions sharing a phone number
// into the most recently active one and discards the rest. Retries and
// reconnects on the telephony side can open several sessions for one real
// conversation; the newest keeps its own values and inherits any field the
// older sessions collected that it has not.
func (s *DefaultSessionService) ReconcileDuplicates(customerPhone string) (models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type match struct {
		e    *entry
		last time.Time
	}
	var matches []match
	for _, e := range s.sessions {
		e.mu.Lock()
		if !e.gone && e.sess.CustomerPhone == customerPhone {
			matches = append(matches, match{e: e, last: e.sess.LastActivity})
		}
		e.mu.Unlock()
	}
	if len(matches) == 0 {
		return models.SessionSummary{}, ErrSessionNotFound
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].last.After(matches[j].last)
	})

	survivor := matches[0].e
	survivor.mu.Lock()
	defer survivor.mu.Unlock()

	for _, m := range matches[1:] {
		older := m.e
		older.mu.Lock()
		survivor.sess.Customer.Merge(older.sess.Customer, false)
		older.gone = true
		older.sess.State = models.StateCancelled
		delete(s.sessions, older.sess.CallID)
		s.Logger.Info("duplicate call session merged",
			zap.String("into", survivor.sess.CallID), zap.String("discarded", older.sess.CallID))
		older.mu.Unlock()
	}

	if len(matches) > 1 {
		survivor.sess.LastActivity = s.now()
	}
	return summarize(survivor.sess, s.now()), nil
}

// ListActive returns summaries of every live session, newest activity first.
func (s *DefaultSessionService) ListActive() []models.SessionSummary {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	now := s.now()
	out := make([]models.SessionSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.gone {
			out = append(out, summarize(e.sess, now))
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}
