package appointmentRepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"autobook/models"
)

// memoryRepo keeps appointments in process memory behind the same contract
// as the durable backend. It is the default wiring and the test double.
type memoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]models.Appointment
	order []string
}

// NewMemoryRepo returns an in-memory Repository safe for concurrent use.
func NewMemoryRepo() Repository {
	return &memoryRepo{byID: make(map[string]models.Appointment)}
}

func (r *memoryRepo) Create(_ context.Context, appt models.Appointment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now()
	}
	r.byID[appt.ID] = appt
	r.order = append(r.order, appt.ID)
	return appt.ID, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &appt, nil
}

func (r *memoryRepo) Update(_ context.Context, appt models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[appt.ID]; !ok {
		return ErrNotFound
	}
	r.byID[appt.ID] = appt
	return nil
}

func (r *memoryRepo) ListByDateLocation(_ context.Context, date, location string) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Appointment
	for _, id := range r.order {
		appt := r.byID[id]
		if appt.Date == date && appt.Location == location {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (r *memoryRepo) List(_ context.Context, f Filters) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Appointment
	for _, id := range r.order {
		appt := r.byID[id]
		if f.Date != "" && appt.Date != f.Date {
			continue
		}
		if f.Location != "" && appt.Location != f.Location {
			continue
		}
		if f.Status != "" && appt.Status != f.Status {
			continue
		}
		if f.ServiceType != "" && appt.ServiceType != f.ServiceType {
			continue
		}
		if f.CustomerName != "" &&
			!strings.Contains(strings.ToLower(appt.Customer.FullName), strings.ToLower(f.CustomerName)) {
			continue
		}
		out = append(out, appt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}
