package reminder

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"autobook/models"
)

// Task type names consumed by the async worker.
const (
	TypeConfirmationSend = "confirmation:send"
	TypeReminderSend     = "reminder:send"
)

// Payload carries the booked appointment through the task queue.
type Payload struct {
	AppointmentID string `json:"appointmentId"`
	Date          string `json:"date"`
	Start         int    `json:"start"`
	Phone         string `json:"phone"`
}

// Enqueuer dispatches post-booking notifications. Booking must succeed even
// when the queue is down, so implementations log failures instead of
// propagating them into the booking path.
type Enqueuer interface {
	EnqueueConfirmation(appt models.Appointment)
}

// AsynqEnqueuer queues confirmation and day-before reminder tasks on Redis.
type AsynqEnqueuer struct {
	Client *asynq.Client
	Logger *zap.Logger
	Now    func() time.Time
}

// NewAsynqEnqueuer returns an Enqueuer backed by the given Redis options.
func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, logger *zap.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		Client: asynq.NewClient(redisOpt),
		Logger: logger,
		Now:    time.Now,
	}
}

// EnqueueConfirmation queues an immediate confirmation and, when the
// appointment is more than a day out, a reminder for the morning before.
func (e *AsynqEnqueuer) EnqueueConfirmation(appt models.Appointment) {
	payload, err := json.Marshal(Payload{
		AppointmentID: appt.ID,
		Date:          appt.Date,
		Start:         appt.Start,
		Phone:         appt.Customer.PhoneNumber,
	})
	if err != nil {
		e.Logger.Error("failed to marshal reminder payload", zap.Error(err))
		return
	}

	if _, err := e.Client.Enqueue(asynq.NewTask(TypeConfirmationSend, payload)); err != nil {
		e.Logger.Warn("failed to enqueue booking confirmation",
			zap.String("appointmentId", appt.ID), zap.Error(err))
	}

	day, err := time.Parse(models.DateLayout, appt.Date)
	if err != nil {
		return
	}
	remindAt := day.AddDate(0, 0, -1).Add(9 * time.Hour)
	if remindAt.Before(e.Now()) {
		return
	}
	if _, err := e.Client.Enqueue(asynq.NewTask(TypeReminderSend, payload), asynq.ProcessAt(remindAt)); err != nil {
		e.Logger.Warn("failed to enqueue appointment reminder",
			zap.String("appointmentId", appt.ID), zap.Error(err))
	}
}

// NopEnqueuer drops all notifications; used when Redis is not configured
// and in tests.
type NopEnqueuer struct{}

func (NopEnqueuer) EnqueueConfirmation(models.Appointment) {}
