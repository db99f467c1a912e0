package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"autobook/config"
	"autobook/models"
	"autobook/services/reminder"

	appointmentRepo "autobook/database/repository/appointment"
)

// InitReminderWorker runs the async notification worker in background.
func InitReminderWorker(repo appointmentRepo.Repository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(reminder.TypeConfirmationSend, handleNotifyTask(repo, "confirmation"))
	mux.HandleFunc(reminder.TypeReminderSend, handleNotifyTask(repo, "reminder"))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Println("[ReminderWorker] Max retry attempts reached; notifications disabled.")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNotifyTask(repo appointmentRepo.Repository, kind string) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p reminder.Payload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		appt, err := repo.GetByID(ctx, p.AppointmentID)
		if err != nil {
			log.Printf("[ReminderHandler] Appointment %s not found, dropping %s task", p.AppointmentID, kind)
			return nil
		}
		if appt.Status != models.StatusConfirmed {
			// Cancelled after the task was queued; nothing to send.
			return nil
		}

		// SMS delivery goes through the telephony provider; here we only log
		// what would be sent.
		log.Printf("[ReminderHandler] Sending %s for appointment %s to %s: %s at %s (%s)",
			kind, appt.ID, p.Phone, appt.Date, models.MinutesToClock(appt.Start), appt.Location)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
