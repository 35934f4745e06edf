package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"smiledesk/config"
	"smiledesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeReminderSend = "reminder:send"

// ReminderPayload is the task body queued at booking confirmation.
type ReminderPayload struct {
	BookingID   string    `json:"booking_id"`
	PatientName string    `json:"patient_name"`
	Email       string    `json:"email"`
	Service     string    `json:"service"`
	StartTime   time.Time `json:"start_time"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker() {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, handleReminderTask)

	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Printf("[ReminderWorker] worker stopped: %v", err)
		}
	}()
}

func handleReminderTask(ctx context.Context, t *asynq.Task) error {
	var p ReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal reminder payload: %w", err)
	}

	// Delivery channel (email/SMS) is outside this service; the reminder is
	// logged for the notification pipeline to pick up.
	utils.GetLogger().Info("Appointment reminder due",
		zap.String("bookingID", p.BookingID),
		zap.String("patient", p.PatientName),
		zap.String("email", p.Email),
		zap.String("service", p.Service),
		zap.Time("startTime", p.StartTime))
	return nil
}
