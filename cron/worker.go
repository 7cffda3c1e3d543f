package cron

import (
	"context"
	"log"
	"time"

	"roomlift/config"
	bookingRepo "roomlift/database/repository/booking"
	"roomlift/services/booking"
	"roomlift/services/lifecycle"
	"roomlift/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeNoShowSweep = "booking:noshow_sweep"

// noShowSweepActor is the identity recorded on audit entries written by the
// nightly sweep.
const noShowSweepActor = "noshow-sweep"

// InitNoShowSweep runs the async worker and the scheduler in the background.
// The engine owns no timers; the sweep synthesizes noShow events for
// bookings whose scheduled end passed without a check-out and dispatches
// them through the normal workflow path.
func InitNoShowSweep(workflow booking.WorkflowService, repo bookingRepo.BookingRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNoShowSweep, handleNoShowSweep(workflow, repo))

	// Start async worker with retry logic
	go func() {
		log.Println("[NoShowSweep] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NoShowSweep] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NoShowSweep] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(config.AppConfig.NoShowSweepCron, asynq.NewTask(TypeNoShowSweep, nil)); err != nil {
		log.Fatalf("[NoShowSweep] failed to register sweep schedule: %v", err)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[NoShowSweep] scheduler stopped: %v", err)
		}
	}()
}

func handleNoShowSweep(workflow booking.WorkflowService, repo bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		candidates, err := repo.ListNoShowCandidates(ctx, time.Now(), []string{
			lifecycle.StateApproved,
			lifecycle.StateCheckedIn,
		})
		if err != nil {
			logger.Error("no-show sweep failed to list candidates", zap.Error(err))
			return err
		}

		swept := 0
		for _, b := range candidates {
			status, err := workflow.DispatchEvent(ctx, b.ID, lifecycle.EventNoShow, noShowSweepActor)
			if err != nil {
				logger.Warn("no-show sweep failed to dispatch",
					zap.String("bookingId", b.ID),
					zap.Error(err))
				continue
			}
			if status == lifecycle.StateNoShow {
				swept++
			}
		}

		logger.Info("no-show sweep finished",
			zap.Int("candidates", len(candidates)),
			zap.Int("swept", swept))
		return nil
	}
}
