package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const snapshotTimeout = 2 * time.Minute

// StartSnapshotScheduler периодически публикует снимок всех серий.
// Вызывающий код обязан вызвать Shutdown у возвращённого планировщика.
func StartSnapshotScheduler(ctx context.Context, exports ExportService, interval time.Duration, logger *slog.Logger) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("snapshot interval must be positive, got %s", interval)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
			defer cancel()

			results, err := exports.PublishAll(runCtx)
			switch {
			case errors.Is(err, ErrPublishingDisabled):
				logger.Debug("snapshot skipped: publishing disabled")
			case err != nil:
				logger.Error("scheduled snapshot failed", slog.Any("error", err))
			default:
				logger.Info("scheduled snapshot done", slog.Int("objects", len(results)))
			}
		}),
		gocron.WithName("standings-snapshot"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register snapshot job: %w", err)
	}

	sched.Start()
	return sched, nil
}
