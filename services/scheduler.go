package services

import (
	"context"
	"fmt"
	"time"

	"coliseumAPI/internal/types/video"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartThumbnailRescan reruns the enhancement pass on an interval so videos whose
// earlier attempt failed get picked up again. The caller shuts the scheduler down.
func (s *ThumbnailService) StartThumbnailRescan(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			result, err := s.EnhancePending(ctx, logProgress(s.log))
			if err != nil {
				s.log.Errorw("[Scheduler] thumbnail rescan failed", "error", err)
				return
			}
			if result.Total > 0 {
				s.log.Infow("[Scheduler] thumbnail rescan done",
					"processed", result.Processed, "failed", result.Failed, "total", result.Total)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule thumbnail rescan: %w", err)
	}

	sched.Start()
	return sched, nil
}

func logProgress(log *zap.SugaredLogger) ProgressFunc {
	return func(p video.Progress) {
		log.Debugw("Thumbnail progress", "current", p.Current, "total", p.Total)
	}
}
