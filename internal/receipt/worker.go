package receipt

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultPollInterval = 5 * time.Second

// RunWorker polls for pending scans until ctx is cancelled. When a scan was
// found it polls again immediately so a backlog drains without waiting for
// the ticker.
func RunWorker(ctx context.Context, service *Service, interval time.Duration, log *zap.Logger) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log.Info("receipt worker started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for {
			found, err := service.ProcessOne(ctx)
			if err != nil {
				log.Error("receipt worker", zap.Error(err))
				break
			}
			if !found || ctx.Err() != nil {
				break
			}
		}

		select {
		case <-ctx.Done():
			log.Info("receipt worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}
