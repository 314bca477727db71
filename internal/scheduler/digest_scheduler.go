package scheduler

import (
	"github.com/odvhub/odvhub-backend/internal/app/service"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DigestScheduler runs the daily pending-queue digest.
type DigestScheduler struct {
	cron          *cron.Cron
	digestService service.DigestService
}

func NewDigestScheduler(digestService service.DigestService) *DigestScheduler {
	return &DigestScheduler{
		cron:          cron.New(),
		digestService: digestService,
	}
}

// Start registers the daily job. Digest failures are logged and retried at
// the next run; they never affect the review pipeline.
func (s *DigestScheduler) Start() error {
	// every day at 08:00
	_, err := s.cron.AddFunc("0 8 * * *", func() {
		logger.Info("Starting scheduled pending queue digest", nil)

		if err := s.digestService.SendPendingDigest(); err != nil {
			logger.Error("Pending queue digest failed", err)
			return
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for pending queue digest", err)
		return err
	}

	s.cron.Start()
	logger.Info("Pending queue digest scheduler started (daily at 8:00 AM)", nil)
	return nil
}

func (s *DigestScheduler) Stop() {
	logger.Info("Stopping pending queue digest scheduler...", nil)
	s.cron.Stop()
}
