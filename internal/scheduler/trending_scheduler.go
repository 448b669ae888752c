package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/zywang/bookmart-backend/internal/app/service"
	"github.com/zywang/bookmart-backend/pkg/logger"
)

// TrendingScheduler periodically rebuilds the cached trending pool used by
// the recommendation fallback.
type TrendingScheduler struct {
	cron             *cron.Cron
	recommendService service.RecommendService
}

func NewTrendingScheduler(recommendService service.RecommendService) *TrendingScheduler {
	return &TrendingScheduler{
		cron:             cron.New(),
		recommendService: recommendService,
	}
}

// Start registers the refresh job. The cache itself carries a TTL, so a
// missed run only means one fallback pass rebuilds it lazily.
func (s *TrendingScheduler) Start() error {
	_, err := s.cron.AddFunc("@every 10m", func() {
		logger.Info("Starting scheduled trending pool refresh", nil)

		if err := s.recommendService.RefreshTrendingCache(); err != nil {
			logger.Error("Failed to refresh trending pool from scheduler", err)
			return
		}

		logger.Info("Successfully refreshed trending pool from scheduler", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for trending pool refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Trending scheduler started successfully (every 10 minutes)", nil)

	return nil
}

func (s *TrendingScheduler) Stop() {
	logger.Info("Stopping trending scheduler...", nil)
	s.cron.Stop()
	logger.Info("Trending scheduler stopped", nil)
}
