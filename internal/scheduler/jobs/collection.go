package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// Trigger is what the job invokes; collector.Handler satisfies it
type Trigger interface {
	Handle(ctx context.Context, payload []byte) contracts.Response
}

// CollectionJob collects the previous trading day's snapshot
// ⭐ SSOT: 정기 수집 스케줄은 이 Job에서만
type CollectionJob struct {
	trigger  Trigger
	schedule string
	logger   *logger.Logger
}

// NewCollectionJob creates the daily collection job
func NewCollectionJob(trigger Trigger, schedule string, log *logger.Logger) *CollectionJob {
	return &CollectionJob{
		trigger:  trigger,
		schedule: schedule,
		logger:   log.WithModule("collection_job"),
	}
}

// Name returns the job name
func (j *CollectionJob) Name() string {
	return "market_data_collection"
}

// Schedule returns the cron schedule (seconds field included)
func (j *CollectionJob) Schedule() string {
	return j.schedule
}

// Run triggers one automatic-date collection
func (j *CollectionJob) Run(ctx context.Context) error {
	resp := j.trigger.Handle(ctx, nil)
	if resp.IsSuccess() {
		if body, ok := resp.Body.(contracts.SuccessBody); ok {
			j.logger.WithFields(map[string]interface{}{
				"storage_key":  body.StorageKey,
				"trading_date": body.Summary.TradingDate,
			}).Info("Scheduled collection stored")
		}
		return nil
	}

	if body, ok := resp.Body.(contracts.ErrorBody); ok {
		return fmt.Errorf("collection failed: %s", body.Error)
	}
	return fmt.Errorf("collection failed with status %d", resp.StatusCode)
}
