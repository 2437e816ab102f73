// Package scheduler runs the ingestion pipeline on a cron schedule.
// Scheduled runs are best-effort: a failed run is logged and the next
// tick repairs it, relying on the pipeline's idempotence.
package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/madame-president/normaDB/internal/service"
)

// Scheduler wraps a cron runner around the sync pipeline.
type Scheduler struct {
	cron        *cron.Cron
	syncService *service.SyncService
}

// New creates a Scheduler that runs the full sync pipeline on the given
// cron schedule (standard 5-field spec, or descriptors like "@hourly").
func New(schedule string, syncService *service.SyncService) (*Scheduler, error) {
	s := &Scheduler{
		cron:        cron.New(),
		syncService: syncService,
	}

	_, err := s.cron.AddFunc(schedule, func() {
		result, err := s.syncService.Run(context.Background())
		if err != nil {
			log.Printf("Scheduled sync failed: %v", err)
			return
		}
		log.Printf("Scheduled sync: %d new transactions, %d ledger rows, %d prices",
			result.NewTransactions, result.TotalLedger, result.TotalPrices)
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins scheduling. It returns immediately; jobs run in their
// own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
