// Package scheduler provides automated catalog refresh scheduling and health
// monitoring for the verification API. It handles cron-based catalog imports
// and coordinates refresh operations with the catalog store using dependency
// injection.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/medverify/medverify-api/catalog"
	"github.com/medverify/medverify-api/interfaces"
	"github.com/medverify/medverify-api/logging"
)

// importTimeout bounds one full catalog import
const importTimeout = 10 * time.Minute

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog refreshes and health monitoring using dependency injection
type Scheduler struct {
	store     interfaces.CatalogStore
	importer  interfaces.Importer
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.CatalogStore, importer interfaces.Importer) *Scheduler {
	return &Scheduler{
		store:     store,
		importer:  importer,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start initializes the scheduler with catalog refreshes and health monitoring
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.refreshCatalog(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	// Refresh daily at 03:00
	_, err := s.scheduler.Every(1).Days().At("03:00").Do(func() {
		if err := s.refreshCatalog(); err != nil {
			logging.Error("Failed to refresh catalog", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule catalog refreshes", "error", err)
		return fmt.Errorf("failed to schedule catalog refreshes: %w", err)
	}

	s.scheduler.StartAsync()

	// Start health monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// refreshCatalog performs a complete catalog import using injected dependencies
func (s *Scheduler) refreshCatalog() error {
	// Prevent concurrent updates
	if !s.store.BeginUpdate() {
		logging.Info("Catalog refresh already in progress, skipping...")
		return nil
	}
	defer s.store.EndUpdate()

	logging.Info(fmt.Sprintf("Starting catalog refresh at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	medicines, err := s.importer.ImportCatalog(ctx)
	if err != nil {
		logging.Error("Failed to import catalog", "error", err)
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	deduped, medicinesMap, barcodeMap := catalog.BuildIndexes(medicines)
	if dropped := len(medicines) - len(deduped); dropped > 0 {
		logging.Warn("Duplicate medicine IDs detected", "dropped", dropped)
	}

	// Atomic swap; readers never observe a partially built catalog
	s.store.UpdateData(deduped, medicinesMap, barcodeMap)

	elapsed := time.Since(start)
	logging.Info("Catalog refresh completed",
		"duration", elapsed.String(),
		"medicine_count", len(deduped),
		"barcode_count", len(barcodeMap))

	return nil
}

// startHealthMonitoring monitors the freshness of the catalog
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.store.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been refreshed in over 25 hours")
			}
		}
	}()
}
