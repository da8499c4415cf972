/*
 * Copyright 2025 FleetScan Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package orchestrator drives scan tasks through their lifecycle: accepting
// submissions, executing probe passes through the worker pool, aggregating
// and scoring results, and persisting the outcome.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetscan/fleetscan/pkg/db"
	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/models"
	"github.com/fleetscan/fleetscan/pkg/probe"
	"github.com/fleetscan/fleetscan/pkg/queue"
)

var validModes = map[models.ScanMode]bool{
	models.ModeQuick:         true,
	models.ModeFull:          true,
	models.ModePort:          true,
	models.ModeVulnerability: true,
	models.ModeService:       true,
	models.ModeOS:            true,
	models.ModeIoT:           true,
}

// Orchestrator owns the scan task state machine. All scan status transitions
// flow through it; nothing else writes scan rows.
type Orchestrator struct {
	cfg      Config
	store    db.Store
	prober   probe.Prober
	jobs     queue.JobQueue
	events   queue.EventPublisher
	progress *progressTracker
	locks    *keyedMutex
	logger   logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New assembles an orchestrator. The config is normalized in place.
func New(
	cfg Config,
	store db.Store,
	prober probe.Prober,
	jobs queue.JobQueue,
	events queue.EventPublisher,
	log logger.Logger,
) *Orchestrator {
	cfg.Normalize()

	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		prober:   prober,
		jobs:     jobs,
		events:   events,
		progress: newProgressTracker(),
		locks:    newKeyedMutex(),
		logger:   log,
	}
}

// Start launches the worker pool and the background scheduler and maintenance
// loops. It returns once everything is running.
func (o *Orchestrator) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancel = cancel

	for i := 0; i < o.cfg.Workers; i++ {
		o.wg.Add(1)

		go func(worker int) {
			defer o.wg.Done()

			if err := o.jobs.Consume(runCtx, o.executeJob); err != nil {
				o.logger.Error().Err(err).Int("worker", worker).Msg("scan worker stopped with error")
			}
		}(i)
	}

	if !o.cfg.SchedulerDisabled {
		o.wg.Add(1)

		go func() {
			defer o.wg.Done()

			o.runScheduler(runCtx)
		}()
	}

	o.wg.Add(1)

	go func() {
		defer o.wg.Done()

		o.runMaintenance(runCtx)
	}()

	o.logger.Info().
		Int("workers", o.cfg.Workers).
		Dur("scan_timeout", o.cfg.ScanTimeout).
		Msg("scan orchestrator started")

	return nil
}

// Stop cancels the workers and waits for in-flight scans to settle or the
// context to expire.
func (o *Orchestrator) Stop(ctx context.Context) error {
	if o.cancel != nil {
		o.cancel()
	}

	done := make(chan struct{})

	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info().Msg("scan orchestrator stopped")

		return nil
	case <-ctx.Done():
		return fmt.Errorf("orchestrator shutdown: %w", ctx.Err())
	}
}

// Submit accepts a scan request: it validates the device, creates the pending
// scan row, and enqueues the job. The returned scan ID is the handle for
// progress polling and doubles as the queue idempotency key.
func (o *Orchestrator) Submit(
	ctx context.Context, deviceID, tenantID string, mode models.ScanMode,
) (string, error) {
	if deviceID == "" {
		return "", ErrDeviceIDRequired
	}

	if tenantID == "" {
		return "", ErrTenantIDRequired
	}

	if !validModes[mode] {
		return "", fmt.Errorf("%w: %s", ErrUnknownScanMode, mode)
	}

	device, err := o.store.GetDevice(ctx, deviceID)
	if err != nil {
		return "", err
	}

	if device.TenantID != tenantID {
		// A device under another tenant is indistinguishable from absent.
		return "", db.ErrDeviceNotFound
	}

	scan := &models.Scan{
		ID:        uuid.New().String(),
		DeviceID:  deviceID,
		TenantID:  tenantID,
		Mode:      mode,
		Status:    models.ScanPending,
		StartedAt: time.Now().UTC(),
	}

	if _, err := o.store.CreateScan(ctx, scan); err != nil {
		return "", err
	}

	job := &models.ScanJob{ScanID: scan.ID, DeviceID: deviceID, TenantID: tenantID, Mode: mode}

	if err := o.jobs.Enqueue(ctx, job); err != nil {
		// The pending row would otherwise sit unexecuted forever.
		if failErr := o.store.UpdateScanStatus(ctx, scan.ID, models.ScanFailed, "failed to enqueue scan job"); failErr != nil {
			o.logger.Error().Err(failErr).Str("scan_id", scan.ID).Msg("failed to mark unenqueued scan failed")
		}

		return "", fmt.Errorf("enqueue scan job: %w", err)
	}

	o.progress.set(scan.ID, models.ScanPending, progressQueued, "scan queued")

	o.logger.Info().
		Str("scan_id", scan.ID).
		Str("device_id", deviceID).
		Str("tenant_id", tenantID).
		Str("mode", string(mode)).
		Msg("scan submitted")

	return scan.ID, nil
}

// Progress reports the current checkpoint for a scan. Scans evicted from the
// in-memory tracker fall back to the persisted status.
func (o *Orchestrator) Progress(ctx context.Context, scanID string) (*models.ScanProgress, error) {
	if entry, ok := o.progress.get(scanID); ok {
		return &entry, nil
	}

	scan, err := o.store.GetScan(ctx, scanID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProgressNotFound, scanID)
	}

	percent := progressQueued

	switch scan.Status {
	case models.ScanRunning:
		percent = progressStarted
	case models.ScanCompleted, models.ScanFailed:
		percent = progressDone
	}

	updatedAt := scan.StartedAt
	if scan.CompletedAt != nil {
		updatedAt = *scan.CompletedAt
	}

	return &models.ScanProgress{
		ScanID:     scanID,
		State:      scan.Status,
		Percent:    percent,
		StatusText: string(scan.Status),
		UpdatedAt:  updatedAt,
	}, nil
}

// DiscoverNetwork sweeps a network and registers every responding host as a
// device under the tenant. It returns the device IDs, newly created or
// refreshed.
func (o *Orchestrator) DiscoverNetwork(ctx context.Context, tenantID, network string) ([]string, error) {
	if tenantID == "" {
		return nil, ErrTenantIDRequired
	}

	if network == "" {
		return nil, ErrNetworkRequired
	}

	hosts, err := o.prober.Discover(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("discover network %s: %w", network, err)
	}

	deviceIDs := make([]string, 0, len(hosts))

	for _, host := range hosts {
		deviceID, err := o.store.UpsertDevice(ctx, tenantID, host)
		if err != nil {
			o.logger.Error().Err(err).Str("ip", host.IP).Msg("failed to register discovered host")

			continue
		}

		deviceIDs = append(deviceIDs, deviceID)
	}

	o.logger.Info().
		Str("tenant_id", tenantID).
		Str("network", network).
		Int("hosts", len(deviceIDs)).
		Msg("network discovery finished")

	return deviceIDs, nil
}
