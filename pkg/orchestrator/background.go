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

package orchestrator

import (
	"context"
	"time"

	"github.com/fleetscan/fleetscan/pkg/models"
)

// Terminal progress entries older than this are pruned by the maintenance
// sweep; pollers that slow fall back to the persisted scan row.
const progressRetention = 24 * time.Hour

// runScheduler periodically submits a quick scan for every active device so
// risk scores never go stale between on-demand scans.
func (o *Orchestrator) runScheduler(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.ScanInterval)
	defer ticker.Stop()

	o.logger.Info().Dur("interval", o.cfg.ScanInterval).Msg("periodic scan scheduler started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.scheduleSweep(ctx)
		}
	}
}

func (o *Orchestrator) scheduleSweep(ctx context.Context) {
	devices, err := o.store.ListActiveDevices(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("scheduler failed to list devices")

		return
	}

	var submitted int

	for i := range devices {
		device := &devices[i]

		if _, err := o.Submit(ctx, device.ID, device.TenantID, models.ModeQuick); err != nil {
			o.logger.Warn().Err(err).Str("device_id", device.ID).Msg("scheduled scan submission failed")

			continue
		}

		submitted++
	}

	o.logger.Info().Int("submitted", submitted).Int("devices", len(devices)).Msg("scheduled scan sweep finished")
}

// runMaintenance periodically reconciles orphaned running scans, purges scans
// past retention, and prunes stale progress entries.
func (o *Orchestrator) runMaintenance(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.maintain(ctx)
		}
	}
}

func (o *Orchestrator) maintain(ctx context.Context) {
	if n, err := o.store.ReconcileOrphanedScans(ctx, o.cfg.OrphanCutoff); err != nil {
		o.logger.Error().Err(err).Msg("failed to reconcile orphaned scans")
	} else if n > 0 {
		o.logger.Info().Int64("count", n).Msg("reconciled orphaned scans")
	}

	if n, err := o.store.PurgeExpiredScans(ctx, o.cfg.ScanRetention); err != nil {
		o.logger.Error().Err(err).Msg("failed to purge expired scans")
	} else if n > 0 {
		o.logger.Info().Int64("count", n).Msg("purged expired scans")
	}

	if pruned := o.progress.pruneTerminal(progressRetention); pruned > 0 {
		o.logger.Debug().Int("count", pruned).Msg("pruned terminal progress entries")
	}
}
