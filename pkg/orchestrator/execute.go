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
	"errors"
	"fmt"
	"time"

	"github.com/fleetscan/fleetscan/pkg/aggregate"
	"github.com/fleetscan/fleetscan/pkg/db"
	"github.com/fleetscan/fleetscan/pkg/models"
	"github.com/fleetscan/fleetscan/pkg/probe"
	"github.com/fleetscan/fleetscan/pkg/queue"
	"github.com/fleetscan/fleetscan/pkg/risk"
)

// executeJob runs one delivered scan job through the state machine. A nil
// return acknowledges the job; only retryable faults (persistence) return an
// error for redelivery. Scan-level faults mark the scan failed and ack.
func (o *Orchestrator) executeJob(ctx context.Context, job *models.ScanJob) error {
	// The device mutex is taken before the terminal check so a redelivery
	// that waited out an in-flight scan observes its final status instead
	// of probing the target a second time.
	o.locks.lock(job.DeviceID)
	defer o.locks.unlock(job.DeviceID)

	existing, err := o.store.GetScan(ctx, job.ScanID)

	switch {
	case errors.Is(err, db.ErrScanNotFound):
		// Job delivered before (or without) its row; recreate it so the
		// scan remains pollable.
		scan := &models.Scan{
			ID:        job.ScanID,
			DeviceID:  job.DeviceID,
			TenantID:  job.TenantID,
			Mode:      job.Mode,
			Status:    models.ScanPending,
			StartedAt: time.Now().UTC(),
		}

		if _, err := o.store.CreateScan(ctx, scan); err != nil {
			return fmt.Errorf("recreate scan row: %w", err)
		}
	case err != nil:
		return fmt.Errorf("load scan %s: %w", job.ScanID, err)
	case existing.Status.Terminal():
		// Redelivery of a finished scan; at-least-once delivery makes this
		// a no-op rather than a rescan.
		o.logger.Debug().Str("scan_id", job.ScanID).Msg("ignoring redelivered terminal scan")

		return nil
	}

	device, err := o.store.GetDevice(ctx, job.DeviceID)
	if err != nil {
		o.failScan(ctx, job, "device not found")

		return nil
	}

	if err := o.store.UpdateScanStatus(ctx, job.ScanID, models.ScanRunning, ""); err != nil {
		return fmt.Errorf("mark scan running: %w", err)
	}

	o.progress.set(job.ScanID, models.ScanRunning, progressStarted, "scan started")

	scanCtx, cancel := context.WithTimeout(ctx, o.cfg.ScanTimeout)
	defer cancel()

	results, probeErr := o.runPasses(scanCtx, job, device.IP)
	if probeErr != nil {
		o.failScan(ctx, job, probeErr.Error())

		return nil
	}

	o.progress.set(job.ScanID, models.ScanRunning, progressAggregating, "aggregating findings")

	findings, err := aggregate.Merge(job.Mode, device.IP, results)
	if err != nil {
		// Inconsistent probe output must never be scored; a partial view
		// would persist a misleadingly low risk.
		o.failScan(ctx, job, fmt.Sprintf("inconsistent probe results: %v", err))

		return nil
	}

	score := risk.Score(findings)

	completed := o.buildCompletedScan(job, device, findings, score)

	if err := o.persistWithRetry(ctx, completed); err != nil {
		// Commit retries are exhausted; the scan must not sit RUNNING
		// waiting for the orphan sweep. Redeliver only when even the
		// failure mark cannot be written.
		if markErr := o.failScan(ctx, job, "failed to persist scan results"); markErr != nil {
			return err
		}

		return nil
	}

	o.progress.set(job.ScanID, models.ScanCompleted, progressDone, "scan completed")

	o.publishCompletion(ctx, job, score)

	o.logger.Info().
		Str("scan_id", job.ScanID).
		Str("device_id", job.DeviceID).
		Float64("risk_score", score).
		Bool("host_up", findings.HostUp).
		Msg("scan completed")

	return nil
}

// runPasses executes every probe pass for the scan mode in order. A host that
// never answers is a valid empty outcome, not a fault.
func (o *Orchestrator) runPasses(
	ctx context.Context, job *models.ScanJob, target string,
) ([]*models.RawProbeResult, error) {
	passes := probe.PassesForMode(job.Mode)
	results := make([]*models.RawProbeResult, 0, len(passes))

	for i, pass := range passes {
		o.progress.set(job.ScanID, models.ScanRunning, progressProbing,
			fmt.Sprintf("probing %s (%d/%d)", pass, i+1, len(passes)))

		result, err := o.prober.Probe(ctx, target, pass, job.Mode)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w after %s", ErrScanTimeout, o.cfg.ScanTimeout)
			}

			return nil, fmt.Errorf("probe pass %s failed: %w", pass, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// buildCompletedScan projects the findings into the persisted shape: the scan
// row, the device refresh, and the replacement port and vulnerability rows.
func (o *Orchestrator) buildCompletedScan(
	job *models.ScanJob, device *models.Device, findings *models.ScanFindings, score float64,
) *db.CompletedScan {
	now := time.Now().UTC()

	scan := &models.Scan{
		ID:        job.ScanID,
		DeviceID:  job.DeviceID,
		TenantID:  job.TenantID,
		Mode:      job.Mode,
		Status:    models.ScanCompleted,
		Findings:  findings,
		RiskScore: score,
	}

	update := db.DeviceScanUpdate{
		DeviceID:  job.DeviceID,
		RiskScore: score,
		LastSeen:  now,
	}

	if findings.IoTChecks != nil {
		update.Manufacturer = findings.IoTChecks.Manufacturer
		update.DeviceType = findings.IoTChecks.DeviceType
		update.Firmware = findings.IoTChecks.FirmwareVersion

		// The unknown placeholders never overwrite a previously identified
		// device.
		if update.Manufacturer == "Unknown" {
			update.Manufacturer = ""
		}

		if update.DeviceType == "Unknown IoT Device" {
			update.DeviceType = ""
		}
	}

	openPorts := findings.OpenPorts()
	ports := make([]models.PortRow, 0, len(openPorts))

	for _, p := range openPorts {
		ports = append(ports, models.PortRow{
			DeviceID: device.ID,
			Port:     p.Port,
			Protocol: p.Protocol,
			State:    p.State,
			Service:  p.Service,
			Version:  p.Version,
			Banner:   p.Banner,
			SeenAt:   now,
		})
	}

	vulns := make([]models.VulnerabilityRow, 0, len(findings.Vulnerabilities))

	for _, v := range findings.Vulnerabilities {
		row := models.VulnerabilityRow{
			DeviceID:    device.ID,
			Title:       v.Script,
			Description: v.Output,
			Severity:    v.Severity,
			Status:      "open",
			SeenAt:      now,
		}

		if len(v.CVEIDs) > 0 {
			row.CVEID = v.CVEIDs[0]
		}

		vulns = append(vulns, row)
	}

	return &db.CompletedScan{
		Scan:            scan,
		Device:          update,
		Ports:           ports,
		Vulnerabilities: vulns,
	}
}

// persistWithRetry commits the completed scan, retrying transient store
// failures a bounded number of times. Exhausting the retries surfaces the
// error so the queue redelivers the job.
func (o *Orchestrator) persistWithRetry(ctx context.Context, completed *db.CompletedScan) error {
	var lastErr error

	for attempt := 1; attempt <= o.cfg.PersistRetries; attempt++ {
		lastErr = o.store.CompleteScan(ctx, completed)
		if lastErr == nil {
			return nil
		}

		o.logger.Warn().Err(lastErr).
			Str("scan_id", completed.Scan.ID).
			Int("attempt", attempt).
			Msg("failed to persist completed scan")

		if attempt < o.cfg.PersistRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrPersistFailed, ctx.Err())
			case <-time.After(o.cfg.PersistRetryDelay):
			}
		}
	}

	return fmt.Errorf("%w: %w", ErrPersistFailed, lastErr)
}

// failScan marks a scan failed, records the terminal progress checkpoint, and
// emits the failure event. Event errors are logged, not returned; the status
// transition error is returned so callers know whether the mark stuck.
func (o *Orchestrator) failScan(ctx context.Context, job *models.ScanJob, message string) error {
	statusErr := o.store.UpdateScanStatus(ctx, job.ScanID, models.ScanFailed, message)
	if statusErr != nil {
		o.logger.Error().Err(statusErr).Str("scan_id", job.ScanID).Msg("failed to mark scan failed")
	}

	o.progress.set(job.ScanID, models.ScanFailed, progressDone, message)

	event := models.ScanEventData{
		ScanID:       job.ScanID,
		DeviceID:     job.DeviceID,
		TenantID:     job.TenantID,
		Mode:         job.Mode,
		Status:       models.ScanFailed,
		ErrorMessage: message,
		Timestamp:    time.Now().UTC(),
	}

	if err := o.events.PublishScanEvent(ctx, queue.EventScanFailed, event); err != nil {
		o.logger.Error().Err(err).Str("scan_id", job.ScanID).Msg("failed to publish scan failure event")
	}

	o.logger.Warn().
		Str("scan_id", job.ScanID).
		Str("device_id", job.DeviceID).
		Str("reason", message).
		Msg("scan failed")

	return statusErr
}

// publishCompletion emits the completion event and, above the threshold, the
// high-risk alert event. Notification failures never unwind a completed scan.
func (o *Orchestrator) publishCompletion(ctx context.Context, job *models.ScanJob, score float64) {
	event := models.ScanEventData{
		ScanID:    job.ScanID,
		DeviceID:  job.DeviceID,
		TenantID:  job.TenantID,
		Mode:      job.Mode,
		Status:    models.ScanCompleted,
		RiskScore: score,
		Timestamp: time.Now().UTC(),
	}

	if err := o.events.PublishScanEvent(ctx, queue.EventScanCompleted, event); err != nil {
		o.logger.Error().Err(err).Str("scan_id", job.ScanID).Msg("failed to publish scan completion event")
	}

	if score >= o.cfg.HighRiskThreshold {
		if err := o.events.PublishScanEvent(ctx, queue.EventHighRisk, event); err != nil {
			o.logger.Error().Err(err).Str("scan_id", job.ScanID).Msg("failed to publish high-risk event")
		}
	}
}
