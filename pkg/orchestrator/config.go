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

import "time"

// Defaults applied by Normalize for zero-valued fields.
const (
	defaultWorkers           = 4
	defaultScanTimeout       = 30 * time.Minute
	defaultPersistRetries    = 3
	defaultPersistRetryDelay = 2 * time.Second
	defaultHighRiskThreshold = 70.0
	defaultScanInterval      = 24 * time.Hour
	defaultMaintenanceEvery  = time.Hour
	defaultScanRetention     = 90 * 24 * time.Hour
	defaultOrphanCutoff      = 2 * time.Hour
)

// Config tunes the scan orchestrator.
type Config struct {
	// Workers is the number of concurrent scan executors.
	Workers int `json:"workers,omitempty"`

	// ScanTimeout bounds one scan end to end, across all probe passes.
	ScanTimeout time.Duration `json:"scan_timeout,omitempty"`

	// PersistRetries and PersistRetryDelay bound the retry loop around
	// persisting a finished scan.
	PersistRetries    int           `json:"persist_retries,omitempty"`
	PersistRetryDelay time.Duration `json:"persist_retry_delay,omitempty"`

	// HighRiskThreshold is the score at or above which a completed scan
	// additionally emits a high-risk event.
	HighRiskThreshold float64 `json:"high_risk_threshold,omitempty"`

	// ScanInterval drives the periodic quick-scan scheduler; zero disables
	// only when SchedulerDisabled is set.
	ScanInterval      time.Duration `json:"scan_interval,omitempty"`
	SchedulerDisabled bool          `json:"scheduler_disabled,omitempty"`

	// MaintenanceInterval drives the retention sweep.
	MaintenanceInterval time.Duration `json:"maintenance_interval,omitempty"`

	// ScanRetention is how long scan rows are kept.
	ScanRetention time.Duration `json:"scan_retention,omitempty"`

	// OrphanCutoff is how long a scan may sit in running before the sweep
	// declares it orphaned and fails it.
	OrphanCutoff time.Duration `json:"orphan_cutoff,omitempty"`
}

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}

	if c.ScanTimeout <= 0 {
		c.ScanTimeout = defaultScanTimeout
	}

	if c.PersistRetries <= 0 {
		c.PersistRetries = defaultPersistRetries
	}

	if c.PersistRetryDelay <= 0 {
		c.PersistRetryDelay = defaultPersistRetryDelay
	}

	if c.HighRiskThreshold <= 0 {
		c.HighRiskThreshold = defaultHighRiskThreshold
	}

	if c.ScanInterval <= 0 {
		c.ScanInterval = defaultScanInterval
	}

	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = defaultMaintenanceEvery
	}

	if c.ScanRetention <= 0 {
		c.ScanRetention = defaultScanRetention
	}

	if c.OrphanCutoff <= 0 {
		c.OrphanCutoff = defaultOrphanCutoff
	}
}
