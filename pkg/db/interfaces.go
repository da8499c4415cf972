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

package db

//go:generate mockgen -destination=mock_store.go -package=db github.com/fleetscan/fleetscan/pkg/db Store

import (
	"context"
	"time"

	"github.com/fleetscan/fleetscan/pkg/models"
)

// DeviceScanUpdate carries the device-level fields refreshed when a scan
// completes. Empty identity fields leave the stored value untouched.
type DeviceScanUpdate struct {
	DeviceID     string
	Hostname     string
	MAC          string
	Manufacturer string
	DeviceType   string
	Firmware     string
	RiskScore    float64
	LastSeen     time.Time
}

// CompletedScan bundles everything persisted atomically when a scan reaches
// the completed state: the scan row with its findings and score, the device
// refresh, and the replacement port and vulnerability projections.
type CompletedScan struct {
	Scan            *models.Scan
	Device          DeviceScanUpdate
	Ports           []models.PortRow
	Vulnerabilities []models.VulnerabilityRow
}

// Store is the persistence gateway for scans and devices.
type Store interface {
	// CreateScan inserts the pending scan row. The scan ID doubles as the
	// idempotency key: a duplicate insert is a no-op and returns false.
	CreateScan(ctx context.Context, scan *models.Scan) (bool, error)

	// UpdateScanStatus advances a scan's status. Terminal rows are never
	// modified; advancing an already-terminal scan is a silent no-op.
	UpdateScanStatus(ctx context.Context, scanID string, status models.ScanStatus, errorMessage string) error

	// CompleteScan persists a completed scan in a single transaction.
	CompleteScan(ctx context.Context, result *CompletedScan) error

	GetScan(ctx context.Context, scanID string) (*models.Scan, error)
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)

	// UpsertDevice records a discovered host under the tenant, keyed by
	// (tenant, ip), and returns the device ID.
	UpsertDevice(ctx context.Context, tenantID string, host models.DiscoveredHost) (string, error)

	// ListActiveDevices returns all active devices across tenants, for the
	// periodic scan scheduler.
	ListActiveDevices(ctx context.Context) ([]models.Device, error)

	// ReconcileOrphanedScans fails running scans whose start predates the
	// cutoff, recovering rows stranded by a crashed worker.
	ReconcileOrphanedScans(ctx context.Context, olderThan time.Duration) (int64, error)

	// PurgeExpiredScans deletes scans older than the retention window.
	PurgeExpiredScans(ctx context.Context, retention time.Duration) (int64, error)

	Close()
}
