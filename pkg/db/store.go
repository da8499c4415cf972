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

// Package db implements the Postgres persistence gateway for scans and
// devices.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/models"
)

// Vulnerability descriptions are bounded before persistence so oversized
// script output never bloats rows.
const maxVulnDescriptionLen = 1000

// ScanStore is the pgx-backed Store implementation.
type ScanStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

var _ Store = (*ScanStore)(nil)

// NewScanStore wraps an existing pool in a Store.
func NewScanStore(pool *pgxpool.Pool, log logger.Logger) *ScanStore {
	return &ScanStore{pool: pool, logger: log}
}

func (s *ScanStore) Close() {
	s.pool.Close()
}

func (s *ScanStore) CreateScan(ctx context.Context, scan *models.Scan) (bool, error) {
	if scan == nil {
		return false, ErrScanNil
	}

	if scan.ID == "" {
		return false, ErrScanIDRequired
	}

	if scan.DeviceID == "" {
		return false, ErrDeviceIDRequired
	}

	if scan.TenantID == "" {
		return false, ErrTenantIDRequired
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO scans (id, device_id, tenant_id, scan_mode, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		scan.ID, scan.DeviceID, scan.TenantID, string(scan.Mode), string(scan.Status), scan.StartedAt)
	if err != nil {
		return false, fmt.Errorf("%w: create scan: %w", ErrFailedToInsert, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *ScanStore) UpdateScanStatus(
	ctx context.Context, scanID string, status models.ScanStatus, errorMessage string,
) error {
	if scanID == "" {
		return ErrScanIDRequired
	}

	var completedAt *time.Time

	if status.Terminal() {
		now := time.Now().UTC()
		completedAt = &now
	}

	// Terminal rows are immutable; the predicate makes late updates no-ops.
	_, err := s.pool.Exec(ctx, `
		UPDATE scans
		SET status = $2, error_message = $3, completed_at = COALESCE($4, completed_at)
		WHERE id = $1 AND status NOT IN ('completed', 'failed')`,
		scanID, string(status), errorMessage, completedAt)
	if err != nil {
		return fmt.Errorf("%w: update scan status: %w", ErrFailedToQuery, err)
	}

	return nil
}

// CompleteScan persists the terminal completed state in one transaction: the
// scan row with findings and score, the device refresh, and wholesale
// replacement of the port and vulnerability projections. Either everything
// lands or nothing does.
func (s *ScanStore) CompleteScan(ctx context.Context, result *CompletedScan) error {
	if result == nil || result.Scan == nil {
		return ErrScanNil
	}

	scan := result.Scan
	if scan.ID == "" {
		return ErrScanIDRequired
	}

	if result.Device.DeviceID == "" {
		return ErrDeviceIDRequired
	}

	findingsJSON, err := json.Marshal(scan.Findings)
	if err != nil {
		return fmt.Errorf("%w: marshal findings: %w", ErrFailedToInsert, err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin complete-scan tx: %w", ErrFailedToQuery, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	completedAt := time.Now().UTC()

	tag, err := tx.Exec(ctx, `
		UPDATE scans
		SET status = 'completed', findings = $2, risk_score = $3, completed_at = $4, error_message = ''
		WHERE id = $1 AND status NOT IN ('completed', 'failed')`,
		scan.ID, findingsJSON, scan.RiskScore, completedAt)
	if err != nil {
		return fmt.Errorf("%w: complete scan row: %w", ErrFailedToQuery, err)
	}

	if tag.RowsAffected() == 0 {
		// Already terminal, e.g. a redelivered job finishing twice. Nothing
		// else may be rewritten.
		return nil
	}

	if err := s.refreshDevice(ctx, tx, &result.Device); err != nil {
		return err
	}

	if err := s.replacePorts(ctx, tx, result.Device.DeviceID, result.Ports); err != nil {
		return err
	}

	if err := s.replaceVulnerabilities(ctx, tx, result.Device.DeviceID, result.Vulnerabilities); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit complete-scan tx: %w", ErrFailedToQuery, err)
	}

	return nil
}

func (s *ScanStore) refreshDevice(ctx context.Context, tx pgx.Tx, update *DeviceScanUpdate) error {
	// NULLIF keeps the stored identity fields when the scan observed nothing.
	_, err := tx.Exec(ctx, `
		UPDATE devices
		SET risk_score = $2,
		    last_seen = $3,
		    hostname = COALESCE(NULLIF($4, ''), hostname),
		    mac_address = COALESCE(NULLIF($5, ''), mac_address),
		    manufacturer = COALESCE(NULLIF($6, ''), manufacturer),
		    device_type = COALESCE(NULLIF($7, ''), device_type),
		    firmware_version = COALESCE(NULLIF($8, ''), firmware_version)
		WHERE id = $1`,
		update.DeviceID, update.RiskScore, update.LastSeen,
		update.Hostname, update.MAC, update.Manufacturer, update.DeviceType, update.Firmware)
	if err != nil {
		return fmt.Errorf("%w: refresh device: %w", ErrFailedToQuery, err)
	}

	return nil
}

func (s *ScanStore) replacePorts(ctx context.Context, tx pgx.Tx, deviceID string, ports []models.PortRow) error {
	if _, err := tx.Exec(ctx, `DELETE FROM device_ports WHERE device_id = $1`, deviceID); err != nil {
		return fmt.Errorf("%w: clear device ports: %w", ErrFailedToQuery, err)
	}

	for i := range ports {
		p := &ports[i]

		if _, err := tx.Exec(ctx, `
			INSERT INTO device_ports (device_id, port, protocol, state, service, version, banner, seen_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			deviceID, p.Port, p.Protocol, p.State, p.Service, p.Version, p.Banner, p.SeenAt); err != nil {
			return fmt.Errorf("%w: insert device port %d/%s: %w", ErrFailedToInsert, p.Port, p.Protocol, err)
		}
	}

	return nil
}

func (s *ScanStore) replaceVulnerabilities(
	ctx context.Context, tx pgx.Tx, deviceID string, vulns []models.VulnerabilityRow,
) error {
	if _, err := tx.Exec(ctx, `DELETE FROM device_vulnerabilities WHERE device_id = $1`, deviceID); err != nil {
		return fmt.Errorf("%w: clear device vulnerabilities: %w", ErrFailedToQuery, err)
	}

	for i := range vulns {
		v := &vulns[i]

		if _, err := tx.Exec(ctx, `
			INSERT INTO device_vulnerabilities (device_id, title, description, severity, cve_id, status, seen_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			deviceID, v.Title, truncateDescription(v.Description), v.Severity, v.CVEID, v.Status, v.SeenAt); err != nil {
			return fmt.Errorf("%w: insert vulnerability %q: %w", ErrFailedToInsert, v.Title, err)
		}
	}

	return nil
}

func (s *ScanStore) GetScan(ctx context.Context, scanID string) (*models.Scan, error) {
	if scanID == "" {
		return nil, ErrScanIDRequired
	}

	var (
		scan         models.Scan
		mode, status string
		findingsJSON []byte
	)

	err := s.pool.QueryRow(ctx, `
		SELECT id, device_id, tenant_id, scan_mode, status, findings, risk_score, error_message,
		       started_at, completed_at
		FROM scans WHERE id = $1`, scanID).
		Scan(&scan.ID, &scan.DeviceID, &scan.TenantID, &mode, &status, &findingsJSON,
			&scan.RiskScore, &scan.ErrorMessage, &scan.StartedAt, &scan.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrScanNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: get scan: %w", ErrFailedToQuery, err)
	}

	scan.Mode = models.ScanMode(mode)
	scan.Status = models.ScanStatus(status)

	if len(findingsJSON) > 0 {
		var findings models.ScanFindings
		if err := json.Unmarshal(findingsJSON, &findings); err != nil {
			return nil, fmt.Errorf("%w: decode scan findings: %w", ErrFailedToScan, err)
		}

		scan.Findings = &findings
	}

	return &scan, nil
}

func (s *ScanStore) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	var device models.Device

	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, ip_address, hostname, mac_address, manufacturer, device_type,
		       firmware_version, risk_score, is_active, last_seen, created_at
		FROM devices WHERE id = $1`, deviceID).
		Scan(&device.ID, &device.TenantID, &device.IP, &device.Hostname, &device.MAC,
			&device.Manufacturer, &device.DeviceType, &device.Firmware, &device.RiskScore,
			&device.Active, &device.LastSeen, &device.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: get device: %w", ErrFailedToQuery, err)
	}

	return &device, nil
}

func (s *ScanStore) UpsertDevice(ctx context.Context, tenantID string, host models.DiscoveredHost) (string, error) {
	if tenantID == "" {
		return "", ErrTenantIDRequired
	}

	if host.IP == "" {
		return "", ErrDeviceIPRequired
	}

	var deviceID string

	err := s.pool.QueryRow(ctx, `
		INSERT INTO devices (tenant_id, ip_address, hostname, mac_address, is_active, last_seen)
		VALUES ($1, $2, $3, $4, TRUE, now())
		ON CONFLICT (tenant_id, ip_address) DO UPDATE
		SET hostname = COALESCE(NULLIF(EXCLUDED.hostname, ''), devices.hostname),
		    mac_address = COALESCE(NULLIF(EXCLUDED.mac_address, ''), devices.mac_address),
		    is_active = TRUE,
		    last_seen = now()
		RETURNING id`,
		tenantID, host.IP, host.Hostname, host.MAC).Scan(&deviceID)
	if err != nil {
		return "", fmt.Errorf("%w: upsert device %s: %w", ErrFailedToInsert, host.IP, err)
	}

	return deviceID, nil
}

func (s *ScanStore) ListActiveDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, ip_address, hostname, mac_address, manufacturer, device_type,
		       firmware_version, risk_score, is_active, last_seen, created_at
		FROM devices WHERE is_active ORDER BY tenant_id, ip_address`)
	if err != nil {
		return nil, fmt.Errorf("%w: list active devices: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var devices []models.Device

	for rows.Next() {
		var device models.Device

		if err := rows.Scan(&device.ID, &device.TenantID, &device.IP, &device.Hostname, &device.MAC,
			&device.Manufacturer, &device.DeviceType, &device.Firmware, &device.RiskScore,
			&device.Active, &device.LastSeen, &device.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan device row: %w", ErrFailedToScan, err)
		}

		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate devices: %w", ErrFailedToQuery, err)
	}

	return devices, nil
}

func (s *ScanStore) ReconcileOrphanedScans(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	tag, err := s.pool.Exec(ctx, `
		UPDATE scans
		SET status = 'failed', error_message = 'orphaned by worker restart', completed_at = now()
		WHERE status = 'running' AND started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: reconcile orphaned scans: %w", ErrFailedToQuery, err)
	}

	if n := tag.RowsAffected(); n > 0 {
		s.logger.Warn().Int64("count", n).Msg("failed orphaned running scans")

		return n, nil
	}

	return 0, nil
}

func (s *ScanStore) PurgeExpiredScans(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	tag, err := s.pool.Exec(ctx, `DELETE FROM scans WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: purge expired scans: %w", ErrFailedToQuery, err)
	}

	return tag.RowsAffected(), nil
}

func truncateDescription(description string) string {
	if len(description) > maxVulnDescriptionLen {
		return description[:maxVulnDescriptionLen]
	}

	return description
}
