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

// Package models provides shared data models for the scan engine.
package models

import "time"

// Device is a network-attached device under assessment. Devices are
// tenant-scoped and long-lived; scans reference them but do not own them.
// The engine updates RiskScore and LastSeen on scan completion and never
// deletes a device.
type Device struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	IP           string    `json:"ip_address"`
	Hostname     string    `json:"hostname,omitempty"`
	MAC          string    `json:"mac_address,omitempty"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	DeviceType   string    `json:"device_type,omitempty"`
	Firmware     string    `json:"firmware_version,omitempty"`
	RiskScore    float64   `json:"risk_score"`
	Active       bool      `json:"is_active"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
}

// DiscoveredHost is a host found by a network discovery sweep, before it is
// upserted as a Device.
type DiscoveredHost struct {
	IP       string `json:"ip_address"`
	Hostname string `json:"hostname,omitempty"`
	MAC      string `json:"mac_address,omitempty"`
	Vendor   string `json:"vendor,omitempty"`
	Up       bool   `json:"is_active"`
}

// PortRow is the persisted projection of an open port for a device. Rows for
// a device are replaced wholesale when a scan completes so stale ports from
// prior scans never accumulate.
type PortRow struct {
	DeviceID string    `json:"device_id"`
	Port     int       `json:"port"`
	Protocol string    `json:"protocol"`
	State    string    `json:"state"`
	Service  string    `json:"service,omitempty"`
	Version  string    `json:"version,omitempty"`
	Banner   string    `json:"banner,omitempty"`
	SeenAt   time.Time `json:"seen_at"`
}

// VulnerabilityRow is the persisted projection of a vulnerability finding for
// a device. Replaced together with PortRow on scan completion.
type VulnerabilityRow struct {
	DeviceID    string    `json:"device_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    string    `json:"severity"`
	CVEID       string    `json:"cve_id,omitempty"`
	Status      string    `json:"status"`
	SeenAt      time.Time `json:"seen_at"`
}
