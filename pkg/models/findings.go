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

package models

import "time"

// ProbePass identifies one invocation profile of the probe capability.
type ProbePass string

const (
	PassPort          ProbePass = "port"
	PassService       ProbePass = "service"
	PassVulnerability ProbePass = "vulnerability"
	PassOS            ProbePass = "os"
	PassIoT           ProbePass = "iot"
	PassDiscovery     ProbePass = "discovery"
)

// PortFinding is one observed port. State is the probe's classification
// (open, filtered, closed).
type PortFinding struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Service  string `json:"service,omitempty"`
	Version  string `json:"version,omitempty"`
	Product  string `json:"product,omitempty"`
	Banner   string `json:"banner,omitempty"`
}

// VulnFinding is one vulnerability script result. Severity is assigned by the
// aggregator's keyword policy; CVEIDs are extracted from the raw output.
type VulnFinding struct {
	Script   string   `json:"script"`
	Output   string   `json:"output"`
	Severity string   `json:"severity"`
	CVEIDs   []string `json:"cve_ids,omitempty"`
	Port     int      `json:"port,omitempty"`
	Protocol string   `json:"protocol,omitempty"`
}

// OSMatch is one OS fingerprint candidate with its confidence percentage.
type OSMatch struct {
	Name     string `json:"name"`
	Accuracy int    `json:"accuracy"`
}

// IoTChecks holds IoT-specific assessment flags. A nil IoTChecks on
// ScanFindings means the checks were not run, which is distinct from "run and
// found nothing".
type IoTChecks struct {
	DefaultCredentials   bool     `json:"default_credentials"`
	UnencryptedProtocols []string `json:"unencrypted_protocols,omitempty"`
	DeviceType           string   `json:"device_type,omitempty"`
	Manufacturer         string   `json:"manufacturer,omitempty"`
	FirmwareVersion      string   `json:"firmware_version,omitempty"`
	WeakAuthentication   bool     `json:"weak_authentication,omitempty"`
}

// ScanFindings is the normalized, aggregated result of all probe passes for
// one scan. It is produced once per scan and immutable after creation. The
// JSON shape is a stable contract consumed by reporting and UI layers.
type ScanFindings struct {
	ScanType        ScanMode      `json:"scan_type"`
	Target          string        `json:"target"`
	ScanTime        time.Time     `json:"scan_time"`
	HostUp          bool          `json:"host_up"`
	Ports           []PortFinding `json:"ports"`
	Vulnerabilities []VulnFinding `json:"vulnerabilities"`
	OSMatches       []OSMatch     `json:"os_matches,omitempty"`
	IoTChecks       *IoTChecks    `json:"iot_checks,omitempty"`
}

// OpenPorts returns the findings' ports classified as open.
func (f *ScanFindings) OpenPorts() []PortFinding {
	var open []PortFinding

	for _, p := range f.Ports {
		if p.State == "open" {
			open = append(open, p)
		}
	}

	return open
}

// RawProbeResult is the typed intermediate model for one probe pass against
// one target. The aggregator merges one or more of these into ScanFindings.
type RawProbeResult struct {
	Pass      ProbePass      `json:"pass"`
	Target    string         `json:"target"`
	HostUp    bool           `json:"host_up"`
	Hostname  string         `json:"hostname,omitempty"`
	MAC       string         `json:"mac_address,omitempty"`
	Vendor    string         `json:"vendor,omitempty"`
	Ports     []PortFinding  `json:"ports,omitempty"`
	Scripts   []ScriptResult `json:"scripts,omitempty"`
	OSMatches []OSMatch      `json:"os_matches,omitempty"`
	ScannedAt time.Time      `json:"scanned_at"`
}

// ScriptResult is raw, unclassified script output attached to a host or port.
type ScriptResult struct {
	ID       string `json:"id"`
	Output   string `json:"output"`
	Port     int    `json:"port,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}
