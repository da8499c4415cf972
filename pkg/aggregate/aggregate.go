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

// Package aggregate merges raw probe results into normalized scan findings.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fleetscan/fleetscan/pkg/models"
)

var (
	errNoResults   = errors.New("no probe results to aggregate")
	errNilResult   = errors.New("nil probe result")
	errInvalidPort = errors.New("port number out of range")
	errEmptyState  = errors.New("port entry missing state classification")
)

// Services that transmit in cleartext, reported as unencrypted protocols in
// the IoT checks.
var unencryptedServices = map[string]bool{
	"ftp":    true,
	"telnet": true,
	"http":   true,
}

// passSpecificity orders probe passes by how authoritative their port
// classification is. When two passes observe the same (port, protocol), the
// more specific pass wins.
var passSpecificity = map[models.ProbePass]int{
	models.PassDiscovery:     0,
	models.PassOS:            1,
	models.PassPort:          2,
	models.PassVulnerability: 3,
	models.PassIoT:           4,
	models.PassService:       5,
}

type portKey struct {
	port  int
	proto string
}

type vulnKey struct {
	script string
	port   int
}

type portEntry struct {
	finding     models.PortFinding
	specificity int
}

// Merge combines the raw results of all probe passes run for one scan into a
// single ScanFindings value. Malformed raw results yield an error rather than
// silently dropped data, so a misleadingly low risk score is never persisted.
func Merge(mode models.ScanMode, target string, results []*models.RawProbeResult) (*models.ScanFindings, error) {
	if len(results) == 0 {
		return nil, errNoResults
	}

	findings := &models.ScanFindings{
		ScanType: mode,
		Target:   target,
		ScanTime: time.Now().UTC(),
	}

	ports := make(map[portKey]*portEntry)
	vulns := make(map[vulnKey]models.VulnFinding)
	osSeen := make(map[string]int) // name -> index into findings.OSMatches

	var (
		sawPortPass bool
		sawVulnPass bool
		sawIoTPass  bool
		iotResults  []*models.RawProbeResult
	)

	for _, raw := range results {
		if raw == nil {
			return nil, errNilResult
		}

		if raw.HostUp {
			findings.HostUp = true
		}

		switch raw.Pass {
		case models.PassPort, models.PassService:
			sawPortPass = true
		case models.PassVulnerability:
			sawVulnPass = true
		case models.PassIoT:
			sawPortPass = true
			sawIoTPass = true

			iotResults = append(iotResults, raw)
		}

		if err := mergePorts(ports, raw); err != nil {
			return nil, err
		}

		mergeVulnScripts(vulns, raw)

		for _, match := range raw.OSMatches {
			if idx, ok := osSeen[match.Name]; ok {
				if match.Accuracy > findings.OSMatches[idx].Accuracy {
					findings.OSMatches[idx].Accuracy = match.Accuracy
				}

				continue
			}

			osSeen[match.Name] = len(findings.OSMatches)
			findings.OSMatches = append(findings.OSMatches, match)
		}
	}

	// A pass that never ran leaves its findings field absent; only passes
	// that ran and found nothing produce an empty list.
	if sawPortPass {
		findings.Ports = sortedPorts(ports)
	}

	if sawVulnPass || len(vulns) > 0 {
		findings.Vulnerabilities = sortedVulns(vulns)
	}

	if sawIoTPass {
		findings.IoTChecks = buildIoTChecks(findings.Ports, iotResults)
	}

	return findings, nil
}

func mergePorts(ports map[portKey]*portEntry, raw *models.RawProbeResult) error {
	spec := passSpecificity[raw.Pass]

	for _, p := range raw.Ports {
		if p.Port < 1 || p.Port > 65535 {
			return fmt.Errorf("%w: %d", errInvalidPort, p.Port)
		}

		if p.State == "" {
			return fmt.Errorf("%w: port %d/%s", errEmptyState, p.Port, p.Protocol)
		}

		key := portKey{port: p.Port, proto: p.Protocol}

		existing, ok := ports[key]
		if !ok {
			ports[key] = &portEntry{finding: p, specificity: spec}
			continue
		}

		if spec >= existing.specificity {
			// The more specific pass owns the classification; keep any
			// service detail it did not re-observe.
			merged := p
			fillMissingDetail(&merged, &existing.finding)

			existing.finding = merged
			existing.specificity = spec
		} else {
			fillMissingDetail(&existing.finding, &p)
		}
	}

	return nil
}

// fillMissingDetail copies service metadata from other into dst where dst has
// none.
func fillMissingDetail(dst, other *models.PortFinding) {
	if dst.Service == "" {
		dst.Service = other.Service
	}

	if dst.Version == "" {
		dst.Version = other.Version
	}

	if dst.Product == "" {
		dst.Product = other.Product
	}

	if dst.Banner == "" {
		dst.Banner = other.Banner
	}
}

// mergeVulnScripts folds vulnerability script output into the findings,
// deduplicated by (script, port). Only scripts from the vuln family count;
// service banners and other script chatter are ignored.
func mergeVulnScripts(vulns map[vulnKey]models.VulnFinding, raw *models.RawProbeResult) {
	for _, script := range raw.Scripts {
		if !strings.Contains(strings.ToLower(script.ID), "vuln") {
			continue
		}

		key := vulnKey{script: script.ID, port: script.Port}
		if _, ok := vulns[key]; ok {
			continue
		}

		vulns[key] = models.VulnFinding{
			Script:   script.ID,
			Output:   script.Output,
			Severity: classifySeverity(script.Output),
			CVEIDs:   extractCVEIDs(script.Output),
			Port:     script.Port,
			Protocol: script.Protocol,
		}
	}
}

// buildIoTChecks derives IoT-specific flags from the merged port set and the
// iot pass observations.
func buildIoTChecks(ports []models.PortFinding, iotResults []*models.RawProbeResult) *models.IoTChecks {
	checks := &models.IoTChecks{
		DeviceType:   unknownDeviceType,
		Manufacturer: unknownManufacturer,
	}

	seen := make(map[string]bool)

	for _, p := range ports {
		if p.State != "open" {
			continue
		}

		service := strings.ToLower(p.Service)
		if unencryptedServices[service] {
			entry := fmt.Sprintf("%s:%d", service, p.Port)
			if !seen[entry] {
				seen[entry] = true

				checks.UnencryptedProtocols = append(checks.UnencryptedProtocols, entry)
			}
		}
	}

	sort.Strings(checks.UnencryptedProtocols)

	for _, raw := range iotResults {
		for _, p := range raw.Ports {
			if p.Product == "" {
				continue
			}

			checks.DeviceType = identifyDeviceType(p.Product)
			checks.Manufacturer = identifyManufacturer(p.Product)

			if p.Version != "" {
				checks.FirmwareVersion = p.Version
			}
		}

		for _, script := range raw.Scripts {
			if scriptIndicatesDefaultCreds(script) {
				checks.DefaultCredentials = true
			}

			if scriptIndicatesWeakAuth(script) {
				checks.WeakAuthentication = true
			}
		}
	}

	if checks.DefaultCredentials {
		checks.WeakAuthentication = true
	}

	return checks
}

// scriptIndicatesDefaultCreds reports whether a script result is positive
// evidence of default credentials. Scripts that ran but found nothing report
// no accounts, so empty output does not count.
func scriptIndicatesDefaultCreds(script models.ScriptResult) bool {
	if !strings.Contains(strings.ToLower(script.ID), "default-account") {
		return false
	}

	output := strings.ToLower(script.Output)

	return output != "" && !strings.Contains(output, "no default accounts")
}

// scriptIndicatesWeakAuth flags authentication weaknesses short of known
// default credentials, such as anonymous FTP access.
func scriptIndicatesWeakAuth(script models.ScriptResult) bool {
	id := strings.ToLower(script.ID)
	if !strings.Contains(id, "anon") && !strings.Contains(id, "auth-bypass") {
		return false
	}

	output := strings.ToLower(script.Output)

	return strings.Contains(output, "allowed") || strings.Contains(output, "vulnerable")
}

func sortedPorts(ports map[portKey]*portEntry) []models.PortFinding {
	out := make([]models.PortFinding, 0, len(ports))

	for _, entry := range ports {
		out = append(out, entry.finding)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Port != out[j].Port {
			return out[i].Port < out[j].Port
		}

		return out[i].Protocol < out[j].Protocol
	})

	return out
}

func sortedVulns(vulns map[vulnKey]models.VulnFinding) []models.VulnFinding {
	out := make([]models.VulnFinding, 0, len(vulns))

	for _, v := range vulns {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Script != out[j].Script {
			return out[i].Script < out[j].Script
		}

		return out[i].Port < out[j].Port
	})

	return out
}
