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

// Package risk computes device risk scores from normalized scan findings.
// Scoring is a pure function of the findings: no I/O, no clock, no
// randomness, so the same findings always produce the same score.
package risk

import "github.com/fleetscan/fleetscan/pkg/models"

const (
	// MaxScore bounds the final score; contributions are additive and
	// clamped, never rescaled.
	MaxScore = 100.0

	openPortWeight        = 5.0
	highRiskServiceWeight = 20.0
	highRiskPortWeight    = 20.0

	defaultCredsWeight      = 40.0
	unencryptedProtoWeight  = 15.0
	severityCriticalWeight  = 50.0
	severityHighWeight      = 30.0
	severityMediumWeight    = 15.0
	severityLowWeight       = 5.0
	unknownSeverityFallback = severityLowWeight
)

// Services whose exposure carries elevated risk regardless of port.
var highRiskServices = map[string]bool{
	"ftp":    true,
	"telnet": true,
	"ssh":    true,
	"http":   true,
	"https":  true,
	"smb":    true,
}

// Ports whose exposure carries elevated risk regardless of the detected
// service. A high-risk service on a high-risk port contributes both weights.
var highRiskPorts = map[int]bool{
	21:   true,
	23:   true,
	135:  true,
	139:  true,
	445:  true,
	1433: true,
	3389: true,
}

var severityWeights = map[string]float64{
	"critical": severityCriticalWeight,
	"high":     severityHighWeight,
	"medium":   severityMediumWeight,
	"low":      severityLowWeight,
}

// Score computes the risk score for one scan's findings on the 0..100 scale.
// Nil findings and down hosts score zero: nothing observed, nothing exposed.
func Score(findings *models.ScanFindings) float64 {
	if findings == nil {
		return 0
	}

	score := scorePorts(findings.Ports) +
		scoreVulnerabilities(findings.Vulnerabilities) +
		scoreIoT(findings.IoTChecks)

	if score > MaxScore {
		return MaxScore
	}

	if score < 0 {
		return 0
	}

	return score
}

func scorePorts(ports []models.PortFinding) float64 {
	var score float64

	for _, p := range ports {
		if p.State != "open" {
			continue
		}

		score += openPortWeight

		if highRiskServices[p.Service] {
			score += highRiskServiceWeight
		}

		if highRiskPorts[p.Port] {
			score += highRiskPortWeight
		}
	}

	return score
}

func scoreVulnerabilities(vulns []models.VulnFinding) float64 {
	var score float64

	for _, v := range vulns {
		weight, ok := severityWeights[v.Severity]
		if !ok {
			weight = unknownSeverityFallback
		}

		score += weight
	}

	return score
}

func scoreIoT(checks *models.IoTChecks) float64 {
	if checks == nil {
		return 0
	}

	var score float64

	if checks.DefaultCredentials {
		score += defaultCredsWeight
	}

	score += float64(len(checks.UnencryptedProtocols)) * unencryptedProtoWeight

	return score
}
