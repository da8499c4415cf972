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

package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetscan/fleetscan/pkg/models"
)

func openPort(port int, service string) models.PortFinding {
	return models.PortFinding{Port: port, Protocol: "tcp", State: "open", Service: service}
}

func TestScoreNilFindings(t *testing.T) {
	assert.Zero(t, Score(nil))
}

func TestScoreEmptyFindings(t *testing.T) {
	assert.Zero(t, Score(&models.ScanFindings{HostUp: true}))
}

func TestScoreOpenPorts(t *testing.T) {
	findings := &models.ScanFindings{
		HostUp: true,
		Ports: []models.PortFinding{
			openPort(8000, "upnp"),
			openPort(8081, "blackice-icecap"),
			openPort(9000, "cslistener"),
		},
	}

	assert.InDelta(t, 15.0, Score(findings), 0.001)
}

func TestScoreClosedPortsIgnored(t *testing.T) {
	findings := &models.ScanFindings{
		HostUp: true,
		Ports: []models.PortFinding{
			{Port: 80, Protocol: "tcp", State: "closed", Service: "http"},
			{Port: 23, Protocol: "tcp", State: "filtered", Service: "telnet"},
		},
	}

	assert.Zero(t, Score(findings))
}

func TestScoreHighRiskServiceAndPortStack(t *testing.T) {
	// telnet on 23 hits the base open-port weight plus the high-risk
	// service and high-risk port weights.
	findings := &models.ScanFindings{
		HostUp: true,
		Ports:  []models.PortFinding{openPort(23, "telnet")},
	}

	assert.InDelta(t, 45.0, Score(findings), 0.001)
}

func TestScoreHighRiskServiceOnBenignPort(t *testing.T) {
	findings := &models.ScanFindings{
		HostUp: true,
		Ports:  []models.PortFinding{openPort(8080, "http")},
	}

	assert.InDelta(t, 25.0, Score(findings), 0.001)
}

func TestScoreHighRiskPortWithUnknownService(t *testing.T) {
	findings := &models.ScanFindings{
		HostUp: true,
		Ports:  []models.PortFinding{openPort(3389, "ms-wbt-server")},
	}

	assert.InDelta(t, 25.0, Score(findings), 0.001)
}

func TestScoreVulnerabilitySeverities(t *testing.T) {
	tests := []struct {
		severity string
		expected float64
	}{
		{"critical", 50},
		{"high", 30},
		{"medium", 15},
		{"low", 5},
		{"bogus", 5},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			findings := &models.ScanFindings{
				HostUp:          true,
				Vulnerabilities: []models.VulnFinding{{Script: "x", Severity: tt.severity}},
			}

			assert.InDelta(t, tt.expected, Score(findings), 0.001)
		})
	}
}

func TestScoreIoTChecks(t *testing.T) {
	findings := &models.ScanFindings{
		HostUp: true,
		IoTChecks: &models.IoTChecks{
			DefaultCredentials:   true,
			UnencryptedProtocols: []string{"telnet:23", "http:80"},
		},
	}

	assert.InDelta(t, 70.0, Score(findings), 0.001)
}

func TestScoreClampedAtMax(t *testing.T) {
	findings := &models.ScanFindings{
		HostUp: true,
		Ports: []models.PortFinding{
			openPort(21, "ftp"),
			openPort(23, "telnet"),
			openPort(445, "smb"),
		},
		Vulnerabilities: []models.VulnFinding{
			{Script: "a", Severity: "critical"},
			{Script: "b", Severity: "critical"},
		},
		IoTChecks: &models.IoTChecks{DefaultCredentials: true},
	}

	assert.InDelta(t, MaxScore, Score(findings), 0.001)
}

func TestScoreMonotonicInFindings(t *testing.T) {
	base := &models.ScanFindings{
		HostUp: true,
		Ports:  []models.PortFinding{openPort(8000, "upnp")},
	}

	more := &models.ScanFindings{
		HostUp: true,
		Ports: append([]models.PortFinding{openPort(9000, "cslistener")},
			base.Ports...),
	}

	assert.LessOrEqual(t, Score(base), Score(more))
}

func TestScoreDeterministic(t *testing.T) {
	findings := &models.ScanFindings{
		HostUp: true,
		Ports:  []models.PortFinding{openPort(22, "ssh"), openPort(80, "http")},
		Vulnerabilities: []models.VulnFinding{
			{Script: "smb-vuln-ms17-010", Severity: "high"},
		},
	}

	first := Score(findings)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(findings))
	}
}
