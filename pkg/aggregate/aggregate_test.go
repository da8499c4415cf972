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

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetscan/fleetscan/pkg/models"
)

func TestMergeNoResults(t *testing.T) {
	_, err := Merge(models.ModeQuick, "192.168.1.10", nil)
	require.ErrorIs(t, err, errNoResults)
}

func TestMergeNilResult(t *testing.T) {
	_, err := Merge(models.ModeQuick, "192.168.1.10", []*models.RawProbeResult{nil})
	require.ErrorIs(t, err, errNilResult)
}

func TestMergeRejectsInvalidPort(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassPort,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 70000, Protocol: "tcp", State: "open"},
			},
		},
	}

	_, err := Merge(models.ModeQuick, "192.168.1.10", results)
	require.ErrorIs(t, err, errInvalidPort)
}

func TestMergeRejectsMissingState(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassPort,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 80, Protocol: "tcp"},
			},
		},
	}

	_, err := Merge(models.ModeQuick, "192.168.1.10", results)
	require.ErrorIs(t, err, errEmptyState)
}

func TestMergePortDedupMostSpecificWins(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassPort,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 80, Protocol: "tcp", State: "open"},
				{Port: 22, Protocol: "tcp", State: "open", Service: "ssh"},
			},
		},
		{
			Pass:   models.PassService,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 80, Protocol: "tcp", State: "open", Service: "http", Product: "nginx", Version: "1.24.0"},
			},
		},
	}

	findings, err := Merge(models.ModeFull, "192.168.1.10", results)
	require.NoError(t, err)

	require.Len(t, findings.Ports, 2)
	assert.Equal(t, 22, findings.Ports[0].Port)
	assert.Equal(t, 80, findings.Ports[1].Port)
	assert.Equal(t, "http", findings.Ports[1].Service)
	assert.Equal(t, "nginx", findings.Ports[1].Product)
	assert.True(t, findings.HostUp)
}

func TestMergeLessSpecificPassFillsDetailOnly(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassService,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 443, Protocol: "tcp", State: "open", Service: "https"},
			},
		},
		{
			Pass:   models.PassPort,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 443, Protocol: "tcp", State: "filtered", Service: "https", Version: "TLSv1.3"},
			},
		},
	}

	findings, err := Merge(models.ModeFull, "192.168.1.10", results)
	require.NoError(t, err)

	require.Len(t, findings.Ports, 1)
	// Classification stays with the service pass; missing detail is filled.
	assert.Equal(t, "open", findings.Ports[0].State)
	assert.Equal(t, "TLSv1.3", findings.Ports[0].Version)
}

func TestMergeVulnDedupAndClassification(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassVulnerability,
			Target: "192.168.1.10",
			HostUp: true,
			Scripts: []models.ScriptResult{
				{ID: "http-vuln-cve2017-5638", Output: "VULNERABLE: remote code execution via CVE-2017-5638", Port: 80, Protocol: "tcp"},
				{ID: "http-vuln-cve2017-5638", Output: "duplicate evidence", Port: 80, Protocol: "tcp"},
				{ID: "ssl-cert", Output: "not a vulnerability script", Port: 443, Protocol: "tcp"},
				{ID: "smb-vuln-ms17-010", Output: "likely privilege escalation path", Port: 445, Protocol: "tcp"},
			},
		},
	}

	findings, err := Merge(models.ModeVulnerability, "192.168.1.10", results)
	require.NoError(t, err)

	require.Len(t, findings.Vulnerabilities, 2)

	first := findings.Vulnerabilities[0]
	assert.Equal(t, "http-vuln-cve2017-5638", first.Script)
	assert.Equal(t, SeverityCritical, first.Severity)
	assert.Equal(t, []string{"CVE-2017-5638"}, first.CVEIDs)

	second := findings.Vulnerabilities[1]
	assert.Equal(t, "smb-vuln-ms17-010", second.Script)
	assert.Equal(t, SeverityHigh, second.Severity)
	assert.Empty(t, second.CVEIDs)
}

func TestMergeAbsentPassesStayAbsent(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassPort,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 80, Protocol: "tcp", State: "open", Service: "http"},
			},
		},
	}

	findings, err := Merge(models.ModeQuick, "192.168.1.10", results)
	require.NoError(t, err)

	assert.NotNil(t, findings.Ports)
	assert.Nil(t, findings.Vulnerabilities)
	assert.Nil(t, findings.IoTChecks)
	assert.Nil(t, findings.OSMatches)
}

func TestMergeVulnPassWithNoFindingsYieldsEmptyList(t *testing.T) {
	results := []*models.RawProbeResult{
		{Pass: models.PassVulnerability, Target: "192.168.1.10", HostUp: true},
	}

	findings, err := Merge(models.ModeVulnerability, "192.168.1.10", results)
	require.NoError(t, err)

	require.NotNil(t, findings.Vulnerabilities)
	assert.Empty(t, findings.Vulnerabilities)
}

func TestMergeHostDown(t *testing.T) {
	results := []*models.RawProbeResult{
		{Pass: models.PassPort, Target: "192.168.1.10"},
	}

	findings, err := Merge(models.ModeQuick, "192.168.1.10", results)
	require.NoError(t, err)

	assert.False(t, findings.HostUp)
	assert.Empty(t, findings.Ports)
}

func TestMergeIoTChecks(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassIoT,
			Target: "192.168.1.50",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 23, Protocol: "tcp", State: "open", Service: "telnet"},
				{Port: 80, Protocol: "tcp", State: "open", Service: "http", Product: "Hikvision IP Camera httpd", Version: "5.4.5"},
				{Port: 443, Protocol: "tcp", State: "open", Service: "https"},
			},
			Scripts: []models.ScriptResult{
				{ID: "http-default-accounts", Output: "admin:12345 valid credentials", Port: 80, Protocol: "tcp"},
			},
		},
	}

	findings, err := Merge(models.ModeIoT, "192.168.1.50", results)
	require.NoError(t, err)

	require.NotNil(t, findings.IoTChecks)
	assert.True(t, findings.IoTChecks.DefaultCredentials)
	assert.True(t, findings.IoTChecks.WeakAuthentication)
	assert.Equal(t, []string{"http:80", "telnet:23"}, findings.IoTChecks.UnencryptedProtocols)
	assert.Equal(t, "IP Camera", findings.IoTChecks.DeviceType)
	assert.Equal(t, "Hikvision", findings.IoTChecks.Manufacturer)
	assert.Equal(t, "5.4.5", findings.IoTChecks.FirmwareVersion)
}

func TestMergeDefaultAccountScriptNegativeOutput(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassIoT,
			Target: "192.168.1.50",
			HostUp: true,
			Scripts: []models.ScriptResult{
				{ID: "http-default-accounts", Output: "No default accounts found", Port: 80, Protocol: "tcp"},
			},
		},
	}

	findings, err := Merge(models.ModeIoT, "192.168.1.50", results)
	require.NoError(t, err)

	require.NotNil(t, findings.IoTChecks)
	assert.False(t, findings.IoTChecks.DefaultCredentials)
	assert.False(t, findings.IoTChecks.WeakAuthentication)
}

func TestMergeAnonymousFTPFlagsWeakAuthentication(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassIoT,
			Target: "192.168.1.60",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 21, Protocol: "tcp", State: "open", Service: "ftp"},
			},
			Scripts: []models.ScriptResult{
				{ID: "ftp-anon", Output: "Anonymous FTP login allowed (FTP code 230)", Port: 21, Protocol: "tcp"},
			},
		},
	}

	findings, err := Merge(models.ModeIoT, "192.168.1.60", results)
	require.NoError(t, err)

	require.NotNil(t, findings.IoTChecks)
	assert.False(t, findings.IoTChecks.DefaultCredentials)
	assert.True(t, findings.IoTChecks.WeakAuthentication)
}

func TestMergeOSMatchDedupKeepsHighestAccuracy(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassOS,
			Target: "192.168.1.10",
			HostUp: true,
			OSMatches: []models.OSMatch{
				{Name: "Linux 5.X", Accuracy: 92},
			},
		},
		{
			Pass:   models.PassService,
			Target: "192.168.1.10",
			HostUp: true,
			OSMatches: []models.OSMatch{
				{Name: "Linux 5.X", Accuracy: 96},
				{Name: "Linux 4.X", Accuracy: 85},
			},
		},
	}

	findings, err := Merge(models.ModeFull, "192.168.1.10", results)
	require.NoError(t, err)

	require.Len(t, findings.OSMatches, 2)
	assert.Equal(t, 96, findings.OSMatches[0].Accuracy)
}

func TestMergeIdempotent(t *testing.T) {
	results := []*models.RawProbeResult{
		{
			Pass:   models.PassPort,
			Target: "192.168.1.10",
			HostUp: true,
			Ports: []models.PortFinding{
				{Port: 80, Protocol: "tcp", State: "open", Service: "http"},
				{Port: 22, Protocol: "tcp", State: "open", Service: "ssh"},
			},
		},
	}

	first, err := Merge(models.ModeQuick, "192.168.1.10", results)
	require.NoError(t, err)

	second, err := Merge(models.ModeQuick, "192.168.1.10", results)
	require.NoError(t, err)

	assert.Equal(t, first.Ports, second.Ports)
	assert.Equal(t, first.HostUp, second.HostUp)
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected string
	}{
		{"critical keyword", "State: VULNERABLE (critical)", SeverityCritical},
		{"rce keyword", "allows RCE on the target", SeverityCritical},
		{"critical beats high", "critical flaw allows privilege escalation", SeverityCritical},
		{"high keyword", "HIGH severity issue", SeverityHigh},
		{"auth bypass", "authentication bypass in admin panel", SeverityHigh},
		{"medium keyword", "information disclosure in headers", SeverityMedium},
		{"default low", "outdated banner observed", SeverityLow},
		{"empty output", "", SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifySeverity(tt.output))
		})
	}
}

func TestExtractCVEIDs(t *testing.T) {
	output := "Vulnerable to CVE-2021-44228 and CVE-2017-5638; see also CVE-202 bogus"

	ids := extractCVEIDs(output)
	assert.Equal(t, []string{"CVE-2021-44228", "CVE-2017-5638"}, ids)
}

func TestIdentifyDeviceType(t *testing.T) {
	tests := []struct {
		product  string
		expected string
	}{
		{"Hikvision IP Camera httpd", "IP Camera"},
		{"NETGEAR Router admin", "Router"},
		{"Honeywell Thermostat web ui", "Thermostat"},
		{"HP LaserJet printer", "Printer"},
		{"Cisco Catalyst switch", "Network Switch"},
		{"generic embedded httpd", unknownDeviceType},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, identifyDeviceType(tt.product))
	}
}

func TestIdentifyManufacturer(t *testing.T) {
	assert.Equal(t, "Hikvision", identifyManufacturer("HIKVISION DS-2CD2032"))
	assert.Equal(t, "TP-Link", identifyManufacturer("tp-link wr841n httpd"))
	assert.Equal(t, unknownManufacturer, identifyManufacturer("acme gadget"))
}
