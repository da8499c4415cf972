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

package probe

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/models"
)

const hostUpXML = `<?xml version="1.0"?>
<nmaprun args="nmap -T4 -F 192.168.1.10">
  <host>
    <status state="up"/>
    <address addr="192.168.1.10" addrtype="ipv4"/>
    <address addr="AA:BB:CC:DD:EE:FF" addrtype="mac" vendor="Hikvision"/>
    <hostnames><hostname name="cam-lobby"/></hostnames>
    <ports>
      <port protocol="tcp" portid="23">
        <state state="open"/>
        <service name="telnet"/>
      </port>
      <port protocol="tcp" portid="80">
        <state state="open"/>
        <service name="http" product="Hikvision IP Camera httpd" version="5.4.5" extrainfo="embedded"/>
        <script id="http-default-accounts" output="admin:12345 valid credentials"/>
      </port>
    </ports>
    <os>
      <osmatch name="Linux 3.X" accuracy="92"/>
    </os>
  </host>
</nmaprun>`

const hostDownXML = `<?xml version="1.0"?>
<nmaprun args="nmap -T4 -F 192.168.1.10">
  <host>
    <status state="down"/>
    <address addr="192.168.1.10" addrtype="ipv4"/>
  </host>
</nmaprun>`

const sweepXML = `<?xml version="1.0"?>
<nmaprun args="nmap -sn 192.168.1.0/30">
  <host>
    <status state="up"/>
    <address addr="192.168.1.1" addrtype="ipv4"/>
    <hostnames><hostname name="gw"/></hostnames>
  </host>
  <host>
    <status state="down"/>
    <address addr="192.168.1.2" addrtype="ipv4"/>
  </host>
</nmaprun>`

// fakeRunner replays canned output and records every invocation.
type fakeRunner struct {
	output []byte
	err    error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)

	return f.output, f.err
}

func testProber(runner commandRunner) *NmapProber {
	return &NmapProber{
		binary:  defaultBinary,
		timeout: time.Minute,
		runner:  runner,
		logger:  logger.NewTestLogger(),
	}
}

func TestProbeParsesHostResult(t *testing.T) {
	runner := &fakeRunner{output: []byte(hostUpXML)}
	p := testProber(runner)

	result, err := p.Probe(context.Background(), "192.168.1.10", models.PassPort, models.ModeQuick)
	require.NoError(t, err)

	assert.True(t, result.HostUp)
	assert.Equal(t, "cam-lobby", result.Hostname)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", result.MAC)
	assert.Equal(t, "Hikvision", result.Vendor)

	require.Len(t, result.Ports, 2)
	assert.Equal(t, 23, result.Ports[0].Port)
	assert.Equal(t, "telnet", result.Ports[0].Service)
	assert.Equal(t, "Hikvision IP Camera httpd", result.Ports[1].Product)
	assert.Equal(t, "embedded", result.Ports[1].Banner)

	require.Len(t, result.Scripts, 1)
	assert.Equal(t, "http-default-accounts", result.Scripts[0].ID)
	assert.Equal(t, 80, result.Scripts[0].Port)

	require.Len(t, result.OSMatches, 1)
	assert.Equal(t, 92, result.OSMatches[0].Accuracy)

	// Machine-readable output must be requested on stdout.
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"-oX", "-", "-T4", "-F", "--open", "192.168.1.10"}, runner.calls[0])
}

func TestProbeHostDownIsValidEmptyResult(t *testing.T) {
	p := testProber(&fakeRunner{output: []byte(hostDownXML)})

	result, err := p.Probe(context.Background(), "192.168.1.10", models.PassPort, models.ModeQuick)
	require.NoError(t, err)

	assert.False(t, result.HostUp)
	assert.Empty(t, result.Ports)
}

func TestProbeExecutionFailure(t *testing.T) {
	p := testProber(&fakeRunner{err: errors.New("exit status 1: failed to resolve")})

	_, err := p.Probe(context.Background(), "192.168.1.10", models.PassPort, models.ModeQuick)
	require.Error(t, err)
	require.ErrorIs(t, err, errProbeExecution)
	assert.True(t, IsProbeError(err))
}

func TestProbeMalformedOutput(t *testing.T) {
	p := testProber(&fakeRunner{output: []byte("segmentation fault")})

	_, err := p.Probe(context.Background(), "192.168.1.10", models.PassPort, models.ModeQuick)
	require.ErrorIs(t, err, errMalformedOutput)
}

func TestProbeRejectsInvalidTarget(t *testing.T) {
	p := testProber(&fakeRunner{output: []byte(hostUpXML)})

	for _, target := range []string{"", "-sV", "10.0.0.1; rm -rf /", "host name"} {
		_, err := p.Probe(context.Background(), target, models.PassPort, models.ModeQuick)
		require.ErrorIs(t, err, errInvalidTarget, "target %q", target)
	}
}

func TestProbeIoTProbesEveryWellKnownPort(t *testing.T) {
	runner := &fakeRunner{output: []byte(hostUpXML)}
	p := testProber(runner)

	result, err := p.Probe(context.Background(), "192.168.1.10", models.PassIoT, models.ModeIoT)
	require.NoError(t, err)

	assert.True(t, result.HostUp)
	assert.Len(t, runner.calls, len(iotPorts))

	// Each invocation targets exactly one well-known port.
	for i, call := range runner.calls {
		joined := strings.Join(call, " ")
		assert.Contains(t, joined, "-p "+strconv.Itoa(iotPorts[i]))
	}
}

func TestProbeIoTAllPortsFailing(t *testing.T) {
	p := testProber(&fakeRunner{err: errors.New("network unreachable")})

	_, err := p.Probe(context.Background(), "192.168.1.10", models.PassIoT, models.ModeIoT)
	require.ErrorIs(t, err, errProbeExecution)
}

func TestDiscoverReturnsUpHostsOnly(t *testing.T) {
	runner := &fakeRunner{output: []byte(sweepXML)}
	p := testProber(runner)

	hosts, err := p.Discover(context.Background(), "192.168.1.0/30")
	require.NoError(t, err)

	require.Len(t, hosts, 1)
	assert.Equal(t, "192.168.1.1", hosts[0].IP)
	assert.Equal(t, "gw", hosts[0].Hostname)
	assert.True(t, hosts[0].Up)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"-oX", "-", "-sn", "-T4", "192.168.1.0/30"}, runner.calls[0])
}

func TestArgsForPortPassFollowsMode(t *testing.T) {
	tests := []struct {
		mode     models.ScanMode
		expected []string
	}{
		{models.ModeQuick, []string{"-T4", "-F", "--open"}},
		{models.ModeFull, []string{"-T4", "-p-", "--open"}},
		{models.ModePort, []string{"-T4", "-sV", "-sC", "--open"}},
		{models.ScanMode("bogus"), []string{"-T4", "-F", "--open"}},
	}

	for _, tt := range tests {
		args, err := argsFor(models.PassPort, tt.mode)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, args)
	}
}

func TestArgsForUnknownPass(t *testing.T) {
	_, err := argsFor(models.ProbePass("bogus"), models.ModeQuick)
	require.ErrorIs(t, err, errUnknownPass)
}

func TestPassesForMode(t *testing.T) {
	assert.Equal(t, []models.ProbePass{
		models.PassPort, models.PassVulnerability, models.PassService, models.PassOS, models.PassIoT,
	}, PassesForMode(models.ModeFull))

	assert.Equal(t, []models.ProbePass{models.PassPort}, PassesForMode(models.ModeQuick))
	assert.Equal(t, []models.ProbePass{models.PassVulnerability}, PassesForMode(models.ModeVulnerability))
	assert.Equal(t, []models.ProbePass{models.PassIoT}, PassesForMode(models.ModeIoT))
	assert.Equal(t, []models.ProbePass{models.PassPort}, PassesForMode(models.ScanMode("bogus")))
}

func TestTruncateCause(t *testing.T) {
	long := strings.Repeat("a", maxCauseLen+100)
	assert.Len(t, truncateCause(long), maxCauseLen)
	assert.Equal(t, "short", truncateCause("short"))
}
