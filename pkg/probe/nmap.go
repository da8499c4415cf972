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

// Package probe adapts the external nmap probing capability to the scan
// engine's typed result model.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/models"
)

const (
	defaultBinary      = "nmap"
	defaultPassTimeout = 15 * time.Minute

	maxHostnameLen = 253
)

// Well-known IoT service ports probed individually in the iot pass.
var iotPorts = []int{80, 443, 23, 22, 21, 8080, 8443, 554, 1935}

// Fixed argument profiles per probe pass. The port pass profile depends on
// the requested scan mode.
var passArgs = map[models.ProbePass][]string{
	models.PassVulnerability: {"-T4", "-sV", "--script", "vuln"},
	models.PassService:       {"-T4", "-sV", "-A"},
	models.PassOS:            {"-T4", "-O"},
	models.PassDiscovery:     {"-sn", "-T4"},
}

var portPassArgs = map[models.ScanMode][]string{
	models.ModeQuick: {"-T4", "-F", "--open"},
	models.ModeFull:  {"-T4", "-p-", "--open"},
	models.ModePort:  {"-T4", "-sV", "-sC", "--open"},
}

var hostnameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?$`)

// commandRunner executes the probe binary. Injected so tests can stub the
// tool without issuing real probes.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}

		return nil, err
	}

	return stdout.Bytes(), nil
}

// NmapProber implements Prober by driving the nmap binary and parsing its
// XML output.
type NmapProber struct {
	binary  string
	timeout time.Duration
	runner  commandRunner
	logger  logger.Logger
}

var _ Prober = (*NmapProber)(nil)

// NmapOption customizes an NmapProber.
type NmapOption func(*NmapProber)

// WithBinary overrides the nmap binary path.
func WithBinary(path string) NmapOption {
	return func(p *NmapProber) { p.binary = path }
}

// WithPassTimeout overrides the per-pass timeout.
func WithPassTimeout(d time.Duration) NmapOption {
	return func(p *NmapProber) { p.timeout = d }
}

func withRunner(r commandRunner) NmapOption {
	return func(p *NmapProber) { p.runner = r }
}

// NewNmapProber creates a prober backed by the nmap binary.
func NewNmapProber(log logger.Logger, opts ...NmapOption) (*NmapProber, error) {
	p := &NmapProber{
		binary:  defaultBinary,
		timeout: defaultPassTimeout,
		runner:  execRunner{},
		logger:  log,
	}

	for _, opt := range opts {
		opt(p)
	}

	if _, err := exec.LookPath(p.binary); err != nil {
		return nil, fmt.Errorf("%w: %w", errNmapBinaryMissing, err)
	}

	return p, nil
}

// Probe runs one pass against one target.
func (p *NmapProber) Probe(
	ctx context.Context, target string, pass models.ProbePass, mode models.ScanMode,
) (*models.RawProbeResult, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}

	if pass == models.PassIoT {
		return p.probeIoT(ctx, target)
	}

	args, err := argsFor(pass, mode)
	if err != nil {
		return nil, err
	}

	run, err := p.invoke(ctx, pass, target, append(args, target))
	if err != nil {
		return nil, err
	}

	return normalizeResult(run, pass, target), nil
}

// probeIoT probes the well-known IoT ports one at a time with service
// detection and merges the observations into a single result. Individual
// port probes that fail are skipped; the pass only faults when no port could
// be probed at all.
func (p *NmapProber) probeIoT(ctx context.Context, target string) (*models.RawProbeResult, error) {
	merged := &models.RawProbeResult{
		Pass:      models.PassIoT,
		Target:    target,
		ScannedAt: time.Now(),
	}

	var failures int

	for _, port := range iotPorts {
		if ctx.Err() != nil {
			return nil, newError(models.PassIoT, target, "probe canceled", ctx.Err())
		}

		args := []string{"-T4", "-sV", "-p", strconv.Itoa(port), target}

		run, err := p.invoke(ctx, models.PassIoT, target, args)
		if err != nil {
			failures++

			p.logger.Debug().Err(err).Int("port", port).Str("target", target).
				Msg("IoT port probe failed, skipping")

			continue
		}

		single := normalizeResult(run, models.PassIoT, target)
		if single.HostUp {
			merged.HostUp = true
		}

		if single.Hostname != "" {
			merged.Hostname = single.Hostname
		}

		if single.MAC != "" {
			merged.MAC = single.MAC
			merged.Vendor = single.Vendor
		}

		merged.Ports = append(merged.Ports, single.Ports...)
		merged.Scripts = append(merged.Scripts, single.Scripts...)
	}

	if failures == len(iotPorts) {
		return nil, newError(models.PassIoT, target, "all IoT port probes failed", errProbeExecution)
	}

	return merged, nil
}

// Discover runs a ping sweep over a CIDR network and returns the hosts that
// answered.
func (p *NmapProber) Discover(ctx context.Context, network string) ([]models.DiscoveredHost, error) {
	if err := validateNetwork(network); err != nil {
		return nil, err
	}

	args := append([]string{}, passArgs[models.PassDiscovery]...)

	run, err := p.invoke(ctx, models.PassDiscovery, network, append(args, network))
	if err != nil {
		return nil, err
	}

	hosts := make([]models.DiscoveredHost, 0, len(run.Hosts))

	for i := range run.Hosts {
		h := &run.Hosts[i]
		if h.Status.State != "up" {
			continue
		}

		mac, vendor := macAddress(h)

		hosts = append(hosts, models.DiscoveredHost{
			IP:       primaryAddress(h),
			Hostname: firstHostname(h),
			MAC:      mac,
			Vendor:   vendor,
			Up:       true,
		})
	}

	return hosts, nil
}

// invoke runs the probe binary once and parses its XML output.
func (p *NmapProber) invoke(
	ctx context.Context, pass models.ProbePass, target string, args []string,
) (*nmapRun, error) {
	passCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// -oX - streams machine-readable results on stdout.
	full := append([]string{"-oX", "-"}, args...)

	start := time.Now()

	out, err := p.runner.Run(passCtx, p.binary, full...)
	if err != nil {
		return nil, newError(pass, target, truncateCause(err.Error()), fmt.Errorf("%w: %w", errProbeExecution, err))
	}

	run, err := parseXML(bytes.NewReader(out))
	if err != nil {
		return nil, newError(pass, target, "unparseable probe output", fmt.Errorf("%w: %w", errMalformedOutput, err))
	}

	p.logger.Debug().
		Str("pass", string(pass)).
		Str("target", target).
		Int("hosts", len(run.Hosts)).
		Dur("elapsed", time.Since(start)).
		Msg("Probe pass finished")

	return run, nil
}

// normalizeResult translates one parsed nmap run into the typed intermediate
// model. A target absent from the output, or reported down, is a valid empty
// result with HostUp=false.
func normalizeResult(run *nmapRun, pass models.ProbePass, target string) *models.RawProbeResult {
	result := &models.RawProbeResult{
		Pass:      pass,
		Target:    target,
		ScannedAt: time.Now(),
	}

	host, found := findHost(run, target)
	if !found || host.Status.State != "up" {
		return result
	}

	result.HostUp = true
	result.Hostname = firstHostname(host)
	result.MAC, result.Vendor = macAddress(host)

	for _, port := range host.Ports {
		result.Ports = append(result.Ports, models.PortFinding{
			Port:     port.PortID,
			Protocol: port.Protocol,
			State:    port.State.State,
			Service:  port.Service.Name,
			Version:  port.Service.Version,
			Product:  port.Service.Product,
			Banner:   port.Service.ExtraInfo,
		})

		for _, script := range port.Scripts {
			result.Scripts = append(result.Scripts, models.ScriptResult{
				ID:       script.ID,
				Output:   script.Output,
				Port:     port.PortID,
				Protocol: port.Protocol,
			})
		}
	}

	for _, script := range host.HostScripts {
		result.Scripts = append(result.Scripts, models.ScriptResult{
			ID:     script.ID,
			Output: script.Output,
		})
	}

	for _, match := range host.OS.Matches {
		result.OSMatches = append(result.OSMatches, models.OSMatch{
			Name:     match.Name,
			Accuracy: match.Accuracy,
		})
	}

	return result
}

func argsFor(pass models.ProbePass, mode models.ScanMode) ([]string, error) {
	if pass == models.PassPort {
		args, ok := portPassArgs[mode]
		if !ok {
			// Unrecognized modes degrade to the quick profile.
			args = portPassArgs[models.ModeQuick]
		}

		return append([]string{}, args...), nil
	}

	args, ok := passArgs[pass]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownPass, pass)
	}

	return append([]string{}, args...), nil
}

// validateTarget accepts IPv4/IPv6 literals and plain hostnames. Anything
// that could be read as a probe-tool option is rejected.
func validateTarget(target string) error {
	if target == "" {
		return fmt.Errorf("%w: empty target", errInvalidTarget)
	}

	if net.ParseIP(target) != nil {
		return nil
	}

	if len(target) > maxHostnameLen || !hostnameRe.MatchString(target) {
		return fmt.Errorf("%w: %q", errInvalidTarget, target)
	}

	return nil
}

func validateNetwork(network string) error {
	if _, _, err := net.ParseCIDR(network); err == nil {
		return nil
	}

	return validateTarget(network)
}

const maxCauseLen = 256

// truncateCause bounds tool error text so raw stack traces never reach
// polling callers.
func truncateCause(cause string) string {
	if len(cause) > maxCauseLen {
		return cause[:maxCauseLen]
	}

	return cause
}
