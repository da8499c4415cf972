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

//go:generate mockgen -destination=mock_prober.go -package=probe github.com/fleetscan/fleetscan/pkg/probe Prober

package probe

import (
	"context"

	"github.com/fleetscan/fleetscan/pkg/models"
)

// Prober wraps the external network-probing capability. One call issues one
// probe pass against one target and returns the normalized intermediate
// result. Probing has real-world effect on the target host; rate limiting and
// authorization are enforced upstream.
type Prober interface {
	// Probe runs a single pass. Mode refines the argument profile for the
	// port pass (quick = top ports, full = all ports, port = service
	// detection). A host that does not respond is a valid empty result with
	// HostUp=false, not an error.
	Probe(ctx context.Context, target string, pass models.ProbePass, mode models.ScanMode) (*models.RawProbeResult, error)

	// Discover runs a ping sweep over a CIDR network and returns the hosts
	// that answered.
	Discover(ctx context.Context, network string) ([]models.DiscoveredHost, error)
}

// PassesForMode maps a scan mode to the probe passes it runs. The mapping is
// total: every mode value, including unrecognized ones, yields a non-empty
// pass list.
func PassesForMode(mode models.ScanMode) []models.ProbePass {
	switch mode {
	case models.ModeFull:
		return []models.ProbePass{
			models.PassPort,
			models.PassVulnerability,
			models.PassService,
			models.PassOS,
			models.PassIoT,
		}
	case models.ModeQuick, models.ModePort:
		return []models.ProbePass{models.PassPort}
	case models.ModeVulnerability:
		return []models.ProbePass{models.PassVulnerability}
	case models.ModeService:
		return []models.ProbePass{models.PassService}
	case models.ModeOS:
		return []models.ProbePass{models.PassOS}
	case models.ModeIoT:
		return []models.ProbePass{models.PassIoT}
	default:
		// Unrecognized modes degrade to a minimal port pass.
		return []models.ProbePass{models.PassPort}
	}
}
