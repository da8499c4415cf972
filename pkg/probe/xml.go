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
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Internal parsing structs matching nmap XML output.
type nmapRun struct {
	Args  string     `xml:"args,attr"`
	Hosts []nmapHost `xml:"host"`
}

type nmapHost struct {
	Status      nmapHostState `xml:"status"`
	Addresses   []nmapAddress `xml:"address"`
	Hostnames   nmapHostnames `xml:"hostnames"`
	Ports       []nmapPort    `xml:"ports>port"`
	HostScripts []nmapScript  `xml:"hostscript>script"`
	OS          nmapOS        `xml:"os"`
}

type nmapHostState struct {
	State string `xml:"state,attr"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
	Vendor   string `xml:"vendor,attr"`
}

type nmapHostnames struct {
	Hostnames []nmapHostname `xml:"hostname"`
}

type nmapHostname struct {
	Name string `xml:"name,attr"`
}

type nmapPort struct {
	Protocol string       `xml:"protocol,attr"`
	PortID   int          `xml:"portid,attr"`
	State    nmapState    `xml:"state"`
	Service  nmapService  `xml:"service"`
	Scripts  []nmapScript `xml:"script"`
}

type nmapState struct {
	State string `xml:"state,attr"`
}

type nmapService struct {
	Name      string `xml:"name,attr"`
	Product   string `xml:"product,attr"`
	Version   string `xml:"version,attr"`
	ExtraInfo string `xml:"extrainfo,attr"`
}

type nmapScript struct {
	ID     string `xml:"id,attr"`
	Output string `xml:"output,attr"`
}

type nmapOS struct {
	Matches []nmapOSMatch `xml:"osmatch"`
}

type nmapOSMatch struct {
	Name     string `xml:"name,attr"`
	Accuracy int    `xml:"accuracy,attr"`
}

func parseXML(r io.Reader) (*nmapRun, error) {
	var run nmapRun

	dec := xml.NewDecoder(r)
	if err := dec.Decode(&run); err != nil {
		return nil, fmt.Errorf("decode nmap xml: %w", err)
	}

	return &run, nil
}

// findHost locates the host entry for the probed target. nmap keys hosts by
// resolved address, so a hostname target is matched against hostnames too.
func findHost(run *nmapRun, target string) (*nmapHost, bool) {
	for i := range run.Hosts {
		h := &run.Hosts[i]

		for _, a := range h.Addresses {
			if a.Addr == target {
				return h, true
			}
		}

		for _, n := range h.Hostnames.Hostnames {
			if strings.EqualFold(n.Name, target) {
				return h, true
			}
		}
	}

	// Single-host probes report exactly one entry regardless of how the
	// target was spelled.
	if len(run.Hosts) == 1 {
		return &run.Hosts[0], true
	}

	return nil, false
}

func primaryAddress(h *nmapHost) string {
	for _, a := range h.Addresses {
		t := strings.ToLower(a.AddrType)
		if t == "ipv4" || t == "ipv6" {
			return a.Addr
		}
	}

	if len(h.Addresses) > 0 {
		return h.Addresses[0].Addr
	}

	return ""
}

func macAddress(h *nmapHost) (mac, vendor string) {
	for _, a := range h.Addresses {
		if strings.ToLower(a.AddrType) == "mac" {
			return a.Addr, a.Vendor
		}
	}

	return "", ""
}

func firstHostname(h *nmapHost) string {
	if len(h.Hostnames.Hostnames) == 0 {
		return ""
	}

	return h.Hostnames.Hostnames[0].Name
}
