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

import "strings"

const (
	unknownManufacturer = "Unknown"
	unknownDeviceType   = "Unknown IoT Device"
)

// deviceTypeRule maps product-string keywords to a device type label.
type deviceTypeRule struct {
	label    string
	keywords []string
}

var deviceTypeRules = []deviceTypeRule{
	{"IP Camera", []string{"camera", "webcam", "ipcam"}},
	{"Router", []string{"router", "gateway"}},
	{"Thermostat", []string{"thermostat", "hvac"}},
	{"Printer", []string{"printer"}},
	{"Network Switch", []string{"switch", "hub"}},
}

// manufacturerLabels maps vendor keywords found in product strings to their
// display names.
var manufacturerLabels = map[string]string{
	"hikvision": "Hikvision",
	"dahua":     "Dahua",
	"axis":      "Axis Communications",
	"cisco":     "Cisco",
	"netgear":   "Netgear",
	"linksys":   "Linksys",
	"tp-link":   "TP-Link",
	"dlink":     "D-Link",
}

// identifyDeviceType infers a device type from a service product string. No
// match yields the unknown label rather than an error.
func identifyDeviceType(product string) string {
	lower := strings.ToLower(product)

	for _, rule := range deviceTypeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.label
			}
		}
	}

	return unknownDeviceType
}

// identifyManufacturer infers a manufacturer from a service product string.
func identifyManufacturer(product string) string {
	lower := strings.ToLower(product)

	for keyword, label := range manufacturerLabels {
		if strings.Contains(lower, keyword) {
			return label
		}
	}

	return unknownManufacturer
}
