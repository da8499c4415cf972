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
	"regexp"
	"strings"
)

// Severity levels assigned to vulnerability findings.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// severityRule maps evidence keywords to a severity. Rules are checked in
// order and the first match wins; anything unmatched is low.
type severityRule struct {
	severity string
	keywords []string
}

var severityRules = []severityRule{
	{SeverityCritical, []string{"critical", "remote code execution", "rce"}},
	{SeverityHigh, []string{"high", "privilege escalation", "authentication bypass"}},
	{SeverityMedium, []string{"medium", "information disclosure", "denial of service"}},
}

// classifySeverity assigns a severity from raw script evidence text. Matching
// is case-insensitive.
func classifySeverity(output string) string {
	lower := strings.ToLower(output)

	for _, rule := range severityRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.severity
			}
		}
	}

	return SeverityLow
}

var cvePattern = regexp.MustCompile(`CVE-\d{4}-\d{4,7}`)

// extractCVEIDs pulls CVE identifiers out of raw script evidence text.
func extractCVEIDs(output string) []string {
	return cvePattern.FindAllString(output, -1)
}
