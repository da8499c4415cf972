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

package models

import "time"

// ScanMode selects the assessment depth of a scan and determines which probe
// passes run.
type ScanMode string

const (
	ModeQuick         ScanMode = "quick"
	ModeFull          ScanMode = "full"
	ModePort          ScanMode = "port"
	ModeVulnerability ScanMode = "vulnerability"
	ModeService       ScanMode = "service"
	ModeOS            ScanMode = "os"
	ModeIoT           ScanMode = "iot"
)

// ScanStatus is the state of a scan. Transitions are
// pending -> running -> {completed, failed}; terminal states are immutable.
type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// Terminal reports whether the status is one of the terminal states.
func (s ScanStatus) Terminal() bool {
	return s == ScanCompleted || s == ScanFailed
}

// Scan is one attempt to assess one device. Created by the orchestrator when
// a job is accepted and mutated only by the orchestrator.
type Scan struct {
	ID           string        `json:"id"`
	DeviceID     string        `json:"device_id"`
	TenantID     string        `json:"tenant_id"`
	Mode         ScanMode      `json:"scan_mode"`
	Status       ScanStatus    `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Findings     *ScanFindings `json:"findings,omitempty"`
	RiskScore    float64       `json:"risk_score"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// ScanJob is a scan request delivered through the job queue. ScanID is minted
// at submission time and doubles as the idempotency key: redelivery of the
// same job maps onto the same scan row.
type ScanJob struct {
	ScanID   string   `json:"scan_id"`
	DeviceID string   `json:"device_id"`
	TenantID string   `json:"tenant_id"`
	Mode     ScanMode `json:"scan_mode"`
}

// ScanProgress is the advisory progress checkpoint for a scan, consumable by
// a status-polling caller. Percent is monotonically non-decreasing for a
// given scan.
type ScanProgress struct {
	ScanID     string     `json:"scan_id"`
	State      ScanStatus `json:"state"`
	Percent    int        `json:"progress_percent"`
	StatusText string     `json:"status_text"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
