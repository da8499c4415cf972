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

package orchestrator

import "errors"

var (
	ErrUnknownScanMode  = errors.New("unknown scan mode")
	ErrDeviceIDRequired = errors.New("device id is required")
	ErrTenantIDRequired = errors.New("tenant id is required")
	ErrNetworkRequired  = errors.New("network is required")
	ErrScanTimeout      = errors.New("scan deadline exceeded")
	ErrPersistFailed    = errors.New("failed to persist scan result")
	ErrProgressNotFound = errors.New("scan progress not found")
)
