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

package db

import "errors"

var (

	// Operation errors.

	ErrFailedToQuery  = errors.New("failed to query")
	ErrFailedToInsert = errors.New("failed to insert")
	ErrFailedToScan   = errors.New("failed to scan row")
	ErrFailedToInit   = errors.New("failed to initialize schema")

	// Lookup errors.

	ErrScanNotFound   = errors.New("scan not found")
	ErrDeviceNotFound = errors.New("device not found")

	// Validation errors.

	ErrScanNil          = errors.New("scan is nil")
	ErrScanIDRequired   = errors.New("scan id is required")
	ErrDeviceIDRequired = errors.New("device id is required")
	ErrDeviceIPRequired = errors.New("device ip is required")
	ErrTenantIDRequired = errors.New("tenant id is required")
)
