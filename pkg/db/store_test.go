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

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetscan/fleetscan/pkg/models"
)

func TestCreateScanValidation(t *testing.T) {
	store := &ScanStore{}

	tests := []struct {
		name     string
		scan     *models.Scan
		expected error
	}{
		{"nil scan", nil, ErrScanNil},
		{"missing id", &models.Scan{DeviceID: "d", TenantID: "t"}, ErrScanIDRequired},
		{"missing device", &models.Scan{ID: "s", TenantID: "t"}, ErrDeviceIDRequired},
		{"missing tenant", &models.Scan{ID: "s", DeviceID: "d"}, ErrTenantIDRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateScan(context.Background(), tt.scan)
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestUpdateScanStatusRequiresID(t *testing.T) {
	store := &ScanStore{}

	err := store.UpdateScanStatus(context.Background(), "", models.ScanRunning, "")
	require.ErrorIs(t, err, ErrScanIDRequired)
}

func TestCompleteScanValidation(t *testing.T) {
	store := &ScanStore{}

	err := store.CompleteScan(context.Background(), nil)
	require.ErrorIs(t, err, ErrScanNil)

	err = store.CompleteScan(context.Background(), &CompletedScan{Scan: &models.Scan{}})
	require.ErrorIs(t, err, ErrScanIDRequired)

	err = store.CompleteScan(context.Background(), &CompletedScan{Scan: &models.Scan{ID: "s"}})
	require.ErrorIs(t, err, ErrDeviceIDRequired)
}

func TestUpsertDeviceValidation(t *testing.T) {
	store := &ScanStore{}

	_, err := store.UpsertDevice(context.Background(), "", models.DiscoveredHost{IP: "10.0.0.1"})
	require.ErrorIs(t, err, ErrTenantIDRequired)

	_, err = store.UpsertDevice(context.Background(), "tenant-a", models.DiscoveredHost{})
	require.ErrorIs(t, err, ErrDeviceIPRequired)
}

func TestTruncateDescription(t *testing.T) {
	short := "CVE-2017-5638 struts RCE"
	assert.Equal(t, short, truncateDescription(short))

	long := strings.Repeat("x", maxVulnDescriptionLen+500)
	truncated := truncateDescription(long)
	assert.Len(t, truncated, maxVulnDescriptionLen)
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements("CREATE TABLE a (id INT);\n\nCREATE INDEX b ON a (id);\n")

	require.Len(t, statements, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", statements[0])
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, "0001_initial", extractVersion("0001_initial.up.sql"))
}
