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

// Package scand wires the scan engine's components into a runnable service.
package scand

import (
	"errors"

	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/models"
	"github.com/fleetscan/fleetscan/pkg/orchestrator"
)

var (
	ErrDatabaseRequired = errors.New("database configuration is required")
	ErrQueueURLRequired = errors.New("queue url is required")
)

// Config is the scand service configuration.
type Config struct {
	Logging  *logger.Config   `json:"logging,omitempty"`
	Database *models.Database `json:"database"`
	Queue    *models.Queue    `json:"queue"`

	// Scans tunes the orchestrator; zero fields take defaults.
	Scans orchestrator.Config `json:"scans,omitempty"`

	// NmapBinary overrides the probe tool path.
	NmapBinary string `json:"nmap_binary,omitempty"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.Database == nil {
		return ErrDatabaseRequired
	}

	if c.Queue == nil || c.Queue.URL == "" {
		return ErrQueueURLRequired
	}

	return nil
}
