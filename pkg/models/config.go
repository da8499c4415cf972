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

// Database holds connection settings for the Postgres store.
type Database struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	Database        string `json:"database"`
	Username        string `json:"username"`
	Password        string `json:"password,omitempty"`
	SSLMode         string `json:"ssl_mode,omitempty"`
	ApplicationName string `json:"application_name,omitempty"`
	MaxConnections  int32  `json:"max_connections,omitempty"`
	MinConnections  int32  `json:"min_connections,omitempty"`
}

// Queue holds connection settings for the NATS-backed job queue and event
// stream.
type Queue struct {
	URL          string `json:"url"`
	JobStream    string `json:"job_stream,omitempty"`
	JobSubject   string `json:"job_subject,omitempty"`
	EventStream  string `json:"event_stream,omitempty"`
	ConsumerName string `json:"consumer_name,omitempty"`

	// AckWaitSeconds must outlast the longest scan; an in-flight job that
	// exceeds it is redelivered to another worker mid-probe.
	AckWaitSeconds int `json:"ack_wait_seconds,omitempty"`
}
