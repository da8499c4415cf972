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

package queue

import "errors"

var (
	ErrJobNil         = errors.New("scan job is nil")
	ErrJobIDRequired  = errors.New("scan job id is required")
	ErrQueueClosed    = errors.New("queue is closed")
	ErrQueueFull      = errors.New("queue buffer is full")
	ErrHandlerNil     = errors.New("job handler is nil")
	ErrConnectFailed  = errors.New("failed to connect to NATS")
	ErrStreamFailed   = errors.New("failed to create or get stream")
	ErrConsumerFailed = errors.New("failed to create or get consumer")
)
