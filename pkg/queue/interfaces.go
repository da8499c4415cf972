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

// Package queue provides the scan job queue and the scan event publisher.
package queue

//go:generate mockgen -destination=mock_queue.go -package=queue github.com/fleetscan/fleetscan/pkg/queue JobQueue,EventPublisher

import (
	"context"

	"github.com/fleetscan/fleetscan/pkg/models"
)

// JobHandler processes one delivered scan job. A nil return acknowledges the
// job; an error triggers redelivery up to the delivery cap.
type JobHandler func(ctx context.Context, job *models.ScanJob) error

// JobQueue delivers scan jobs to workers with at-least-once semantics.
// Consumers must treat redelivery of an already-processed job as a no-op;
// the scan ID carried by the job is the idempotency key.
type JobQueue interface {
	// Enqueue submits a job for asynchronous execution.
	Enqueue(ctx context.Context, job *models.ScanJob) error

	// Consume fetches and processes jobs until the context is canceled.
	Consume(ctx context.Context, handler JobHandler) error

	Close()
}

// EventPublisher emits scan lifecycle notification events.
type EventPublisher interface {
	// PublishScanEvent publishes one scan lifecycle event. The event type
	// selects the subject.
	PublishScanEvent(ctx context.Context, eventType string, data models.ScanEventData) error
}
