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

import (
	"context"
	"sync"

	"github.com/fleetscan/fleetscan/pkg/models"
)

// MemoryQueue is a process-local JobQueue for tests and single-node
// deployments without a broker. Delivery is at-least-once within the process:
// a failed job is requeued until the delivery cap.
type MemoryQueue struct {
	mu     sync.Mutex
	jobs   chan queuedJob
	closed bool
}

type queuedJob struct {
	job        *models.ScanJob
	deliveries int
}

// NewMemoryQueue creates a queue buffering up to size pending jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{jobs: make(chan queuedJob, size)}
}

var _ JobQueue = (*MemoryQueue)(nil)

func (q *MemoryQueue) Enqueue(_ context.Context, job *models.ScanJob) error {
	if job == nil {
		return ErrJobNil
	}

	if job.ScanID == "" {
		return ErrJobIDRequired
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send: a full buffer with no consumer must not hold the
	// lock and wedge Close behind it.
	select {
	case q.jobs <- queuedJob{job: job, deliveries: 0}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, handler JobHandler) error {
	if handler == nil {
		return ErrHandlerNil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-q.jobs:
			if !ok {
				return nil
			}

			entry.deliveries++

			if err := handler(ctx, entry.job); err != nil && entry.deliveries < defaultMaxDeliver {
				q.requeue(entry)
			}
		}
	}
}

func (q *MemoryQueue) requeue(entry queuedJob) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	select {
	case q.jobs <- entry:
	default:
		// Buffer full; the job is dropped rather than blocking the consumer.
	}
}

func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true

		close(q.jobs)
	}
}
