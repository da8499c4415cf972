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

import (
	"sync"
	"time"

	"github.com/fleetscan/fleetscan/pkg/models"
)

// Advisory progress checkpoints reported while a scan executes.
const (
	progressQueued      = 0
	progressStarted     = 10
	progressProbing     = 20
	progressAggregating = 80
	progressDone        = 100
)

// progressTracker is the in-memory progress store, keyed by scan ID. Percent
// never regresses for a given scan; late lower-valued checkpoints only update
// the status text.
type progressTracker struct {
	mu      sync.RWMutex
	entries map[string]models.ScanProgress
}

func newProgressTracker() *progressTracker {
	return &progressTracker{entries: make(map[string]models.ScanProgress)}
}

func (t *progressTracker) set(scanID string, state models.ScanStatus, percent int, statusText string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[scanID]
	if ok && percent < entry.Percent {
		percent = entry.Percent
	}

	t.entries[scanID] = models.ScanProgress{
		ScanID:     scanID,
		State:      state,
		Percent:    percent,
		StatusText: statusText,
		UpdatedAt:  time.Now().UTC(),
	}
}

func (t *progressTracker) get(scanID string) (models.ScanProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[scanID]

	return entry, ok
}

// pruneTerminal drops terminal entries last updated before the cutoff so the
// tracker does not grow without bound.
func (t *progressTracker) pruneTerminal(olderThan time.Duration) int {
	cutoff := time.Now().UTC().Add(-olderThan)

	t.mu.Lock()
	defer t.mu.Unlock()

	var pruned int

	for scanID, entry := range t.entries {
		if entry.State.Terminal() && entry.UpdatedAt.Before(cutoff) {
			delete(t.entries, scanID)

			pruned++
		}
	}

	return pruned
}
