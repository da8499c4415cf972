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
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/models"
)

// Scan lifecycle event types.
const (
	EventScanCompleted = "com.fleetscan.scan.completed"
	EventScanFailed    = "com.fleetscan.scan.failed"
	EventHighRisk      = "com.fleetscan.scan.high_risk"
)

var eventSubjectsByType = map[string]string{
	EventScanCompleted: "events.scan.completed",
	EventScanFailed:    "events.scan.failed",
	EventHighRisk:      "events.scan.high_risk",
}

// ScanEventPublisher publishes CloudEvents-shaped scan lifecycle events to
// the events stream.
type ScanEventPublisher struct {
	js     jetstream.JetStream
	stream string
	logger logger.Logger
}

var _ EventPublisher = (*ScanEventPublisher)(nil)

// NewScanEventPublisher ensures the event stream exists and returns a
// publisher bound to it.
func NewScanEventPublisher(
	ctx context.Context, js jetstream.JetStream, cfg *models.Queue, log logger.Logger,
) (*ScanEventPublisher, error) {
	stream := defaultEventStream
	if cfg != nil && cfg.EventStream != "" {
		stream = cfg.EventStream
	}

	if _, err := js.Stream(ctx, stream); err != nil {
		streamConfig := jetstream.StreamConfig{
			Name:     stream,
			Subjects: eventSubjects,
		}

		if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrStreamFailed, stream, err)
		}

		log.Info().Str("stream", stream).Msg("created scan event stream")
	}

	return &ScanEventPublisher{js: js, stream: stream, logger: log}, nil
}

func (p *ScanEventPublisher) PublishScanEvent(
	ctx context.Context, eventType string, data models.ScanEventData,
) error {
	event := buildScanEvent(eventType, data)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal scan event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish scan event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("scan event published")

	return nil
}

// buildScanEvent wraps the payload in a CloudEvents envelope. Unknown event
// types publish under the completed subject rather than failing the scan over
// a notification.
func buildScanEvent(eventType string, data models.ScanEventData) models.CloudEvent {
	subject, ok := eventSubjectsByType[eventType]
	if !ok {
		subject = eventSubjectsByType[EventScanCompleted]
	}

	ts := data.Timestamp

	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          "fleetscan/scand",
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &ts,
		Data:            data,
	}
}
