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
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/models"
)

const (
	defaultJobStream   = "FLEETSCAN_JOBS"
	defaultJobSubject  = "scans.jobs"
	defaultConsumer    = "scan-workers"
	defaultEventStream = "FLEETSCAN_EVENTS"

	// The default ack wait covers the 30 minute scan timeout with margin;
	// anything shorter redelivers long scans while they are still running.
	defaultAckWait = 35 * time.Minute

	defaultMaxDeliver  = 3
	defaultMaxFetch    = 16
	defaultFetchExpiry = 30 * time.Second
	fetchBackoff       = time.Second
)

// eventSubjects covers everything published to the event stream.
var eventSubjects = []string{"events.scan.*"}

// Connect dials NATS with reconnect handlers wired to the logger and returns
// the connection plus a JetStream context.
func Connect(url string, log logger.Logger) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS async error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return nc, js, nil
}

// JetStreamQueue is the NATS JetStream JobQueue implementation. Jobs are
// published to a work-queue stream and consumed through a durable pull
// consumer, so delivery survives worker restarts.
type JetStreamQueue struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	stream   string
	subject  string
	consumer string
	ackWait  time.Duration
	logger   logger.Logger
}

var _ JobQueue = (*JetStreamQueue)(nil)

// NewJetStreamQueue ensures the job stream exists and returns a queue bound
// to it. Empty config fields fall back to the defaults.
func NewJetStreamQueue(
	ctx context.Context, nc *nats.Conn, js jetstream.JetStream, cfg *models.Queue, log logger.Logger,
) (*JetStreamQueue, error) {
	q := &JetStreamQueue{
		nc:       nc,
		js:       js,
		stream:   defaultJobStream,
		subject:  defaultJobSubject,
		consumer: defaultConsumer,
		ackWait:  ackWaitFor(cfg),
		logger:   log,
	}

	if cfg != nil {
		if cfg.JobStream != "" {
			q.stream = cfg.JobStream
		}

		if cfg.JobSubject != "" {
			q.subject = cfg.JobSubject
		}

		if cfg.ConsumerName != "" {
			q.consumer = cfg.ConsumerName
		}
	}

	if _, err := js.Stream(ctx, q.stream); err != nil {
		streamConfig := jetstream.StreamConfig{
			Name:      q.stream,
			Subjects:  []string{q.subject},
			Retention: jetstream.WorkQueuePolicy,
		}

		if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrStreamFailed, q.stream, err)
		}

		log.Info().Str("stream", q.stream).Msg("created scan job stream")
	}

	return q, nil
}

func (q *JetStreamQueue) Enqueue(ctx context.Context, job *models.ScanJob) error {
	if job == nil {
		return ErrJobNil
	}

	if job.ScanID == "" {
		return ErrJobIDRequired
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal scan job: %w", err)
	}

	// The scan ID doubles as the message ID so a retried publish never
	// lands the same job twice.
	ack, err := q.js.Publish(ctx, q.subject, payload, jetstream.WithMsgID(job.ScanID))
	if err != nil {
		return fmt.Errorf("failed to publish scan job: %w", err)
	}

	q.logger.Debug().
		Str("scan_id", job.ScanID).
		Str("device_id", job.DeviceID).
		Uint64("seq", ack.Sequence).
		Msg("scan job enqueued")

	return nil
}

// Consume fetches jobs from the durable pull consumer and hands them to the
// handler until the context is canceled. A handler error naks the message for
// redelivery; messages at the delivery cap are acked and dropped so a poison
// job cannot wedge the queue.
func (q *JetStreamQueue) Consume(ctx context.Context, handler JobHandler) error {
	if handler == nil {
		return ErrHandlerNil
	}

	consumer, err := q.pullConsumer(ctx)
	if err != nil {
		return err
	}

	q.logger.Info().
		Str("stream", q.stream).
		Str("consumer", q.consumer).
		Msg("starting scan job consumer")

	for {
		select {
		case <-ctx.Done():
			q.logger.Info().Msg("stopping scan job consumer")

			return nil
		default:
			msgs, err := consumer.Fetch(defaultMaxFetch, jetstream.FetchMaxWait(defaultFetchExpiry))
			if err != nil {
				q.logger.Error().Err(err).Msg("failed to fetch scan jobs")
				time.Sleep(fetchBackoff)

				continue
			}

			for msg := range msgs.Messages() {
				q.handleMessage(ctx, msg, handler)
			}

			if fetchErr := msgs.Error(); fetchErr != nil {
				q.logger.Error().Err(fetchErr).Msg("scan job fetch error")
			}
		}
	}
}

// ackWaitFor returns the consumer ack wait, configured in whole seconds or
// defaulted high enough that in-flight scans are never redelivered mid-probe.
func ackWaitFor(cfg *models.Queue) time.Duration {
	if cfg != nil && cfg.AckWaitSeconds > 0 {
		return time.Duration(cfg.AckWaitSeconds) * time.Second
	}

	return defaultAckWait
}

func (q *JetStreamQueue) pullConsumer(ctx context.Context) (jetstream.Consumer, error) {
	consumer, err := q.js.Consumer(ctx, q.stream, q.consumer)
	if err == nil {
		return consumer, nil
	}

	cfg := jetstream.ConsumerConfig{
		Durable:       q.consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       q.ackWait,
		MaxDeliver:    defaultMaxDeliver,
		FilterSubject: q.subject,
	}

	consumer, err = q.js.CreateConsumer(ctx, q.stream, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConsumerFailed, q.consumer, err)
	}

	return consumer, nil
}

func (q *JetStreamQueue) handleMessage(ctx context.Context, msg jetstream.Msg, handler JobHandler) {
	var job models.ScanJob

	if err := json.Unmarshal(msg.Data(), &job); err != nil {
		q.logger.Error().Err(err).Msg("dropping undecodable scan job")

		_ = msg.Ack()

		return
	}

	if err := handler(ctx, &job); err != nil {
		metadata, metaErr := msg.Metadata()
		if metaErr == nil && metadata.NumDelivered >= defaultMaxDeliver {
			q.logger.Error().Err(err).
				Str("scan_id", job.ScanID).
				Uint64("deliveries", metadata.NumDelivered).
				Msg("scan job exhausted deliveries, dropping")

			_ = msg.Ack()

			return
		}

		q.logger.Warn().Err(err).Str("scan_id", job.ScanID).Msg("scan job failed, requeueing")

		_ = msg.Nak()

		return
	}

	_ = msg.Ack()
}

func (q *JetStreamQueue) Close() {
	if q.nc != nil {
		q.nc.Close()
	}
}
