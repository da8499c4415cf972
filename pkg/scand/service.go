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

package scand

import (
	"context"
	"fmt"

	"github.com/fleetscan/fleetscan/pkg/db"
	"github.com/fleetscan/fleetscan/pkg/lifecycle"
	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/orchestrator"
	"github.com/fleetscan/fleetscan/pkg/probe"
	"github.com/fleetscan/fleetscan/pkg/queue"
)

// Service owns the scan engine's runtime: the store, the queue, and the
// orchestrator. It implements lifecycle.Service.
type Service struct {
	store db.Store
	jobs  queue.JobQueue
	orch  *orchestrator.Orchestrator
	log   logger.Logger
}

var _ lifecycle.Service = (*Service)(nil)

// NewService connects to Postgres and NATS, runs migrations, and assembles
// the orchestrator.
func NewService(ctx context.Context, cfg *Config, log logger.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.RunMigrations(ctx, pool, log); err != nil {
		pool.Close()

		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := db.NewScanStore(pool, log)

	nc, js, err := queue.Connect(cfg.Queue.URL, log)
	if err != nil {
		store.Close()

		return nil, err
	}

	jobs, err := queue.NewJetStreamQueue(ctx, nc, js, cfg.Queue, log)
	if err != nil {
		nc.Close()
		store.Close()

		return nil, err
	}

	events, err := queue.NewScanEventPublisher(ctx, js, cfg.Queue, log)
	if err != nil {
		nc.Close()
		store.Close()

		return nil, err
	}

	var probeOpts []probe.NmapOption
	if cfg.NmapBinary != "" {
		probeOpts = append(probeOpts, probe.WithBinary(cfg.NmapBinary))
	}

	prober, err := probe.NewNmapProber(log, probeOpts...)
	if err != nil {
		nc.Close()
		store.Close()

		return nil, fmt.Errorf("initialize prober: %w", err)
	}

	orch := orchestrator.New(cfg.Scans, store, prober, jobs, events, log)

	return &Service{store: store, jobs: jobs, orch: orch, log: log}, nil
}

// Orchestrator exposes the scan API for embedding callers.
func (s *Service) Orchestrator() *orchestrator.Orchestrator {
	return s.orch
}

// Start runs the orchestrator and blocks until the context is canceled, as
// lifecycle.Run expects.
func (s *Service) Start(ctx context.Context) error {
	if err := s.orch.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return ctx.Err()
}

func (s *Service) Stop(ctx context.Context) error {
	err := s.orch.Stop(ctx)

	s.jobs.Close()
	s.store.Close()

	return err
}
