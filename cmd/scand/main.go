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

package main

import (
	"context"
	"flag"
	"log"

	"github.com/fleetscan/fleetscan/pkg/config"
	"github.com/fleetscan/fleetscan/pkg/lifecycle"
	"github.com/fleetscan/fleetscan/pkg/logger"
	"github.com/fleetscan/fleetscan/pkg/scand"
	"github.com/fleetscan/fleetscan/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/fleetscan/scand.json", "Path to scand config file")
	flag.Parse()

	ctx := context.Background()

	bootstrapLog, err := lifecycle.CreateComponentLogger("scand", logger.DefaultConfig())
	if err != nil {
		return err
	}

	var cfg scand.Config

	if err := config.NewConfig(bootstrapLog).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return err
	}

	serviceLog := bootstrapLog

	if cfg.Logging != nil {
		serviceLog, err = lifecycle.CreateComponentLogger("scand", cfg.Logging)
		if err != nil {
			return err
		}
	}

	serviceLog.Info().Str("version", version.GetFullVersion()).Msg("Starting scand")

	svc, err := scand.NewService(ctx, &cfg, serviceLog)
	if err != nil {
		return err
	}

	return lifecycle.Run(ctx, svc, serviceLog)
}
