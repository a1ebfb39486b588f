// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main provides the CLI entrypoint for the ZCL artifact generator.
//
// The generator accepts configuration via CLI flags, environment variables,
// or defaults:
//
//   - Config file: --config flag, CONFIG_FILE env var, or "config.yaml" default
//   - Output directory: --output-dir flag overrides the configured directory
//
// The generator renders all configured templates against the cluster-library
// metadata store and exits. It shuts down early on SIGTERM or SIGINT.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	_ "github.com/KimMachineGun/automemlimit"

	"zcl-template-gen/pkg/core/config"
	"zcl-template-gen/pkg/core/logging"
)

const (
	// DefaultConfigFile is the default configuration file path.
	DefaultConfigFile = "config.yaml"
)

func main() {
	var (
		configFile string
		outputDir  string
	)

	flag.StringVar(&configFile, "config", "",
		"Path to the generator configuration file (env: CONFIG_FILE)")
	flag.StringVar(&outputDir, "output-dir", "",
		"Directory rendered artifacts are written to (overrides config)")
	flag.Parse()

	// Configuration priority: CLI flags > Environment variables > Defaults

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile == "" {
		configFile = DefaultConfigFile
	}

	cfg, err := config.LoadConfigFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if outputDir != "" {
		cfg.Generator.OutputDir = outputDir
	}

	if err := config.ValidateStructure(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.LogLevel)

	// Log detected resource limits for observability
	gomaxprocs := runtime.GOMAXPROCS(0)
	var gomemlimit string
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		gomemlimit = fmt.Sprintf("%d bytes (%.2f MiB)", limit, float64(limit)/(1024*1024))
	} else {
		gomemlimit = "unlimited"
	}

	logger.Info("ZCL artifact generator starting",
		"version", "v0.1.0",
		"config", configFile,
		"database", cfg.Database.Path,
		"session_ref", cfg.Database.SessionRef,
		"output_dir", cfg.Generator.OutputDir,
		"templates", len(cfg.Templates),
		"log_level", cfg.Logging.LogLevel,
		"gomaxprocs", gomaxprocs,
		"gomemlimit", gomemlimit)

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		if ctx.Err() == nil {
			logger.Error("Generation failed", "error", err)
			cancel()
			os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel() called explicitly before exit
		}
	}

	logger.Info("Generator shutdown complete")
}
