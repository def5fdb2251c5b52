/*
Copyright The CloudNativePG Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/operationmanagement/internal/api"
	"github.com/cloudnative-pg/operationmanagement/internal/config"
	"github.com/cloudnative-pg/operationmanagement/internal/metrics"
	"github.com/cloudnative-pg/operationmanagement/internal/nodedriver"
	"github.com/cloudnative-pg/operationmanagement/internal/obslog"
	"github.com/cloudnative-pg/operationmanagement/internal/orchestrator"
	"github.com/cloudnative-pg/operationmanagement/internal/probe"
	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

// newServeCmd runs the control plane itself: it wires the configuration,
// topology registry, node driver, prober and orchestrator together, then
// serves the HTTP API until it receives SIGINT or SIGTERM.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the operation-management control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	logger := obslog.Log.WithName("serve")

	cfg, err := config.Read(config.OsEnvironment{})
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	specs, err := cfg.InitialNodes()
	if err != nil {
		return fmt.Errorf("reading initial nodes: %w", err)
	}

	nodes := make([]topology.Node, 0, len(specs))
	for _, s := range specs {
		nodes = append(nodes, topology.Node{
			Name:      s.Name,
			Container: s.Container,
			Host:      s.Host,
			Port:      s.Port,
			Kind:      topology.Kind(s.Kind),
		})
	}

	registry := topology.NewRegistry(nodes)
	driver := nodedriver.NewDriver()
	prober := probe.NewSQLProber(driver)
	creds := probe.Credentials{User: cfg.DBUser, Password: cfg.DBPassword, DBName: cfg.DBName}

	orch := orchestrator.New(registry, driver, prober, creds)
	orch.PromoteDeadline = time.Duration(cfg.PromoteDeadlineSeconds) * time.Second
	orch.DemoteDeadline = time.Duration(cfg.DemoteDeadlineSeconds) * time.Second
	orch.StepDeadline = time.Duration(cfg.ProbeDeadlineSeconds) * time.Second

	snapshotter := &topology.Snapshotter{
		Registry:        registry,
		Prober:          prober,
		Credentials:     creds,
		ProbeDeadline:   time.Duration(cfg.ProbeDeadlineSeconds) * time.Second,
		HealthyLagBytes: cfg.HealthyLagBytes,
	}

	handlers := &api.Handlers{Snapshotter: snapshotter, Orchestrator: orch}
	collector := metrics.New(snapshotter, orch.Lock)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		errCh <- api.ListenAndServe(cfg.ListenAddr, handlers, collector)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return <-errCh
	}
}
