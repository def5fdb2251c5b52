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

// Package api exposes the control plane's HTTP surface: the read-only
// status/overview endpoints and the mutating promote/demote-all/hosts
// endpoints, under the /api/operationmanagement prefix.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudnative-pg/operationmanagement/internal/obslog"
)

const prefix = "/api/operationmanagement"

var server *http.Server

// NewRouter builds the chi router for the given Handlers, mounted under
// prefix, with the request-log middleware applied to every route. If
// metricsCollector is non-nil, /metrics is exposed outside the prefix.
func NewRouter(h *Handlers, metricsCollector ...prometheus.Collector) http.Handler {
	root := chi.NewRouter()

	root.Route(prefix, func(r chi.Router) {
		r.Use(requestLog(obslog.Log.WithName("api")))

		r.Get("/status", h.status)
		r.Get("/status/{node}", h.statusByNode)
		r.Get("/overview", h.overview)
		r.Get("/nodes", h.nodes)
		r.Post("/promote/{node}", h.promote)
		r.Post("/demote-all", h.demoteAll)
		r.Post("/hosts", h.addHost)
		r.Delete("/hosts/{id}", h.deleteHost)
		r.Get("/health", h.health)
	})

	if len(metricsCollector) > 0 {
		registry := prometheus.NewRegistry()
		registry.MustRegister(metricsCollector[0], collectors.NewGoCollector())
		root.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return root
}

// ListenAndServe starts the control-plane web server on listenAddr. It
// blocks until Shutdown is called, at which point it returns nil.
func ListenAndServe(listenAddr string, h *Handlers, metricsCollector ...prometheus.Collector) error {
	server = &http.Server{Addr: listenAddr, Handler: NewRouter(h, metricsCollector...)}

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server started by ListenAndServe.
func Shutdown(ctx context.Context) error {
	if server == nil {
		return fmt.Errorf("server not started")
	}
	return server.Shutdown(ctx)
}
