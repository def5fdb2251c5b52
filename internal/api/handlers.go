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

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudnative-pg/operationmanagement/internal/apierrors"
	"github.com/cloudnative-pg/operationmanagement/internal/orchestrator"
	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

// Handlers holds everything the HTTP layer needs: a Snapshotter for the
// read-only endpoints, an Orchestrator for the mutating ones.
type Handlers struct {
	Snapshotter  *topology.Snapshotter
	Orchestrator *orchestrator.Orchestrator
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.Snapshotter.Status(r.Context()))
}

func (h *Handlers) statusByNode(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "node")

	status := h.Snapshotter.Status(r.Context())
	node, ok := status.Nodes[name]
	if !ok {
		renderError(w, apierrors.New(apierrors.NotFound, fmt.Sprintf("no such node %q", name)))
		return
	}
	renderJSON(w, http.StatusOK, node)
}

func (h *Handlers) overview(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.Snapshotter.Overview(r.Context()))
}

// nodes is a supplemental flat listing extending /status, grounded on the
// original service's get_nodes endpoint.
func (h *Handlers) nodes(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"nodes": h.Snapshotter.Registry.Snapshot()})
}

func (h *Handlers) promote(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "node")

	result, err := h.Orchestrator.Promote(r.Context(), target)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("%q promoted to primary", result.NewPrimary),
		"new_primary": result.NewPrimary,
		"warnings":    result.Warnings,
	})
}

func (h *Handlers) demoteAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.Orchestrator.DemoteAll(r.Context())
	if err != nil {
		apiErr, ok := err.(*apierrors.Error)
		if ok && apiErr.Kind == apierrors.ReconfigPartial {
			renderJSON(w, http.StatusOK, map[string]any{
				"message":  "demote-all completed with warnings",
				"demoted":  result.Demoted,
				"warnings": result.Warnings,
			})
			return
		}
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"message": "every reachable backup is now a standby",
		"demoted": result.Demoted,
	})
}

type addHostRequest struct {
	Name      string        `json:"name"`
	Container string        `json:"container"`
	Host      string        `json:"host"`
	Port      int           `json:"port"`
	Kind      topology.Kind `json:"kind"`
}

func (h *Handlers) addHost(w http.ResponseWriter, r *http.Request) {
	var req addHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, apierrors.New(apierrors.InvalidTarget, "malformed request body"))
		return
	}

	node := topology.Node{
		Name:      req.Name,
		Container: req.Container,
		Host:      req.Host,
		Port:      req.Port,
		Kind:      req.Kind,
	}

	if err := h.Orchestrator.AddHost(r.Context(), node); err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, map[string]any{"host": node})
}

func (h *Handlers) deleteHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Orchestrator.DeleteHost(r.Context(), id); err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"deleted_host": id})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
