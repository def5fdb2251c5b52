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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

const apiPrefix = "/api/operationmanagement"

// apiClient is a thin HTTP client of the control plane's own API: every
// CLI subcommand other than "serve" is a caller of this client, not a
// second implementation of the orchestrator's logic.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(addr string) *apiClient {
	return &apiClient{baseURL: addr, http: &http.Client{Timeout: 30 * time.Second}}
}

// addrFromEnv resolves the control plane address a CLI subcommand talks to:
// the --addr flag if set, else OPCTL_ADDR, else the local default.
func addrFromEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("OPCTL_ADDR"); v != "" {
		return v
	}
	return "http://localhost:5001"
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response from %s %s: %w", method, path, err)
	}
	return raw, resp.StatusCode, nil
}

func (c *apiClient) errorFromBody(raw []byte, status int) error {
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
	}
	return fmt.Errorf("unexpected response (%d): %s", status, string(raw))
}

func (c *apiClient) Status(ctx context.Context) (topology.Status, error) {
	var out topology.Status
	raw, status, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, c.errorFromBody(raw, status)
	}
	return out, json.Unmarshal(raw, &out)
}

func (c *apiClient) Overview(ctx context.Context) (topology.Overview, error) {
	var out topology.Overview
	raw, status, err := c.do(ctx, http.MethodGet, "/overview", nil)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, c.errorFromBody(raw, status)
	}
	return out, json.Unmarshal(raw, &out)
}

type promoteResponse struct {
	Message    string   `json:"message"`
	NewPrimary string   `json:"new_primary"`
	Warnings   []string `json:"warnings"`
}

func (c *apiClient) Promote(ctx context.Context, node string) (promoteResponse, error) {
	var out promoteResponse
	raw, status, err := c.do(ctx, http.MethodPost, "/promote/"+node, nil)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, c.errorFromBody(raw, status)
	}
	return out, json.Unmarshal(raw, &out)
}

type demoteAllResponse struct {
	Message  string   `json:"message"`
	Demoted  []string `json:"demoted"`
	Warnings []string `json:"warnings"`
}

func (c *apiClient) DemoteAll(ctx context.Context) (demoteAllResponse, error) {
	var out demoteAllResponse
	raw, status, err := c.do(ctx, http.MethodPost, "/demote-all", nil)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, c.errorFromBody(raw, status)
	}
	return out, json.Unmarshal(raw, &out)
}
