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
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddrFromEnvPrefersFlag(t *testing.T) {
	t.Setenv("OPCTL_ADDR", "http://env:5001")
	require.Equal(t, "http://flag:5001", addrFromEnv("http://flag:5001"))
	require.Equal(t, "http://env:5001", addrFromEnv(""))
}

func TestAddrFromEnvDefault(t *testing.T) {
	require.NoError(t, os.Unsetenv("OPCTL_ADDR"))
	require.Equal(t, "http://localhost:5001", addrFromEnv(""))
}

func TestClientStatusReturnsErrorOnNonOKResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"INVALID_TARGET","message":"no such node"}`))
	}))
	defer srv.Close()

	client := newAPIClient(srv.URL)
	_, err := client.Status(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such node")
}

func TestClientPromoteSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, apiPrefix+"/promote/pg-2", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"\"pg-2\" promoted to primary","new_primary":"pg-2","warnings":[]}`))
	}))
	defer srv.Close()

	client := newAPIClient(srv.URL)
	result, err := client.Promote(context.Background(), "pg-2")
	require.NoError(t, err)
	require.Equal(t, "pg-2", result.NewPrimary)
}
