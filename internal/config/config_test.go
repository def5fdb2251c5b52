/*
This file is part of Cloud Native PostgreSQL.

Copyright (C) 2019-2021 EnterpriseDB Corporation.
*/

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEnvironment map[string]string

func (f fakeEnvironment) Getenv(key string) string {
	return f[key]
}

func TestReadAppliesDefaults(t *testing.T) {
	cfg, err := Read(fakeEnvironment{})
	require.NoError(t, err)

	require.Equal(t, ":5001", cfg.ListenAddr)
	require.Equal(t, int64(1048576), cfg.HealthyLagBytes)
	require.Equal(t, 180, cfg.PromoteDeadlineSeconds)
	require.Equal(t, 120, cfg.DemoteDeadlineSeconds)
	require.Equal(t, 5, cfg.ProbeDeadlineSeconds)

	nodes, err := cfg.InitialNodes()
	require.NoError(t, err)
	require.Empty(t, nodes)
}

func TestReadOverridesFromEnvironment(t *testing.T) {
	env := fakeEnvironment{
		"LISTEN_ADDR":       ":9090",
		"DB_USER":           "repl",
		"HEALTHY_LAG_BYTES": "2048",
		"INITIAL_NODES":     `[{"name":"pg-1","container":"pg-1","host":"pg-1","port":5432,"kind":"primary"}]`,
	}

	cfg, err := Read(env)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, "repl", cfg.DBUser)
	require.Equal(t, int64(2048), cfg.HealthyLagBytes)

	nodes, err := cfg.InitialNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "pg-1", nodes[0].Name)
	require.Equal(t, "primary", nodes[0].Kind)
}

func TestReadRejectsInvalidInteger(t *testing.T) {
	_, err := Read(fakeEnvironment{"HEALTHY_LAG_BYTES": "not-a-number"})
	require.Error(t, err)
}
