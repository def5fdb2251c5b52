/*
This file is part of Cloud Native PostgreSQL.

Copyright (C) 2019-2021 EnterpriseDB Corporation.
*/

// Package config loads the operation-management control plane's
// configuration from the environment, the way pkg/configparser's
// EnvironmentSource was meant to be driven by a reflective reader.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// NodeSpec is one entry of INITIAL_NODES: a node known at startup.
type NodeSpec struct {
	Name      string `json:"name"`
	Container string `json:"container"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Kind      string `json:"kind"`
}

// Config holds every value recognized from the environment.
type Config struct {
	ListenAddr             string `env:"LISTEN_ADDR" default:":5001"`
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBName                 string `env:"DB_NAME"`
	HealthyLagBytes        int64  `env:"HEALTHY_LAG_BYTES" default:"1048576"`
	PromoteDeadlineSeconds int    `env:"PROMOTE_DEADLINE_SECONDS" default:"180"`
	DemoteDeadlineSeconds  int    `env:"DEMOTE_DEADLINE_SECONDS" default:"120"`
	ProbeDeadlineSeconds   int    `env:"PROBE_DEADLINE_SECONDS" default:"5"`
	InitialNodesJSON       string `env:"INITIAL_NODES" default:"[]"`
}

// InitialNodes unmarshals InitialNodesJSON into the node specs it describes.
func (c *Config) InitialNodes() ([]NodeSpec, error) {
	var nodes []NodeSpec
	if err := json.Unmarshal([]byte(c.InitialNodesJSON), &nodes); err != nil {
		return nil, fmt.Errorf("parsing INITIAL_NODES: %w", err)
	}
	return nodes, nil
}

// Read populates a Config from source, applying each field's `default` tag
// when the corresponding `env` variable is unset or empty.
func Read(source EnvironmentSource) (*Config, error) {
	cfg := &Config{}
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envKey, ok := field.Tag.Lookup("env")
		if !ok {
			continue
		}

		raw := source.Getenv(envKey)
		if raw == "" {
			raw = field.Tag.Get("default")
		}

		if err := setField(v.Field(i), raw); err != nil {
			return nil, fmt.Errorf("%s: %w", envKey, err)
		}
	}

	return cfg, nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", raw, err)
		}
		field.SetInt(n)
	default:
		return fmt.Errorf("unsupported config field kind %s", field.Kind())
	}
	return nil
}
