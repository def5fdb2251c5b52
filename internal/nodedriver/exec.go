/*
This file is part of Cloud Native PostgreSQL.

Copyright (C) 2019-2022 EnterpriseDB Corporation.
*/

// Package nodedriver runs shell commands inside a node's container and
// opens the SQL session used to probe it, logging both legs with the
// process-wide obslog.Log.
package nodedriver

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/go-logr/logr"

	"github.com/cloudnative-pg/operationmanagement/internal/obslog"
)

const (
	// pipeKey is the key under which a log line records which stream it came from.
	pipeKey = "pipe"
	stdOut  = "stdout"
	stdErr  = "stderr"
)

// CommandResult is what came back from a command run inside a node's
// container: its exit code and the buffered output of both streams.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Driver runs commands inside a fixed set of named containers, via the
// local docker CLI, and opens SQL sessions against them (see connection.go).
type Driver struct{}

// NewDriver returns a Driver. It carries no state: every call takes the
// container name it targets, so one Driver serves every node in the cluster.
func NewDriver() *Driver {
	return &Driver{}
}

// Exec runs cmd inside container's shell and waits for it to finish or ctx
// to be done. cmd is handed verbatim to `docker exec <container> bash -c
// <cmd>` — the driver never parses or splits it, so commands relying on
// shell globbing or environment expansion (e.g. "rm -rf $PGDATA/*") behave
// exactly as if typed at a shell inside the container.
func (d *Driver) Exec(ctx context.Context, container, cmd string) (CommandResult, error) {
	execCmd := exec.CommandContext(ctx, "docker", "exec", container, "bash", "-c", cmd) //nolint:gosec

	logger := obslog.Log.WithName(container).WithValues("command", cmd)

	return runBuffering(execCmd, logger)
}

// runBuffering runs cmd capturing stdout/stderr separately, logs both after
// the command exits (regardless of its outcome) and reports the exit code
// instead of an *exec.ExitError, mirroring how a node's control channel is
// expected to report command failures rather than raise on them.
func runBuffering(cmd *exec.Cmd, logger logr.Logger) (CommandResult, error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	if s := stdoutBuf.String(); len(s) > 0 {
		logger.WithValues(pipeKey, stdOut).Info(s)
	}
	if s := stderrBuf.String(); len(s) > 0 {
		logger.WithValues(pipeKey, stdErr).Info(s)
	}

	result := CommandResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if runErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if ok := asExitError(runErr, &exitErr); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, runErr
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}
