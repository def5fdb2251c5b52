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

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudnative-pg/operationmanagement/internal/apierrors"
	"github.com/cloudnative-pg/operationmanagement/internal/nodedriver"
	"github.com/cloudnative-pg/operationmanagement/internal/probe"
	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

// Orchestrator is the only component permitted to issue mutating exec calls
// or modify Topology state. It owns the OperationLock and runs the promote,
// demote-all and host-registry workflows against it.
type Orchestrator struct {
	Lock     *OperationLock
	Registry *topology.Registry
	Driver   *nodedriver.Driver
	Prober   probe.Prober

	Credentials     probe.Credentials
	ReplicationUser string

	PromoteDeadline time.Duration
	DemoteDeadline  time.Duration
	StepDeadline    time.Duration
}

// New builds an Orchestrator with the standard deadline defaults
// (180s promote, 120s demote-all, 20s per step); callers may overwrite
// the deadline fields afterwards.
func New(
	registry *topology.Registry, driver *nodedriver.Driver, prober probe.Prober, creds probe.Credentials,
) *Orchestrator {
	return &Orchestrator{
		Lock:            NewOperationLock(),
		Registry:        registry,
		Driver:          driver,
		Prober:          prober,
		Credentials:     creds,
		ReplicationUser: creds.User,
		PromoteDeadline: 180 * time.Second,
		DemoteDeadline:  120 * time.Second,
		StepDeadline:    20 * time.Second,
	}
}

// target builds the probe.Target for a topology.Node.
func target(n topology.Node) probe.Target {
	return probe.Target{Host: n.Host, Port: n.Port}
}

// findPrimary probes every known node and returns the first one reporting
// itself as primary. It never trusts the registry's RoleHint, since that's
// only advisory and may be stale.
func (o *Orchestrator) findPrimary(ctx context.Context, nodes []topology.Node) (*topology.Node, bool) {
	for i := range nodes {
		n := nodes[i]
		probeCtx, cancel := context.WithTimeout(ctx, o.StepDeadline)
		isPrimary, err := o.Prober.IsPrimary(probeCtx, target(n), o.Credentials)
		cancel()
		if err == nil && isPrimary {
			return &n, true
		}
	}
	return nil, false
}

// withStepDeadline runs fn bounded by the orchestrator's per-step deadline.
func (o *Orchestrator) withStepDeadline(ctx context.Context, fn func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, o.StepDeadline)
	defer cancel()
	return fn(stepCtx)
}

// execStep runs a single container command and turns a driver-level failure
// into an apierrors.Unreachable, since exec doesn't classify SQL errors.
func (o *Orchestrator) execStep(ctx context.Context, container, cmd string) (nodedriver.CommandResult, error) {
	result, err := o.Driver.Exec(ctx, container, cmd)
	if err != nil {
		return result, apierrors.New(apierrors.Unreachable, fmt.Sprintf("exec %q on %s: %v", cmd, container, err))
	}
	return result, nil
}
