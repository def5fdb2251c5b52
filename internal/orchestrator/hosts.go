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

	"github.com/cloudnative-pg/operationmanagement/internal/apierrors"
	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

// AddHost registers a new node. Name and (host, port) must both be unique;
// Registry.Add already enforces that and reports which collided.
func (o *Orchestrator) AddHost(ctx context.Context, n topology.Node) error {
	holder, ok := o.Lock.TryAcquire("add-host", o.StepDeadline)
	if !ok {
		return apierrors.New(apierrors.Busy, "another operation is in progress")
	}
	defer o.Lock.Release(holder.ID)

	if n.Kind != topology.KindBackup && n.Kind != topology.KindReplica {
		return apierrors.New(apierrors.InvalidTarget, fmt.Sprintf("unknown node kind %q", n.Kind))
	}

	if err := o.Registry.Add(n); err != nil {
		return apierrors.New(apierrors.Duplicate, err.Error())
	}

	return nil
}

// DeleteHost removes a node by name or IP. The registry itself doesn't
// know about liveness, so the "never delete the primary" rule is enforced
// here: a live probe decides whether identifier currently reports primary.
func (o *Orchestrator) DeleteHost(ctx context.Context, identifier string) error {
	holder, ok := o.Lock.TryAcquire("delete-host", o.StepDeadline)
	if !ok {
		return apierrors.New(apierrors.Busy, "another operation is in progress")
	}
	defer o.Lock.Release(holder.ID)

	n, ok := o.lookup(identifier)
	if !ok {
		return apierrors.New(apierrors.NotFound, fmt.Sprintf("no host matches %q", identifier))
	}

	isPrimary, err := o.Prober.IsPrimary(ctx, target(n), o.Credentials)
	if err == nil && isPrimary {
		return apierrors.New(apierrors.InvalidTarget, fmt.Sprintf("%q is currently primary and cannot be deleted", n.Name))
	}

	if _, ok := o.Registry.Remove(identifier); !ok {
		return apierrors.New(apierrors.NotFound, fmt.Sprintf("no host matches %q", identifier))
	}

	return nil
}

// lookup resolves identifier the same way Registry.Remove does: by name
// first, then by matching host.
func (o *Orchestrator) lookup(identifier string) (topology.Node, bool) {
	if n, ok := o.Registry.Get(identifier); ok {
		return n, true
	}
	for _, n := range o.Registry.Snapshot() {
		if n.Host == identifier {
			return n, true
		}
	}
	return topology.Node{}, false
}
