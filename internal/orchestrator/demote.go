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
	"github.com/cloudnative-pg/operationmanagement/internal/obslog"
	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

// DemoteAllResult reports which previously-primary nodes were successfully
// converted to standbys.
type DemoteAllResult struct {
	Demoted  []string
	Warnings []string
}

// DemoteAll converts every reachable backup node currently reporting as
// primary into a standby. Replica-kind nodes are never primaries and are
// left untouched. The cluster is expected to converge on NO_PRIMARY.
func (o *Orchestrator) DemoteAll(ctx context.Context) (*DemoteAllResult, error) {
	holder, ok := o.Lock.TryAcquire("demote-all", o.DemoteDeadline)
	if !ok {
		return nil, apierrors.New(apierrors.Busy, "another operation is in progress")
	}
	defer o.Lock.Release(holder.ID)

	ctx, cancel := context.WithTimeout(ctx, o.DemoteDeadline)
	defer cancel()

	logger := obslog.Log.WithName("demote-all").WithValues("operation_id", holder.ID)

	nodes := o.Registry.Snapshot()

	result := &DemoteAllResult{}

	for _, n := range nodes {
		if n.Kind != topology.KindBackup {
			continue
		}

		isPrimary, err := o.Prober.IsPrimary(ctx, target(n), o.Credentials)
		if err != nil {
			logger.Info("node unreachable, skipping", "node", n.Name)
			continue
		}
		if !isPrimary {
			continue
		}

		if err := o.demoteOne(ctx, n); err != nil {
			logger.Error(err, "demote failed", "node", n.Name)
			result.Warnings = append(result.Warnings, n.Name)
			continue
		}

		o.Registry.SetRoleHint(n.Name, topology.RoleStandby)
		result.Demoted = append(result.Demoted, n.Name)
	}

	if len(result.Warnings) > 0 {
		return result, apierrors.Newf(apierrors.ReconfigPartial, "one or more nodes could not be demoted",
			map[string]any{"nodes": result.Warnings})
	}

	return result, nil
}

// demoteOne touches standby.signal so the restart below rejoins recovery,
// then verifies within its own 30s budget that the node has left primary
// status.
func (o *Orchestrator) demoteOne(ctx context.Context, n topology.Node) error {
	if _, err := o.execStep(ctx, n.Container, cmdTouchSignal); err != nil {
		return err
	}
	if _, err := o.execStep(ctx, n.Container, cmdRestartFast); err != nil {
		return err
	}

	deadline := time.Now().Add(30 * time.Second)
	for {
		isPrimary, err := o.Prober.IsPrimary(ctx, target(n), o.Credentials)
		if err == nil && !isPrimary {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%q still reports primary after restart", n.Name)
		}
		select {
		case <-ctx.Done():
			return apierrors.New(apierrors.Deadline, "demote-all deadline exceeded")
		case <-time.After(2 * time.Second):
		}
	}
}
