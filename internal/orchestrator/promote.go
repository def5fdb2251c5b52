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
	"github.com/go-logr/logr"
)

// Exec commands grounded in the container-exec contract, left for the
// container's own shell to expand ($PGDATA, globs) — the driver never
// interprets them.
const (
	cmdResumeReplay  = "PGPASSWORD=%s psql -U %s -c 'select pg_wal_replay_resume()'"
	cmdRemoveSignal  = "rm -f $PGDATA/standby.signal"
	cmdPromote       = "pg_ctl promote -D $PGDATA"
	cmdCheckpoint    = "PGPASSWORD=%s psql -U %s -c 'checkpoint'"
	cmdStopFast      = "pg_ctl stop -D $PGDATA -m fast"
	cmdRestartFast   = "pg_ctl restart -D $PGDATA -m fast"
	cmdWipeData      = "rm -rf $PGDATA/*"
	cmdBaseBackupR   = "PGPASSWORD=%s pg_basebackup -h %s -D $PGDATA -U %s -P -R"
	cmdTouchSignal   = "touch $PGDATA/standby.signal"
	cmdStartPostgres = "pg_ctl start -D $PGDATA"
)

// PromoteResult is what a successful promote(target) returns.
type PromoteResult struct {
	NewPrimary string
	Warnings   []string
}

// Promote runs the promote(target) state machine described by the
// container-exec contract: quiesce, resume replay, remove the standby
// signal, promote, verify, reconfigure standbys, finalize.
func (o *Orchestrator) Promote(ctx context.Context, targetName string) (*PromoteResult, error) {
	holder, ok := o.Lock.TryAcquire("promote", o.PromoteDeadline)
	if !ok {
		return nil, apierrors.New(apierrors.Busy, "another operation is in progress")
	}
	defer o.Lock.Release(holder.ID)

	ctx, cancel := context.WithTimeout(ctx, o.PromoteDeadline)
	defer cancel()

	logger := obslog.Log.WithName("promote").WithValues("target", targetName, "operation_id", holder.ID)

	targetNode, ok := o.Registry.Get(targetName)
	if !ok || targetNode.Kind != topology.KindBackup {
		return nil, apierrors.New(apierrors.InvalidTarget, fmt.Sprintf("%q is not a promotable node", targetName))
	}

	isPrimary, err := o.Prober.IsPrimary(ctx, target(targetNode), o.Credentials)
	if err != nil {
		return nil, apierrors.New(apierrors.Unreachable, fmt.Sprintf("cannot reach %q: %v", targetName, err))
	}
	if isPrimary {
		return &PromoteResult{NewPrimary: targetName}, nil
	}

	nodes := o.Registry.Snapshot()
	primary, hasPrimary := o.findPrimary(ctx, nodes)

	if hasPrimary {
		if err := o.checkLagGate(ctx, *primary, targetNode); err != nil {
			return nil, err
		}
	}

	logger.Info("lag gate passed, starting promotion")

	if hasPrimary {
		o.quiesce(ctx, *primary, logger)
	}

	if err := o.resumeReplay(ctx, targetNode); err != nil {
		return nil, err
	}

	if _, err := o.execStep(ctx, targetNode.Container, cmdRemoveSignal); err != nil {
		return nil, apierrors.New(apierrors.PromoteFailed, err.Error())
	}

	if _, err := o.execStep(ctx, targetNode.Container, cmdPromote); err != nil {
		return nil, apierrors.New(apierrors.PromoteFailed, err.Error())
	}

	if err := o.verifyBecamePrimary(ctx, targetNode, 30*time.Second); err != nil {
		return nil, err
	}

	warnings := o.reconfigureStandbys(ctx, nodes, targetNode, logger)

	o.finalize(ctx, targetNode.Name, nodes)

	return &PromoteResult{NewPrimary: targetNode.Name, Warnings: warnings}, nil
}

// checkLagGate is the system's central safety invariant: a standby may
// only be promoted once pg_wal_lsn_diff(primary.current_lsn,
// target.receive_lsn), computed on the primary, is <= 0.
func (o *Orchestrator) checkLagGate(ctx context.Context, primary, target_ topology.Node) error {
	primaryLSN, err := o.Prober.CurrentLSN(ctx, target(primary), o.Credentials)
	if err != nil {
		return apierrors.New(apierrors.Unreachable, fmt.Sprintf("cannot read primary LSN: %v", err))
	}

	targetLSN, err := o.Prober.ReceiveLSN(ctx, target(target_), o.Credentials)
	if err != nil {
		return apierrors.New(apierrors.Unreachable, fmt.Sprintf("cannot read target LSN: %v", err))
	}

	gap, err := o.Prober.WALDiff(ctx, target(primary), o.Credentials, primaryLSN, targetLSN)
	if err != nil {
		return apierrors.New(apierrors.Unreachable, fmt.Sprintf("cannot compute WAL gap: %v", err))
	}

	if gap > 0 {
		return apierrors.Newf(apierrors.LagTooHigh, "target has not caught up to the primary",
			map[string]any{"gap_bytes": gap})
	}

	return nil
}

// quiesce is best-effort: an unreachable primary is skipped, not fatal.
func (o *Orchestrator) quiesce(ctx context.Context, primary topology.Node, logger logr.Logger) {
	cmd := fmt.Sprintf(cmdCheckpoint, o.Credentials.Password, o.Credentials.User)
	if _, err := o.execStep(ctx, primary.Container, cmd); err != nil {
		logger.Error(err, "quiesce step failed, continuing best-effort", "primary", primary.Name)
	}
}

func (o *Orchestrator) resumeReplay(ctx context.Context, targetNode topology.Node) error {
	cmd := fmt.Sprintf(cmdResumeReplay, o.Credentials.Password, o.Credentials.User)
	if _, err := o.execStep(ctx, targetNode.Container, cmd); err != nil {
		return apierrors.New(apierrors.PromoteFailed, err.Error())
	}
	return nil
}

// verifyBecamePrimary polls is_primary(target) with ~2s pacing until
// budget elapses.
func (o *Orchestrator) verifyBecamePrimary(ctx context.Context, n topology.Node, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	for {
		isPrimary, err := o.Prober.IsPrimary(ctx, target(n), o.Credentials)
		if err == nil && isPrimary {
			return nil
		}
		if time.Now().After(deadline) {
			return apierrors.New(apierrors.PromoteFailed,
				fmt.Sprintf("%q did not leave recovery within %s", n.Name, budget))
		}
		select {
		case <-ctx.Done():
			return apierrors.New(apierrors.Deadline, "promote deadline exceeded during verification")
		case <-time.After(2 * time.Second):
		}
	}
}

// reconfigureStandbys stops, wipes and rebases every remaining reachable
// node from the new primary. A node that doesn't come back as a standby
// within its budget is reported as a warning, not a fatal error — the
// overall promote still succeeds.
func (o *Orchestrator) reconfigureStandbys(
	ctx context.Context, nodes []topology.Node, newPrimary topology.Node, logger logr.Logger,
) []string {
	var warnings []string

	for _, n := range nodes {
		if n.Name == newPrimary.Name {
			continue
		}

		if _, err := o.Prober.IsPrimary(ctx, target(n), o.Credentials); err != nil {
			logger.Info("standby unreachable, skipping reconfiguration", "node", n.Name)
			warnings = append(warnings, n.Name)
			continue
		}

		if err := o.rebaseStandby(ctx, n, newPrimary); err != nil {
			logger.Error(err, "standby reconfiguration failed", "node", n.Name)
			warnings = append(warnings, n.Name)
		}
	}

	return warnings
}

func (o *Orchestrator) rebaseStandby(ctx context.Context, n, newPrimary topology.Node) error {
	if _, err := o.execStep(ctx, n.Container, cmdStopFast); err != nil {
		return err
	}
	if _, err := o.execStep(ctx, n.Container, cmdWipeData); err != nil {
		return err
	}

	basebackup := fmt.Sprintf(cmdBaseBackupR, o.Credentials.Password, newPrimary.Host, o.ReplicationUser)
	if _, err := o.execStep(ctx, n.Container, basebackup); err != nil {
		return err
	}

	if n.Kind == topology.KindReplica {
		if _, err := o.execStep(ctx, n.Container, cmdTouchSignal); err != nil {
			return err
		}
	}

	if _, err := o.execStep(ctx, n.Container, cmdStartPostgres); err != nil {
		return err
	}

	return o.verifyReachable(ctx, n, 60*time.Second)
}

// verifyReachable polls the node until it accepts connections again and
// reports itself in recovery — used after rebasing a standby, which is
// expected to come back as a standby, not as a primary.
func (o *Orchestrator) verifyReachable(ctx context.Context, n topology.Node, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	for {
		if isPrimary, err := o.Prober.IsPrimary(ctx, target(n), o.Credentials); err == nil && !isPrimary {
			return nil
		}
		if time.Now().After(deadline) {
			return apierrors.Newf(apierrors.ReconfigPartial,
				fmt.Sprintf("%q did not come back up as a standby within %s", n.Name, budget),
				map[string]any{"node": n.Name})
		}
		select {
		case <-ctx.Done():
			return apierrors.New(apierrors.Deadline, "promote deadline exceeded reconfiguring standbys")
		case <-time.After(2 * time.Second):
		}
	}
}

// finalize updates every node's RoleHint: the new primary, everyone else a
// standby, except nodes that no longer answer a probe, which become UNKNOWN.
func (o *Orchestrator) finalize(ctx context.Context, newPrimaryName string, nodes []topology.Node) {
	for _, n := range nodes {
		if n.Name == newPrimaryName {
			o.Registry.SetRoleHint(n.Name, topology.RolePrimary)
			continue
		}
		if _, err := o.Prober.IsPrimary(ctx, target(n), o.Credentials); err != nil {
			o.Registry.SetRoleHint(n.Name, topology.RoleUnknown)
			continue
		}
		o.Registry.SetRoleHint(n.Name, topology.RoleStandby)
	}
}
