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

package topology

import (
	"context"
	"sync"
	"time"

	"github.com/cloudnative-pg/operationmanagement/internal/probe"
	"github.com/cloudnative-pg/operationmanagement/pkg/postgres"
)

// ClusterStatus is the single cluster-level verdict derived from the
// reachability and role of every known node.
type ClusterStatus string

const (
	Healthy    ClusterStatus = "HEALTHY"
	NoPrimary  ClusterStatus = "NO_PRIMARY"
	SplitBrain ClusterStatus = "SPLIT_BRAIN"
	Degraded   ClusterStatus = "DEGRADED"
)

// NodeStatus is one entry of a Status/Overview document's "nodes" map.
type NodeStatus struct {
	IsPrimary bool   `json:"is_primary"`
	Container string `json:"container"`
	Port      int    `json:"port"`
	Connected bool   `json:"connected"`
	Role      Role   `json:"role"`

	ReplicationGap *ReplicationGap `json:"replication_gap,omitempty"`
}

// ReplicationGap is how far a standby trails the primary, in bytes, per
// pg_wal_lsn_diff(primary.current_lsn, standby.receive_lsn).
type ReplicationGap struct {
	GapBytes   int64  `json:"gap_bytes"`
	PrimaryLSN string `json:"primary_lsn"`
	ReceiveLSN string `json:"receive_lsn"`
}

// Status is the public `/status` document.
type Status struct {
	Nodes map[string]NodeStatus `json:"nodes"`
}

// Overview is the public `/overview` document: Status enriched with lag
// and a cluster-wide verdict.
type Overview struct {
	Nodes         map[string]NodeStatus `json:"nodes"`
	PrimaryNode   *string               `json:"primary_node"`
	ClusterStatus ClusterStatus         `json:"cluster_status"`
}

// Snapshotter builds Status/Overview documents by fanning out Probe calls
// across every known node in parallel, one per-node deadline each.
type Snapshotter struct {
	Registry        *Registry
	Prober          probe.Prober
	Credentials     probe.Credentials
	ProbeDeadline   time.Duration
	HealthyLagBytes int64
}

type observation struct {
	node       Node
	connected  bool
	isPrimary  bool
	receiveLSN postgres.LSN
}

// Status builds the `/status` document.
func (s *Snapshotter) Status(ctx context.Context) Status {
	obs := s.observeAll(ctx)

	nodes := make(map[string]NodeStatus, len(obs))
	for _, o := range obs {
		nodes[o.node.Name] = s.nodeStatus(o)
	}
	return Status{Nodes: nodes}
}

// Overview builds the `/overview` document, adding per-standby replication
// gaps and the cluster_status verdict.
func (s *Snapshotter) Overview(ctx context.Context) Overview {
	obs := s.observeAll(ctx)

	var primary *observation
	for i := range obs {
		if obs[i].connected && obs[i].isPrimary {
			primary = &obs[i]
			break
		}
	}

	var primaryCurrentLSN postgres.LSN
	if primary != nil {
		primaryCurrentLSN = s.currentLSN(ctx, primary.node)
	}

	nodes := make(map[string]NodeStatus, len(obs))
	var primaries, unhealthyStandbys int
	for _, o := range obs {
		ns := s.nodeStatus(o)

		switch {
		case o.connected && o.isPrimary:
			primaries++
		case o.connected && primary != nil:
			gap := s.gapAgainst(ctx, *primary, primaryCurrentLSN, o)
			ns.ReplicationGap = gap
			if gap == nil || gap.GapBytes > s.HealthyLagBytes {
				unhealthyStandbys++
			}
		case !o.connected:
			unhealthyStandbys++
		}

		nodes[o.node.Name] = ns
	}

	var primaryNode *string
	if primary != nil {
		name := primary.node.Name
		primaryNode = &name
	}

	return Overview{
		Nodes:         nodes,
		PrimaryNode:   primaryNode,
		ClusterStatus: clusterStatus(primaries, unhealthyStandbys),
	}
}

func clusterStatus(primaries, unhealthyStandbys int) ClusterStatus {
	switch {
	case primaries == 0:
		return NoPrimary
	case primaries > 1:
		return SplitBrain
	case unhealthyStandbys > 0:
		return Degraded
	default:
		return Healthy
	}
}

func (s *Snapshotter) nodeStatus(o observation) NodeStatus {
	role := RoleUnknown
	if o.connected {
		if o.isPrimary {
			role = RolePrimary
		} else {
			role = RoleStandby
		}
	}
	return NodeStatus{
		IsPrimary: o.connected && o.isPrimary,
		Container: o.node.Container,
		Port:      o.node.Port,
		Connected: o.connected,
		Role:      role,
	}
}

// deadlineOrDefault returns the configured ProbeDeadline, or 5s if unset.
func (s *Snapshotter) deadlineOrDefault() time.Duration {
	if s.ProbeDeadline <= 0 {
		return 5 * time.Second
	}
	return s.ProbeDeadline
}

// observeAll probes every registered node concurrently, each bounded by its
// own deadline, and never lets one node's failure affect another's result.
func (s *Snapshotter) observeAll(ctx context.Context) []observation {
	nodes := s.Registry.Snapshot()

	var wg sync.WaitGroup
	results := make([]observation, len(nodes))

	for i, n := range nodes {
		i, n := i, n
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.observe(ctx, n)
		}()
	}
	wg.Wait()

	return results
}

func (s *Snapshotter) observe(ctx context.Context, n Node) observation {
	probeCtx, cancel := context.WithTimeout(ctx, s.deadlineOrDefault())
	defer cancel()

	target := probe.Target{Host: n.Host, Port: n.Port}

	isPrimary, err := s.Prober.IsPrimary(probeCtx, target, s.Credentials)
	if err != nil {
		return observation{node: n, connected: false}
	}

	var receiveLSN postgres.LSN
	if !isPrimary {
		if lsn, err := s.Prober.ReceiveLSN(probeCtx, target, s.Credentials); err == nil {
			receiveLSN = lsn
		}
	}

	return observation{node: n, connected: true, isPrimary: isPrimary, receiveLSN: receiveLSN}
}

func (s *Snapshotter) currentLSN(ctx context.Context, n Node) postgres.LSN {
	probeCtx, cancel := context.WithTimeout(ctx, s.deadlineOrDefault())
	defer cancel()

	lsn, err := s.Prober.CurrentLSN(probeCtx, probe.Target{Host: n.Host, Port: n.Port}, s.Credentials)
	if err != nil {
		return postgres.Zero
	}
	return lsn
}

// gapAgainst computes pg_wal_lsn_diff(primaryCurrentLSN, standby.receiveLSN)
// on the primary's own session, never locally: LSNs are opaque outside
// PostgreSQL.
func (s *Snapshotter) gapAgainst(
	ctx context.Context, primary observation, primaryCurrentLSN postgres.LSN, standby observation,
) *ReplicationGap {
	if primaryCurrentLSN.IsZero() || standby.receiveLSN.IsZero() {
		return nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.deadlineOrDefault())
	defer cancel()

	primaryTarget := probe.Target{Host: primary.node.Host, Port: primary.node.Port}
	gapBytes, err := s.Prober.WALDiff(probeCtx, primaryTarget, s.Credentials, primaryCurrentLSN, standby.receiveLSN)
	if err != nil {
		return nil
	}

	return &ReplicationGap{
		GapBytes:   gapBytes,
		PrimaryLSN: primaryCurrentLSN.String(),
		ReceiveLSN: standby.receiveLSN.String(),
	}
}
