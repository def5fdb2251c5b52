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
	"testing"
	"time"

	"github.com/cloudnative-pg/operationmanagement/internal/apierrors"
	"github.com/cloudnative-pg/operationmanagement/internal/nodedriver"
	"github.com/cloudnative-pg/operationmanagement/internal/probe"
	"github.com/cloudnative-pg/operationmanagement/internal/topology"
	"github.com/cloudnative-pg/operationmanagement/pkg/postgres"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(nodes []topology.Node) (*Orchestrator, *probe.Fake) {
	registry := topology.NewRegistry(nodes)
	fake := probe.NewFake()
	o := New(registry, nodedriver.NewDriver(), fake, probe.Credentials{User: "postgres"})
	return o, fake
}

func kindOf(err error) apierrors.Kind {
	if apiErr, ok := err.(*apierrors.Error); ok {
		return apiErr.Kind
	}
	return ""
}

func TestPromoteRejectsUnknownTarget(t *testing.T) {
	o, _ := newTestOrchestrator(nil)

	_, err := o.Promote(context.Background(), "pg-2")
	require.Error(t, err)
	require.Equal(t, apierrors.InvalidTarget, kindOf(err))
}

func TestPromoteRejectsReplicaTarget(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-2", Host: "10.0.0.2", Port: 5432, Kind: topology.KindReplica}}
	o, _ := newTestOrchestrator(nodes)

	_, err := o.Promote(context.Background(), "pg-2")
	require.Error(t, err)
	require.Equal(t, apierrors.InvalidTarget, kindOf(err))
}

func TestPromoteIsIdempotentWhenAlreadyPrimary(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-2", Host: "10.0.0.2", Port: 5432, Kind: topology.KindBackup}}
	o, fake := newTestOrchestrator(nodes)
	fake.Nodes["10.0.0.2"] = &probe.FakeNode{IsPrimary: true}

	result, err := o.Promote(context.Background(), "pg-2")
	require.NoError(t, err)
	require.Equal(t, "pg-2", result.NewPrimary)
}

func TestPromoteFailsOnUnreachableTarget(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-2", Host: "10.0.0.2", Port: 5432, Kind: topology.KindBackup}}
	o, _ := newTestOrchestrator(nodes)

	_, err := o.Promote(context.Background(), "pg-2")
	require.Error(t, err)
	require.Equal(t, apierrors.Unreachable, kindOf(err))
}

func TestPromoteBlocksOnLagGate(t *testing.T) {
	nodes := []topology.Node{
		{Name: "pg-1", Host: "10.0.0.1", Port: 5432, Kind: topology.KindBackup},
		{Name: "pg-2", Host: "10.0.0.2", Port: 5432, Kind: topology.KindBackup},
	}
	o, fake := newTestOrchestrator(nodes)
	fake.Nodes["10.0.0.1"] = &probe.FakeNode{IsPrimary: true, CurrentLSN: postgres.LSN("0/300")}
	fake.Nodes["10.0.0.2"] = &probe.FakeNode{IsPrimary: false, ReceiveLSN: postgres.LSN("0/100")}
	fake.WALDiffs["0/300|0/100"] = 512

	_, err := o.Promote(context.Background(), "pg-2")
	require.Error(t, err)
	require.Equal(t, apierrors.LagTooHigh, kindOf(err))

	apiErr := err.(*apierrors.Error)
	require.Equal(t, int64(512), apiErr.Details["gap_bytes"])
}

func TestPromoteFailsFastWhenLockHeld(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-2", Host: "10.0.0.2", Port: 5432, Kind: topology.KindBackup}}
	o, _ := newTestOrchestrator(nodes)

	holder, ok := o.Lock.TryAcquire("demote-all", time.Minute)
	require.True(t, ok)
	defer o.Lock.Release(holder.ID)

	_, err := o.Promote(context.Background(), "pg-2")
	require.Error(t, err)
	require.Equal(t, apierrors.Busy, kindOf(err))
}

func TestDemoteAllNoOpsWhenNoPrimary(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-1", Host: "10.0.0.1", Port: 5432, Kind: topology.KindBackup}}
	o, fake := newTestOrchestrator(nodes)
	fake.Nodes["10.0.0.1"] = &probe.FakeNode{IsPrimary: false}

	result, err := o.DemoteAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Demoted)
}

func TestAddHostRejectsDuplicateAddress(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-1", Host: "10.0.0.1", Port: 5432, Kind: topology.KindBackup}}
	o, _ := newTestOrchestrator(nodes)

	err := o.AddHost(context.Background(), topology.Node{
		Name: "pg-2", Host: "10.0.0.1", Port: 5432, Kind: topology.KindBackup,
	})
	require.Error(t, err)
	require.Equal(t, apierrors.Duplicate, kindOf(err))
}

func TestAddHostRejectsUnknownKind(t *testing.T) {
	o, _ := newTestOrchestrator(nil)

	err := o.AddHost(context.Background(), topology.Node{Name: "pg-1", Host: "10.0.0.1", Port: 5432, Kind: "bogus"})
	require.Error(t, err)
	require.Equal(t, apierrors.InvalidTarget, kindOf(err))
}

func TestDeleteHostRefusesCurrentPrimary(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-1", Host: "10.0.0.1", Port: 5432, Kind: topology.KindBackup}}
	o, fake := newTestOrchestrator(nodes)
	fake.Nodes["10.0.0.1"] = &probe.FakeNode{IsPrimary: true}

	err := o.DeleteHost(context.Background(), "pg-1")
	require.Error(t, err)
	require.Equal(t, apierrors.InvalidTarget, kindOf(err))
}

func TestDeleteHostByHostRemovesStandby(t *testing.T) {
	nodes := []topology.Node{{Name: "pg-2", Host: "10.0.0.2", Port: 5432, Kind: topology.KindBackup}}
	o, fake := newTestOrchestrator(nodes)
	fake.Nodes["10.0.0.2"] = &probe.FakeNode{IsPrimary: false}

	err := o.DeleteHost(context.Background(), "10.0.0.2")
	require.NoError(t, err)

	_, ok := o.Registry.Get("pg-2")
	require.False(t, ok)
}

func TestDeleteHostRejectsUnknownIdentifier(t *testing.T) {
	o, _ := newTestOrchestrator(nil)

	err := o.DeleteHost(context.Background(), "does-not-exist")
	require.Error(t, err)
	require.Equal(t, apierrors.NotFound, kindOf(err))
}
