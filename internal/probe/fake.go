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

package probe

import (
	"context"

	"github.com/cloudnative-pg/operationmanagement/pkg/postgres"
)

// FakeNode is one entry of a Fake's canned responses, keyed by host (the
// port is ignored).
type FakeNode struct {
	IsPrimary   bool
	CurrentLSN  postgres.LSN
	ReceiveLSN  postgres.LSN
	ReplayLSN   postgres.LSN
	Peers       []ReplicationPeer
	Slots       []Slot
	Unreachable error
}

// Fake is an in-memory Prober used by topology and orchestrator tests: it
// never touches the network, and lets a test script a node's responses
// (including making it fail) without a live PostgreSQL cluster.
type Fake struct {
	Nodes map[string]*FakeNode
	// WALDiffs maps "a|b" to the gap pg_wal_lsn_diff(a, b) would report.
	WALDiffs map[string]int64
}

// NewFake returns an empty Fake ready to have nodes registered on it.
func NewFake() *Fake {
	return &Fake{
		Nodes:    make(map[string]*FakeNode),
		WALDiffs: make(map[string]int64),
	}
}

func key(target Target) string {
	return target.Host
}

func (f *Fake) node(target Target) (*FakeNode, error) {
	n, ok := f.Nodes[key(target)]
	if !ok {
		return nil, &unreachableError{target: key(target)}
	}
	if n.Unreachable != nil {
		return nil, n.Unreachable
	}
	return n, nil
}

type unreachableError struct {
	target string
}

func (e *unreachableError) Error() string {
	return "no fake node registered for " + e.target
}

func (f *Fake) IsPrimary(_ context.Context, target Target, _ Credentials) (bool, error) {
	n, err := f.node(target)
	if err != nil {
		return false, err
	}
	return n.IsPrimary, nil
}

func (f *Fake) CurrentLSN(_ context.Context, target Target, _ Credentials) (postgres.LSN, error) {
	n, err := f.node(target)
	if err != nil {
		return postgres.Zero, err
	}
	return n.CurrentLSN, nil
}

func (f *Fake) ReceiveLSN(_ context.Context, target Target, _ Credentials) (postgres.LSN, error) {
	n, err := f.node(target)
	if err != nil {
		return postgres.Zero, err
	}
	return n.ReceiveLSN, nil
}

func (f *Fake) ReplayLSN(_ context.Context, target Target, _ Credentials) (postgres.LSN, error) {
	n, err := f.node(target)
	if err != nil {
		return postgres.Zero, err
	}
	return n.ReplayLSN, nil
}

func (f *Fake) Replication(_ context.Context, target Target, _ Credentials) ([]ReplicationPeer, error) {
	n, err := f.node(target)
	if err != nil {
		return nil, err
	}
	return n.Peers, nil
}

func (f *Fake) Slots(_ context.Context, target Target, _ Credentials) ([]Slot, error) {
	n, err := f.node(target)
	if err != nil {
		return nil, err
	}
	return n.Slots, nil
}

func (f *Fake) WALDiff(
	_ context.Context, _ Target, _ Credentials, a, b postgres.LSN,
) (int64, error) {
	if diff, ok := f.WALDiffs[string(a)+"|"+string(b)]; ok {
		return diff, nil
	}
	return 0, nil
}

var _ Prober = (*Fake)(nil)
