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

// Package probe runs the typed SQL queries the orchestrator and topology
// layers need against a single node, never returning a raw driver error:
// every failure is classified into a nodedriver.SQLError first.
package probe

import (
	"context"
	"database/sql"

	"github.com/cloudnative-pg/operationmanagement/internal/nodedriver"
	"github.com/cloudnative-pg/operationmanagement/pkg/postgres"
)

// Target is the SQL endpoint a probe connects to. It carries no identity
// beyond the wire address; the caller maps results back onto a node name.
type Target struct {
	Host string
	Port int
}

// Credentials is the single (user, password, database) triple used for
// every SQL session, process-wide and immutable after startup.
type Credentials struct {
	User     string
	Password string
	DBName   string
}

// ReplicationPeer is one row of pg_stat_replication.
type ReplicationPeer struct {
	ClientAddr string
	State      string
	SyncState  string
	WriteLag   sql.NullString
	FlushLag   sql.NullString
	ReplayLag  sql.NullString
}

// Slot is one row of pg_replication_slots.
type Slot struct {
	SlotName   string
	Active     bool
	RestartLSN postgres.LSN
}

// Prober is the set of typed queries the orchestrator and topology layers
// need. Implementations never return a raw driver error — every failure is
// a *nodedriver.SQLError so callers can branch on its Code field.
type Prober interface {
	IsPrimary(ctx context.Context, target Target, creds Credentials) (bool, error)
	CurrentLSN(ctx context.Context, target Target, creds Credentials) (postgres.LSN, error)
	ReceiveLSN(ctx context.Context, target Target, creds Credentials) (postgres.LSN, error)
	ReplayLSN(ctx context.Context, target Target, creds Credentials) (postgres.LSN, error)
	Replication(ctx context.Context, target Target, creds Credentials) ([]ReplicationPeer, error)
	Slots(ctx context.Context, target Target, creds Credentials) ([]Slot, error)
	WALDiff(ctx context.Context, target Target, creds Credentials, a, b postgres.LSN) (int64, error)
}

// SQLProber is the Prober backed by a real nodedriver.Driver. Every method
// opens its own *sql.DB, runs exactly one statement, and closes it — no
// connection is ever kept open across calls.
type SQLProber struct {
	driver *nodedriver.Driver
}

// NewSQLProber returns a Prober that opens a fresh session per call via d.
func NewSQLProber(d *nodedriver.Driver) *SQLProber {
	return &SQLProber{driver: d}
}

func (p *SQLProber) open(target Target, creds Credentials) (*sql.DB, error) {
	db, err := p.driver.OpenSession(target.Host, target.Port, creds.DBName, creds.User, creds.Password)
	if err != nil {
		return nil, nodedriver.ClassifyError(err)
	}
	return db, nil
}

func (p *SQLProber) queryRow(
	ctx context.Context, target Target, creds Credentials, query string, dest []any, args ...any,
) error {
	db, err := p.open(target, creds)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		return nodedriver.ClassifyError(err)
	}
	return nil
}

// IsPrimary reports whether the node is currently a writable primary.
func (p *SQLProber) IsPrimary(ctx context.Context, target Target, creds Credentials) (bool, error) {
	var inRecovery bool
	if err := p.queryRow(ctx, target, creds, "select pg_is_in_recovery()", []any{&inRecovery}); err != nil {
		return false, err
	}
	return !inRecovery, nil
}

// CurrentLSN returns the node's current WAL insert position.
func (p *SQLProber) CurrentLSN(ctx context.Context, target Target, creds Credentials) (postgres.LSN, error) {
	return p.lsnQuery(ctx, target, creds, "select pg_current_wal_lsn()")
}

// ReceiveLSN returns the last WAL position the node has received from upstream.
func (p *SQLProber) ReceiveLSN(ctx context.Context, target Target, creds Credentials) (postgres.LSN, error) {
	return p.lsnQuery(ctx, target, creds, "select pg_last_wal_receive_lsn()")
}

// ReplayLSN returns the last WAL position the node has replayed.
func (p *SQLProber) ReplayLSN(ctx context.Context, target Target, creds Credentials) (postgres.LSN, error) {
	return p.lsnQuery(ctx, target, creds, "select pg_last_wal_replay_lsn()")
}

func (p *SQLProber) lsnQuery(
	ctx context.Context, target Target, creds Credentials, query string,
) (postgres.LSN, error) {
	var lsn postgres.LSN
	if err := p.queryRow(ctx, target, creds, query, []any{&lsn}); err != nil {
		return postgres.Zero, err
	}
	return lsn, nil
}

// Replication lists the node's current replication peers from pg_stat_replication.
func (p *SQLProber) Replication(
	ctx context.Context, target Target, creds Credentials,
) ([]ReplicationPeer, error) {
	db, err := p.open(target, creds)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"select client_addr, state, sync_state, write_lag, flush_lag, replay_lag from pg_stat_replication")
	if err != nil {
		return nil, nodedriver.ClassifyError(err)
	}
	defer rows.Close()

	var peers []ReplicationPeer
	for rows.Next() {
		var peer ReplicationPeer
		if err := rows.Scan(
			&peer.ClientAddr, &peer.State, &peer.SyncState, &peer.WriteLag, &peer.FlushLag, &peer.ReplayLag,
		); err != nil {
			return nil, nodedriver.ClassifyError(err)
		}
		peers = append(peers, peer)
	}
	if err := rows.Err(); err != nil {
		return nil, nodedriver.ClassifyError(err)
	}

	return peers, nil
}

// Slots lists the node's replication slots from pg_replication_slots.
func (p *SQLProber) Slots(ctx context.Context, target Target, creds Credentials) ([]Slot, error) {
	db, err := p.open(target, creds)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "select slot_name, active, restart_lsn from pg_replication_slots")
	if err != nil {
		return nil, nodedriver.ClassifyError(err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(&slot.SlotName, &slot.Active, &slot.RestartLSN); err != nil {
			return nil, nodedriver.ClassifyError(err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, nodedriver.ClassifyError(err)
	}

	return slots, nil
}

// WALDiff computes pg_wal_lsn_diff(a, b) on target, in bytes. The caller —
// never this package — decides what a and b mean (e.g. primary vs. target
// LSN for the lag gate); WALDiff just forwards the arithmetic to PostgreSQL,
// since LSNs are never compared locally.
func (p *SQLProber) WALDiff(
	ctx context.Context, target Target, creds Credentials, a, b postgres.LSN,
) (int64, error) {
	var diff int64
	err := p.queryRow(ctx, target, creds, "select pg_wal_lsn_diff($1, $2)", []any{&diff}, string(a), string(b))
	if err != nil {
		return 0, err
	}
	return diff, nil
}
