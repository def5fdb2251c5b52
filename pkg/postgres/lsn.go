/*
Copyright 2019-2022 The CloudNativePG Contributors

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

// Package postgres contains the small set of PostgreSQL-flavored data types
// shared by the probe, topology and orchestrator packages.
package postgres

import (
	"database/sql/driver"
	"fmt"
)

// LSN is a Log Sequence Number: an opaque string composed of two hexadecimal
// numbers separated by "/", as returned by pg_current_wal_lsn() and friends.
//
// LSN deliberately carries no Parse/Less/arithmetic of its own. Every gap
// between two LSNs is computed by issuing pg_wal_lsn_diff on a live
// PostgreSQL session; this type only exists so an LSN can't be silently
// swapped for an arbitrary string at the call sites that matter.
type LSN string

// Zero is the empty LSN, reported when a node's position is unknown.
const Zero LSN = ""

// IsZero reports whether the LSN was never observed.
func (lsn LSN) IsZero() bool {
	return lsn == Zero
}

func (lsn LSN) String() string {
	return string(lsn)
}

// Scan implements sql.Scanner so an LSN column can be read directly into
// this type instead of a bare string.
func (lsn *LSN) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*lsn = Zero
	case string:
		*lsn = LSN(v)
	case []byte:
		*lsn = LSN(v)
	default:
		*lsn = LSN(fmt.Sprintf("%v", v))
	}
	return nil
}

// Value implements driver.Valuer.
func (lsn LSN) Value() (driver.Value, error) {
	return string(lsn), nil
}
