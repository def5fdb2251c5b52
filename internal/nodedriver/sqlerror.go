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

package nodedriver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLErrorCode is the closed set of reasons a SQL session against a node
// can fail. The orchestrator and probe layers branch on this, never on the
// underlying driver error.
type SQLErrorCode string

const (
	ConnRefused SQLErrorCode = "CONN_REFUSED"
	AuthFailed  SQLErrorCode = "AUTH_FAILED"
	ReadOnly    SQLErrorCode = "READ_ONLY"
	Timeout     SQLErrorCode = "TIMEOUT"
	Other       SQLErrorCode = "OTHER"
)

// SQLError wraps a classified failure from a SQL session against a node.
type SQLError struct {
	Code SQLErrorCode
	// PGCode is the raw PostgreSQL error code (e.g. "25006") whenever the
	// failure came from the server rather than the transport; it is empty
	// for transport and deadline failures.
	PGCode string
	Cause  error
}

func (e *SQLError) Error() string {
	if e.Cause == nil {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Cause.Error()
}

func (e *SQLError) Unwrap() error {
	return e.Cause
}

// ClassifyError maps a driver-level error onto the fixed SQLError
// vocabulary, matching pgconn.PgError codes against their symbolic names
// the way pq.ErrorCode.Name() resolves a raw SQLSTATE to its symbolic name.
func ClassifyError(err error) *SQLError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &SQLError{Code: Timeout, Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pq.ErrorCode(pgErr.Code).Name() {
		case "invalid_password", "invalid_authorization_specification":
			return &SQLError{Code: AuthFailed, PGCode: pgErr.Code, Cause: err}
		case "read_only_sql_transaction":
			return &SQLError{Code: ReadOnly, PGCode: pgErr.Code, Cause: err}
		default:
			return &SQLError{Code: Other, PGCode: pgErr.Code, Cause: err}
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &SQLError{Code: ConnRefused, Cause: err}
	}

	return &SQLError{Code: Other, Cause: err}
}
