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
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	// this is needed to correctly open the sql connection with the pgx driver. Do not remove this import.
	"github.com/jackc/pgx/v5/stdlib"
)

// OpenSession opens a single, short-lived PostgreSQL connection to the given
// node. Every probe opens its own session and closes it when done; nothing
// in this package keeps a *sql.DB cached across calls.
func (d *Driver) OpenSession(host string, port int, dbname, user, password string) (*sql.DB, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s connect_timeout=5",
		host, port, dbname, user, password,
	)

	conf, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string for %s:%d: %w", host, port, err)
	}
	fillDefaultParameters(conf)

	return sql.Open("pgx", stdlib.RegisterConnConfig(conf))
}

// fillDefaultParameters applies the runtime parameters every session against
// a node needs regardless of what it's probing.
func fillDefaultParameters(config *pgx.ConnConfig) {
	// This is required by pgx when using the simple protocol during
	// the sanitization of the strings. Do not remove.
	config.RuntimeParams["client_encoding"] = "UTF8"

	// Keep a standard date format so probe queries can parse timestamps
	// without guessing the server's locale.
	config.RuntimeParams["datestyle"] = "ISO"
}
