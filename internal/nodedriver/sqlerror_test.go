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
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestClassifySQLErrorNil(t *testing.T) {
	require.Nil(t, ClassifyError(nil))
}

func TestClassifySQLErrorDeadline(t *testing.T) {
	got := ClassifyError(context.DeadlineExceeded)
	require.Equal(t, Timeout, got.Code)
}

func TestClassifySQLErrorReadOnly(t *testing.T) {
	got := ClassifyError(&pgconn.PgError{Code: "25006"})
	require.Equal(t, ReadOnly, got.Code)
}

func TestClassifySQLErrorAuthFailed(t *testing.T) {
	got := ClassifyError(&pgconn.PgError{Code: "28P01"})
	require.Equal(t, AuthFailed, got.Code)
}

func TestClassifySQLErrorOther(t *testing.T) {
	got := ClassifyError(&pgconn.PgError{Code: "42601"})
	require.Equal(t, Other, got.Code)
	require.Equal(t, "42601", got.PGCode)
}

func TestClassifySQLErrorFallsBackToOther(t *testing.T) {
	got := ClassifyError(errors.New("boom"))
	require.Equal(t, Other, got.Code)
}
