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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudnative-pg/operationmanagement/pkg/postgres"
)

func TestFakeReportsRegisteredNode(t *testing.T) {
	f := NewFake()
	f.Nodes["pg-1"] = &FakeNode{IsPrimary: true, CurrentLSN: "0/3000000"}

	isPrimary, err := f.IsPrimary(context.Background(), Target{Host: "pg-1"}, Credentials{})
	require.NoError(t, err)
	require.True(t, isPrimary)

	lsn, err := f.CurrentLSN(context.Background(), Target{Host: "pg-1"}, Credentials{})
	require.NoError(t, err)
	require.Equal(t, postgres.LSN("0/3000000"), lsn)
}

func TestFakeFailsUnregisteredNode(t *testing.T) {
	f := NewFake()
	_, err := f.IsPrimary(context.Background(), Target{Host: "ghost"}, Credentials{})
	require.Error(t, err)
}

func TestFakeWALDiff(t *testing.T) {
	f := NewFake()
	f.WALDiffs["0/3000000|0/2000000"] = 16777216

	diff, err := f.WALDiff(context.Background(), Target{}, Credentials{}, "0/3000000", "0/2000000")
	require.NoError(t, err)
	require.Equal(t, int64(16777216), diff)
}
