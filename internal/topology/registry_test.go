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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAddRejectsDuplicateName(t *testing.T) {
	r := NewRegistry([]Node{{Name: "pg-1", Host: "pg-1", Port: 5432, Kind: KindBackup}})
	err := r.Add(Node{Name: "pg-1", Host: "pg-2", Port: 5432, Kind: KindBackup})
	require.Error(t, err)
}

func TestRegistryAddRejectsDuplicateAddress(t *testing.T) {
	r := NewRegistry([]Node{{Name: "pg-1", Host: "10.0.0.1", Port: 5432, Kind: KindBackup}})
	err := r.Add(Node{Name: "pg-2", Host: "10.0.0.1", Port: 5432, Kind: KindBackup})
	require.Error(t, err)
}

func TestRegistryRemoveByNameOrHost(t *testing.T) {
	r := NewRegistry([]Node{
		{Name: "pg-1", Host: "10.0.0.1", Port: 5432, Kind: KindBackup},
		{Name: "pg-2", Host: "10.0.0.2", Port: 5432, Kind: KindBackup},
	})

	_, ok := r.Remove("pg-1")
	require.True(t, ok)

	_, ok = r.Remove("10.0.0.2")
	require.True(t, ok)

	require.Empty(t, r.Snapshot())
}

func TestRegistrySetRoleHintPinsReplicas(t *testing.T) {
	r := NewRegistry([]Node{{Name: "pg-r", Kind: KindReplica}})
	r.SetRoleHint("pg-r", RolePrimary)

	n, _ := r.Get("pg-r")
	require.Equal(t, RoleUnknown, n.RoleHint)
}

func TestRegistrySetRoleHintUpdatesBackups(t *testing.T) {
	r := NewRegistry([]Node{{Name: "pg-1", Kind: KindBackup}})
	r.SetRoleHint("pg-1", RolePrimary)

	n, _ := r.Get("pg-1")
	require.Equal(t, RolePrimary, n.RoleHint)
}
