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

package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLSNIsZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	require.True(t, LSN("").IsZero())
	require.False(t, LSN("0/16B3748").IsZero())
}

func TestLSNScan(t *testing.T) {
	var lsn LSN

	require.NoError(t, lsn.Scan("0/16B3748"))
	require.Equal(t, LSN("0/16B3748"), lsn)

	require.NoError(t, lsn.Scan([]byte("1/AABBCCDD")))
	require.Equal(t, LSN("1/AABBCCDD"), lsn)

	require.NoError(t, lsn.Scan(nil))
	require.True(t, lsn.IsZero())
}

func TestLSNValue(t *testing.T) {
	v, err := LSN("0/16B3748").Value()
	require.NoError(t, err)
	require.Equal(t, "0/16B3748", v)
}
