/*
Copyright © contributors to CloudNativePG, established as
CloudNativePG a Series of LF Projects, LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTrue(t *testing.T) {
	for _, v := range []string{"1", "on", "ON", "yes", "true", " TRUE "} {
		require.Truef(t, IsTrue(v), "expected %q to be true", v)
	}
	for _, v := range []string{"0", "off", "no", "false", "garbage"} {
		require.Falsef(t, IsTrue(v), "expected %q to not be true", v)
	}
}

func TestIsFalse(t *testing.T) {
	for _, v := range []string{"0", "off", "OFF", "no", "false", " FALSE "} {
		require.Truef(t, IsFalse(v), "expected %q to be false", v)
	}
	for _, v := range []string{"1", "on", "yes", "true", "garbage"} {
		require.Falsef(t, IsFalse(v), "expected %q to not be false", v)
	}
}
