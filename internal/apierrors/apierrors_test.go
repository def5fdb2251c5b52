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

package apierrors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		InvalidTarget: http.StatusBadRequest,
		Unreachable:   http.StatusBadGateway,
		LagTooHigh:    http.StatusConflict,
		Busy:          http.StatusConflict,
		PromoteFailed: http.StatusInternalServerError,
		Deadline:      http.StatusGatewayTimeout,
		Duplicate:     http.StatusConflict,
		NotFound:      http.StatusNotFound,
		Internal:      http.StatusInternalServerError,
	}

	for kind, status := range cases {
		err := New(kind, "boom")
		require.Equal(t, status, err.HTTPStatus())
	}
}

func TestNewfCarriesDetails(t *testing.T) {
	err := Newf(LagTooHigh, "target is behind", map[string]any{"gap_bytes": int64(4096)})
	require.Equal(t, int64(4096), err.Details["gap_bytes"])
}
