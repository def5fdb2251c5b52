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

package api

import (
	"encoding/json"
	"net/http"

	"github.com/cloudnative-pg/operationmanagement/internal/apierrors"
	"github.com/cloudnative-pg/operationmanagement/internal/obslog"
)

func renderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		obslog.Log.Error(err, "failed to encode response body")
	}
}

// renderError writes the {error, message, details} shape every non-2xx
// response uses. Anything that isn't an *apierrors.Error is treated as an
// unclassified internal failure.
func renderError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*apierrors.Error)
	if !ok {
		apiErr = apierrors.New(apierrors.Internal, err.Error())
	}

	renderJSON(w, apiErr.HTTPStatus(), map[string]any{
		"error":   string(apiErr.Kind),
		"message": apiErr.Message,
		"details": apiErr.Details,
	})
}
