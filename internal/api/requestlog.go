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
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
)

// redactedHeaders mirrors the original service's request-log filter:
// everything except credentials is logged verbatim.
var redactedHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"password":      true,
}

// redactedBodyFields are body keys never echoed into the log, even for a
// successful response.
var redactedBodyFields = map[string]bool{
	"password":    true,
	"db_password": true,
}

var nextRequestID atomic.Uint64

// requestLog is chi middleware logging one record on arrival and one on
// completion, with headers and body fields from redactedHeaders/
// redactedBodyFields stripped before anything reaches the logger.
func requestLog(logger logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := nextRequestID.Add(1)
			reqLogger := logger.WithValues("request_id", requestID, "method", r.Method, "path", r.URL.Path)

			reqLogger.Info("request received",
				"remote_addr", r.RemoteAddr,
				"headers", redactHeaders(r.Header),
			)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			fields := []any{"status", rec.status, "elapsed_ms", time.Since(start).Milliseconds()}
			if rec.status < 400 && rec.body != nil {
				fields = append(fields, "body", redactBody(rec.body.Bytes()))
			}
			reqLogger.Info("request completed", fields...)
		})
	}
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if redactedHeaders[strings.ToLower(name)] {
			continue
		}
		out[name] = strings.Join(values, ",")
	}
	return out
}

// redactBody returns the raw JSON body with any redacted top-level field
// blanked out. It never fails: a non-JSON body is logged as-is.
func redactBody(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return string(body)
	}
	for field := range parsed {
		if redactedBodyFields[strings.ToLower(field)] {
			parsed[field] = "[REDACTED]"
		}
	}
	out, err := json.Marshal(parsed)
	if err != nil {
		return string(body)
	}
	return string(out)
}

// statusRecorder captures the status code and a copy of the response body
// so the completion log line can report both.
type statusRecorder struct {
	http.ResponseWriter
	status int
	body   *bytes.Buffer
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.body == nil {
		r.body = &bytes.Buffer{}
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
