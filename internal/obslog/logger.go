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

// Package obslog contains the logging subsystem of the operation-management
// control plane: a single process-wide logr.Logger backed by zap.
package obslog

import (
	"github.com/go-logr/logr"
)

// Log is the logger used throughout the process. It starts out as a no-op
// logr.Logger and is replaced by SetLogger once Flags.ConfigureLogging runs.
var Log logr.Logger

// SetLogger sets the backing logr implementation for the whole process.
func SetLogger(logger logr.Logger) {
	Log = logger
}
