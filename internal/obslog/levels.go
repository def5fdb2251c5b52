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

package obslog

import "go.uber.org/zap/zapcore"

// Log level names accepted on the command line, distinct from zap's own
// vocabulary so operators never have to think in zapcore.Level numbers.
const (
	ErrorLevelString   = "error"
	WarningLevelString = "warning"
	InfoLevelString    = "info"
	DebugLevelString   = "debug"
	TraceLevelString   = "trace"
	DefaultLevelString = InfoLevelString
)

// zapcore levels backing the names above. Trace has no zapcore equivalent,
// so it is mapped to zap's debug level minus one, the same trick zap itself
// uses for verbosity below debug.
const (
	ErrorLevel   = zapcore.ErrorLevel
	WarningLevel = zapcore.WarnLevel
	InfoLevel    = zapcore.InfoLevel
	DebugLevel   = zapcore.DebugLevel
	TraceLevel   = zapcore.Level(-2)
	DefaultLevel = InfoLevel
)
