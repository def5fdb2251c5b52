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

import (
	"fmt"
	"os"

	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Flags contains the set of values necessary for configuring logging.
type Flags struct {
	level       string
	destination string
}

// AddFlags binds the logging flags to a given flag set.
func (l *Flags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&l.level, "log-level", DefaultLevelString,
		"the desired log level, one of error, warning, info, debug and trace")
	flags.StringVar(&l.destination, "log-destination", "",
		"where the log stream will be written, defaults to standard error")
}

// ConfigureLogging builds the zap core described by the flags, wraps it in a
// logr.Logger via zapr and installs it as the process-wide Log.
func (l *Flags) ConfigureLogging() {
	writer := zapcore.Lock(os.Stderr)
	if dest := l.destination; dest != "" {
		f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600) //#nosec
		if err != nil {
			panic(fmt.Sprintf("cannot open log destination %v: %v", dest, err))
		}
		writer = zapcore.Lock(f)
	}

	level := getLogLevel(l.level)
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = func(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(getLogLevelString(lvl))
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, level)
	zapLog := zap.New(core, zap.AddCaller())

	logger := zapr.NewLogger(zapLog)
	if _, known := levelNames[l.level]; !known {
		logger.Info("invalid log level, defaulting", "level", l.level, "default", DefaultLevelString)
	}

	SetLogger(logger)
}

var levelNames = map[string]struct{}{
	ErrorLevelString:   {},
	WarningLevelString: {},
	InfoLevelString:    {},
	DebugLevelString:   {},
	TraceLevelString:   {},
}

func getLogLevel(l string) zapcore.Level {
	switch l {
	case ErrorLevelString:
		return ErrorLevel
	case WarningLevelString:
		return WarningLevel
	case InfoLevelString:
		return InfoLevel
	case DebugLevelString:
		return DebugLevel
	case TraceLevelString:
		return TraceLevel
	default:
		return DefaultLevel
	}
}

func getLogLevelString(l zapcore.Level) string {
	switch l {
	case ErrorLevel:
		return ErrorLevelString
	case WarningLevel:
		return WarningLevelString
	case InfoLevel:
		return InfoLevelString
	case DebugLevel:
		return DebugLevelString
	case TraceLevel:
		return TraceLevelString
	default:
		return DefaultLevelString
	}
}
