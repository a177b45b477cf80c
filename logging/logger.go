/*
   Copyright 2025 The DIRPX Authors.

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

// Package logging holds the process-wide logging collaborator used by records
// and databases when no requester consumes a message.
package logging

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dirpx.dev/recdb/apis"
)

// Verbosity levels used with logr's V().
const (
	DEFAULT = 2
	VERBOSE = 3
	DEBUG   = 4
	TRACE   = 5
)

// atomicLevel is shared by every logger built by New so SetVerbosity can adjust
// loggers that were already handed out.
var atomicLevel = uberzap.NewAtomicLevelAt(zapcore.InfoLevel)

var (
	mu      sync.RWMutex
	current *logr.Logger
)

// New builds a zap-backed logr.Logger using the shared atomic level.
// development selects zap's console encoder and stack traces on warnings.
func New(development bool) logr.Logger {
	cfg := uberzap.NewProductionConfig()
	if development {
		cfg = uberzap.NewDevelopmentConfig()
	}
	cfg.Level = atomicLevel
	z, err := cfg.Build(uberzap.AddCaller())
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(z)
}

// NewTestLogger creates a development logger that prints everything up to TRACE.
func NewTestLogger() logr.Logger {
	cfg := uberzap.NewDevelopmentConfig()
	cfg.Level = uberzap.NewAtomicLevelAt(zapcore.Level(-1 * TRACE))
	z, err := cfg.Build(uberzap.AddCaller())
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(z)
}

// SetVerbosity enables V(v) output on loggers built by New.
func SetVerbosity(v int) {
	atomicLevel.SetLevel(zapcore.Level(-1 * v))
}

// Logger returns the process-wide logger, building a production one on first use.
func Logger() logr.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return *l
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		l := New(false)
		current = &l
	}
	return *current
}

// SetLogger replaces the process-wide logger.
func SetLogger(l logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = &l
}

// OrDefault returns l, or the process-wide logger when l has no sink.
func OrDefault(l logr.Logger) logr.Logger {
	if l.GetSink() == nil {
		return Logger()
	}
	return l
}

// Message writes text to l with the severity mapped onto logr:
// info and warning go to Info, error and fatal go to Error.
func Message(l logr.Logger, text string, t apis.MessageType) {
	switch t {
	case apis.ErrorMessage, apis.FatalMessage:
		l.Error(nil, text, "severity", t.String())
	default:
		l.Info(text, "severity", t.String())
	}
}
