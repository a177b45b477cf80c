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

package record

import (
	"github.com/go-logr/logr"
)

// Option configures a record at Create time.
type Option func(*options)

type options struct {
	logger     logr.Logger
	processor  Processor
	required   []string
	traceLevel int
}

// WithLogger sets the logger used when no requester is registered.
// The record name is appended to the logger name.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProcessor attaches the behaviour run by Record.Process.
func WithProcessor(p Processor) Option {
	return func(o *options) { o.processor = p }
}

// WithRequiredFields makes Create fail unless every dotted path resolves.
func WithRequiredFields(paths ...string) Option {
	return func(o *options) { o.required = append(o.required, paths...) }
}

// WithTraceLevel sets the initial trace level. Zero disables tracing.
func WithTraceLevel(level int) Option {
	return func(o *options) { o.traceLevel = level }
}
