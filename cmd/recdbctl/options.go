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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"dirpx.dev/recdb/logging"
)

// Options contains the command-line configuration for recdbctl.
type Options struct {
	//
	// Database.
	//
	Name    string   // Requester name of the master database.
	Records []string // Records to create before running requests.

	//
	// Requests.
	//
	Trace  []string // name=level pairs handed to the trace record.
	Remove []string // Record names handed to the remove record.

	//
	// Output.
	//
	Dump    bool // Print every remaining record with its value tree.
	Metrics bool // Print database metrics in the text exposition format.

	//
	// Diagnostics.
	//
	LogVerbosity int  // Number for the log level verbosity.
	Development  bool // Use zap's development encoder.

	// internal
	traceLevels []traceRequest // parsed Trace, set by Complete
}

type traceRequest struct {
	name  string
	level int
}

// NewOptions returns a new Options struct initialized with default values.
func NewOptions() *Options {
	return &Options{
		Name:         "recdbctl",
		LogVerbosity: logging.DEFAULT,
	}
}

// AddFlags binds the Options fields to command-line flags on the given FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	fs.StringVar(&opts.Name, "name", opts.Name,
		"Requester name of the master database.")
	fs.StringSliceVar(&opts.Records, "record", opts.Records,
		"Repeatable. Name of a record to create in the master database.")
	fs.StringSliceVar(&opts.Trace, "trace", opts.Trace,
		"Repeatable. <record>=<level> sets the trace level of a record.")
	fs.StringSliceVar(&opts.Remove, "remove", opts.Remove,
		"Repeatable. Name of a record to remove from the master database.")
	fs.BoolVar(&opts.Dump, "dump", opts.Dump,
		"Print the remaining records with their values.")
	fs.BoolVar(&opts.Metrics, "metrics", opts.Metrics,
		"Print database metrics after the requests ran.")
	fs.IntVarP(&opts.LogVerbosity, "v", "v", opts.LogVerbosity,
		"Number for the log level verbosity.")
	fs.BoolVar(&opts.Development, "development", opts.Development,
		"Use the development log encoder.")
}

// Complete performs post-processing of parsed command-line arguments.
func (opts *Options) Complete() error {
	opts.traceLevels = opts.traceLevels[:0]
	for _, spec := range opts.Trace {
		name, lv, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid value %q for flag %q: want <record>=<level>", spec, "trace")
		}
		level, err := strconv.Atoi(lv)
		if err != nil {
			return fmt.Errorf("invalid level in %q for flag %q: %w", spec, "trace", err)
		}
		opts.traceLevels = append(opts.traceLevels, traceRequest{name: name, level: level})
	}
	return nil
}

// Validate checks the Options for invalid or conflicting values.
func (opts *Options) Validate() error {
	if opts.Name == "" {
		return fmt.Errorf("flag %q must not be empty", "name")
	}
	if opts.LogVerbosity < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must not be negative", opts.LogVerbosity, "v")
	}
	for _, n := range opts.Records {
		if n == "" {
			return fmt.Errorf("flag %q must not contain empty names", "record")
		}
	}
	for _, tr := range opts.traceLevels {
		if tr.name == "" {
			return fmt.Errorf("flag %q must not contain empty record names", "trace")
		}
		if tr.level < 0 {
			return fmt.Errorf("invalid level %d for record %q: must not be negative", tr.level, tr.name)
		}
	}
	return nil
}
