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

// Command recdbctl creates records in the master database and runs the
// administrative trace and remove records against it.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"

	"dirpx.dev/recdb"
	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/config"
	"dirpx.dev/recdb/logging"
	"dirpx.dev/recdb/record"
	"dirpx.dev/recdb/special"
	"dirpx.dev/recdb/value"
)

const (
	removeRecordName = "recdbctl:remove"
	traceRecordName  = "recdbctl:trace"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	opts := NewOptions()
	fs := pflag.NewFlagSet("recdbctl", pflag.ContinueOnError)
	opts.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.Complete(); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logging.SetVerbosity(opts.LogVerbosity)
	logger := logging.New(opts.Development)
	logging.SetLogger(logger)
	setupLog := logger.WithName("setup")

	reg := prometheus.NewRegistry()
	recdb.SetConfig(config.NewConfig(
		config.WithName(opts.Name),
		config.WithLogger(logger),
		config.WithRegisterer(reg),
	))
	db := recdb.Master()

	for _, name := range opts.Records {
		r, err := newPowerSupply(name, logger)
		if err != nil {
			setupLog.Error(err, "Failed to create record", "record", name)
			return err
		}
		if !db.AddRecord(r) {
			db.Message("record "+name+" already exists", apis.WarningMessage)
		}
	}

	tr, err := special.NewTraceRecord(traceRecordName, nil, record.WithLogger(logger))
	if err != nil {
		return err
	}
	rm, err := special.NewRemoveRecord(removeRecordName, nil, record.WithLogger(logger))
	if err != nil {
		return err
	}
	db.AddRecord(tr.Record)
	db.AddRecord(rm.Record)

	for _, t := range opts.traceLevels {
		status, err := tr.Request(t.name, t.level)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "trace %s: %s\n", t.name, status)
	}
	for _, name := range opts.Remove {
		status, err := rm.Request(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "remove %s: %s\n", name, status)
	}

	for _, r := range db.Records() {
		if opts.Dump {
			fmt.Fprintln(out, r.String())
			continue
		}
		fmt.Fprintln(out, r.Name())
	}

	if opts.Metrics {
		return writeMetrics(out, reg)
	}
	return nil
}

// newPowerSupply creates a record with a numeric value and an alarm.
func newPowerSupply(name string, logger logr.Logger) (*record.Record, error) {
	top := value.NewStructure("",
		value.NewDouble("value"),
		value.NewStructure("alarm",
			value.NewInt("severity"),
			value.NewString("message"),
		),
	)
	return record.Create(name, top, record.WithLogger(logger))
}

func writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}
