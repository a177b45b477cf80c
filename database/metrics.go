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

package database

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "recdb"
	subsystem = "database"
)

type metrics struct {
	records   prometheus.Gauge
	adds      prometheus.Counter
	conflicts prometheus.Counter
	removes   prometheus.Counter
}

// newMetrics creates the collectors and registers them on reg when set.
// If equal collectors are already registered (a rebuilt database on the same
// registry) the existing ones are reused.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records",
			Help:      "Number of records registered in the database.",
		}),
		adds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "record_adds_total",
			Help:      "Count of records added to the database.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "record_add_conflicts_total",
			Help:      "Count of add attempts rejected because the name was taken.",
		}),
		removes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "record_removes_total",
			Help:      "Count of records removed from the database.",
		}),
	}
	if reg == nil {
		return m
	}
	m.records = register(reg, m.records)
	m.adds = register(reg, m.adds)
	m.conflicts = register(reg, m.conflicts)
	m.removes = register(reg, m.removes)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	// Conflicting descriptor: keep an unregistered collector so callers still work.
	return c
}
