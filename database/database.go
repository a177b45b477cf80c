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
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/config"
	"dirpx.dev/recdb/logging"
	"dirpx.dev/recdb/record"
)

// Builder constructs a Database for a Config.
// Implementations may migrate records from prev, or ignore it.
type Builder interface {
	BuildDatabase(cfg apis.Config, prev *Database) *Database
}

// Database maps record names to records. It is safe for concurrent use and
// never takes a record lock: lookups only need the database's own lock.
type Database struct {
	name    string
	logger  logr.Logger
	metrics *metrics

	// mu guards records. sealed only changes while mu is held.
	mu      sync.RWMutex
	records map[string]*record.Record
	sealed  atomic.Bool // when true, AddRecord, RemoveRecord and Clear do nothing
}

// Ensure Database is a Requester.
var _ apis.Requester = (*Database)(nil)

// New constructs an empty database. Zero fields of cfg get defaults.
func New(cfg apis.Config) *Database {
	if cfg.Name == "" {
		cfg.Name = config.DefaultName
	}
	return &Database{
		name:    cfg.Name,
		logger:  logging.OrDefault(cfg.Logger).WithName(cfg.Name),
		metrics: newMetrics(cfg.Registerer),
		records: make(map[string]*record.Record),
	}
}

// FindRecord returns the record called name. A missing record is not an error.
func (db *Database) FindRecord(name string) (*record.Record, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	r, ok := db.records[name]
	return r, ok
}

// Sealed reports whether the database is sealed.
func (db *Database) Sealed() bool { return db.sealed.Load() }

// Seal freezes the set of registered records: AddRecord, RemoveRecord and
// Clear fail until Unseal. Lookups keep working. Seal waits for writers in
// progress, so a snapshot taken afterwards (Records) is final.
// It returns true if this call changed the state.
func (db *Database) Seal() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return !db.sealed.Swap(true)
}

// Unseal reverses Seal. It returns true if this call changed the state.
func (db *Database) Unseal() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.sealed.Swap(false)
}

// AddRecord registers r under its name. It returns false if r is nil or
// destroyed, if another record already uses the name (the existing record is
// left untouched), or if the database is sealed.
func (db *Database) AddRecord(r *record.Record) bool {
	if r == nil || r.IsDestroyed() {
		return false
	}

	db.mu.Lock()
	if db.sealed.Load() {
		db.mu.Unlock()
		return false
	}
	if _, exists := db.records[r.Name()]; exists {
		db.mu.Unlock()
		db.metrics.conflicts.Inc()
		db.logger.V(logging.DEBUG).Info("duplicate record name", "record", r.Name())
		return false
	}
	db.records[r.Name()] = r
	db.metrics.records.Set(float64(len(db.records)))
	db.mu.Unlock()

	db.metrics.adds.Inc()
	db.logger.V(logging.VERBOSE).Info("record added", "record", r.Name())
	return true
}

// RemoveRecord unregisters r and destroys it. It returns false if r is not the
// record currently registered under its name, or if the database is sealed.
func (db *Database) RemoveRecord(r *record.Record) bool {
	if r == nil {
		return false
	}

	db.mu.Lock()
	if db.sealed.Load() {
		db.mu.Unlock()
		return false
	}
	if cur, ok := db.records[r.Name()]; !ok || cur != r {
		db.mu.Unlock()
		return false
	}
	delete(db.records, r.Name())
	db.metrics.records.Set(float64(len(db.records)))
	db.mu.Unlock()

	db.metrics.removes.Inc()
	db.logger.V(logging.VERBOSE).Info("record removed", "record", r.Name())
	r.Destroy()
	return true
}

// RecordNames returns the registered names in lexicographic order.
func (db *Database) RecordNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return slices.Sorted(maps.Keys(db.records))
}

// Records returns a snapshot of the registered records ordered by name.
func (db *Database) Records() []*record.Record {
	db.mu.RLock()
	out := slices.Collect(maps.Values(db.records))
	db.mu.RUnlock()

	slices.SortFunc(out, func(a, b *record.Record) int {
		switch {
		case a.Name() < b.Name():
			return -1
		case a.Name() > b.Name():
			return 1
		default:
			return 0
		}
	})
	return out
}

// Count returns the number of registered records.
func (db *Database) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.records)
}

// Clear unregisters and destroys every record. A sealed database is left as is.
func (db *Database) Clear() {
	db.mu.Lock()
	if db.sealed.Load() {
		db.mu.Unlock()
		return
	}
	old := db.records
	db.records = make(map[string]*record.Record)
	db.metrics.records.Set(0)
	db.mu.Unlock()

	for _, r := range old {
		db.metrics.removes.Inc()
		r.Destroy()
	}
}

// RequesterName returns the name messages are tagged with.
func (db *Database) RequesterName() string { return db.name }

// Message logs text tagged with the database name.
func (db *Database) Message(text string, t apis.MessageType) {
	logging.Message(db.logger, text, t)
}
