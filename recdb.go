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

package recdb

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/builder"
	"dirpx.dev/recdb/config"
	"dirpx.dev/recdb/database"
	"dirpx.dev/recdb/record"
)

// ErrNilDatabase is raised when a builder returns a nil database.
var ErrNilDatabase = errors.New("recdb: builder returned nil database")

// load returns the current state, building the default one on first use.
func load() *state {
	if s := st.Load(); s != nil {
		return s
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	// Another caller may have won the race.
	if s := st.Load(); s != nil {
		return s
	}
	s := &state{cfg: config.DefaultConfig(), bld: builder.New()}
	s.db = s.bld.BuildDatabase(s.cfg, nil)
	if s.db == nil {
		panic(ErrNilDatabase)
	}
	st.Store(s)
	return s
}

// Master returns the process-wide database.
// It is constructed on first use with the default configuration and builder.
func Master() *database.Database {
	return load().db
}

// FindRecord looks name up in the master database.
// This is a convenience wrapper around Master().FindRecord.
func FindRecord(name string) (*record.Record, bool) {
	return load().db.FindRecord(name)
}

// AddRecord registers r in the master database.
// Unlike Master().AddRecord it is not lost to a concurrent rebuild: an add
// that hits the sealed previous master is retried on the new one.
func AddRecord(r *record.Record) bool {
	return onMaster(func(db *database.Database) bool { return db.AddRecord(r) })
}

// RemoveRecord unregisters and destroys r in the master database.
// Like AddRecord it is retried on the new master after a concurrent rebuild.
func RemoveRecord(r *record.Record) bool {
	return onMaster(func(db *database.Database) bool { return db.RemoveRecord(r) })
}

// onMaster runs op on the master. When op fails on a master sealed by a
// rebuild in progress, it waits for the rebuild and runs op again on the
// published master. It must not be called from a Builder.
func onMaster(op func(db *database.Database) bool) bool {
	for {
		db := load().db
		if op(db) {
			return true
		}
		if !db.Sealed() {
			return false
		}
		// Writers hold buildMu for the whole rebuild.
		buildMu.Lock()
		same := st.Load().db == db
		buildMu.Unlock()
		if same {
			return false
		}
	}
}

// rebuild seals prev so no add or remove on it is lost while bld copies its
// records, then builds the next master. prev is unsealed again if it stays
// the master, including when the builder fails.
func rebuild(bld database.Builder, cfg apis.Config, prev *database.Database) (ndb *database.Database) {
	prev.Seal()
	defer func() {
		if ndb == nil || ndb == prev {
			prev.Unseal()
		}
	}()

	ndb = bld.BuildDatabase(cfg, prev)
	if ndb == nil {
		panic(ErrNilDatabase)
	}
	return ndb
}

// SetAll explicitly sets all global state components.
//
// A nil cfg or bld leaves the corresponding component unchanged. A nil db
// makes the builder construct a fresh master from the previous one and
// clears the pin; a non-nil db is installed as is and pinned.
//
// This is mainly used by tests to get a deterministic state.
func SetAll(cfg *apis.Config, db *database.Database, bld database.Builder) {
	// Ensure the default state exists before taking the build lock.
	load()

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Configuration
	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}

	// Builder
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	// Database
	ndb := db
	npinned := false
	if ndb == nil {
		ndb = rebuild(nbld, ncfg, old.db)
	} else {
		npinned = true
	}

	// Ensure non-nil db.
	if ndb == nil {
		panic(ErrNilDatabase)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:    ncfg,
			db:     ndb,
			bld:    nbld,
			pinned: npinned,
		},
	)
}

// Config returns the global configuration.
func Config() apis.Config {
	return load().cfg
}

// SetConfig sets the global configuration to cfg.
// Unless the master is pinned it is rebuilt with the new configuration and
// the records of the previous master are carried over.
func SetConfig(cfg apis.Config) {
	load()

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	ndb := old.db
	if !old.pinned {
		ndb = rebuild(old.bld, cfg, old.db)
	}

	// Ensure non-nil db.
	if ndb == nil {
		panic(ErrNilDatabase)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:    cfg,
			db:     ndb,
			bld:    old.bld,
			pinned: old.pinned,
		},
	)
}

// Builder returns the global builder.
func Builder() database.Builder {
	return load().bld
}

// SetBuilder sets the global builder to b and, unless the master is pinned,
// rebuilds the master with it.
func SetBuilder(b database.Builder) {
	if b == nil {
		return
	}
	load()

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	ndb := old.db
	if !old.pinned {
		ndb = rebuild(b, old.cfg, old.db)
	}

	// Ensure non-nil db.
	if ndb == nil {
		panic(ErrNilDatabase)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:    old.cfg,
			db:     ndb,
			bld:    b,
			pinned: old.pinned,
		},
	)
}

// SetMaster installs db as the master database and pins it.
// Records of the previous master are not carried over.
func SetMaster(db *database.Database) {
	if db == nil {
		return
	}
	load()

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	st.Store(
		&state{
			cfg:    old.cfg,
			db:     db,
			bld:    old.bld,
			pinned: true,
		},
	)
}

// IsMasterPinned returns whether the master database is pinned.
func IsMasterPinned() bool {
	return load().pinned
}

// PinMaster stops configuration and builder changes from rebuilding the master.
func PinMaster() {
	setPinned(true)
}

// UnpinMaster lets configuration and builder changes rebuild the master again.
func UnpinMaster() {
	setPinned(false)
}

func setPinned(pinned bool) {
	load()

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	st.Store(
		&state{
			cfg:    old.cfg,
			db:     old.db,
			bld:    old.bld,
			pinned: pinned,
		},
	)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the configuration the master was built with.
	cfg apis.Config
	// db is the master database.
	db *database.Database
	// bld builds the master on reconfiguration.
	bld database.Builder
	// pinned indicates whether db is pinned (not rebuilt).
	pinned bool
}
