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

// Package recdb provides a process-wide, in-memory store of named records.
//
// A record is a named, hierarchically typed data container. Its value is a
// value.Structure tree; the record mirrors that tree with a shadow tree of
// record.Field and record.Structure nodes that carry per-field change
// notification. Records are registered by name in a database.Database.
//
// # Design
//
// The core lives in sub-packages:
//
//   - value: the typed value tree (structures and scalar leaves). Every put
//     on a leaf calls the leaf's post handler synchronously.
//
//   - record: Record, its shadow tree, and the observer contracts
//     (Listener, Client, Processor). A record has a user-facing lock that
//     serializes mutation sequences, a group-put depth that brackets
//     several puts into one logical update, and a destroy operation that
//     detaches every attached observer exactly once.
//
//   - database: a name to record registry. Lookups never take record locks.
//
//   - builder: constructs a Database for a configuration, carrying over the
//     records of a previous instance.
//
// This package holds the master database. The master is part of a
// read-mostly snapshot (configuration, builder, database, pin flag)
// published through an atomic pointer. Readers load the snapshot and never
// lock; writers take a short build mutex, assemble a new snapshot and swap
// it in.
//
// # Global API
//
//  1. Read helpers:
//
//     Master() *database.Database
//     FindRecord(name string) (*record.Record, bool)
//     Config() apis.Config
//     Builder() database.Builder
//
//  2. Mutation helpers:
//
//     AddRecord(r) / RemoveRecord(r)
//     SetConfig(cfg apis.Config)
//     SetBuilder(b database.Builder)
//     SetMaster(db *database.Database)
//     PinMaster() / UnpinMaster()
//     SetAll(...)
//
//     SetConfig and SetBuilder rebuild the master through the builder,
//     which registers the previous master's records in the new one, unless
//     the master is pinned. The previous master is sealed for the rebuild
//     and stays sealed once replaced; AddRecord and RemoveRecord retry on
//     the new master, so a change made during a rebuild is never lost. SetMaster installs a database as is and pins
//     it. SetAll replaces everything at once and is mainly used by tests.
//
// # Usage pattern
//
//	r, err := record.Create("ps1", value.NewStructure("",
//		value.NewDouble("value"),
//		value.NewStructure("alarm", value.NewInt("severity")),
//	))
//	if err != nil {
//		return err
//	}
//	recdb.AddRecord(r)
//
//	r.Lock()
//	r.BeginGroupPut()
//	// puts on r's value leaves notify listeners
//	r.EndGroupPut()
//	r.Unlock()
//
// The special package builds administrative records (remove, trace) on top
// of the core.
package recdb
