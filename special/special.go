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

// Package special provides administrative records built on the record core.
//
// An administrative record has an argument structure written by the caller
// and a result structure holding a status string. Processing the record
// performs the action against a database and writes the status.
package special

import (
	"fmt"

	"dirpx.dev/recdb"
	"dirpx.dev/recdb/database"
	"dirpx.dev/recdb/record"
	"dirpx.dev/recdb/value"
)

// StatusSuccess is the status written when the action succeeded.
const StatusSuccess = "success"

const (
	pathRecordName = "argument.recordName"
	pathLevel      = "argument.level"
	pathStatus     = "result.status"
)

// notFound returns the status for a target record that is not registered.
func notFound(name string) string {
	return name + " not found"
}

// requireField resolves path in top as a T or reports it missing.
func requireField[T value.Field](name string, top *value.Structure, path string) (T, error) {
	f, ok := value.SubFieldAs[T](top, path)
	if !ok {
		return f, fmt.Errorf("%w: %s.%s", record.ErrMissingField, name, path)
	}
	return f, nil
}

// target is the database an administrative record acts on. A nil database
// means the master at the time of processing.
type target struct {
	db *database.Database
}

func (t target) findRecord(name string) (*record.Record, bool) {
	if t.db != nil {
		return t.db.FindRecord(name)
	}
	return recdb.FindRecord(name)
}

func (t target) removeRecord(r *record.Record) bool {
	if t.db != nil {
		return t.db.RemoveRecord(r)
	}
	return recdb.RemoveRecord(r)
}

// request runs one locked write-process-read cycle on r.
func request(r *record.Record, write func(), status *value.String) (string, error) {
	if !r.Lock() {
		return "", record.ErrDestroyed
	}
	defer r.Unlock()

	r.BeginGroupPut()
	write()
	r.EndGroupPut()
	r.Process()
	return status.Get(), nil
}
