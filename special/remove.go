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

package special

import (
	"dirpx.dev/recdb/database"
	"dirpx.dev/recdb/record"
	"dirpx.dev/recdb/value"
)

// RemoveRecord is a record that removes another record from a database when
// processed. Its value is
//
//	argument
//	    recordName string
//	result
//	    status string
type RemoveRecord struct {
	*record.Record
	target

	recordName *value.String
	status     *value.String
}

// RemoveRecordStructure returns a fresh value tree with the RemoveRecord shape.
func RemoveRecordStructure() *value.Structure {
	return value.NewStructure("",
		value.NewStructure("argument", value.NewString("recordName")),
		value.NewStructure("result", value.NewString("status")),
	)
}

// NewRemoveRecord creates a RemoveRecord called name acting on db, or on the
// master database when db is nil.
func NewRemoveRecord(name string, db *database.Database, opts ...record.Option) (*RemoveRecord, error) {
	return CreateRemoveRecord(name, RemoveRecordStructure(), db, opts...)
}

// CreateRemoveRecord creates a RemoveRecord around a caller supplied tree.
// The tree may carry extra fields but must contain argument.recordName and
// result.status as strings.
func CreateRemoveRecord(name string, top *value.Structure, db *database.Database, opts ...record.Option) (*RemoveRecord, error) {
	if top == nil {
		return nil, record.ErrNilStructure
	}
	rn, err := requireField[*value.String](name, top, pathRecordName)
	if err != nil {
		return nil, err
	}
	st, err := requireField[*value.String](name, top, pathStatus)
	if err != nil {
		return nil, err
	}

	rr := &RemoveRecord{target: target{db: db}, recordName: rn, status: st}
	opts = append(opts, record.WithProcessor(record.ProcessorFunc(rr.process)))
	r, err := record.Create(name, top, opts...)
	if err != nil {
		return nil, err
	}
	rr.Record = r
	return rr, nil
}

// RecordName returns the argument.recordName field.
func (rr *RemoveRecord) RecordName() *value.String { return rr.recordName }

// Status returns the result.status field.
func (rr *RemoveRecord) Status() *value.String { return rr.status }

// Request writes recordName, processes the record and returns the status.
// It fails only if the RemoveRecord itself has been destroyed.
func (rr *RemoveRecord) Request(recordName string) (string, error) {
	return request(rr.Record, func() { rr.recordName.Put(recordName) }, rr.status)
}

// process runs with the record lock held.
func (rr *RemoveRecord) process(*record.Record) {
	name := rr.recordName.Get()

	victim, ok := rr.findRecord(name)
	if !ok || !rr.removeRecord(victim) {
		rr.status.Put(notFound(name))
		return
	}
	rr.status.Put(StatusSuccess)
}
