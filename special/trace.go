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

// TraceRecord is a record that sets the trace level of another record when
// processed. Its value is
//
//	argument
//	    recordName string
//	    level int
//	result
//	    status string
type TraceRecord struct {
	*record.Record
	target

	recordName *value.String
	level      *value.Int
	status     *value.String
}

// TraceRecordStructure returns a fresh value tree with the TraceRecord shape.
func TraceRecordStructure() *value.Structure {
	return value.NewStructure("",
		value.NewStructure("argument", value.NewString("recordName"), value.NewInt("level")),
		value.NewStructure("result", value.NewString("status")),
	)
}

// NewTraceRecord creates a TraceRecord called name acting on db, or on the
// master database when db is nil.
func NewTraceRecord(name string, db *database.Database, opts ...record.Option) (*TraceRecord, error) {
	top := TraceRecordStructure()
	rn, _ := value.SubFieldAs[*value.String](top, pathRecordName)
	lv, _ := value.SubFieldAs[*value.Int](top, pathLevel)
	st, _ := value.SubFieldAs[*value.String](top, pathStatus)

	tr := &TraceRecord{target: target{db: db}, recordName: rn, level: lv, status: st}
	opts = append(opts, record.WithProcessor(record.ProcessorFunc(tr.process)))
	r, err := record.Create(name, top, opts...)
	if err != nil {
		return nil, err
	}
	tr.Record = r
	return tr, nil
}

// Status returns the result.status field.
func (tr *TraceRecord) Status() *value.String { return tr.status }

// Request writes the arguments, processes the record and returns the status.
func (tr *TraceRecord) Request(recordName string, level int) (string, error) {
	return request(tr.Record, func() {
		tr.recordName.Put(recordName)
		tr.level.Put(int64(level))
	}, tr.status)
}

func (tr *TraceRecord) process(*record.Record) {
	name := tr.recordName.Get()
	rec, ok := tr.findRecord(name)
	if !ok {
		tr.status.Put(notFound(name))
		return
	}
	rec.SetTraceLevel(int(tr.level.Get()))
	tr.status.Put(StatusSuccess)
}
