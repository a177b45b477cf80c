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

package record_test

import (
	"slices"
	"sync"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/record"
	"dirpx.dev/recdb/value"
)

// recorder is a Listener that keeps a log of every callback.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (l *recorder) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *recorder) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

func (l *recorder) Detach(r *record.Record) { l.add("detach " + r.Name()) }

func (l *recorder) DataPut(f *record.Field) { l.add("put " + f.FullName()) }

func (l *recorder) DataPutStructure(s *record.Structure, f *record.Field) {
	l.add("put " + s.FullName() + " <- " + f.FullName())
}

func (l *recorder) BeginGroupPut(r *record.Record) { l.add("begin " + r.Name()) }

func (l *recorder) EndGroupPut(r *record.Record) { l.add("end " + r.Name()) }

// detachCounter is a bare Client.
type detachCounter struct {
	mu sync.Mutex
	n  int
}

func (c *detachCounter) Detach(*record.Record) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *detachCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// inbox is a Requester collecting messages.
type inbox struct {
	mu   sync.Mutex
	msgs []string
}

func (q *inbox) RequesterName() string { return "inbox" }

func (q *inbox) Message(text string, t apis.MessageType) {
	q.mu.Lock()
	q.msgs = append(q.msgs, t.String()+": "+text)
	q.mu.Unlock()
}

func (q *inbox) Messages() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.msgs)
}

// powerSupply is a small record shape with one nested structure.
//
//	value        double
//	alarm        structure
//	    severity int
//	    message  string
func powerSupply() *value.Structure {
	return value.NewStructure("",
		value.NewDouble("value"),
		value.NewStructure("alarm",
			value.NewInt("severity"),
			value.NewString("message"),
		),
	)
}

func newRecord(t *testing.T, name string, opts ...record.Option) *record.Record {
	t.Helper()
	opts = append([]record.Option{record.WithLogger(testr.New(t))}, opts...)
	r, err := record.Create(name, powerSupply(), opts...)
	require.NoError(t, err)
	return r
}

func leaf[T value.Field](t *testing.T, r *record.Record, path string) T {
	t.Helper()
	f, ok := value.SubFieldAs[T](r.Value(), path)
	require.True(t, ok, "missing field %s", path)
	return f
}

func shadow(t *testing.T, r *record.Record, path string) *record.Field {
	t.Helper()
	f := r.FindField(r.Value().SubField(path))
	require.NotNil(t, f, "no shadow for %s", path)
	return f
}
