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
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/record"
	"dirpx.dev/recdb/value"
)

func TestCreate_Errors(t *testing.T) {
	_, err := record.Create("", powerSupply())
	assert.ErrorIs(t, err, record.ErrEmptyName)

	_, err = record.Create("ps1", nil)
	assert.ErrorIs(t, err, record.ErrNilStructure)

	r, err := record.Create("ps1", powerSupply(), record.WithRequiredFields("value", "alarm.limit"))
	assert.ErrorIs(t, err, record.ErrMissingField)
	assert.ErrorContains(t, err, "ps1.alarm.limit")
	assert.Nil(t, r)
}

func TestCreate_Active(t *testing.T) {
	r := newRecord(t, "ps1", record.WithRequiredFields("value", "alarm.severity"))

	assert.Equal(t, "ps1", r.Name())
	assert.Equal(t, "ps1", r.RequesterName())
	assert.Equal(t, record.StateActive, r.State())
	assert.Equal(t, "active", r.State().String())
	assert.False(t, r.IsDestroyed())
	assert.Zero(t, r.GroupPutDepth())
	assert.NotEqual(t, newRecord(t, "ps2").ID(), r.ID())
}

func TestGroupPut_NestedBroadcastsOnce(t *testing.T) {
	r := newRecord(t, "ps1")
	l := &recorder{}
	require.True(t, r.AddListener(l))

	r.BeginGroupPut()
	r.BeginGroupPut()
	assert.Equal(t, 2, r.GroupPutDepth())
	r.EndGroupPut()
	r.EndGroupPut()
	assert.Equal(t, 0, r.GroupPutDepth())

	want := []string{"begin ps1", "end ps1"}
	if diff := cmp.Diff(want, l.Events()); diff != "" {
		t.Fatalf("group put events (-want +got):\n%s", diff)
	}
}

func TestGroupPut_UnbalancedEndWarns(t *testing.T) {
	r := newRecord(t, "ps1")
	l := &recorder{}
	q := &inbox{}
	require.True(t, r.AddListener(l))
	require.True(t, r.AddRequester(q))

	r.EndGroupPut()

	assert.Empty(t, l.Events())
	assert.Equal(t, 0, r.GroupPutDepth())
	assert.Equal(t, []string{"warning: endGroupPut without beginGroupPut"}, q.Messages())
}

func TestRegistries_IdentitySets(t *testing.T) {
	r := newRecord(t, "ps1")
	l := &recorder{}
	c := &detachCounter{}
	q := &inbox{}

	assert.True(t, r.AddListener(l))
	assert.False(t, r.AddListener(l), "duplicate listener")
	assert.True(t, r.AddClient(c))
	assert.False(t, r.AddClient(c), "duplicate client")
	assert.True(t, r.AddRequester(q))
	assert.False(t, r.AddRequester(q), "duplicate requester")

	assert.False(t, r.AddListener(nil))
	assert.False(t, r.AddClient(nil))
	assert.False(t, r.AddRequester(nil))

	assert.True(t, r.RemoveListener(l))
	assert.False(t, r.RemoveListener(l))
	assert.True(t, r.RemoveClient(c))
	assert.False(t, r.RemoveClient(c))
	assert.True(t, r.RemoveRequester(q))
	assert.False(t, r.RemoveRequester(q))
}

func TestMessage_RequestersOrLogger(t *testing.T) {
	var logged []string
	logger := funcr.New(func(prefix, args string) {
		logged = append(logged, prefix+" "+args)
	}, funcr.Options{})

	r, err := record.Create("ps1", powerSupply(), record.WithLogger(logger))
	require.NoError(t, err)

	r.Message("no listeners yet", apis.InfoMessage)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "ps1")
	assert.Contains(t, logged[0], `"msg"="no listeners yet"`)

	q1, q2 := &inbox{}, &inbox{}
	r.AddRequester(q1)
	r.AddRequester(q2)
	shadow(t, r, "alarm.severity").Message("out of range", apis.ErrorMessage)

	assert.Len(t, logged, 1, "requesters consume the message")
	assert.Equal(t, []string{"error: alarm.severity out of range"}, q1.Messages())
	assert.Equal(t, q1.Messages(), q2.Messages())
}

func TestProcess_RunsProcessor(t *testing.T) {
	calls := 0
	r := newRecord(t, "ps1", record.WithProcessor(record.ProcessorFunc(func(r *record.Record) {
		calls++
		leaf[*value.Double](t, r, "value").Put(42)
	})))

	require.True(t, r.Lock())
	r.Process()
	r.Unlock()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 42.0, leaf[*value.Double](t, r, "value").Get())

	r.Destroy()
	r.Process()
	assert.Equal(t, 1, calls, "destroyed record must not process")

	// plain records have nothing to run
	plain := newRecord(t, "ps2")
	plain.Process()
}

func TestDestroy_DetachesEveryObserverOnce(t *testing.T) {
	r := newRecord(t, "ps1")
	l := &recorder{}
	both := &recorder{}
	c := &detachCounter{}

	require.True(t, r.AddListener(l))
	require.True(t, r.AddListener(both))
	require.True(t, r.AddClient(both))
	require.True(t, r.AddClient(c))
	require.True(t, shadow(t, r, "value").AddListener(l))

	r.Destroy()
	r.Destroy()

	assert.Equal(t, []string{"detach ps1"}, l.Events())
	assert.Equal(t, []string{"detach ps1"}, both.Events())
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, record.StateDestroyed, r.State())
	assert.True(t, r.IsDestroyed())
}

func TestDestroy_GuardsMutatingEntryPoints(t *testing.T) {
	r := newRecord(t, "ps1")
	l := &recorder{}
	require.True(t, r.AddListener(l))
	val := leaf[*value.Double](t, r, "value")
	valField := shadow(t, r, "value")
	require.True(t, valField.AddListener(l))

	r.Destroy()
	before := l.Events()

	assert.False(t, r.Lock())
	assert.False(t, r.TryLock())
	r.Unlock() // not held: no-op
	assert.False(t, r.AddListener(&recorder{}))
	assert.False(t, r.AddClient(&detachCounter{}))
	assert.False(t, r.AddRequester(&inbox{}))
	assert.False(t, valField.AddListener(l))
	assert.False(t, valField.RemoveListener(l))
	assert.Nil(t, r.FindField(val))
	assert.Nil(t, r.Structure(), "field tree released")

	r.BeginGroupPut()
	assert.Zero(t, r.GroupPutDepth())
	r.EndGroupPut()

	val.Put(1)
	assert.Equal(t, before, l.Events(), "no dispatch after destroy")
	assert.Equal(t, 1.0, val.Get(), "value tree itself stays usable")
}

func TestTrace_LogsWhenEnabled(t *testing.T) {
	var logged []string
	logger := funcr.New(func(prefix, args string) {
		logged = append(logged, args)
	}, funcr.Options{})

	r, err := record.Create("ps1", powerSupply(), record.WithLogger(logger))
	require.NoError(t, err)
	assert.Zero(t, r.TraceLevel())

	r.AddClient(&detachCounter{})
	assert.Empty(t, logged)

	r.SetTraceLevel(2)
	assert.Equal(t, 2, r.TraceLevel())
	r.BeginGroupPut()
	r.EndGroupPut()
	r.AddListener(&recorder{})

	require.Len(t, logged, 3)
	assert.Contains(t, logged[0], `"msg"="beginGroupPut"`)
	assert.Contains(t, logged[1], `"msg"="endGroupPut"`)
	assert.Contains(t, logged[2], `"msg"="addListener"`)
}

func TestString_DumpsValue(t *testing.T) {
	r := newRecord(t, "ps1")
	assert.Equal(t, "record ps1\n"+r.Value().String(), r.String())
}
