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
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/recdb/record"
	"dirpx.dev/recdb/value"
)

func TestTryLock_DoesNotBlockWhileHeld(t *testing.T) {
	r := newRecord(t, "ps1")

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if !r.Lock() {
			t.Error("Lock on a live record failed")
			return
		}
		close(held)
		<-release
		r.Unlock()
	}()
	<-held

	start := time.Now()
	assert.False(t, r.TryLock())
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	<-done
	require.True(t, r.TryLock())
	r.Unlock()
}

// TestLock_SerializesMutations checks that a reader holding the lock never
// sees the two fields written by a locked writer disagree.
func TestLock_SerializesMutations(t *testing.T) {
	r := newRecord(t, "ps1")
	v := leaf[*value.Double](t, r, "value")
	sev := leaf[*value.Int](t, r, "alarm.severity")

	g, _ := errgroup.WithContext(context.Background())
	writers := runtime.GOMAXPROCS(0) * 2
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				r.Lock()
				r.BeginGroupPut()
				v.Put(float64(i))
				sev.Put(int64(i))
				r.EndGroupPut()
				r.Unlock()
			}
			return nil
		})
	}
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				r.Lock()
				a, b := v.Get(), sev.Get()
				r.Unlock()
				if a != float64(b) {
					t.Errorf("torn read: value=%v severity=%v", a, b)
					return nil
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Zero(t, r.GroupPutDepth())
}

// TestLockOtherRecord_OppositeOrders locks the same pair from both sides
// concurrently; ordered acquisition must not deadlock.
func TestLockOtherRecord_OppositeOrders(t *testing.T) {
	a := newRecord(t, "a")
	b := newRecord(t, "b")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g, _ := errgroup.WithContext(ctx)
	pair := func(first, second *record.Record) func() error {
		return func() error {
			for i := 0; i < 2000; i++ {
				first.Lock()
				if !first.LockOtherRecord(second) {
					t.Error("LockOtherRecord failed on live records")
				}
				second.Unlock()
				first.Unlock()
			}
			return nil
		}
	}
	g.Go(pair(a, b))
	g.Go(pair(b, a))

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("deadlock acquiring two record locks")
	}
}

func TestLockOtherRecord_Rejects(t *testing.T) {
	a := newRecord(t, "a")
	b := newRecord(t, "b")

	require.True(t, a.Lock())
	assert.False(t, a.LockOtherRecord(nil))
	assert.False(t, a.LockOtherRecord(a))

	b.Destroy()
	assert.False(t, a.LockOtherRecord(b))

	// a must still be held by us whichever order was used
	assert.False(t, a.TryLock())
	a.Unlock()
	assert.True(t, a.TryLock())
	a.Unlock()
}

func TestDestroy_WhileLockedElsewhere(t *testing.T) {
	r := newRecord(t, "ps1")
	c := &detachCounter{}
	require.True(t, r.AddClient(c))
	require.True(t, r.Lock())

	// Destroy does not need the record lock.
	r.Destroy()
	assert.Equal(t, 1, c.Count())

	r.Unlock()
	assert.False(t, r.Lock())
}

// TestLockOtherRecord_CallerDestroyedWhileRelocking destroys the caller's
// record while it waits to take its own lock back after the other one.
func TestLockOtherRecord_CallerDestroyedWhileRelocking(t *testing.T) {
	// IDs are monotonic: other sorts first, so r must be released and re-locked.
	other := newRecord(t, "other")
	r := newRecord(t, "r")
	require.Negative(t, other.ID().Compare(r.ID()))

	require.True(t, other.Lock())

	holding := make(chan struct{})
	result := make(chan bool, 1)
	go func() {
		if !r.Lock() {
			t.Error("Lock on a live record failed")
			result <- false
			return
		}
		close(holding)
		result <- r.LockOtherRecord(other)
	}()
	<-holding

	// r is free once the goroutine released it to wait for other.
	deadline := time.Now().Add(10 * time.Second)
	for !r.TryLock() {
		require.True(t, time.Now().Before(deadline), "r was never released")
		runtime.Gosched()
	}
	other.Unlock()

	r.Destroy()
	r.Unlock()

	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(10 * time.Second):
		t.Fatal("LockOtherRecord did not return")
	}
	assert.True(t, other.TryLock(), "other must be released when r is lost")
	other.Unlock()
}
