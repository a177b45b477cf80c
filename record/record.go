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

package record

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/oklog/ulid/v2"

	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/logging"
	"dirpx.dev/recdb/value"
)

var (
	// ErrEmptyName is returned when a record is created without a name.
	ErrEmptyName = errors.New("recdb(record): empty record name")
	// ErrNilStructure is returned when a record is created without a value tree.
	ErrNilStructure = errors.New("recdb(record): nil top-level structure")
	// ErrMissingField is returned when a required subfield does not resolve.
	ErrMissingField = errors.New("recdb(record): required field missing")
	// ErrDestroyed is returned by helpers that need a live record.
	ErrDestroyed = errors.New("recdb(record): record destroyed")
)

// Record is a named, lockable container for one value tree and the shadow
// Field tree that mirrors it.
//
// Two locks are involved. The record lock (Lock/Unlock/TryLock) is for
// callers: it serializes access to the value data. The bookkeeping lock
// (regMu) guards requesters, listeners, clients, the group-put depth and the
// per-field listener lists; observers are always invoked after it has been
// released.
type Record struct {
	name      string
	id        ulid.ULID
	value     *value.Structure
	processor Processor
	logger    logr.Logger

	// mu is the record lock; locked mirrors whether it is held.
	mu     sync.Mutex
	locked atomic.Bool

	regMu      sync.RWMutex
	root       *Structure
	requesters []apis.Requester
	listeners  []Listener
	clients    []Client
	index      map[value.Field]*Field
	depth      int

	// dispatchMu guards inflight and detach. inflight counts notification
	// loops that started before Destroy; the last one to finish runs the
	// Detach calls Destroy left behind.
	dispatchMu sync.Mutex
	inflight   int
	detach     []Client

	destroyed  atomic.Bool
	state      atomic.Int32
	traceLevel atomic.Int32
}

// Ensure Record is a Requester.
var _ apis.Requester = (*Record)(nil)

// Create builds a record called name around top and mirrors its tree.
// It fails when name is empty, top is nil, or a path given with
// WithRequiredFields does not resolve; no record is returned in that case.
//
// The record installs itself as the post handler of every field in top, so a
// value tree must not be shared between records.
func Create(name string, top *value.Structure, opts ...Option) (*Record, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if top == nil {
		return nil, ErrNilStructure
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &Record{
		name:      name,
		id:        ulid.Make(),
		value:     top,
		processor: o.processor,
		logger:    logging.OrDefault(o.logger).WithName(name),
		index:     make(map[value.Field]*Field),
	}
	r.state.Store(int32(StateCreated))
	r.traceLevel.Store(int32(o.traceLevel))

	for _, path := range o.required {
		if top.SubField(path) == nil {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingField, name, path)
		}
	}
	r.state.Store(int32(StateInitialized))

	r.root = r.mirror(top, nil, "").structure
	r.state.Store(int32(StateActive))
	r.trace(1, "created")
	return r, nil
}

// mirror builds the shadow node for v and everything below it.
func (r *Record) mirror(v value.Field, parent *Structure, fieldName string) *Field {
	var f *Field
	if vs, ok := v.(*value.Structure); ok {
		s := &Structure{}
		s.Field = Field{value: v, parent: parent, record: r, structure: s}
		f = &s.Field
		f.setNames(fieldName)
		for _, child := range vs.Fields() {
			s.fields = append(s.fields, r.mirror(child, s, joinPath(fieldName, child.FieldName())))
		}
	} else {
		f = &Field{value: v, parent: parent, record: r}
		f.setNames(fieldName)
	}
	r.index[v] = f
	v.SetPostHandler(f)
	return f
}

// Name returns the record name.
func (r *Record) Name() string { return r.name }

// ID returns the identity used to order record locks.
func (r *Record) ID() ulid.ULID { return r.id }

// Structure returns the root of the shadow field tree, or nil once the
// record is destroyed.
func (r *Record) Structure() *Structure {
	r.regMu.RLock()
	defer r.regMu.RUnlock()
	return r.root
}

// Value returns the top-level value structure.
func (r *Record) Value() *value.Structure { return r.value }

// State returns the lifecycle state.
func (r *Record) State() State { return State(r.state.Load()) }

// IsDestroyed reports whether Destroy has run.
func (r *Record) IsDestroyed() bool { return r.destroyed.Load() }

// TraceLevel returns the current trace level.
func (r *Record) TraceLevel() int { return int(r.traceLevel.Load()) }

// SetTraceLevel changes how much the record logs about its own operations.
// Zero disables tracing; 1 logs lifecycle and registration; 2 also logs
// processing and group puts.
func (r *Record) SetTraceLevel(level int) { r.traceLevel.Store(int32(level)) }

// FindField returns the shadow node mirroring v, or nil if v is not part of
// this record or the record is destroyed.
func (r *Record) FindField(v value.Field) *Field {
	if v == nil {
		return nil
	}
	r.regMu.RLock()
	defer r.regMu.RUnlock()
	return r.index[v]
}

// Lock blocks until the record lock is held. It returns false, without
// holding the lock, if the record is destroyed.
func (r *Record) Lock() bool {
	if r.destroyed.Load() {
		return false
	}
	r.mu.Lock()
	if r.destroyed.Load() {
		r.mu.Unlock()
		return false
	}
	r.locked.Store(true)
	return true
}

// Unlock releases the record lock. It does nothing if the lock is not held.
func (r *Record) Unlock() {
	if r.locked.CompareAndSwap(true, false) {
		r.mu.Unlock()
	}
}

// TryLock acquires the record lock only if it is free right now.
func (r *Record) TryLock() bool {
	if r.destroyed.Load() || !r.mu.TryLock() {
		return false
	}
	if r.destroyed.Load() {
		r.mu.Unlock()
		return false
	}
	r.locked.Store(true)
	return true
}

// LockOtherRecord locks other while the caller already holds r.
//
// The caller must not hold more than one other record lock. To avoid
// deadlock between goroutines locking the same pair in opposite order, locks
// are taken in record ID order: when other sorts first, r is released and
// re-acquired after other, so the caller's critical section on r is
// interrupted and anything read under r before the call must be checked
// again. It reports whether both r and other are now held; on false the
// caller holds r only if r is still alive, and never holds other.
func (r *Record) LockOtherRecord(other *Record) bool {
	if other == nil || other == r {
		return false
	}
	if r.id.Compare(other.id) < 0 {
		return other.Lock()
	}
	r.Unlock()
	ok := other.Lock()
	if !r.Lock() {
		if ok {
			other.Unlock()
		}
		return false
	}
	return ok
}

// BeginGroupPut opens a batch of puts. Only the outermost call notifies listeners.
func (r *Record) BeginGroupPut() {
	r.regMu.Lock()
	if r.destroyed.Load() {
		r.regMu.Unlock()
		return
	}
	r.depth++
	if r.depth != 1 {
		r.regMu.Unlock()
		return
	}
	ls := r.listeners
	r.enterDispatchLocked()
	r.regMu.Unlock()
	defer r.leaveDispatch()

	r.trace(2, "beginGroupPut")
	for _, l := range ls {
		if r.destroyed.Load() {
			return
		}
		l.BeginGroupPut(r)
	}
}

// EndGroupPut closes a batch of puts. Only the call that balances the
// outermost BeginGroupPut notifies listeners. An unmatched call is reported
// as a warning and otherwise ignored.
func (r *Record) EndGroupPut() {
	r.regMu.Lock()
	if r.destroyed.Load() {
		r.regMu.Unlock()
		return
	}
	if r.depth == 0 {
		r.regMu.Unlock()
		r.Message("endGroupPut without beginGroupPut", apis.WarningMessage)
		return
	}
	r.depth--
	if r.depth != 0 {
		r.regMu.Unlock()
		return
	}
	ls := r.listeners
	r.enterDispatchLocked()
	r.regMu.Unlock()
	defer r.leaveDispatch()

	r.trace(2, "endGroupPut")
	for _, l := range ls {
		if r.destroyed.Load() {
			return
		}
		l.EndGroupPut(r)
	}
}

// GroupPutDepth returns how many BeginGroupPut calls are open.
func (r *Record) GroupPutDepth() int {
	r.regMu.RLock()
	defer r.regMu.RUnlock()
	return r.depth
}

// Process runs the record's processor. The caller holds the record lock.
func (r *Record) Process() {
	if r.destroyed.Load() {
		return
	}
	r.trace(2, "process")
	if r.processor != nil {
		r.processor.Process(r)
	}
}

// AddRequester registers q to receive messages.
func (r *Record) AddRequester(q apis.Requester) bool {
	if q == nil {
		return false
	}
	r.regMu.Lock()
	defer r.regMu.Unlock()
	if r.destroyed.Load() {
		return false
	}
	var ok bool
	r.requesters, ok = insert(r.requesters, q)
	return ok
}

// RemoveRequester unregisters q.
func (r *Record) RemoveRequester(q apis.Requester) bool {
	r.regMu.Lock()
	defer r.regMu.Unlock()
	var ok bool
	r.requesters, ok = remove(r.requesters, q)
	return ok
}

// AddListener registers l at record level. This is required before l can be
// attached to any Field, and makes l receive group-put brackets.
func (r *Record) AddListener(l Listener) bool {
	if l == nil {
		return false
	}
	r.regMu.Lock()
	if r.destroyed.Load() {
		r.regMu.Unlock()
		return false
	}
	var ok bool
	r.listeners, ok = insert(r.listeners, l)
	r.regMu.Unlock()

	if ok {
		r.trace(1, "addListener")
	}
	return ok
}

// RemoveListener unregisters l from the record and from every field it was
// attached to.
func (r *Record) RemoveListener(l Listener) bool {
	r.regMu.Lock()
	var ok bool
	r.listeners, ok = remove(r.listeners, l)
	if ok && r.root != nil {
		r.root.removeListenerLocked(l)
	}
	r.regMu.Unlock()

	if ok {
		r.trace(1, "removeListener")
	}
	return ok
}

// AddClient registers c to be detached when the record is destroyed.
func (r *Record) AddClient(c Client) bool {
	if c == nil {
		return false
	}
	r.regMu.Lock()
	if r.destroyed.Load() {
		r.regMu.Unlock()
		return false
	}
	var ok bool
	r.clients, ok = insert(r.clients, c)
	r.regMu.Unlock()

	if ok {
		r.trace(1, "addClient")
	}
	return ok
}

// RemoveClient unregisters c.
func (r *Record) RemoveClient(c Client) bool {
	r.regMu.Lock()
	var ok bool
	r.clients, ok = remove(r.clients, c)
	r.regMu.Unlock()

	if ok {
		r.trace(1, "removeClient")
	}
	return ok
}

// RequesterName returns the record name.
func (r *Record) RequesterName() string { return r.name }

// Message sends text to every registered requester, or to the record logger
// when there are none.
func (r *Record) Message(text string, t apis.MessageType) {
	r.regMu.RLock()
	rs := r.requesters
	r.regMu.RUnlock()

	if len(rs) == 0 {
		logging.Message(r.logger, text, t)
		return
	}
	for _, q := range rs {
		q.Message(text, t)
	}
}

// Destroy detaches every client and listener exactly once and releases the
// field tree. Later calls do nothing. After Destroy the record can no longer
// be locked or processed, and puts on its value tree notify nobody.
//
// Destroy does not wait for notifications already being delivered. Those
// stop before their next listener call, and when any are still running the
// Detach calls are made by the last of them to return, so no listener is
// notified after its Detach. This also lets a callback destroy its own record.
func (r *Record) Destroy() {
	r.regMu.Lock()
	if !r.destroyed.CompareAndSwap(false, true) {
		r.regMu.Unlock()
		return
	}

	detach := slices.Clone(r.clients)
	for _, l := range r.listeners {
		if !slices.Contains(detach, Client(l)) {
			detach = append(detach, l)
		}
	}
	if r.root != nil {
		r.root.clearListenersLocked()
	}
	r.root = nil
	r.requesters, r.listeners, r.clients = nil, nil, nil
	clear(r.index)
	r.depth = 0
	r.state.Store(int32(StateDestroyed))
	r.regMu.Unlock()

	r.trace(1, "destroyed")

	r.dispatchMu.Lock()
	if r.inflight > 0 {
		r.detach = detach
		r.dispatchMu.Unlock()
		return
	}
	r.dispatchMu.Unlock()
	r.runDetach(detach)
}

func (r *Record) runDetach(detach []Client) {
	for _, c := range detach {
		c.Detach(r)
	}
}

// enterDispatchLocked marks a notification loop as running. The caller holds
// regMu and has checked that the record is not destroyed.
func (r *Record) enterDispatchLocked() {
	r.dispatchMu.Lock()
	r.inflight++
	r.dispatchMu.Unlock()
}

// leaveDispatch ends a notification loop and runs any Detach calls Destroy
// deferred to it.
func (r *Record) leaveDispatch() {
	r.dispatchMu.Lock()
	r.inflight--
	var detach []Client
	if r.inflight == 0 {
		detach, r.detach = r.detach, nil
	}
	r.dispatchMu.Unlock()
	r.runDetach(detach)
}

// String renders the record name followed by its value tree.
func (r *Record) String() string {
	return "record " + r.name + "\n" + r.value.String()
}

func (r *Record) trace(level int, msg string) {
	if int(r.traceLevel.Load()) >= level {
		r.logger.Info(msg, "traceLevel", level, "state", r.State().String())
	}
}

// insert appends v unless already present. The backing array is never shared
// with a previous snapshot.
func insert[T comparable](s []T, v T) ([]T, bool) {
	if slices.Contains(s, v) {
		return s, false
	}
	return append(slices.Clip(s), v), true
}

// remove drops v, copying so that snapshots handed to observers stay intact.
func remove[T comparable](s []T, v T) ([]T, bool) {
	i := slices.Index(s, v)
	if i < 0 {
		return s, false
	}
	return slices.Delete(slices.Clone(s), i, i+1), true
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
