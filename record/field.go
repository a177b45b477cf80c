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
	"slices"

	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/value"
)

// Field is the shadow of one value field. It is owned by its Record; the
// parent and record links are back-references only.
type Field struct {
	value     value.Field
	parent    *Structure
	record    *Record
	structure *Structure // set when this field mirrors a value structure

	// listeners is guarded by record.regMu and replaced, never mutated in place.
	listeners []Listener

	fullFieldName string
	fullName      string
}

// Structure is the shadow of a value structure and owns its subfields.
type Structure struct {
	Field
	fields []*Field
}

// Ensure Field is the post handler the value tree calls.
var _ value.PostHandler = (*Field)(nil)

func (f *Field) setNames(fullFieldName string) {
	f.fullFieldName = fullFieldName
	if fullFieldName == "" {
		f.fullName = f.record.name
		return
	}
	f.fullName = f.record.name + "." + fullFieldName
}

// Value returns the mirrored value field.
func (f *Field) Value() value.Field { return f.value }

// Parent returns the enclosing structure, nil for the record's root.
func (f *Field) Parent() *Structure { return f.parent }

// Record returns the owning record.
func (f *Field) Record() *Record { return f.record }

// IsStructure reports whether f mirrors a value structure.
func (f *Field) IsStructure() bool { return f.structure != nil }

// Structure returns f as a *Structure, or nil for a leaf.
func (f *Field) Structure() *Structure { return f.structure }

// FullFieldName is the dotted path below the top-level structure, e.g.
// "argument.recordName". It is empty for the root.
func (f *Field) FullFieldName() string { return f.fullFieldName }

// FullName is the record name followed by the full field name.
func (f *Field) FullName() string { return f.fullName }

// AddListener subscribes l to puts on f (and, for a structure, on anything
// below it). l must already be registered with Record.AddListener.
func (f *Field) AddListener(l Listener) bool {
	if l == nil {
		return false
	}
	r := f.record
	r.regMu.Lock()
	if r.destroyed.Load() || !slices.Contains(r.listeners, l) {
		r.regMu.Unlock()
		return false
	}
	var ok bool
	f.listeners, ok = insert(f.listeners, l)
	r.regMu.Unlock()

	if ok {
		r.trace(1, "addListener "+f.fullFieldName)
	}
	return ok
}

// RemoveListener unsubscribes l from f. On a structure it also unsubscribes
// l from every descendant. It reports whether l was attached anywhere.
func (f *Field) RemoveListener(l Listener) bool {
	r := f.record
	r.regMu.Lock()
	defer r.regMu.Unlock()
	return f.removeListenerLocked(l)
}

func (f *Field) removeListenerLocked(l Listener) bool {
	var removed bool
	f.listeners, removed = remove(f.listeners, l)
	if f.structure != nil {
		for _, c := range f.structure.fields {
			if c.removeListenerLocked(l) {
				removed = true
			}
		}
	}
	return removed
}

func (f *Field) clearListenersLocked() {
	f.listeners = nil
	if f.structure != nil {
		for _, c := range f.structure.fields {
			c.clearListenersLocked()
		}
	}
}

// Message prefixes the full field name and forwards to the record.
func (f *Field) Message(text string, t apis.MessageType) {
	f.record.Message(f.fullFieldName+" "+text, t)
}

type directPut struct {
	field     *Field
	listeners []Listener
}

type structurePut struct {
	requested *Structure
	listeners []Listener
}

// PostPut is called by the value tree after a put on the mirrored field.
//
// Listeners of f get DataPut(f); when f is a structure each descendant's
// listeners get DataPut for that descendant. Then every ancestor structure
// with listeners gets DataPutStructure(ancestor, f), nearest first.
func (f *Field) PostPut() {
	r := f.record
	r.regMu.RLock()
	if r.destroyed.Load() {
		r.regMu.RUnlock()
		return
	}
	direct := f.collectLocked(nil)
	var up []structurePut
	for p := f.parent; p != nil; p = p.parent {
		if len(p.listeners) > 0 {
			up = append(up, structurePut{requested: p, listeners: p.listeners})
		}
	}
	r.enterDispatchLocked()
	r.regMu.RUnlock()
	defer r.leaveDispatch()

	for _, d := range direct {
		for _, l := range d.listeners {
			if r.destroyed.Load() {
				return
			}
			l.DataPut(d.field)
		}
	}
	for _, u := range up {
		for _, l := range u.listeners {
			if r.destroyed.Load() {
				return
			}
			l.DataPutStructure(u.requested, f)
		}
	}
}

func (f *Field) collectLocked(out []directPut) []directPut {
	if len(f.listeners) > 0 {
		out = append(out, directPut{field: f, listeners: f.listeners})
	}
	if f.structure != nil {
		for _, c := range f.structure.fields {
			out = c.collectLocked(out)
		}
	}
	return out
}

// Fields returns the direct subfields in declaration order.
func (s *Structure) Fields() []*Field {
	return slices.Clone(s.fields)
}

// StructureValue returns the mirrored value structure.
func (s *Structure) StructureValue() *value.Structure {
	return s.value.(*value.Structure)
}
