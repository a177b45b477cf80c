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

package value

import (
	"fmt"
)

// PostHandler is notified synchronously after every put on the field it is
// attached to.
type PostHandler interface {
	PostPut()
}

// Field is a node of a value tree: either a *Structure or a *Scalar.
// The set of implementations is closed.
type Field interface {
	// FieldName returns the name of the field inside its parent.
	FieldName() string
	// Parent returns the enclosing structure, or nil for a top-level structure.
	Parent() *Structure
	// FullName returns the dotted path from the top-level structure (exclusive).
	FullName() string
	// PostHandler returns the handler fired on put, if any.
	PostHandler() PostHandler
	// SetPostHandler replaces the handler fired on put. nil detaches it.
	SetPostHandler(h PostHandler)
	// PostPut fires the post handler. Put methods call it for you.
	PostPut()

	setParent(p *Structure)
	dump(b *dumper)
}

// base carries the parts shared by every field kind.
type base struct {
	name    string
	parent  *Structure
	handler PostHandler
}

func (b *base) FieldName() string { return b.name }

func (b *base) Parent() *Structure { return b.parent }

func (b *base) FullName() string {
	if b.parent == nil {
		return ""
	}
	if pn := b.parent.FullName(); pn != "" {
		return pn + "." + b.name
	}
	return b.name
}

func (b *base) PostHandler() PostHandler { return b.handler }

func (b *base) SetPostHandler(h PostHandler) { b.handler = h }

func (b *base) PostPut() {
	if h := b.handler; h != nil {
		h.PostPut()
	}
}

func (b *base) setParent(p *Structure) {
	if b.parent != nil {
		panic(fmt.Errorf("%w: %q", ErrAttached, b.name))
	}
	b.parent = p
}
