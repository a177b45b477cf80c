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
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrAttached is raised (as a panic) when a field is added to a second parent.
var ErrAttached = errors.New("value: field already attached to a structure")

// Structure is an ordered set of named subfields.
type Structure struct {
	base
	fields []Field
}

// Ensure Structure implements Field.
var _ Field = (*Structure)(nil)

// NewStructure builds a structure named name holding fields in order.
// A top-level structure usually has an empty name. Nil fields are ignored.
// It panics with ErrAttached if a field already belongs to another structure.
func NewStructure(name string, fields ...Field) *Structure {
	s := &Structure{base: base{name: name}}
	for _, f := range fields {
		if f == nil {
			continue
		}
		f.setParent(s)
		s.fields = append(s.fields, f)
	}
	return s
}

// Fields returns the subfields in declaration order.
func (s *Structure) Fields() []Field {
	return slices.Clone(s.fields)
}

// Field returns the direct subfield called name, or nil.
func (s *Structure) Field(name string) Field {
	for _, f := range s.fields {
		if f.FieldName() == name {
			return f
		}
	}
	return nil
}

// SubField resolves a dotted path such as "argument.recordName".
// It returns nil when any element of the path is missing.
func (s *Structure) SubField(path string) Field {
	if path == "" {
		return nil
	}
	cur := s
	parts := strings.Split(path, ".")
	for i, p := range parts {
		f := cur.Field(p)
		if f == nil {
			return nil
		}
		if i == len(parts)-1 {
			return f
		}
		next, ok := f.(*Structure)
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

// SubFieldAs resolves path and asserts the field kind.
func SubFieldAs[T Field](s *Structure, path string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	t, ok := s.SubField(path).(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// String renders the structure and every subfield, one per line.
func (s *Structure) String() string {
	d := &dumper{}
	s.dump(d)
	return strings.TrimSuffix(d.b.String(), "\n")
}

func (s *Structure) dump(d *dumper) {
	d.line("structure %s", s.name)
	d.indent++
	for _, f := range s.fields {
		f.dump(d)
	}
	d.indent--
}

type dumper struct {
	b      strings.Builder
	indent int
}

func (d *dumper) line(format string, args ...any) {
	d.b.WriteString(strings.Repeat("    ", d.indent))
	d.b.WriteString(strings.TrimSpace(fmt.Sprintf(format, args...)))
	d.b.WriteByte('\n')
}
