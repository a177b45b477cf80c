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

// Scalar is a leaf field holding a single value of type T.
// Scalars are not synchronized; callers guard them with the owning record's lock.
type Scalar[T comparable] struct {
	base
	v T
}

// Leaf kinds supported by the value model.
type (
	String = Scalar[string]
	Int    = Scalar[int64]
	Double = Scalar[float64]
	Bool   = Scalar[bool]
)

// Ensure Scalar implements Field.
var _ Field = (*Scalar[string])(nil)

// NewString returns an empty string leaf named name.
func NewString(name string) *String { return &String{base: base{name: name}} }

// NewInt returns a zero int leaf named name.
func NewInt(name string) *Int { return &Int{base: base{name: name}} }

// NewDouble returns a zero double leaf named name.
func NewDouble(name string) *Double { return &Double{base: base{name: name}} }

// NewBool returns a false bool leaf named name.
func NewBool(name string) *Bool { return &Bool{base: base{name: name}} }

// Get returns the current value.
func (s *Scalar[T]) Get() T { return s.v }

// Put stores v and then fires the post handler.
func (s *Scalar[T]) Put(v T) {
	s.v = v
	s.PostPut()
}

// String renders the current value.
func (s *Scalar[T]) String() string { return fmt.Sprint(s.v) }

func (s *Scalar[T]) dump(d *dumper) {
	d.line("%T %s %v", s.v, s.name, s.v)
}
