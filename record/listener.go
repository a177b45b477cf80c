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

// Client is implemented by any code that accesses a record and must be told
// when the record goes away.
//
// A Record never owns its clients: it compares them by identity and keeps a
// reference until they are removed or the record is destroyed. Callers must
// call RemoveClient before dropping an implementation they still want to reuse.
type Client interface {
	// Detach is called exactly once when the record is destroyed.
	Detach(r *Record)
}

// Listener observes puts on record fields. Every listener is also a Client.
//
// Listeners are called from the goroutine that performed the put, after the
// record's internal bookkeeping lock has been released, so a listener may call
// back into the record (for instance to remove itself).
type Listener interface {
	Client
	// DataPut reports a put on a field the listener subscribed to directly.
	DataPut(f *Field)
	// DataPutStructure reports a put on f, a descendant of requested, where
	// the listener subscribed to requested.
	DataPutStructure(requested *Structure, f *Field)
	// BeginGroupPut opens a batch of puts.
	BeginGroupPut(r *Record)
	// EndGroupPut closes the batch opened by BeginGroupPut.
	EndGroupPut(r *Record)
}

// Processor gives a record its behaviour. Process is called with the record
// locked by the caller.
type Processor interface {
	Process(r *Record)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(r *Record)

// Process calls fn(r).
func (fn ProcessorFunc) Process(r *Record) { fn(r) }
