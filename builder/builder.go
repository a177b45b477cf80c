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

package builder

import (
	"dirpx.dev/recdb/apis"
	"dirpx.dev/recdb/database"
)

// New creates and returns a new instance of a database.Builder.
func New() database.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildDatabase builds and returns a new database.Database based on the provided
// configuration and pre-existing database. If a pre-existing database is provided,
// its records are registered in the new database as well; they are shared, not copied,
// and the previous database is left as it was.
func (b *builder) BuildDatabase(cfg apis.Config, prev *database.Database) *database.Database {
	ndb := database.New(cfg)
	if prev != nil {
		for _, r := range prev.Records() {
			_ = ndb.AddRecord(r)
		}
	}
	return ndb
}
