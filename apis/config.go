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

package apis

import (
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the knobs used when a Database is built.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Name is the requester name the database reports messages under.
	// Empty means "Database".
	Name string

	// Logger receives messages nobody else consumed. A zero Logger means
	// the process-wide logger from package logging.
	Logger logr.Logger

	// Registerer, when non-nil, receives the database metrics.
	// Re-registering the same collectors (e.g. after a rebuild) is tolerated.
	Registerer prometheus.Registerer
}
