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

package config

import (
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/recdb/apis"
)

const (
	// DefaultName is the requester name a database reports messages under.
	DefaultName = "Database"
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure Name is valid.
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
// The logger is left zero so the process-wide logger is resolved when the
// database is built, and no metrics are registered.
func DefaultConfig() apis.Config {
	return apis.Config{
		Name: DefaultName,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithName sets the requester name.
// An empty name resets to the default.
func WithName(name string) Option {
	return func(c *apis.Config) {
		if name == "" {
			c.Name = DefaultName
			return
		}
		c.Name = name
	}
}

// WithLogger sets the logger used for messages nobody else consumed.
func WithLogger(l logr.Logger) Option {
	return func(c *apis.Config) {
		c.Logger = l
	}
}

// WithRegisterer sets where database metrics are registered.
// Use prometheus.DefaultRegisterer to expose them on the default handler.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *apis.Config) {
		c.Registerer = reg
	}
}
