// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package health reports whether the concept store is usable.
//
// Results are cached in a Cache the caller constructs once and passes in,
// so repeated probes within the TTL never touch the store.
package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long a check result is reused.
const DefaultTTL = 30 * time.Second

// ErrPingerRequired is returned when no store pinger is provided.
var ErrPingerRequired = errors.New("store pinger is required")

// Pinger verifies the store answers a read.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Status is the result of one check.
type Status struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Cache holds the last Status until ExpiresAt. The zero value is an empty
// cache. It is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	Value     *Status
	ExpiresAt time.Time
}

// get returns the cached status when it has not expired at now.
func (c *Cache) get(now time.Time) (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Value == nil || !now.Before(c.ExpiresAt) {
		return Status{}, false
	}
	return *c.Value, true
}

func (c *Cache) set(s Status, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Value = &s
	c.ExpiresAt = expires
}

// Invalidate drops the cached status.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Value = nil
	c.ExpiresAt = time.Time{}
}

// Checker probes the store and caches the outcome.
type Checker struct {
	pinger Pinger
	cache  *Cache
	ttl    time.Duration
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker) error

// WithTTL sets how long results are cached. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Checker) error {
		if ttl < 0 {
			ttl = 0
		}
		c.ttl = ttl
		return nil
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(c *Checker) error {
		if clock != nil {
			c.clock = clock
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChecker creates a checker. A nil cache gets a private one.
func NewChecker(pinger Pinger, cache *Cache, opts ...Option) (*Checker, error) {
	if pinger == nil {
		return nil, ErrPingerRequired
	}
	if cache == nil {
		cache = &Cache{}
	}
	c := &Checker{
		pinger: pinger,
		cache:  cache,
		ttl:    DefaultTTL,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "health")
	return c, nil
}

// Check returns the cached status or probes the store.
func (c *Checker) Check(ctx context.Context) Status {
	now := c.clock()
	if s, ok := c.cache.get(now); ok {
		return s
	}

	s := Status{Healthy: true, CheckedAt: now.UTC()}
	if err := c.pinger.Ping(ctx); err != nil {
		c.logger.Warn("store health check failed", "err", err)
		s.Healthy = false
		s.Error = err.Error()
	}
	if c.ttl > 0 {
		c.cache.set(s, now.Add(c.ttl))
	}
	return s
}
