// Package logging provides a cache.Metrics that reports through apex/log.
//
// Hits and misses are only counted; evictions and size changes are logged at
// debug level, which makes it useful for tracing eviction order in demos.
package logging

import (
	"sync/atomic"

	"github.com/apex/log"

	"github.com/IvanBrykalov/memocache/cache"
)

// Metrics logs cache events with a fixed "cache" field.
type Metrics struct {
	log    log.Interface
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a Metrics logging through l (nil => the apex/log default
// logger) tagged with name.
func New(l log.Interface, name string) *Metrics {
	if l == nil {
		l = log.Log
	}
	return &Metrics{log: l.WithField("cache", name)}
}

func (m *Metrics) Hit()  { m.hits.Add(1) }
func (m *Metrics) Miss() { m.misses.Add(1) }

func (m *Metrics) Evict(r cache.EvictReason) {
	m.log.WithField("reason", r.String()).Debug("evict")
}

func (m *Metrics) Size(entries int) {
	m.log.WithFields(log.Fields{
		"entries": entries,
		"hits":    m.hits.Load(),
		"misses":  m.misses.Load(),
	}).Debug("size")
}

// Counts returns the hits and misses observed so far.
func (m *Metrics) Counts() (hits, misses uint64) {
	return m.hits.Load(), m.misses.Load()
}

var _ cache.Metrics = (*Metrics)(nil)
