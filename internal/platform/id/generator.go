package id

import (
	"sync"
	"time"
)

// Generator issues int64 identifiers derived from the creation time.
type Generator interface {
	NextID() int64
}

// TimestampGenerator returns Unix millisecond ids, bumped by one when two
// calls land in the same millisecond so ids stay unique within a process.
type TimestampGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{now: time.Now}
}

func (g *TimestampGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.now().UnixMilli()
	if next <= g.last {
		next = g.last + 1
	}
	g.last = next
	return next
}

// Observe advances the generator past an id that already exists, e.g. one
// loaded from storage.
func (g *TimestampGenerator) Observe(existing int64) {
	g.mu.Lock()
	if existing > g.last {
		g.last = existing
	}
	g.mu.Unlock()
}
