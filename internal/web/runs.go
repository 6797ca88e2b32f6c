package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/roster/internal/core"
)

// importRun is a finished import kept in memory.
type importRun struct {
	ID        uuid.UUID
	FileName  string
	CreatedAt time.Time
	Result    *core.Result
	Stats     core.Statistics
	Persisted bool
}

// runCache keeps the most recent runs, evicting the oldest once full.
type runCache struct {
	mu     sync.RWMutex
	runs   map[uuid.UUID]*importRun
	order  []uuid.UUID // Oldest first
	retain int
}

func newRunCache(retain int) *runCache {
	if retain <= 0 {
		retain = 1
	}
	return &runCache{
		runs:   make(map[uuid.UUID]*importRun),
		retain: retain,
	}
}

func (c *runCache) add(run *importRun) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs[run.ID] = run
	c.order = append(c.order, run.ID)

	for len(c.order) > c.retain {
		delete(c.runs, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *runCache) get(id uuid.UUID) (*importRun, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	run, ok := c.runs[id]
	return run, ok
}

// list returns retained runs, newest first.
func (c *runCache) list() []*importRun {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*importRun, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		out = append(out, c.runs[c.order[i]])
	}
	return out
}
