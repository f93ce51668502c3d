// Package cooldown tracks when a role was last pinged per release category
// so that repeat announcements inside the configured window go out without
// a mention.
package cooldown

import (
	"sync"
	"time"

	"github.com/raftmodding/discord-notification-service/internal/release"
)

// Tracker remembers the last recorded mention per category. State is held
// in memory for the lifetime of the process; slots are created on first
// record and never removed.
type Tracker struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[release.Category]time.Time
}

// NewTracker creates a tracker enforcing the given minimum gap between
// mentions of the same category. A non-positive interval disables
// suppression.
func NewTracker(interval time.Duration) *Tracker {
	if interval < 0 {
		interval = 0
	}
	return &Tracker{
		interval: interval,
		last:     make(map[release.Category]time.Time),
	}
}

// ShouldMention reports whether a mention at now is allowed for the
// category. A category with no recorded mention is always allowed; exactly
// at the end of the window the mention is allowed again.
func (t *Tracker) ShouldMention(cat release.Category, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[cat]
	if !ok {
		return true
	}
	return now.Sub(last) >= t.interval
}

// RecordMention stores now as the category's last mention, overwriting any
// previous slot. Call only after the mention was actually delivered.
func (t *Tracker) RecordMention(cat release.Category, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last[cat] = now
}
