package store

import (
	"context"
	"time"

	"github.com/systemdevart/random-coffee/internal/domain"
)

// Repo defines storage operations for the pairing history. The history is
// advisory: it only feeds best-effort repeat avoidance and auditing, so a
// storage failure never fails a run.
type Repo interface {
	// RecordRun persists every unordered pair covered by the posted groups.
	RecordRun(ctx context.Context, channel string, at time.Time, groups []domain.Group) error
	// RecentPairs returns the set of pair keys posted to the channel since
	// the given time.
	RecentPairs(ctx context.Context, channel string, since time.Time) (map[string]bool, error)
	Close() error
}
