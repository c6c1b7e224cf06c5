package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

// DefaultMaxEntries bounds a journal built without WithMaxEntries.
const DefaultMaxEntries = 10000

// Journal is an in-memory transition journal. Once full it overwrites the
// oldest recorded transition.
type Journal struct {
	mu      sync.RWMutex
	entries []domain.Transition
	// next is the oldest slot once entries is full.
	next int
	max  int
}

type Option func(*Journal)

// WithMaxEntries caps how many transitions are kept.
func WithMaxEntries(n int) Option {
	return func(j *Journal) {
		if n > 0 {
			j.max = n
		}
	}
}

func NewJournal(opts ...Option) *Journal {
	j := &Journal{max: DefaultMaxEntries}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}
	return j
}

func (j *Journal) Record(_ context.Context, t domain.Transition) error {
	if t.GuardID == "" {
		return errors.New("transition guard id is required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.entries) < j.max {
		j.entries = append(j.entries, t)
		return nil
	}
	j.entries[j.next] = t
	j.next = (j.next + 1) % j.max
	return nil
}

// Len reports how many transitions are held.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// List returns the guard's transitions oldest first.
func (j *Journal) List(_ context.Context, guardID string) ([]domain.Transition, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []domain.Transition
	for _, t := range j.entries {
		if t.GuardID == guardID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].At.Before(out[b].At) })
	return out, nil
}

func (j *Journal) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	kept := make([]domain.Transition, 0, len(j.entries))
	var purged int64
	// Walk in insertion order so the ring restarts at slot zero.
	for i := range j.entries {
		t := j.entries[(j.next+i)%len(j.entries)]
		if t.At.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, t)
	}
	j.entries = kept
	j.next = 0
	return purged, nil
}

var _ ports.Journal = (*Journal)(nil)
