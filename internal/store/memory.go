// internal/store/memory.go
//
// In-memory snapshot store for a running game.
// The engine goroutine records snapshots; HTTP handlers read them.
//
// Characteristics:
//   - Keeps the latest snapshot plus a bounded history of judged rounds.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; the game keeps nothing across
//     power cycles.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/morse/internal/game"
)

// DefaultHistory is the number of judged rounds kept by NewMemoryStore.
const DefaultHistory = 100

// ErrNotFound is returned before the first snapshot has been saved.
var ErrNotFound = errors.New("not found")

// Store is the read/write surface shared by the driver loop and the panel.
type Store interface {
	game.Recorder

	// Latest returns the most recent snapshot.
	Latest(ctx context.Context) (game.Snapshot, error)

	// History returns up to n judged rounds, newest first.
	History(ctx context.Context, n int) ([]game.Snapshot, error)
}

// memory implements Store with a fixed ring of judged rounds.
type memory struct {
	mu      sync.RWMutex    // guards everything below
	latest  *game.Snapshot  // nil until the first Record
	rounds  []game.Snapshot // ring buffer of judged rounds
	next    int             // ring write position
	full    bool
	lastRnd int
}

// NewMemoryStore constructs a store keeping DefaultHistory rounds.
func NewMemoryStore() Store {
	return NewMemoryStoreSize(DefaultHistory)
}

// NewMemoryStoreSize constructs a store keeping size rounds (at least one).
func NewMemoryStoreSize(size int) Store {
	if size < 1 {
		size = 1
	}
	return &memory{rounds: make([]game.Snapshot, size)}
}

// Record saves s as the latest snapshot. Snapshots that close a round
// (Rounds increased) are also appended to the history.
func (m *memory) Record(ctx context.Context, s game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &s
	if s.Rounds > m.lastRnd {
		m.lastRnd = s.Rounds
		m.rounds[m.next] = s
		m.next = (m.next + 1) % len(m.rounds)
		if m.next == 0 {
			m.full = true
		}
	}
	return nil
}

// Latest returns a copy of the newest snapshot or ErrNotFound.
func (m *memory) Latest(ctx context.Context) (game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return game.Snapshot{}, ErrNotFound
	}
	return *m.latest, nil
}

// History walks the ring backwards from the newest entry.
func (m *memory) History(ctx context.Context, n int) ([]game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.rounds)
	}
	if n <= 0 || n > size {
		n = size
	}
	out := make([]game.Snapshot, 0, n)
	for i := 1; i <= n; i++ {
		idx := (m.next - i + len(m.rounds)) % len(m.rounds)
		out = append(out, m.rounds[idx])
	}
	return out, nil
}
