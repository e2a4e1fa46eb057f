package feed

import (
	"sync"

	"github.com/criblink/featured/internal/api"
)

type memoKey struct {
	rawRegion   string
	listings    *api.Listing
	listingsLen int
	defs        *CategoryDefinition
	defsLen     int
	opts        Options
}

func keyFor(in Input, opts Options) memoKey {
	k := memoKey{
		rawRegion:   in.RawUserRegion,
		listingsLen: len(in.Listings),
		defsLen:     len(in.Definitions),
		opts:        opts,
	}
	if len(in.Listings) > 0 {
		k.listings = &in.Listings[0]
	}
	if len(in.Definitions) > 0 {
		k.defs = &in.Definitions[0]
	}
	return k
}

// Memo caches the last Build result keyed by input identity: the raw region
// string, the listings and definitions slices (backing array and length)
// and the options. Slices must be treated as immutable once passed in;
// replacing them, not editing them in place, is what invalidates the cache.
type Memo struct {
	mu     sync.Mutex
	valid  bool
	key    memoKey
	result Feed
	misses int
}

// Build returns the cached feed when the inputs are identical to the
// previous call and recomputes otherwise.
func (m *Memo) Build(in Input, opts Options) Feed {
	k := keyFor(in, opts)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.key == k {
		return m.result
	}
	m.result = Build(in, opts)
	m.key = k
	m.valid = true
	m.misses++
	return m.result
}

// Computations reports how many times Build actually ran.
func (m *Memo) Computations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misses
}
