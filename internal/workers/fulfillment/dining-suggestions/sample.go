// internal/workers/fulfillment/dining-suggestions/sample.go
package suggestions

import (
	"math/rand/v2"

	"dining-concierge/internal/models"
)

// RandSource picks an index in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// globalRand draws from the runtime-seeded top-level generator.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// sample returns min(k, len(entries)) entries drawn uniformly without
// replacement. entries is not modified.
func sample(entries []models.IndexEntry, k int, rng RandSource) []models.IndexEntry {
	if k > len(entries) {
		k = len(entries)
	}
	if k <= 0 {
		return nil
	}

	pool := make([]models.IndexEntry, len(entries))
	copy(pool, entries)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
