// Package random wraps math/rand/v2 behind the small interface the generators draw from,
// so tests can substitute scripted sources.
package random

import (
	"hash/fnv"
	"math/rand/v2"
)

// Source is the subset of *rand.Rand the generators use.
type Source interface {
	Float64() float64
	IntN(n int) int
}

var _ Source = (*rand.Rand)(nil)

// New returns a PCG-backed generator for seed. Distinct streams yield independent
// sequences from the same seed.
func New(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// ForLocale derives the stream for a locale code so each locale gets its own sequence
// regardless of the order locales run in.
func ForLocale(seed uint64, code string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(code))
	return New(seed, h.Sum64())
}

// Uniform draws from [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// IntBetween draws from [lo, hi], both inclusive.
func IntBetween(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Pick returns a uniformly chosen element of items. items must not be empty.
func Pick[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
