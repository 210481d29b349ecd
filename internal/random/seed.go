// Package random seeds and drives the dice generators.
//
// Seeds come from crypto/rand; the rolls themselves replay a math/rand
// sequence so a seed fully determines a result.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed draws a roll seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a generator replaying the sequence for seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Die rolls one die with the given number of sides, which must be positive.
func Die(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}

// Pick returns one element of items chosen uniformly. items must not be empty.
func Pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}
