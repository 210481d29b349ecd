// Package dice implements the rollbot dice rules.
//
// Every roll takes a seed and is deterministic with respect to it, so
// callers own the source of randomness and tests can replay any roll.
package dice

import (
	apperrors "github.com/louisbranch/rollbot/internal/platform/errors"
	"github.com/louisbranch/rollbot/internal/random"
)

// DefaultMaxDice bounds the dice of one standard roll when no limit is set.
const DefaultMaxDice = 100

// ErrInvalidDiceCount indicates a negative dice count or one above the limit.
var ErrInvalidDiceCount = apperrors.New(apperrors.CodeDiceInvalidCount, "dice count is out of range")

// StandardRequest describes a success-counting roll of normal and pool dice.
type StandardRequest struct {
	Dice     int
	PoolDice int
	// MaxDice caps Dice+PoolDice. Zero uses DefaultMaxDice.
	MaxDice int
	Seed    int64
}

// Die is one rolled d6.
type Die struct {
	Value int
	// Pool marks dice taken from the shared pool.
	Pool bool
}

// Hit reports whether the die counts as a success.
func (d Die) Hit() bool {
	return d.Value >= 5
}

// Miss reports whether the die is a one.
func (d Die) Miss() bool {
	return d.Value == 1
}

// StandardResult is the outcome of a standard roll.
type StandardResult struct {
	Dice     int
	PoolDice int
	// Rolls holds the normal dice in roll order followed by the pool dice.
	Rolls  []Die
	Sum    int
	Hits   int
	Misses int
	Nulls  int

	Glitch         bool
	CriticalGlitch bool

	// Fate is set when exactly four normal dice were rolled.
	Fate *FateReading
}

// Total returns the number of dice rolled.
func (r StandardResult) Total() int {
	return r.Dice + r.PoolDice
}

// Face returns the rolled dice showing value, in roll order.
func (r StandardResult) Face(value int) []Die {
	var faces []Die
	for _, die := range r.Rolls {
		if die.Value == value {
			faces = append(faces, die)
		}
	}
	return faces
}

// FateReading reads normal d6 results as Fate dice: 1-2 is minus, 3-4 is
// blank and 5-6 is plus.
type FateReading struct {
	Faces []int
	Total int
}

// RollStandard rolls req.Dice normal dice followed by req.PoolDice pool dice.
func RollStandard(req StandardRequest) (StandardResult, error) {
	limit := req.MaxDice
	if limit <= 0 {
		limit = DefaultMaxDice
	}
	if req.Dice < 0 || req.PoolDice < 0 || req.Dice > limit || req.PoolDice > limit-req.Dice {
		return StandardResult{}, ErrInvalidDiceCount
	}

	rng := random.New(req.Seed)
	normal := make([]int, req.Dice)
	for i := range normal {
		normal[i] = random.Die(rng, 6)
	}
	pool := make([]int, req.PoolDice)
	for i := range pool {
		pool[i] = random.Die(rng, 6)
	}
	return EvaluateStandard(normal, pool), nil
}

// EvaluateStandard scores already rolled dice.
//
// A glitch happens when the ones across all dice reach half the normal dice.
// It is critical when there are no hits. A roll with no dice never glitches.
func EvaluateStandard(normal, pool []int) StandardResult {
	result := StandardResult{
		Dice:     len(normal),
		PoolDice: len(pool),
		Rolls:    make([]Die, 0, len(normal)+len(pool)),
	}
	for _, value := range normal {
		result.Rolls = append(result.Rolls, Die{Value: value})
	}
	for _, value := range pool {
		result.Rolls = append(result.Rolls, Die{Value: value, Pool: true})
	}

	for _, die := range result.Rolls {
		result.Sum += die.Value
		switch {
		case die.Hit():
			result.Hits++
		case die.Miss():
			result.Misses++
		default:
			result.Nulls++
		}
	}

	if result.Total() > 0 && float64(result.Misses) >= float64(result.Dice)/2 {
		result.Glitch = true
		result.CriticalGlitch = result.Hits == 0
	}

	if result.Dice == 4 {
		reading := &FateReading{Faces: make([]int, 0, len(normal))}
		for _, value := range normal {
			face := fateFace(value)
			reading.Faces = append(reading.Faces, face)
			reading.Total += face
		}
		result.Fate = reading
	}
	return result
}

func fateFace(value int) int {
	switch {
	case value <= 2:
		return -1
	case value <= 4:
		return 0
	default:
		return 1
	}
}
