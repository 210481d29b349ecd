package dice

import "github.com/louisbranch/rollbot/internal/random"

// FateDice is the number of dF rolled by RollFate.
const FateDice = 4

// FateRequest describes a roll of four Fate dice plus a skill bonus.
type FateRequest struct {
	Skill int
	// HasSkill is set when the skill was given explicitly, even as zero.
	HasSkill bool
	Seed     int64
}

// FateResult is the outcome of a Fate roll.
type FateResult struct {
	// Faces holds -1, 0 or +1 per die.
	Faces    []int
	Roll     int
	Skill    int
	HasSkill bool
}

// Total returns the dice plus the skill bonus.
func (r FateResult) Total() int {
	return r.Roll + r.Skill
}

// RollFate rolls four Fate dice.
func RollFate(req FateRequest) FateResult {
	rng := random.New(req.Seed)
	result := FateResult{
		Faces:    make([]int, FateDice),
		Skill:    req.Skill,
		HasSkill: req.HasSkill,
	}
	for i := range result.Faces {
		face := random.Die(rng, 3) - 2
		result.Faces[i] = face
		result.Roll += face
	}
	return result
}
