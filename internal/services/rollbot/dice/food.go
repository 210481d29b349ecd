package dice

import "github.com/louisbranch/rollbot/internal/random"

// FoodEffect is how badly a food fight shot lands.
type FoodEffect int

const (
	FoodEffectUnspecified FoodEffect = iota
	// FoodEffectNothing means the shot hits and nothing breaks.
	FoodEffectNothing
	// FoodEffectSplash splashes the target and anyone near them.
	FoodEffectSplash
	// FoodEffectBlinding covers the target's face.
	FoodEffectBlinding
	// FoodEffectPyrotechnics blows up everything around the target.
	FoodEffectPyrotechnics
)

func (e FoodEffect) String() string {
	switch e {
	case FoodEffectNothing:
		return "nothing"
	case FoodEffectSplash:
		return "splash"
	case FoodEffectBlinding:
		return "blinding"
	case FoodEffectPyrotechnics:
		return "pyrotechnics"
	default:
		return "unspecified"
	}
}

var (
	foodColors = []string{
		"black", "blue", "green", "orange", "pink", "purple",
		"red", "white", "yellow", "clear", "multi-colored",
	}
	// The last consistency means "pick two" from the others.
	foodConsistencies = []string{
		"chunky", "fizzy", "lumpy", "smelly", "soft", "spongy",
		"sticky", "sudsy", "syrupy", "thick", "",
	}
	foodTypes = []string{
		"liquid", "meat", "metal", "plastic", "powder", "vegetable",
		"liquid", "meat", "metal", "plastic", "powder",
	}
	foodPyrotechnics = []string{
		"an avalanche of cans fall off a near-by shelf and bury the target; worse yet, some of the cans open leaking their contents on the target",
		"the light fixtures above the target explode in a shower of sparks, raining glowing hot metals and shards of glass down upon the target",
		"an unforeseen chemical reaction between Stuffers causes a frothing acid reaction that splashes on the target",
		"an unforeseen chemical reaction between Stuffers causes an explosion in the target's face, similar to a flash-bang grenade",
		"a cloud of fine powder of Dunkelzahn-knows-what engulfs the target, creating an inhalation hazard",
		"an unforeseen chemical reaction between Stuffers ignites the surrounding \"food\" stuffs in a greasy conflagration",
	}
)

// FoodRequest describes a food fight roll. Forced values from 1 to 6 pick
// the effect roll instead of rolling it; anything else is ignored.
type FoodRequest struct {
	Forced int
	Seed   int64
}

// FoodResult is the outcome of a food fight roll.
type FoodResult struct {
	Roll   int
	Forced bool
	Effect FoodEffect
	// Color, Consistency and Kind describe the food for any effect but
	// FoodEffectNothing.
	Color       string
	Consistency string
	Kind        string
	// Pyrotechnic describes the extra mayhem of FoodEffectPyrotechnics.
	Pyrotechnic string
}

// RollFoodFight rolls a food fight effect.
func RollFoodFight(req FoodRequest) FoodResult {
	rng := random.New(req.Seed)

	var result FoodResult
	if req.Forced >= 1 && req.Forced <= 6 {
		result.Roll = req.Forced
		result.Forced = true
	} else {
		result.Roll = random.Die(rng, 6)
	}
	result.Effect = foodEffect(result.Roll)
	if result.Effect == FoodEffectNothing {
		return result
	}

	result.Color = random.Pick(rng, foodColors)
	result.Consistency = random.Pick(rng, foodConsistencies)
	result.Kind = random.Pick(rng, foodTypes)
	if result.Consistency == "" {
		first := random.Pick(rng, foodConsistencies[:len(foodConsistencies)-1])
		second := random.Pick(rng, foodConsistencies[:len(foodConsistencies)-1])
		result.Consistency = first + ", " + second
	}
	if result.Effect == FoodEffectPyrotechnics {
		result.Pyrotechnic = random.Pick(rng, foodPyrotechnics)
	}
	return result
}

func foodEffect(roll int) FoodEffect {
	switch {
	case roll <= 1:
		return FoodEffectNothing
	case roll <= 3:
		return FoodEffectSplash
	case roll <= 5:
		return FoodEffectBlinding
	default:
		return FoodEffectPyrotechnics
	}
}
