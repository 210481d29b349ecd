package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	// Usage
	message.SetString(lang, "usage.heading", "Usage:")
	message.SetString(lang, "usage.invalid", "%s is not a valid /roll command.")
	message.SetString(lang, "usage.standard", "Use '/roll [number of dice]' to roll your dice.")
	message.SetString(lang, "usage.pool", "Use '/roll [normal dice] + [pool dice]' to roll extra.")
	message.SetString(lang, "usage.pools", "Use '/roll pools' to see the current pool sizes.")
	message.SetString(lang, "usage.food", "Use '/roll food' for Food Fight splatter effects.")
	message.SetString(lang, "usage.fate", "Use '/roll fate' to roll four Fate dice.")

	// Requests
	message.SetString(lang, "request.invalid_token", "Invalid request token")
	message.SetString(lang, "request.unknown_command", "Unknown command: %s")
	message.SetString(lang, "request.api_failure", "API call failure: %s")

	// Pools
	message.SetString(lang, "pools.heading", "Current Dice Pools:")
	message.SetString(lang, "pools.entry", "[%s: %d] ")
	message.SetString(lang, "pools.allocator", "%s (GM)")

	// Standard roll
	message.SetString(lang, "roll.standard", "%s rolled %d dice, _*%d pool dice*_, %d total. Sum: %d")
	message.SetString(lang, "roll.hits", "*%d* Hits:%s")
	message.SetString(lang, "roll.misses", "*%d* Misses:%s")
	message.SetString(lang, "roll.comment", "Comment: %s")
	message.SetString(lang, "roll.glitch", "*GLITCH!*")
	message.SetString(lang, "roll.critical_glitch", "*_CRITICAL_ GLITCH!*")
	message.SetString(lang, "roll.fate_reading", "*%d* Fate: %s")

	// Fate roll
	message.SetString(lang, "fate.roll", "%s rolled Fate%s dice: *%d* (%s)")
	message.SetString(lang, "fate.skill", " +%d")

	// Food fight
	message.SetString(lang, "food.forced", "Forced response, not random.")
	message.SetString(lang, "food.nothing", "The shot hits true, nothing breaks.")
	message.SetString(lang, "food.splash", "%s %s %s splashes all over the target, and anyone near them.")
	message.SetString(lang, "food.blinding", "So much %s %s %s splashes over the target that their face and arms are completely covered, impairing their visibility.")
	message.SetString(lang, "food.pyrotechnics", "Pyrotechnics! Not only does %s %s %s explode all over the target and everyone else in the vicinity, but %s.")
	message.SetString(lang, "food.splash.effect", "The target and everyone within 2m of them suffers a *-1 Dice Pool* modifier for *one round*.")
	message.SetString(lang, "food.nearby.effect", "Everyone within 2m of the target suffers a *-1 Dice Pool* modifier for *one round*.")
	message.SetString(lang, "food.blinding.effect", "The target suffers a *-2 Dice Pool* modifier. They must spend *a simple action* wiping their eyes clean(ish) *to remove this effect*.")
	message.SetString(lang, "food.pyrotechnics.effect", "The target rolls *Dodge + Reaction* to evade *3S damage*.")

	// Errors
	message.SetString(lang, "error.POOL_RECORD_NOT_FOUND", "The dice pools have not been set up for %s yet. Ask an admin to run poolctl init.")
	message.SetString(lang, "error.POOL_BACKEND_UNAVAILABLE", "The dice pools are unavailable right now. Nothing was rolled; try again.")
	message.SetString(lang, "error.POOL_INVALID_AMOUNT", "Pool dice must not be negative.")
	message.SetString(lang, "error.POOL_DEGENERATE_ALLOCATOR_STATE", "The GM is out of pool dice and there are no players to share the cost.")
	message.SetString(lang, "error.POOL_PARTICIPANT_REQUIRED", "Could not tell who is rolling.")
	message.SetString(lang, "error.POOL_VERSION_CONFLICT", "The dice pools are busy. Nothing was rolled; try again.")
	message.SetString(lang, "error.DICE_INVALID_COUNT", "You can roll between 0 and %d dice.")
	message.SetString(lang, "error.UNKNOWN", "Something went wrong. Nothing was rolled.")
}
