// Package pool models the shared dice pool of a single game.
//
// The pool maps every participant to a non-negative number of pool dice. One
// participant is the allocator (the game master). Ordinary participants spend
// their own dice first and any excess is credited to the allocator; the
// allocator spends its own dice first and covers a shortfall by granting the
// ordinary participants an equal share.
//
// # Values
//
// State is a value type. Withdraw never mutates its input and returns the
// updated state together with an Allocation describing what happened, so
// callers can log or render the move without diffing two states.
package pool
