package pool

import (
	"sort"

	apperrors "github.com/louisbranch/rollbot/internal/platform/errors"
)

var (
	// ErrAllocatorRequired indicates a state was built without an allocator identity.
	ErrAllocatorRequired = apperrors.New(apperrors.CodePoolAllocatorRequired, "pool allocator is required")
	// ErrNegativeBalance indicates a participant was given a negative pool count.
	ErrNegativeBalance = apperrors.New(apperrors.CodePoolNegativeBalance, "pool counts must not be negative")
	// ErrParticipantRequired indicates an empty participant identity.
	ErrParticipantRequired = apperrors.New(apperrors.CodePoolParticipantRequired, "participant is required")
)

// State is the pool of one game: the allocator identity plus every
// participant's count. The zero value is not usable; build one with NewState.
type State struct {
	allocator string
	balances  map[string]int
}

// NewState copies balances into a new State. The allocator entry is created
// with zero dice when missing.
func NewState(allocator string, balances map[string]int) (State, error) {
	if allocator == "" {
		return State{}, ErrAllocatorRequired
	}
	copied := make(map[string]int, len(balances)+1)
	for participant, count := range balances {
		if participant == "" {
			return State{}, ErrParticipantRequired
		}
		if count < 0 {
			return State{}, apperrors.WrapWithMetadata(
				apperrors.CodePoolNegativeBalance,
				"pool counts must not be negative",
				map[string]string{"participant": participant},
				ErrNegativeBalance,
			)
		}
		copied[participant] = count
	}
	if _, ok := copied[allocator]; !ok {
		copied[allocator] = 0
	}
	return State{allocator: allocator, balances: copied}, nil
}

// Allocator returns the game master identity.
func (s State) Allocator() string {
	return s.allocator
}

// Get returns the participant's count, or 0 when the participant is unknown.
func (s State) Get(participant string) int {
	return s.balances[participant]
}

// Has reports whether the participant has an entry.
func (s State) Has(participant string) bool {
	_, ok := s.balances[participant]
	return ok
}

// Set stores a count for the participant, creating the entry when needed.
// Set mutates the receiver's map; call Clone first to keep the original.
func (s State) Set(participant string, count int) error {
	if participant == "" {
		return ErrParticipantRequired
	}
	if count < 0 {
		return ErrNegativeBalance
	}
	s.balances[participant] = count
	return nil
}

// Ordinary returns every participant except the allocator, sorted by name.
func (s State) Ordinary() []string {
	names := make([]string, 0, len(s.balances))
	for participant := range s.balances {
		if participant == s.allocator {
			continue
		}
		names = append(names, participant)
	}
	sort.Strings(names)
	return names
}

// CountOrdinary returns how many participants are not the allocator.
func (s State) CountOrdinary() int {
	n := len(s.balances)
	if _, ok := s.balances[s.allocator]; ok {
		n--
	}
	return n
}

// Participants returns every participant including the allocator, sorted by name.
func (s State) Participants() []string {
	names := make([]string, 0, len(s.balances))
	for participant := range s.balances {
		names = append(names, participant)
	}
	sort.Strings(names)
	return names
}

// Balances returns a copy of the participant counts.
func (s State) Balances() map[string]int {
	copied := make(map[string]int, len(s.balances))
	for participant, count := range s.balances {
		copied[participant] = count
	}
	return copied
}

// Total returns the sum of all counts.
func (s State) Total() int {
	total := 0
	for _, count := range s.balances {
		total += count
	}
	return total
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	return State{allocator: s.allocator, balances: s.Balances()}
}
