package pool

import (
	"math"

	apperrors "github.com/louisbranch/rollbot/internal/platform/errors"
)

var (
	// ErrInvalidAmount indicates a negative withdrawal amount, or one whose
	// grants would push a balance past the largest int.
	ErrInvalidAmount = apperrors.New(apperrors.CodePoolInvalidAmount, "pool amount must not be negative")
	// ErrDegenerateAllocatorState indicates the allocator is short of dice and
	// there are no ordinary participants to cover the deficit.
	ErrDegenerateAllocatorState = apperrors.New(apperrors.CodePoolDegenerateAllocator, "allocator cannot cover deficit without ordinary participants")
)

// AllocationKind names the branch a withdrawal took.
type AllocationKind int

const (
	AllocationUnspecified AllocationKind = iota
	// AllocationSpent means the requester's own balance covered the amount.
	AllocationSpent
	// AllocationShortfall means the allocator ran short and every ordinary
	// participant was granted an equal share of the deficit.
	AllocationShortfall
	// AllocationPartial means an ordinary participant spent its whole
	// balance and the remainder was credited to the allocator.
	AllocationPartial
	// AllocationCredited means an ordinary participant had nothing to spend
	// and the whole amount was credited to the allocator.
	AllocationCredited
)

func (k AllocationKind) String() string {
	switch k {
	case AllocationUnspecified:
		return "unspecified"
	case AllocationSpent:
		return "spent"
	case AllocationShortfall:
		return "shortfall"
	case AllocationPartial:
		return "partial"
	case AllocationCredited:
		return "credited"
	default:
		return "unknown"
	}
}

// Allocation describes one withdrawal.
type Allocation struct {
	Kind        AllocationKind
	Participant string
	Amount      int
	// Before and After are the requester's balance around the withdrawal.
	Before int
	After  int
	// Deficit is the part of Amount the requester could not cover.
	Deficit int
	// PerParticipant is the grant each ordinary participant received on an
	// allocator shortfall.
	PerParticipant int
	// AllocatorCredit is what the allocator gained from an ordinary
	// participant's withdrawal.
	AllocatorCredit int
}

// Withdraw applies a pool withdrawal by participant and returns the updated
// state. The input state is not modified.
//
// An unknown participant is added with zero dice before any rule runs, so
// the first withdrawal of a new participant always succeeds.
func Withdraw(state State, participant string, amount int) (State, Allocation, error) {
	if amount < 0 {
		return State{}, Allocation{}, ErrInvalidAmount
	}
	if participant == "" {
		return State{}, Allocation{}, ErrParticipantRequired
	}
	if state.allocator == "" {
		return State{}, Allocation{}, ErrAllocatorRequired
	}

	updated := state.Clone()
	if !updated.Has(participant) {
		updated.balances[participant] = 0
	}

	balance := updated.balances[participant]
	allocation := Allocation{
		Participant: participant,
		Amount:      amount,
		Before:      balance,
	}

	if participant == updated.allocator {
		if balance >= amount {
			updated.balances[participant] = balance - amount
			allocation.Kind = AllocationSpent
			allocation.After = balance - amount
			return updated, allocation, nil
		}
		deficit := amount - balance
		n := updated.CountOrdinary()
		if n == 0 {
			return State{}, Allocation{}, ErrDegenerateAllocatorState
		}
		perParticipant := deficit/n + btoi(deficit%n != 0)
		ordinary := updated.Ordinary()
		for _, name := range ordinary {
			if updated.balances[name] > math.MaxInt-perParticipant {
				return State{}, Allocation{}, overflowError(name)
			}
		}
		for _, name := range ordinary {
			updated.balances[name] += perParticipant
		}
		remaining := 0
		if r := deficit % n; r != 0 {
			remaining = n - r
		}
		updated.balances[participant] = remaining
		allocation.Kind = AllocationShortfall
		allocation.After = remaining
		allocation.Deficit = deficit
		allocation.PerParticipant = perParticipant
		return updated, allocation, nil
	}

	if credit := amount - min(balance, amount); updated.balances[updated.allocator] > math.MaxInt-credit {
		return State{}, Allocation{}, overflowError(updated.allocator)
	}

	switch {
	case balance > amount:
		updated.balances[participant] = balance - amount
		allocation.Kind = AllocationSpent
		allocation.After = balance - amount
	case balance > 0:
		credit := amount - balance
		updated.balances[participant] = 0
		updated.balances[updated.allocator] += credit
		allocation.Kind = AllocationPartial
		allocation.Deficit = credit
		allocation.AllocatorCredit = credit
	default:
		updated.balances[updated.allocator] += amount
		allocation.Kind = AllocationCredited
		allocation.Deficit = amount
		allocation.AllocatorCredit = amount
	}
	return updated, allocation, nil
}

func overflowError(participant string) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodePoolInvalidAmount,
		"pool amount would overflow a balance",
		map[string]string{"participant": participant},
		ErrInvalidAmount,
	)
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
