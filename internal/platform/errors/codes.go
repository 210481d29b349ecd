// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Pool errors
	CodePoolRecordNotFound      Code = "POOL_RECORD_NOT_FOUND"
	CodePoolBackendUnavailable  Code = "POOL_BACKEND_UNAVAILABLE"
	CodePoolInvalidAmount       Code = "POOL_INVALID_AMOUNT"
	CodePoolDegenerateAllocator Code = "POOL_DEGENERATE_ALLOCATOR_STATE"
	CodePoolParticipantRequired Code = "POOL_PARTICIPANT_REQUIRED"
	CodePoolVersionConflict     Code = "POOL_VERSION_CONFLICT"
	CodePoolNegativeBalance     Code = "POOL_NEGATIVE_BALANCE"
	CodePoolAllocatorRequired   Code = "POOL_ALLOCATOR_REQUIRED"
	CodePoolGameRequired        Code = "POOL_GAME_REQUIRED"

	// Admin errors
	CodePoolAlreadyInitialized Code = "POOL_ALREADY_INITIALIZED"

	// Dice errors
	CodeDiceInvalidCount Code = "DICE_INVALID_COUNT"

	// Chat delivery errors
	CodeChatDeliveryFailed Code = "CHAT_DELIVERY_FAILED"
)

// Retryable reports whether an operation failing with this code may succeed
// when repeated without changes.
func (c Code) Retryable() bool {
	switch c {
	case CodePoolBackendUnavailable, CodePoolVersionConflict, CodeChatDeliveryFailed:
		return true
	default:
		return false
	}
}

// Fatal reports whether the code signals a deployment or configuration
// problem rather than a bad request.
func (c Code) Fatal() bool {
	switch c {
	case CodePoolRecordNotFound, CodePoolDegenerateAllocator, CodePoolAllocatorRequired, CodePoolGameRequired:
		return true
	default:
		return false
	}
}
