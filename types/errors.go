package types

import "errors"

var (
	// ErrInvalidWeights is returned when a weights blob is empty or rejected by the policy adapter
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrOutOfRange is returned on vector index access outside [0, N)
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidSize is returned when a slice does not match the vector arity
	ErrInvalidSize = errors.New("invalid size")
	// ErrPolicy is returned when the policy cannot produce an action
	ErrPolicy = errors.New("policy error")
	// ErrInvariantViolation is returned when an observation/action pair breaks the safety predicate
	ErrInvariantViolation = errors.New("safety invariant violation")
	// ErrUnsupportedAlgorithm is returned for an unknown algorithm tag in a weights blob
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	// ErrAllocation signals resource exhaustion, callers should not try to recover
	ErrAllocation = errors.New("allocation failure")
)

// numeric codes for hosts that cannot carry Go errors
const (
	CodeOK           = 0
	CodeBadWeights   = -1
	CodeInvalidSize  = -2
	CodeInvariant    = -3
	CodeOutOfMemory  = -4
	CodeInternalFail = -5
)

// Code maps an error to its numeric code, nil maps to CodeOK
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrInvalidWeights), errors.Is(err, ErrUnsupportedAlgorithm):
		return CodeBadWeights
	case errors.Is(err, ErrInvalidSize), errors.Is(err, ErrOutOfRange):
		return CodeInvalidSize
	case errors.Is(err, ErrInvariantViolation):
		return CodeInvariant
	case errors.Is(err, ErrAllocation):
		return CodeOutOfMemory
	default:
		return CodeInternalFail
	}
}
