package engine

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so HTTP callers can map them to
// status codes without string matching.
type Kind int

const (
	Internal Kind = iota
	NotFound
	Conflict
	InvalidInput
	Unauthorized
	PreconditionFailed
	Exhausted
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InvalidInput:
		return "invalid_input"
	case Unauthorized:
		return "unauthorized"
	case PreconditionFailed:
		return "precondition_failed"
	case Exhausted:
		return "exhausted"
	default:
		return "internal"
	}
}

// Error is the only error type engine operations return. Sentinels
// below cover every domain failure; storage errors are wrapped via
// internalErr and carry the Internal kind.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Msg + ": " + e.cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

var (
	ErrProfileNotFound     = newErr(NotFound, "profile not found")
	ErrProposalNotFound    = newErr(NotFound, "proposal not found")
	ErrEndorsementNotFound = newErr(NotFound, "endorsement not found")

	ErrDuplicateProfile = newErr(Conflict, "profile already exists")
	ErrUsernameTaken    = newErr(Conflict, "username already taken")
	ErrAlreadyEndorsed  = newErr(Conflict, "already endorsed")
	ErrAlreadyVoted     = newErr(Conflict, "already voted")
	ErrAlreadyVerified  = newErr(Conflict, "profile already verified")

	ErrInvalidUsername     = newErr(InvalidInput, "username must be 3-30 characters")
	ErrSelfEndorsement     = newErr(InvalidInput, "cannot endorse own profile")
	ErrEmptyTitle          = newErr(InvalidInput, "proposal title is empty")
	ErrInvalidRange        = newErr(InvalidInput, "limit must be positive")
	ErrScoreExceedsMaximum = newErr(InvalidInput, "metric value exceeds maximum")

	ErrNotAuthorized = newErr(Unauthorized, "not authorized")

	ErrInsufficientReputation = newErr(PreconditionFailed, "insufficient reputation")
	ErrVotingPeriodEnded      = newErr(PreconditionFailed, "voting period ended")
	ErrVotingPeriodNotEnded   = newErr(PreconditionFailed, "voting period not ended")
	ErrProposalNotActive      = newErr(PreconditionFailed, "proposal not active")

	ErrNoRewardsToClaim = newErr(Exhausted, "no rewards to claim")
)

// KindOf returns the kind of an engine error; anything else counts as
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func internalErr(op string, err error) error {
	return &Error{Kind: Internal, Msg: fmt.Sprintf("%s failed", op), cause: err}
}
