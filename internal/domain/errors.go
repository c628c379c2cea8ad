package domain

// errors.go — error taxonomy shared by every component.
//
// Each failure carries a Kind that tells the caller what it may do next:
// retry (RETRIEVAL_FAILED), fix input (VALIDATION), reconcile before any
// retry (AMBIGUOUS_OUTCOME), or accept flagged partial data
// (INCOMPLETE_HISTORY). Kinds travel through fmt.Errorf("%w") chains and
// are recovered with KindOf.

import (
	"errors"
	"fmt"
)

// ErrKind classifies a failure.
type ErrKind string

const (
	// KindValidation: bad caller input. Not retryable, shown to the user.
	KindValidation ErrKind = "VALIDATION"
	// KindRetrievalFailed: transient network/timeout failure. Retryable.
	KindRetrievalFailed ErrKind = "RETRIEVAL_FAILED"
	// KindParseFailed: unexpected response shape. Not retryable, a defect.
	KindParseFailed ErrKind = "PARSE_FAILED"
	// KindStaleOrUnavailable: market state precludes the operation.
	KindStaleOrUnavailable ErrKind = "STALE_OR_UNAVAILABLE"
	// KindAmbiguousOutcome: order submission result unknown. Reconcile
	// positions before retrying.
	KindAmbiguousOutcome ErrKind = "AMBIGUOUS_OUTCOME"
	// KindIncompleteHistory: a derived statistic used truncated data.
	KindIncompleteHistory ErrKind = "INCOMPLETE_HISTORY"
)

// Error is a classified failure with the operation that produced it.
type Error struct {
	Kind ErrKind
	Op   string // "discovery.Search", "execution.Place"...
	Err  error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error wrapping cause (cause may be nil).
func E(kind ErrKind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Ef builds a classified error from a format string.
func Ef(kind ErrKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the ErrKind from an error chain.
// Unclassified errors report RETRIEVAL_FAILED: the conservative default
// for anything that crossed the network.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindRetrievalFailed
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// Retryable reports whether the caller may safely retry the operation.
func Retryable(err error) bool {
	return KindOf(err) == KindRetrievalFailed
}
