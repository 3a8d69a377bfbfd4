package blockdiff

import (
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError. All of them
// are block-fatal: a block diff computation that hits one returns failure
// for the whole block.
var (
	// ErrTransactionUnauthorized indicates the authorization verifier
	// rejected a transaction. The verifier's error is wrapped inside.
	ErrTransactionUnauthorized = newRuleError("ErrTransactionUnauthorized")

	// ErrUnknownTransactionKind indicates a transaction kind reached the
	// admissibility gate with no registered rule. This is a bug-class
	// error; an unknown kind is never silently accepted.
	ErrUnknownTransactionKind = newRuleError("ErrUnknownTransactionKind")

	// ErrTransactionNotAllowedYet indicates a transaction kind that is
	// not enabled at the block's height or the transaction's timestamp.
	ErrTransactionNotAllowedYet = newRuleError("ErrTransactionNotAllowedYet")

	// ErrGenesisOutsideBootstrap indicates a genesis-kind transaction in
	// a block other than the first.
	ErrGenesisOutsideBootstrap = newRuleError("ErrGenesisOutsideBootstrap")

	// ErrConstraintOverflow indicates the block exceeded its resource
	// budget. The block is rejected whole rather than truncated.
	ErrConstraintOverflow = newRuleError("ErrConstraintOverflow")

	// ErrInvalidTransactionDiff indicates a transaction whose effect
	// cannot be computed: insufficient funds, unknown asset, malformed
	// amounts and the like.
	ErrInvalidTransactionDiff = newRuleError("ErrInvalidTransactionDiff")

	// ErrInvalidBlock indicates the block itself is malformed, e.g. its
	// fee sum overflows.
	ErrInvalidBlock = newRuleError("ErrInvalidBlock")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the validation rules. The
// caller can use errors.Is against the sentinels above to determine which
// rule was violated, and errors.As to reach a wrapped authorization error.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

// Is lets errors.Is match any wrapped instance of a rule error against its
// sentinel.
func (e RuleError) Is(target error) bool {
	if targetRuleError, ok := target.(RuleError); ok {
		return e.message == targetRuleError.message
	}
	return false
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ruleError wraps inner into a copy of the given sentinel, so that both
// errors.Is(err, sentinel) and errors.As against inner work.
func ruleError(sentinel RuleError, inner error) error {
	return errors.WithStack(RuleError{message: sentinel.message, inner: inner})
}
