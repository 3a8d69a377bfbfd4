package validation

import (
	"fmt"

	"github.com/pkg/errors"
)

// ScriptExecutionError means a predicate failed to evaluate: it raised an
// internal error, panicked, exceeded its step budget, or did not yield a
// boolean. It carries the script text and the environment's bound
// variables for diagnostics. Terminal; the entity is rejected.
type ScriptExecutionError struct {
	Message       string
	ScriptText    string
	Bindings      map[string]string
	IsTokenScript bool
}

func (e *ScriptExecutionError) Error() string {
	return fmt.Sprintf("script execution failed (token script: %t): %s", e.IsTokenScript, e.Message)
}

// NotAllowedByScriptError means a predicate evaluated cleanly to false.
// Terminal; the entity is rejected.
type NotAllowedByScriptError struct {
	ScriptText    string
	Bindings      map[string]string
	IsTokenScript bool
}

func (e *NotAllowedByScriptError) Error() string {
	return fmt.Sprintf("transaction not allowed by script (token script: %t)", e.IsTokenScript)
}

// GenericError covers non-script authorization failures: malformed proofs,
// a wrong proof count on a non-scripted entity, or a signature that does
// not verify. Terminal; the entity is rejected.
type GenericError struct {
	Message string
}

func (e *GenericError) Error() string {
	return e.Message
}

// IsAuthorizationError reports whether err is one of the authorization
// failure kinds produced by the verifier.
func IsAuthorizationError(err error) bool {
	var scriptExecution *ScriptExecutionError
	var notAllowed *NotAllowedByScriptError
	var generic *GenericError
	return errors.As(err, &scriptExecution) ||
		errors.As(err, &notAllowed) ||
		errors.As(err, &generic)
}
