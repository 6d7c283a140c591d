package tools

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies a tool invocation failure.
type Kind string

const (
	// KindNotFound means the requested tool is not registered.
	KindNotFound Kind = "not_found"
	// KindBadArguments means the argument payload is not a JSON object.
	KindBadArguments Kind = "bad_arguments"
	// KindExecutionFailed means the tool returned an error, panicked or timed out.
	KindExecutionFailed Kind = "execution_failed"
)

// InvocationError is a recoverable tool call failure. It is surfaced to the
// model as a tool message unless the engine is configured to fail fast.
type InvocationError struct {
	Kind    Kind   `json:"kind"`
	Tool    string `json:"tool"`
	Message string `json:"error"`
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("tool %s: %s: %s", e.Tool, e.Kind, e.Message)
}

// Payload returns the structured error payload fed back to the model.
func (e *InvocationError) Payload() string {
	bs, _ := json.Marshal(e)
	return string(bs)
}

// IsInvocationError reports whether err is or wraps an InvocationError.
func IsInvocationError(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}
