package esdriver

import (
	"fmt"

	"github.com/google/uuid"
)

// OperationError is the taxonomy of failures the core surfaces via BadNews (§7).
type OperationError interface {
	error
	isOperationError()
}

// ServerError wraps a BadRequest rejection's UTF-8 reason text.
type ServerError struct{ Reason string }

func (e ServerError) Error() string   { return fmt.Sprintf("server error: %s", e.Reason) }
func (ServerError) isOperationError() {}

// NotAuthenticatedOp is surfaced when a registered exchange's server reply
// is NotAuthenticated (post-handshake).
type NotAuthenticatedOp struct{}

func (NotAuthenticatedOp) Error() string     { return "not authenticated" }
func (NotAuthenticatedOp) isOperationError() {}

// Aborted is surfaced on shutdown or retry-budget exhaustion.
type Aborted struct{}

func (Aborted) Error() string     { return "aborted" }
func (Aborted) isOperationError() {}

// BadNews is the failure payload of a Recv transmission.
type BadNews struct {
	Correlation uuid.UUID
	Err         OperationError
}

func (b BadNews) Error() string {
	return fmt.Sprintf("%s: %v", b.Correlation, b.Err)
}
