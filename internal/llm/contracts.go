package llm

import (
	"context"
	"errors"
	"fmt"
)

// Gateway is the one call the pipeline makes per segment. Implementations
// must not retry; a failed call is recorded and the run moves on.
type Gateway interface {
	Invoke(ctx context.Context, promptTemplate, segment string) (string, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, promptTemplate, segment string) (string, error)

func (f GatewayFunc) Invoke(ctx context.Context, promptTemplate, segment string) (string, error) {
	return f(ctx, promptTemplate, segment)
}

// GatewayError is a failed model invocation. Timeouts satisfy
// errors.Is(err, context.DeadlineExceeded).
type GatewayError struct {
	Model string
	Err   error
}

func (e *GatewayError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("llm gateway (%s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("llm gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AsGatewayError returns err as a *GatewayError, wrapping it when the
// gateway returned some other error type.
func AsGatewayError(err error) *GatewayError {
	if err == nil {
		return nil
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge
	}
	return &GatewayError{Err: err}
}
