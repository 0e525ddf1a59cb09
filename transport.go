package mirror

import "context"

// Request is one outgoing query, handed to the injected Transport.
// Variables is always populated (possibly empty) even though the
// planner's generated queries currently inline every argument as a
// literal rather than a $variable reference — the shape still allows a
// transport to bind variables if it chooses to.
type Request struct {
	Body      string
	Variables map[string]any
}

// Transport sends one request to the remote service and returns its
// parsed, JSON-shaped response payload. The mirror never retries at this
// layer: errors propagate straight to the caller of Update.
type Transport func(ctx context.Context, req Request) (map[string]any, error)
