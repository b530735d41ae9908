package chat

import "context"

// Generator is the uniform contract of a provider client: one batch call
// returning ordered segments, or one lazy streaming call. Both honor ctx
// cancellation at every suspension point.
type Generator interface {
	Generate(ctx context.Context, env Envelope) (Result, error)
	GenerateStream(ctx context.Context, env Envelope) (Stream, error)
}
