package tokenstore

import "context"

// Repo is a pure keyed store for the current TokenRecord of each session.
// No retry or refresh logic lives here.
//
// Implementations must provide atomic swap semantics: a concurrent reader
// sees either the old record or the new one, never a partially written one.
type Repo interface {
	Get(ctx context.Context, sessionID string) (TokenRecord, error)
	Put(ctx context.Context, sessionID string, record TokenRecord) error
	Delete(ctx context.Context, sessionID string) error
}
