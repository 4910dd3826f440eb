package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session binds an opaque session identifier to a user identity. The
// identifier carries no embedded claims; everything here stays server-side.
// A session is immutable after creation and is destroyed on sign-out,
// terminal refresh failure, or when its absolute expiry passes.
type Session struct {
	ID      string
	Subject string
	Email   string
	Name    string
	Roles   []string

	CreatedAt      time.Time
	AbsoluteExpiry time.Time
}

type Repo interface {
	Upsert(ctx context.Context, session Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// newSessionID creates a cryptographically unpredictable session identifier.
func newSessionID(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
