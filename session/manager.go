package session

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-gateway/internal/config"
	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
	"github.com/jrsteele09/go-session-gateway/provider"
	"github.com/jrsteele09/go-session-gateway/tokenstore"
)

// Refresher obtains a fresh token record for a stale session. Implemented by
// refresh.Coordinator.
type Refresher interface {
	Refresh(ctx context.Context, sessionID string) (tokenstore.TokenRecord, error)
}

// Manager owns the session lifecycle. It is the only component that creates
// and destroys sessions; token records are written only here and by the
// refresh leader.
type Manager struct {
	sessions  Repo
	tokens    tokenstore.Repo
	refresher Refresher

	margin   time.Duration
	maxAge   time.Duration
	idLength int
	nowTime  func() time.Time
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager initializes a new Manager with required dependencies.
func NewManager(sessions Repo, tokens tokenstore.Repo, refresher Refresher, cfg config.SessionConfig, options ...Option) (*Manager, error) {
	if sessions == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewManager] token store is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewManager] refresher is required")
	}

	manager := &Manager{
		sessions:  sessions,
		tokens:    tokens,
		refresher: refresher,
		margin:    cfg.GetRefreshMargin(),
		maxAge:    cfg.GetMaxSessionAge(),
		idLength:  cfg.GetSessionIDLength(),
		nowTime:   time.Now,
	}

	for _, opt := range options {
		opt(manager)
	}

	return manager, nil
}

// CreateSession stores the identity established by the callback handler along
// with its initial token record, and returns a fresh unguessable session ID.
// Creation fails closed: on any error no partial session survives.
func (m *Manager) CreateSession(ctx context.Context, identity provider.Identity, record tokenstore.TokenRecord) (string, error) {
	sessionID, err := newSessionID(m.idLength)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.CreateSession] session ID generation")
	}

	now := m.nowTime()
	sess := Session{
		ID:             sessionID,
		Subject:        identity.Subject,
		Email:          identity.Email,
		Name:           identity.Name,
		Roles:          identity.Roles,
		CreatedAt:      now,
		AbsoluteExpiry: now.Add(m.maxAge),
	}

	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return "", errors.Wrap(err, "[Manager.CreateSession] sessions.Upsert")
	}
	if err := m.tokens.Put(ctx, sessionID, record); err != nil {
		_ = m.sessions.Delete(ctx, sessionID)
		return "", errors.Wrap(err, "[Manager.CreateSession] tokens.Put")
	}

	log.Info().Str("subject", identity.Subject).Time("absolute_expiry", sess.AbsoluteExpiry).Msg("session created")
	return sessionID, nil
}

// GetSession returns the session record, enforcing the absolute expiry
// ceiling.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (Session, error) {
	sess, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if !m.nowTime().Before(sess.AbsoluteExpiry) {
		_ = m.InvalidateSession(ctx, sessionID)
		return Session{}, gwerrors.ErrSessionExpired
	}
	return sess, nil
}

// GetValidAccessToken returns the session's access token, refreshing it first
// when its expiry is within the safety margin. Terminal refresh failures
// invalidate the session as a side effect; a caller-local cancellation or
// wait timeout passes through without touching the session.
func (m *Manager) GetValidAccessToken(ctx context.Context, sessionID string) (string, error) {
	sess, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	now := m.nowTime()
	if !now.Before(sess.AbsoluteExpiry) {
		_ = m.InvalidateSession(ctx, sessionID)
		return "", errors.Wrap(gwerrors.ErrSessionExpired, "[Manager.GetValidAccessToken] absolute session ceiling reached")
	}

	record, err := m.tokens.Get(ctx, sessionID)
	if err != nil {
		if gwerrors.Is(err, gwerrors.ErrSessionNotFound) {
			// Session without tokens cannot be revived.
			_ = m.InvalidateSession(ctx, sessionID)
		}
		return "", errors.Wrap(err, "[Manager.GetValidAccessToken] tokens.Get")
	}

	if record.Fresh(now, m.margin) {
		return record.AccessToken, nil
	}

	record, err = m.refresher.Refresh(ctx, sessionID)
	if err != nil {
		if isProviderTerminal(err) {
			_ = m.InvalidateSession(ctx, sessionID)
			log.Warn().Str("subject", sess.Subject).Err(err).Msg("session invalidated after terminal refresh failure")
			return "", fmt.Errorf("[Manager.GetValidAccessToken] terminal refresh failure: %w (%w)", gwerrors.ErrSessionExpired, err)
		}
		return "", err
	}

	return record.AccessToken, nil
}

// InvalidateSession removes the session and its token record. Idempotent:
// invalidating an already-gone session is a no-op, not an error.
func (m *Manager) InvalidateSession(ctx context.Context, sessionID string) error {
	if err := m.sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Manager.InvalidateSession] sessions.Delete")
	}
	if err := m.tokens.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Manager.InvalidateSession] tokens.Delete")
	}
	return nil
}

// isProviderTerminal reports whether a refresh error came back classified by
// the coordinator (terminal for the session) rather than from the caller's
// own context expiring while waiting.
func isProviderTerminal(err error) bool {
	return gwerrors.Is(err, gwerrors.ErrInvalidGrant) ||
		gwerrors.Is(err, gwerrors.ErrProtocol) ||
		gwerrors.Is(err, gwerrors.ErrTransient) ||
		gwerrors.Is(err, gwerrors.ErrRateLimited) ||
		gwerrors.Is(err, gwerrors.ErrSessionNotFound)
}
