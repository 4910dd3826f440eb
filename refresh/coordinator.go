package refresh

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-session-gateway/internal/config"
	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
	"github.com/jrsteele09/go-session-gateway/provider"
	"github.com/jrsteele09/go-session-gateway/tokenstore"
)

// Coordinator obtains fresh token records from the provider, at most one
// outbound refresh per session per staleness event. Concurrent callers for
// the same session share the in-flight result instead of issuing their own
// provider calls, so a single-use refresh token is never double-spent.
type Coordinator struct {
	client provider.Client
	tokens tokenstore.Repo

	margin      time.Duration
	maxAttempts int
	baseBackoff time.Duration
	callTimeout time.Duration
	waitTimeout time.Duration

	group   singleflight.Group
	nowTime func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option defines a function type to modify the Coordinator instance.
type Option func(*Coordinator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Coordinator) {
		c.nowTime = nowFunc
	}
}

// WithSleep sets the backoff sleep function (primarily for testing)
func WithSleep(sleepFunc func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Coordinator) {
		c.sleep = sleepFunc
	}
}

// NewCoordinator initializes a new Coordinator with required dependencies.
func NewCoordinator(client provider.Client, tokens tokenstore.Repo, cfg config.SessionConfig, options ...Option) (*Coordinator, error) {
	if client == nil {
		return nil, errors.New("[NewCoordinator] provider client is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewCoordinator] token store is required")
	}

	coordinator := &Coordinator{
		client:      client,
		tokens:      tokens,
		margin:      cfg.GetRefreshMargin(),
		maxAttempts: cfg.GetMaxRefreshAttempts(),
		baseBackoff: cfg.GetRefreshBackoff(),
		callTimeout: cfg.GetProviderTimeout(),
		waitTimeout: cfg.GetRefreshWaitTimeout(),
		nowTime:     time.Now,
		sleep:       sleepContext,
	}

	for _, opt := range options {
		opt(coordinator)
	}

	return coordinator, nil
}

// Refresh returns a fresh token record for the session. If a refresh for the
// same session is already in flight the caller waits on that shared outcome.
//
// The caller's wait is bounded by the configured wait timeout and by ctx, but
// abandoning the wait never cancels the shared refresh itself: the leader
// runs detached and still updates the token store on completion.
func (c *Coordinator) Refresh(ctx context.Context, sessionID string) (tokenstore.TokenRecord, error) {
	ch := c.group.DoChan(sessionID, func() (interface{}, error) {
		return c.lead(sessionID)
	})

	waitCtx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	select {
	case res := <-ch:
		if res.Err != nil {
			return tokenstore.TokenRecord{}, res.Err
		}
		return res.Val.(tokenstore.TokenRecord), nil
	case <-waitCtx.Done():
		return tokenstore.TokenRecord{}, errors.Wrap(waitCtx.Err(), "[Coordinator.Refresh] abandoned wait on in-flight refresh")
	}
}

// lead is the leader path of a single-flight event. It runs on a detached
// context with its own provider-call budget so waiter cancellation cannot
// abort it mid-exchange.
func (c *Coordinator) lead(sessionID string) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.callTimeout)
	defer cancel()

	current, err := c.tokens.Get(ctx, sessionID)
	if err != nil {
		return tokenstore.TokenRecord{}, errors.Wrap(err, "[Coordinator.lead] tokens.Get")
	}

	// A previous event may have refreshed the record between the caller's
	// staleness check and this leader starting.
	if current.Fresh(c.nowTime(), c.margin) {
		return current, nil
	}

	tokens, err := c.exchangeWithRetry(ctx, sessionID, current.RefreshToken)
	if err != nil {
		return tokenstore.TokenRecord{}, err
	}

	record := tokenstore.TokenRecord{
		AccessToken:   tokens.AccessToken,
		RefreshToken:  tokens.RefreshToken,
		AccessExpiry:  tokens.AccessExpiry,
		RefreshExpiry: tokens.RefreshExpiry,
	}

	// Publish to the store before publishing to waiters: the old refresh
	// token is dead from this point and must never be offered again.
	if err := c.tokens.Put(ctx, sessionID, record); err != nil {
		return tokenstore.TokenRecord{}, errors.Wrap(err, "[Coordinator.lead] tokens.Put")
	}

	return record, nil
}

// exchangeWithRetry applies the retry policy for one staleness event:
// Transient failures retry up to the attempt budget with exponential backoff,
// RateLimited gets a single retry honoring the advertised delay, InvalidGrant
// and ProtocolError propagate immediately. Every returned error carries a
// taxonomy sentinel.
func (c *Coordinator) exchangeWithRetry(ctx context.Context, sessionID, refreshToken string) (provider.Tokens, error) {
	var lastErr error
	rateLimitRetried := false

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		tokens, err := c.client.Refresh(ctx, refreshToken)
		if err == nil {
			return tokens, nil
		}
		lastErr = err

		if gwerrors.Is(err, gwerrors.ErrInvalidGrant) || gwerrors.Is(err, gwerrors.ErrProtocol) {
			return provider.Tokens{}, err
		}

		var rateErr *gwerrors.RateLimitedError
		if gwerrors.As(err, &rateErr) {
			if rateLimitRetried {
				break
			}
			rateLimitRetried = true

			delay := rateErr.RetryAfter
			if delay == 0 {
				delay = c.baseBackoff * time.Duration(attempt)
			}
			log.Warn().Str("session_id", sessionID).Dur("retry_after", delay).Msg("provider rate limited, backing off")
			if c.sleep(ctx, delay) != nil {
				break
			}
			continue
		}

		// Transient: exponential backoff before the next attempt.
		if attempt < c.maxAttempts {
			backoff := c.baseBackoff << (attempt - 1)
			log.Warn().Str("session_id", sessionID).Int("attempt", attempt).Err(err).Msg("transient refresh failure, retrying")
			if c.sleep(ctx, backoff) != nil {
				break
			}
		}
	}

	log.Error().Str("session_id", sessionID).Err(lastErr).Msg("refresh retry budget exhausted")
	return provider.Tokens{}, gwerrors.Wrapf(lastErr, "[Coordinator.exchangeWithRetry] retry budget exhausted")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
