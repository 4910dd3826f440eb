package provider

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
)

// classifyTokenEndpointError maps a token-endpoint failure onto the gateway
// error taxonomy:
//
//   - invalid_grant                -> ErrInvalidGrant (terminal, never retried)
//   - HTTP 429 or slow_down        -> RateLimitedError (carries Retry-After)
//   - HTTP 5xx / transport errors  -> ErrTransient (retryable)
//   - any other structured error   -> ErrProtocol (fatal)
func classifyTokenEndpointError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !stderrors.As(err, &retrieveErr) {
		// No HTTP response at all: DNS, dial, TLS, timeout.
		return errors.Wrapf(gwerrors.ErrTransient, "[classifyTokenEndpointError] token endpoint unreachable: %v", err)
	}

	if retrieveErr.ErrorCode == "invalid_grant" {
		return errors.Wrapf(gwerrors.ErrInvalidGrant, "[classifyTokenEndpointError] %s", retrieveErr.ErrorDescription)
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}

	if status == http.StatusTooManyRequests || retrieveErr.ErrorCode == "slow_down" {
		return errors.WithMessage(
			&gwerrors.RateLimitedError{RetryAfter: retryAfter(retrieveErr.Response)},
			"[classifyTokenEndpointError]",
		)
	}

	if status >= 500 {
		return errors.Wrapf(gwerrors.ErrTransient, "[classifyTokenEndpointError] provider returned %d", status)
	}

	return errors.Wrapf(gwerrors.ErrProtocol, "[classifyTokenEndpointError] provider error %q (%d): %s",
		retrieveErr.ErrorCode, status, retrieveErr.ErrorDescription)
}

// retryAfter parses the Retry-After header, accepting both delta-seconds and
// HTTP-date forms. Zero means the provider gave no usable hint.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
