package provider

import (
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
)

func retrieveError(status int, errorCode, retryAfter string) *oauth2.RetrieveError {
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
	}
	if retryAfter != "" {
		resp.Header.Set("Retry-After", retryAfter)
	}
	return &oauth2.RetrieveError{
		Response:  resp,
		ErrorCode: errorCode,
	}
}

func TestClassifyInvalidGrant(t *testing.T) {
	err := classifyTokenEndpointError(retrieveError(http.StatusBadRequest, "invalid_grant", ""))
	require.ErrorIs(t, err, gwerrors.ErrInvalidGrant)
}

func TestClassifyRateLimited(t *testing.T) {
	tests := []struct {
		name       string
		err        *oauth2.RetrieveError
		retryAfter time.Duration
	}{
		{"429 with delta seconds", retrieveError(http.StatusTooManyRequests, "", "7"), 7 * time.Second},
		{"429 without hint", retrieveError(http.StatusTooManyRequests, "", ""), 0},
		{"slow_down error code", retrieveError(http.StatusBadRequest, "slow_down", ""), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyTokenEndpointError(tt.err)
			require.ErrorIs(t, err, gwerrors.ErrRateLimited)

			var rateErr *gwerrors.RateLimitedError
			require.ErrorAs(t, err, &rateErr)
			require.Equal(t, tt.retryAfter, rateErr.RetryAfter)
		})
	}
}

func TestClassifyTransient(t *testing.T) {
	require.ErrorIs(t, classifyTokenEndpointError(retrieveError(http.StatusInternalServerError, "", "")), gwerrors.ErrTransient)
	require.ErrorIs(t, classifyTokenEndpointError(retrieveError(http.StatusBadGateway, "", "")), gwerrors.ErrTransient)

	// No HTTP response at all: DNS, dial, TLS, timeout.
	require.ErrorIs(t, classifyTokenEndpointError(stderrors.New("dial tcp: connection refused")), gwerrors.ErrTransient)
}

func TestClassifyProtocol(t *testing.T) {
	err := classifyTokenEndpointError(retrieveError(http.StatusBadRequest, "invalid_client", ""))
	require.ErrorIs(t, err, gwerrors.ErrProtocol)
	require.NotErrorIs(t, err, gwerrors.ErrInvalidGrant)
	require.NotErrorIs(t, err, gwerrors.ErrTransient)
}

func TestRetryAfterParsing(t *testing.T) {
	makeResp := func(value string) *http.Response {
		resp := &http.Response{Header: http.Header{}}
		if value != "" {
			resp.Header.Set("Retry-After", value)
		}
		return resp
	}

	require.Equal(t, time.Duration(0), retryAfter(nil))
	require.Equal(t, time.Duration(0), retryAfter(makeResp("")))
	require.Equal(t, time.Duration(0), retryAfter(makeResp("not-a-hint")))
	require.Equal(t, 30*time.Second, retryAfter(makeResp("30")))

	// HTTP-date form rounds to the remaining delta
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	d := retryAfter(makeResp(future))
	require.Greater(t, d, 50*time.Second)
	require.LessOrEqual(t, d, time.Minute)

	// Past dates and negative deltas mean no usable hint
	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	require.Equal(t, time.Duration(0), retryAfter(makeResp(past)))
}
