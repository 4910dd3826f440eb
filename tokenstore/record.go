package tokenstore

import "time"

// TokenRecord holds the current credential pair for a session. A record is
// replaced wholesale on every refresh; the access and refresh tokens in one
// record always come from the same token-endpoint response.
type TokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExpiry time.Time `json:"access_expiry"`

	// RefreshExpiry is zero when the provider does not advertise a refresh
	// token lifetime.
	RefreshExpiry time.Time `json:"refresh_expiry,omitzero"`
}

// Fresh reports whether the access token is still usable at now, i.e. its
// expiry is more than margin in the future.
func (r TokenRecord) Fresh(now time.Time, margin time.Duration) bool {
	return now.Before(r.AccessExpiry.Add(-margin))
}
