package domain

import "time"

// TokenPair bundles the credentials minted at login. The refresh token travels
// only inside an httpOnly cookie; the access token goes to the response body.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
