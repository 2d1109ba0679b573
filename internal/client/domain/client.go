package domain

import "time"

// Client is a registered recorder machine. Clients authenticate with their
// ID and secret to obtain tokens for the capture API.
type Client struct {
	ID         string
	Name       string
	Hostname   string
	SecretHash string
	// RefreshJTI is the jti of the currently valid refresh token; empty
	// until the first token exchange.
	RefreshJTI string
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// IsRevoked reports whether the client may no longer authenticate.
func (c *Client) IsRevoked() bool {
	return c.RevokedAt != nil
}
