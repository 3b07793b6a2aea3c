package auth

import "time"

// Config drives service-token behavior for the HTTP API.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// Claims are extracted from a validated service token.
type Claims struct {
	Subject   string
	Issuer    string
	TokenID   string
	ExpiresAt time.Time
}

// IssuedToken is a signed token and its expiry.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
