package models

import "time"

// SessionRecord is the persisted trace of one issued refresh token.
// Rows are only ever mutated to flip Revoked to true.
type SessionRecord struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	JTI          string    `json:"jti"`
	RefreshToken string    `json:"refresh_token"`
	AccessJTI    string    `json:"access_jti"`
	DeviceID     string    `json:"device_id"`
	UserAgent    string    `json:"user_agent"`
	IPAddress    string    `json:"ip_address"`
	Revoked      bool      `json:"revoked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeviceContext carries the client metadata a session is scoped to.
type DeviceContext struct {
	UserAgent string `json:"user_agent"`
	IPAddress string `json:"ip_address"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessContext is attached to the request context after a successful
// access-token validation.
type AccessContext struct {
	UserID int64  `json:"user_id"`
	JTI    string `json:"jti"`
}
