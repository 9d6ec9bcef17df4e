package models

import "time"

// OIDCConfig holds the OIDC provider settings stored in the database
type OIDCConfig struct {
	Provider     string    `json:"provider"`
	Issuer       string    `json:"issuer"`
	ClientID     string    `json:"client_id"`
	JWKSUrl      *string   `json:"jwks_url,omitempty"`
	AuthEndpoint *string   `json:"auth_endpoint,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CorsConfig holds the allowed origins stored in the database.
// Origins is a comma-separated list.
type CorsConfig struct {
	ConfigKey string    `json:"config_key"`
	Origins   string    `json:"origins"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatelimitConfig holds the rate limit stored in the database.
// Rate uses ulule/limiter formatted rates, e.g. "5-S", "100-M".
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
