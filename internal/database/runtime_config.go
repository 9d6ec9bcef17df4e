package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
)

const defaultConfigKey = "default"

// OIDCConfigRepository handles OIDC provider configuration in the database.
type OIDCConfigRepository struct {
	db *DB
}

// NewOIDCConfigRepository creates a new OIDC config repository
func NewOIDCConfigRepository(db *DB) *OIDCConfigRepository {
	return &OIDCConfigRepository{db: db}
}

// Get retrieves the config for a provider name
func (r *OIDCConfigRepository) Get(ctx context.Context, provider string) (*models.OIDCConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT provider, issuer, client_id, jwks_url, auth_endpoint, created_at, updated_at
		FROM oidc_config WHERE provider = $1
	`, provider)
	c := &models.OIDCConfig{}
	err := row.Scan(&c.Provider, &c.Issuer, &c.ClientID, &c.JWKSUrl, &c.AuthEndpoint, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("oidc config not found for provider %s: %w", provider, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get oidc config: %w", err)
	}
	return c, nil
}

// Set upserts the config for a provider name
func (r *OIDCConfigRepository) Set(ctx context.Context, c *models.OIDCConfig) error {
	if strings.TrimSpace(c.Provider) == "" || strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("provider and issuer are required")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oidc_config (provider, issuer, client_id, jwks_url, auth_endpoint, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider) DO UPDATE SET
			issuer = EXCLUDED.issuer,
			client_id = EXCLUDED.client_id,
			jwks_url = EXCLUDED.jwks_url,
			auth_endpoint = EXCLUDED.auth_endpoint,
			updated_at = EXCLUDED.updated_at
	`, c.Provider, c.Issuer, c.ClientID, c.JWKSUrl, c.AuthEndpoint, now, now)
	if err != nil {
		return fmt.Errorf("set oidc config: %w", err)
	}
	return nil
}

// CorsConfigRepository handles CORS origin configuration in the database.
type CorsConfigRepository struct {
	db *DB
}

// NewCorsConfigRepository creates a new CORS config repository
func NewCorsConfigRepository(db *DB) *CorsConfigRepository {
	return &CorsConfigRepository{db: db}
}

// Get retrieves the default CORS config, or nil when none is stored.
func (r *CorsConfigRepository) Get(ctx context.Context) (*models.CorsConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, origins, created_at, updated_at
		FROM cors_config WHERE config_key = $1
	`, defaultConfigKey)
	c := &models.CorsConfig{}
	err := row.Scan(&c.ConfigKey, &c.Origins, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cors config: %w", err)
	}
	return c, nil
}

// Set upserts the default CORS config. Origins is comma-separated.
func (r *CorsConfigRepository) Set(ctx context.Context, c *models.CorsConfig) error {
	origins := strings.TrimSpace(c.Origins)
	if origins == "" {
		return fmt.Errorf("origins cannot be empty")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cors_config (config_key, origins, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			origins = EXCLUDED.origins,
			updated_at = EXCLUDED.updated_at
	`, defaultConfigKey, origins, now, now)
	if err != nil {
		return fmt.Errorf("set cors config: %w", err)
	}
	return nil
}

// RatelimitConfigRepository handles rate limit configuration in the database.
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository.
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get retrieves the default rate limit config, or nil when none is stored.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1
	`, defaultConfigKey)
	c := &models.RatelimitConfig{}
	err := row.Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	return c, nil
}

// Set upserts the default rate limit config. Rate format: e.g. "5-S", "100-M".
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, defaultConfigKey, rate, now, now)
	if err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	return nil
}
