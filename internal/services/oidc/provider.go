package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/models"
)

// Provider manages OIDC provider configuration
type Provider struct {
	repo        *database.OIDCConfigRepository
	frontendURL string
}

// NewProvider creates a new OIDC provider manager. frontendURL is used to
// derive the redirect URI handed to the login flow.
func NewProvider(repo *database.OIDCConfigRepository, frontendURL string) *Provider {
	return &Provider{repo: repo, frontendURL: frontendURL}
}

// GetConfig retrieves OIDC configuration for a provider
func (p *Provider) GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error) {
	config, err := p.repo.Get(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}
	return config, nil
}

// JWKSURL returns the JWKS endpoint for the config. A stored override wins;
// otherwise the standard well-known path under the issuer is used.
func (p *Provider) JWKSURL(config *models.OIDCConfig) string {
	if config.JWKSUrl != nil && *config.JWKSUrl != "" {
		return *config.JWKSUrl
	}
	return strings.TrimSuffix(config.Issuer, "/") + "/.well-known/jwks.json"
}

// GetLoginConfig returns the configuration needed for frontend OIDC login
func (p *Provider) GetLoginConfig(ctx context.Context, providerName string) (*LoginConfig, error) {
	config, err := p.GetConfig(ctx, providerName)
	if err != nil {
		return nil, err
	}

	authEndpoint := ""
	if config.AuthEndpoint != nil {
		authEndpoint = *config.AuthEndpoint
	}

	// Try the OIDC discovery document when no endpoint override is stored
	if authEndpoint == "" {
		discoveryURL := strings.TrimSuffix(config.Issuer, "/") + "/.well-known/openid-configuration"
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(discoveryURL)
		if err == nil && resp.StatusCode == http.StatusOK {
			var discovery struct {
				AuthorizationEndpoint string `json:"authorization_endpoint"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&discovery); err == nil {
				authEndpoint = discovery.AuthorizationEndpoint
			}
			if closeErr := resp.Body.Close(); closeErr != nil {
				_ = closeErr
			}
		}
	}

	// Last resort: construct from issuer
	if authEndpoint == "" {
		authEndpoint = strings.TrimSuffix(config.Issuer, "/") + "/oauth2/authorize"
	}

	return &LoginConfig{
		AuthorizationEndpoint: authEndpoint,
		ClientID:              config.ClientID,
		RedirectURI:           strings.TrimSuffix(p.frontendURL, "/") + "/auth/callback",
		Scope:                 "openid email profile",
	}, nil
}

// LoginConfig contains OIDC login configuration for frontend
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}
