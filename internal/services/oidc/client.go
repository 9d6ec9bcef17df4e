package oidc

import (
	"context"
	"strings"

	"github.com/dayflow/dayflow-api/internal/models"
	"golang.org/x/oauth2"
)

// Client wraps OAuth2 client functionality for the authorization code flow
type Client struct {
	config *oauth2.Config
}

// NewClient creates a new OAuth2 client from OIDC config. The app is a public
// client (PKCE on the frontend), so no client secret is involved.
func NewClient(oidcConfig *models.OIDCConfig, redirectURI string) *Client {
	issuer := strings.TrimSuffix(oidcConfig.Issuer, "/")

	authURL := issuer + "/oauth2/authorize"
	if oidcConfig.AuthEndpoint != nil && *oidcConfig.AuthEndpoint != "" {
		authURL = *oidcConfig.AuthEndpoint
	}

	config := &oauth2.Config{
		ClientID:    oidcConfig.ClientID,
		RedirectURL: redirectURI,
		Scopes:      []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: issuer + "/oauth2/token",
		},
	}

	return &Client{config: config}
}

// ExchangeCode exchanges an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

// AuthCodeURL returns the authorization URL
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}
