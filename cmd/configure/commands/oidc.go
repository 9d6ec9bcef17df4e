package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dayflow/dayflow-api/internal/config"
	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/spf13/cobra"
)

// NewOIDCCmd creates the OIDC configuration command with set and show subcommands.
func NewOIDCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oidc",
		Short: "Manage OIDC provider configuration",
		Long:  "Configure the OIDC provider used for authentication (stored in database).",
	}
	cmd.AddCommand(newOIDCSetCmd())
	cmd.AddCommand(newOIDCShowCmd())
	return cmd
}

func newOIDCSetCmd() *cobra.Command {
	var issuer, clientID, jwksURL, authEndpoint string

	cmd := &cobra.Command{
		Use:   "set <provider-name>",
		Short: "Set OIDC provider configuration",
		Long:  "Configure an OIDC provider for authentication. Provider name can be any identifier (e.g., 'cognito', 'okta', 'auth0')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if provider == "" {
				return fmt.Errorf("provider name cannot be empty")
			}
			if issuer == "" || clientID == "" {
				return fmt.Errorf("required flags: --issuer, --client-id")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			oidcRepo := database.NewOIDCConfigRepository(db)

			c := &models.OIDCConfig{
				Provider: provider,
				Issuer:   issuer,
				ClientID: clientID,
			}
			if jwksURL != "" {
				c.JWKSUrl = &jwksURL
			}
			if authEndpoint != "" {
				c.AuthEndpoint = &authEndpoint
			}

			if err := oidcRepo.Set(context.Background(), c); err != nil {
				return fmt.Errorf("failed to set OIDC config: %w", err)
			}
			fmt.Printf("Saved OIDC configuration for provider: %s\n", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "OIDC issuer URL (required)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (required)")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL (optional, derived from issuer when omitted)")
	cmd.Flags().StringVar(&authEndpoint, "auth-endpoint", "", "Authorization endpoint (optional, discovered from issuer when omitted)")

	return cmd
}

func newOIDCShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <provider-name>",
		Short: "Show OIDC provider configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			oidcRepo := database.NewOIDCConfigRepository(db)

			c, err := oidcRepo.Get(context.Background(), provider)
			if err != nil {
				return fmt.Errorf("failed to get OIDC config: %w", err)
			}
			if c == nil {
				fmt.Printf("No OIDC configuration for provider %q. Use 'oidc set' to add one.\n", provider)
				return nil
			}

			fmt.Printf("OIDC configuration for provider: %s\n", c.Provider)
			fmt.Printf("  Issuer: %s\n", c.Issuer)
			fmt.Printf("  Client ID: %s\n", c.ClientID)
			if c.JWKSUrl != nil {
				fmt.Printf("  JWKS URL: %s\n", *c.JWKSUrl)
			}
			if c.AuthEndpoint != nil {
				fmt.Printf("  Auth endpoint: %s\n", *c.AuthEndpoint)
			}
			return nil
		},
	}
}
