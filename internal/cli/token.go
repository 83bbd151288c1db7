package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quiz-session-engine/internal/auth"
	"quiz-session-engine/internal/config"
)

// devJWTSecret signs tokens for local use only; the server refuses to start with it.
const devJWTSecret = "dev-secret"

// NewTokenCmd issues an access token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID string
		dev    bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			secret, err := tokenSecret(cfg, dev)
			if err != nil {
				return err
			}
			token, err := auth.Issue(secret, userID, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed in the token")
	cmd.Flags().BoolVar(&dev, "dev", false, "sign with the built-in development secret when none is configured")
	return cmd
}

func tokenSecret(cfg config.Config, dev bool) (string, error) {
	if dev && cfg.Auth.JWTSecret == "" {
		return devJWTSecret, nil
	}
	return cfg.JWTSecret()
}
