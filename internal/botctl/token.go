package botctl

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharmatch/chatbot/internal/botctl/output"
	"github.com/pharmatch/chatbot/pkg/tokens"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Service credential management",
	Long:  "Mint and inspect the short-lived service credentials used for attendance API calls",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a service credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		userID, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if secret == "" || userID == "" {
			return fmt.Errorf("--secret and --user are required")
		}

		generator := tokens.NewTokenGenerator(secret, ttl)
		token, err := generator.GenerateServiceToken(userID)
		if err != nil {
			return fmt.Errorf("failed to mint token: %w", err)
		}

		output.Info("%s", token)
		return nil
	},
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect [token]",
	Short: "Validate and print a service credential's claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		if secret == "" {
			return fmt.Errorf("--secret is required")
		}

		generator := tokens.NewTokenGenerator(secret, time.Hour)
		claims, err := generator.ValidateServiceToken(args[0])
		if err != nil {
			return fmt.Errorf("invalid token: %w", err)
		}

		output.Info("User ID:   %s", claims.UserID)
		output.Info("Issuer:    %s", claims.Issuer)
		output.Info("Issued:    %s", claims.IssuedAt.Format(time.RFC3339))
		output.Info("Expires:   %s", claims.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.PersistentFlags().String("secret", "", "credential signing secret")
	tokenMintCmd.Flags().String("user", "", "local user ID to scope the credential to")
	tokenMintCmd.Flags().Duration("ttl", time.Hour, "credential lifetime")

	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenInspectCmd)
}
