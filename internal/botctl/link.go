package botctl

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharmatch/chatbot/internal/botctl/output"
	"github.com/pharmatch/chatbot/internal/models"
	"github.com/pharmatch/chatbot/internal/repository"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Linked-user management",
	Long:  "Inspect and modify the mapping from chat-platform identities to local accounts",
}

var linkAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Link a platform identity to a local account",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		sourceID, _ := cmd.Flags().GetString("source-id")
		userID, _ := cmd.Flags().GetString("user")
		name, _ := cmd.Flags().GetString("name")
		if sourceID == "" || userID == "" {
			return fmt.Errorf("--source-id and --user are required")
		}

		err = repo.Link(context.Background(), &models.LinkedUser{
			SourceID:    sourceID,
			UserID:      userID,
			DisplayName: name,
			LinkedAt:    time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to link: %w", err)
		}

		output.Success("Linked %s -> %s", sourceID, userID)
		return nil
	},
}

var linkRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.Unlink(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		output.Success("Unlinked %s", args[0])
		return nil
	},
}

var linkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List linked users",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		users, err := repo.List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list links: %w", err)
		}

		if len(users) == 0 {
			output.Info("No linked users")
			return nil
		}

		table := output.NewTable("Source ID", "User ID", "Name", "Linked At")
		for _, u := range users {
			table.AddRow(u.SourceID, u.UserID, u.DisplayName, u.LinkedAt.Format(time.RFC3339))
		}
		table.Render()
		return nil
	},
}

func openRepo(cmd *cobra.Command) (repository.Repository, error) {
	databaseURL, _ := cmd.Flags().GetString("database-url")
	if databaseURL == "" {
		return nil, fmt.Errorf("--database-url is required")
	}
	repo, err := repository.NewPostgresRepository(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return repo, nil
}

func init() {
	linkCmd.PersistentFlags().String("database-url", "", "postgres connection string")
	linkAddCmd.Flags().String("source-id", "", "external chat-platform user ID")
	linkAddCmd.Flags().String("user", "", "local user ID")
	linkAddCmd.Flags().String("name", "", "display name")

	linkCmd.AddCommand(linkAddCmd)
	linkCmd.AddCommand(linkRemoveCmd)
	linkCmd.AddCommand(linkListCmd)
}
