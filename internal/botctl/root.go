package botctl

import (
	"github.com/spf13/cobra"

	"github.com/pharmatch/chatbot/internal/botctl/output"
)

var rootCmd = &cobra.Command{
	Use:   "botctl",
	Short: "Pharmatch chatbot admin CLI",
	Long: `botctl is the management CLI for the pharmatch chatbot service.

Send administrative push messages, mint and inspect service credentials,
manage linked users, and replay signed webhook payloads against a running
service.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(webhookCmd)
}
