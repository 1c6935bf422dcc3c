package botctl

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharmatch/chatbot/internal/botctl/output"
	"github.com/pharmatch/chatbot/internal/handlers"
	"github.com/pharmatch/chatbot/internal/signature"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Webhook debugging helpers",
}

var webhookSendCmd = &cobra.Command{
	Use:   "send [payload-file]",
	Short: "Sign a payload file and deliver it to a running service",
	Long: `Read a webhook payload from a file, compute its signature with the
channel secret, and POST it to the service's webhook endpoint. Useful for
replaying captured deliveries against a local instance.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serviceURL, _ := cmd.Flags().GetString("service-url")
		secret, _ := cmd.Flags().GetString("secret")
		if secret == "" {
			return fmt.Errorf("--secret is required")
		}

		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read payload file: %w", err)
		}

		verifier := signature.New(secret, "production", false)

		req, err := http.NewRequest(http.MethodPost, serviceURL+"/webhook/messaging", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(handlers.SignatureHeader, verifier.Sign(payload))

		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to reach service: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			output.Success("Delivered (status %d)", resp.StatusCode)
		} else {
			output.Warn("Service responded with status %d", resp.StatusCode)
		}
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
			output.Info("%s", trimmed)
		}
		return nil
	},
}

func init() {
	webhookSendCmd.Flags().String("service-url", "http://localhost:8085", "base URL of the chatbot service")
	webhookSendCmd.Flags().String("secret", "", "channel secret used for signing")

	webhookCmd.AddCommand(webhookSendCmd)
}
