package botctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharmatch/chatbot/internal/botctl/output"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send an administrative push message",
	Long:  "Send a text message to a platform user through the running chatbot service",
	RunE: func(cmd *cobra.Command, args []string) error {
		serviceURL, _ := cmd.Flags().GetString("service-url")
		adminToken, _ := cmd.Flags().GetString("admin-token")
		to, _ := cmd.Flags().GetString("to")
		text, _ := cmd.Flags().GetString("text")

		if to == "" || text == "" {
			return fmt.Errorf("--to and --text are required")
		}
		if adminToken == "" {
			return fmt.Errorf("--admin-token is required")
		}

		payload, err := json.Marshal(map[string]string{"to": to, "text": text})
		if err != nil {
			return err
		}

		req, err := http.NewRequest(http.MethodPost, serviceURL+"/api/v1/admin/push", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Admin-Token", adminToken)

		client := &http.Client{Timeout: 15 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to reach service: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("push failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
		}

		output.Success("Message sent to %s", to)
		return nil
	},
}

func init() {
	pushCmd.Flags().String("service-url", "http://localhost:8085", "base URL of the chatbot service")
	pushCmd.Flags().String("admin-token", "", "admin API token")
	pushCmd.Flags().String("to", "", "platform user ID to push to")
	pushCmd.Flags().String("text", "", "message text")
}
