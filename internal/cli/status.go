package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfcastro/juniorbot/internal/config"
	"github.com/mfcastro/juniorbot/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show juniorbot status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Juniorbot %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:      %s\n", paths.Config)
			fmt.Printf("Credentials: %s\n", paths.Credentials)
			fmt.Printf("Data:        %s\n", paths.Data)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Printf("Config:      error loading: %v\n", err)
				return nil
			}

			fmt.Printf("Server:    port=%d origins=%s\n",
				cfg.Server.Port, strings.Join(cfg.Server.AllowedOrigins, ","))
			fmt.Printf("Store:     driver=%s\n", cfg.Store.Driver)
			fmt.Printf("WhatsApp:  bridge=%s bulkDelayMs=%d\n",
				cfg.WhatsApp.BridgeURL, cfg.WhatsApp.BulkDelayMS)
			fmt.Printf("Responder: engine=%s\n", cfg.Responder.Engine)

			// A running instance answers on the local API
			client := &http.Client{Timeout: 2 * time.Second}
			resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/api/session", cfg.Server.Port))
			if err != nil {
				fmt.Println("\nSession:   not running")
			} else {
				defer resp.Body.Close()
				var status struct {
					State string `json:"state"`
					Ready bool   `json:"ready"`
				}
				if err := json.NewDecoder(resp.Body).Decode(&status); err == nil {
					fmt.Printf("\nSession:   state=%s ready=%v\n", status.State, status.Ready)
				}
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
