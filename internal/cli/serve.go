package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfcastro/juniorbot/internal/channel/whatsapp"
	"github.com/mfcastro/juniorbot/internal/config"
	"github.com/mfcastro/juniorbot/internal/gateway"
	"github.com/mfcastro/juniorbot/internal/responder"
	"github.com/mfcastro/juniorbot/internal/routing"
	"github.com/mfcastro/juniorbot/internal/store"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the WhatsApp session and the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("preparing directories: %w", err)
			}

			// Persistence: SQLite or in-memory
			var (
				conversations store.ConversationStore
				commerce      store.CommerceStore
			)
			if cfg.Store.Driver == "sqlite" {
				dbPath := paths.DatabaseFile(cfg.Store)
				db, err := store.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				conversations = store.NewSQLiteConversationStore(db)
				commerce = store.NewSQLiteCommerceStore(db)
				log.Info().Str("path", dbPath).Msg("using SQLite store")
			} else {
				mem := store.NewMemoryStore()
				conversations = mem
				commerce = mem
				log.Info().Msg("using in-memory store")
			}

			// WhatsApp session over the bridge transport
			bridge := whatsapp.NewBridge(cfg.WhatsApp.BridgeURL, log)
			creds := whatsapp.NewFileCredentialStore(paths.SessionFile())
			sess := whatsapp.NewSession(bridge, creds, log)
			dispatcher := whatsapp.NewDispatcher(sess, cfg.WhatsApp, log)
			roster := whatsapp.NewRoster(sess, log)

			// Automated-reply engine
			var engine responder.Engine
			if cfg.Responder.Engine == "openai" {
				engine = responder.NewOpenAI(cfg.Responder.OpenAIKey, cfg.Responder.OpenAIModel)
				log.Info().Str("model", cfg.Responder.OpenAIModel).Msg("using OpenAI responder")
			} else {
				engine = responder.NewKeyword()
				log.Info().Msg("using keyword responder")
			}

			router := routing.NewRouter(conversations, engine, dispatcher, sess, log)
			router.Wire(sess)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// The API stays up while the session reconnects, so a failed
			// bridge connection is not fatal here.
			if err := sess.Initialize(ctx); err != nil {
				log.Error().Err(err).Msg("whatsapp session failed to start, api only")
			}
			defer sess.Shutdown(context.Background())

			srv := gateway.New(cfg, conversations, commerce, sess, dispatcher, roster, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override api port")

	return cmd
}
