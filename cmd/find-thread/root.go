package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-persona-bot/internal/conf"
	"github.com/DevRickLin/feishu-persona-bot/internal/data"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/feishu"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/logging"
	"github.com/DevRickLin/feishu-persona-bot/internal/mcp"
)

const version = "v1.0.0"

func newRootCmd() *cobra.Command {
	var (
		limit       int
		serveMCP    bool
		dumpSession bool
	)

	cmd := &cobra.Command{
		Use:          "find-thread",
		Short:        "List chats visible to the bot with their thread IDs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using environment variables")
			}

			cfg := conf.LoadFromEnv()
			if err := cfg.ValidateFeishu(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			// stdout carries the listing or the MCP stream
			logger, err := logging.NewStderr(cfg.Debug)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			ctx := cmd.Context()
			store, _, err := data.BootstrapSession(ctx, cfg.SessionFile(), cfg.Session.JSON, logger.Named("session"))
			if err != nil {
				return err
			}
			defer store.Close()

			client := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret, store, logger.Named("feishu"), cfg.Debug)
			if _, err := client.Login(ctx); err != nil {
				return fmt.Errorf("login: %w", err)
			}

			if dumpSession {
				blob, err := store.Export(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), blob)
				return err
			}

			threads := data.NewFeishuRepo(client, logger.Named("feishu"))
			if serveMCP {
				logger.Info("serving list_threads over stdio")
				return mcp.NewThreadServer(threads, version).Run(ctx)
			}
			return printThreads(ctx, cmd.OutOrStdout(), threads, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", mcp.MaxThreads, "Maximum number of chats to list (max 100).")
	cmd.Flags().BoolVar(&serveMCP, "mcp", false, "Serve the listing as the MCP tool list_threads over stdio.")
	cmd.Flags().BoolVar(&dumpSession, "dump-session", false, "Print the saved session as a SESSION_JSON value and exit.")

	return cmd
}

// printThreads writes one line per chat
func printThreads(ctx context.Context, w io.Writer, threads repo.ThreadRepo, limit int) error {
	list, err := threads.ListThreads(ctx, mcp.ClampLimit(limit))
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}
	for _, t := range list {
		if _, err := fmt.Fprintln(w, t.Summary()); err != nil {
			return err
		}
	}
	return nil
}
