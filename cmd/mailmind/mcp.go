package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mailmind-ai/mailmind/pkg/digest"
	"github.com/mailmind-ai/mailmind/pkg/mailbox"
	"github.com/mailmind-ai/mailmind/pkg/mcp"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline as an MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// mail access is optional for MCP: the summarize tool
			// reports the missing source, everything else still works
			var summarizer *digest.Summarizer
			source, err := mailbox.NewGmailSource(ctx, mailbox.GmailOptions{
				CredentialsFile: a.cfg.Gmail.Credentials,
				TokenFile:       a.cfg.Gmail.Token,
				Query:           a.cfg.Gmail.Query,
			}, a.logger)
			if err != nil {
				a.logger.Warn("gmail source unavailable, summarize tool disabled", zap.Error(err))
			} else {
				task := a.cfg.Task(models.TaskSummary)
				summarizer = digest.New(source, a.pipeline, task.Model, task.Threshold, a.cfg.Gmail.MaxResults, a.logger)
			}

			srv := mcp.New(a.pipeline, summarizer, a.store, a.auditLog, a.cfg, version, a.logger)
			a.logger.Info("mcp server listening on stdio")
			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
