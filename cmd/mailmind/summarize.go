package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailmind-ai/mailmind/pkg/digest"
	"github.com/mailmind-ai/mailmind/pkg/mailbox"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

func newSummarizeCmd() *cobra.Command {
	var configPath string
	var max int64

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize unread email through the gated pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			source, err := mailbox.NewGmailSource(cmd.Context(), mailbox.GmailOptions{
				CredentialsFile: a.cfg.Gmail.Credentials,
				TokenFile:       a.cfg.Gmail.Token,
				Query:           a.cfg.Gmail.Query,
			}, a.logger)
			if err != nil {
				return fmt.Errorf("connect to gmail: %w", err)
			}

			if max <= 0 {
				max = a.cfg.Gmail.MaxResults
			}
			task := a.cfg.Task(models.TaskSummary)
			summarizer := digest.New(source, a.pipeline, task.Model, task.Threshold, max, a.logger)

			summaries, err := summarizer.Run(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				cmd.Println("No unread messages.")
				return nil
			}

			for _, s := range summaries {
				cmd.Printf("%s — %s\n", s.From, s.Subject)
				cmd.Printf("  %s\n", s.Text)
				if !s.Accepted {
					cmd.Printf("  (confidence %.2f, below threshold %.2f)\n", s.Confidence, task.Threshold)
				}
				cmd.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().Int64VarP(&max, "max", "n", 0, "maximum unread messages to summarize")
	return cmd
}
