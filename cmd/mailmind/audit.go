package main

import (
	"github.com/spf13/cobra"

	auditpkg "github.com/mailmind-ai/mailmind/pkg/audit"
	"github.com/mailmind-ai/mailmind/pkg/config"
)

func newAuditCmd() *cobra.Command {
	var configPath string
	var limit int

	openLog := func() (*auditpkg.Logger, error) {
		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
		return auditpkg.New(cfg.Audit.Path)
	}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent interaction-log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := openLog()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Close() }()

			records, err := logger.Tail(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No interactions logged.")
				return nil
			}
			for _, r := range records {
				status := "rejected"
				if r.Accepted {
					status = "accepted"
				}
				if r.Error != "" {
					status = "error: " + r.Error
				}
				hit := "miss"
				if r.CacheHit {
					hit = "hit"
				}
				cmd.Printf("%s  %-8s %-10s cache=%-4s conf=%.2f  %s\n",
					r.Timestamp.Format("2006-01-02 15:04:05"),
					r.Task, r.ModelID, hit, r.Confidence, status)
				cmd.Printf("    %s\n", r.InputPreview)
			}
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate interaction counts by task and day",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := openLog()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Close() }()

			stats, err := logger.Stats()
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				cmd.Println("No interactions logged.")
				return nil
			}
			cmd.Printf("%-12s %-8s %8s %8s %10s\n", "Day", "Task", "Count", "Hits", "Accepted")
			for _, s := range stats {
				cmd.Printf("%-12s %-8s %8d %8d %10d\n", s.Day, s.Task, s.Count, s.Hits, s.Accepted)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	cmd.AddCommand(statsCmd)
	return cmd
}
