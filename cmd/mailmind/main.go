package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "mailmind",
		Short:   "mailmind — confidence-gated local-LLM mail assistant",
		Version: version,
	}

	root.AddCommand(
		newReplyCmd(),
		newSummarizeCmd(),
		newMCPCmd(),
		newCacheCmd(),
		newAuditCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
