package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhabedank/strategem/cmd"
	"github.com/dhabedank/strategem/internal/version"
)

func main() {
	var update chan *version.CheckResult

	rootCmd := &cobra.Command{
		Use:   "strategem",
		Short: "Run a problem through strategic analysis frameworks with LLM guardrails",
		Long: `Strategem sends one problem context through several analytical frameworks,
parses each model answer against the framework's required fields, and
assembles a single markdown report that states what is missing.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			if c.Name() == "setup" || c.Name() == "serve" {
				return
			}
			if version.IsFirstRun() {
				version.PrintFirstRunNotice(os.Stderr)
			}
			update = make(chan *version.CheckResult, 1)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				update <- version.CheckForUpdate(ctx, version.Version)
			}()
		},
		PersistentPostRun: func(c *cobra.Command, args []string) {
			if update == nil {
				return
			}
			select {
			case result := <-update:
				version.PrintUpdateNotice(os.Stderr, result)
			case <-time.After(500 * time.Millisecond):
			}
		},
	}

	rootCmd.AddCommand(
		cmd.AnalyzeCmd,
		cmd.ListCmd,
		cmd.ShowCmd,
		cmd.FrameworksCmd,
		cmd.ServeCmd,
		cmd.SetupCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
