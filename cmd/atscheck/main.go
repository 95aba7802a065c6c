// Command atscheck runs the resume scoring pipeline from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/telemetry"
)

var cfg config.Config

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "atscheck",
		Short:         "Score resumes against job descriptions",
		Long:          "atscheck extracts resume text, checks keyword coverage and runs the full feedback pipeline locally.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg = config.Load()
			telemetry.Init(cfg.LogLevel, false)
		},
	}
	root.AddCommand(newTextCmd(), newKeywordsCmd(), newScoreCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
