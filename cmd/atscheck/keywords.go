package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-ats/internal/keywords"
)

type keywordsReport struct {
	keywords.Coverage
	// MissingTechnical is the subset of Missing on the curated technical list.
	MissingTechnical []string `json:"missingTechnical"`
}

func newKeywordsReport(cov keywords.Coverage) keywordsReport {
	report := keywordsReport{Coverage: cov, MissingTechnical: []string{}}
	for _, kw := range cov.Missing {
		if keywords.IsTechnical(kw) {
			report.MissingTechnical = append(report.MissingTechnical, kw)
		}
	}
	return report
}

func newKeywordsCmd() *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "keywords <resume-file>",
		Short: "Show job keyword coverage for a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := os.ReadFile(jobPath)
			if err != nil {
				return fmt.Errorf("read job description: %w", err)
			}
			text, _, err := readResume(cmd, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(newKeywordsReport(keywords.Analyze(text, string(job))))
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "Path to the job description text file")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
