package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-ats/internal/extract"
	"resume-ats/internal/layout"
	"resume-ats/internal/quality"
	"resume-ats/internal/textnorm"
)

func newTextCmd() *cobra.Command {
	var showStats bool
	cmd := &cobra.Command{
		Use:   "text <resume-file>",
		Short: "Print the cleaned text extracted from a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, report, err := readResume(cmd, args[0])
			if err != nil {
				return err
			}
			if showStats {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print quality gate statistics instead of the text")
	return cmd
}

// readResume extracts, cleans and gates a resume file.
func readResume(cmd *cobra.Command, path string) (string, quality.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", quality.Report{}, fmt.Errorf("read resume: %w", err)
	}
	ex := extract.New(layout.Options{LineTolerance: cfg.LayoutLineTolerance, ColumnSpread: cfg.LayoutColumnSpread})
	res, err := ex.Extract(cmd.Context(), data, "", filepath.Base(path))
	if err != nil {
		return "", quality.Report{}, fmt.Errorf("extract %s: %w", path, err)
	}
	report := quality.Evaluate(textnorm.Clean(res.Text))
	return report.Text, report, nil
}
