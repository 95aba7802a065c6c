package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-ats/internal/analyses"
	"resume-ats/internal/bootstrap"
	"resume-ats/internal/extract"
	"resume-ats/internal/layout"
)

func newScoreCmd() *cobra.Command {
	var (
		jobPath  string
		jobTitle string
	)
	cmd := &cobra.Command{
		Use:   "score <resume-file>",
		Short: "Run the full feedback pipeline on a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := os.ReadFile(jobPath)
			if err != nil {
				return fmt.Errorf("read job description: %w", err)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read resume: %w", err)
			}

			ctx := cmd.Context()
			client, err := bootstrap.BuildLLM(ctx, cfg)
			if err != nil {
				return err
			}
			ocrClient, err := bootstrap.BuildOCR(cfg)
			if err != nil {
				return err
			}
			svc := &analyses.Service{
				Repo:           analyses.NewMemoryRepo(),
				Extractor:      extract.New(layout.Options{LineTolerance: cfg.LayoutLineTolerance, ColumnSpread: cfg.LayoutColumnSpread}),
				OCR:            ocrClient,
				LLM:            client,
				Timeout:        cfg.AnalysisTimeout,
				MaxUploadBytes: cfg.MaxUploadBytes,
			}
			analysis, err := svc.Analyze(ctx, analyses.Input{
				UserID:         "cli",
				JobTitle:       jobTitle,
				JobDescription: string(job),
				FileName:       filepath.Base(args[0]),
				Data:           data,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis.Feedback)
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "Path to the job description text file")
	cmd.Flags().StringVar(&jobTitle, "title", "", "Job title")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
