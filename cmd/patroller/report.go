package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wikibots/redirect-patroller/internal/report"
)

func newReportCmd() *cobra.Command {
	var inputPath string
	var since string
	var runID string
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize patrol decision logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("input path is required")
			}

			reader := report.Reader{RunID: runID}
			if since != "" {
				dur, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid since duration: %w", err)
				}
				reader.Since = time.Now().Add(-dur)
			}

			decisions, err := reader.Read(inputPath)
			if err != nil {
				return err
			}

			content, err := render(report.Summarize(decisions), format)
			if err != nil {
				return err
			}
			return report.WriteOutput(cmd.OutOrStdout(), outPath, content)
		},
	}

	cmd.Flags().StringVar(&inputPath, "in", "", "Path to decision log JSONL")
	cmd.Flags().StringVar(&since, "since", "", "Only include entries newer than this duration (e.g. 24h)")
	cmd.Flags().StringVar(&runID, "run", "", "Only include entries of this run ID")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|md|json")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (default stdout)")

	return cmd
}

func render(summary report.Summary, format string) ([]byte, error) {
	switch format {
	case "", "text":
		return []byte(report.RenderText(summary)), nil
	case "md":
		return []byte(report.RenderMarkdown(summary)), nil
	case "json":
		return report.RenderJSON(summary)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
