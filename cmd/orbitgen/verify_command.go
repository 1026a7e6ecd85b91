package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orbitgen/internal/verify"
)

type checkOutput struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func checksOutput(r verify.Report) []checkOutput {
	out := make([]checkOutput, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, checkOutput{Name: res.Name, Passed: res.Passed, Detail: res.Detail})
	}
	return out
}

func renderReport(r verify.Report, colorize bool) string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, []string{humanize(res.Name), statusLabel(res.Passed, colorize), res.Detail})
	}
	return tableSpec{
		title:   "Verification: " + r.Path,
		headers: []string{"Check", "Status", "Detail"},
		rows:    rows,
		footer:  []string{"", "", r.Summary()},
	}.render()
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var duration float64
	var fps int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check streams, keyframe spacing and beeps of an encoded fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.session()
			if err != nil {
				return err
			}
			if err := requireMediaFile(args[0]); err != nil {
				return err
			}
			exp := verify.FromConfig(cfg, duration, fps)
			report, err := verify.New(logger).Check(cmd.Context(), args[0], exp)
			if err != nil {
				return err
			}
			if jsonOut {
				if err := writeJSON(cmd, map[string]any{
					"path":   report.Path,
					"passed": report.Passed(),
					"checks": checksOutput(report),
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderReport(report, shouldColorize(cmd.OutOrStdout())))
			}
			return report.Err()
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Expected length in seconds (default video.duration_seconds)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Expected frame rate (default video.fps)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}
