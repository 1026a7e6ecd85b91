package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orbitgen/internal/deps"
	"orbitgen/internal/preflight"
	"orbitgen/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check ffmpeg, ffprobe, encoders and output directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)

			rows := make([][]string, 0, len(statuses)+3)
			for _, s := range statuses {
				detail := s.Detail
				if s.Available && (s.Name == "FFmpeg" || s.Name == "FFprobe") {
					if version, err := deps.Version(cmd.Context(), s.Command); err == nil {
						detail = version
					}
				}
				rows = append(rows, []string{s.Name, statusLabel(s.Available, colorize), s.Command, detail})
			}
			checks := preflight.RunAll(cfg)
			for _, c := range checks {
				rows = append(rows, []string{c.Name, statusLabel(c.Passed, colorize), "", c.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tableSpec{
				title:   "Dependencies",
				headers: []string{"Check", "Status", "Command", "Detail"},
				rows:    rows,
			}.render())

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				return services.Wrap(services.ErrExternalTool, "deps", "check", "missing "+strings.Join(names, ", "), nil)
			}
			if failed := preflight.Failed(checks); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "deps", "filesystem", failed[0].Name+": "+failed[0].Detail, nil)
			}
			return nil
		},
	}
}
