package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orbitgen/internal/catalog"
	"orbitgen/internal/fixture"
	"orbitgen/internal/logging"
	"orbitgen/internal/preflight"
	"orbitgen/internal/services"
)

type generateOutput struct {
	RunID     string        `json:"run_id"`
	Output    string        `json:"output"`
	Duration  float64       `json:"duration_seconds"`
	FPS       int           `json:"fps"`
	Frames    int           `json:"frames"`
	GOP       int           `json:"gop"`
	Samples   int           `json:"samples"`
	SHA256    string        `json:"sha256"`
	SizeBytes int64         `json:"size_bytes"`
	ElapsedMS int64         `json:"elapsed_ms"`
	CatalogID string        `json:"catalog_id,omitempty"`
	Checks    []checkOutput `json:"checks,omitempty"`
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var output string
	var duration float64
	var fps int
	var verifyFlag bool
	var noCatalog bool
	var skipPreflight bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the orbiting-box clip with beeps and publish it as MP4",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.session()
			if err != nil {
				return err
			}

			req := fixture.RequestFromConfig(cfg)
			if strings.TrimSpace(output) != "" {
				req.Output = strings.TrimSpace(output)
			}
			if cmd.Flags().Changed("duration") {
				req.Duration = duration
			}
			if cmd.Flags().Changed("fps") {
				req.FPS = fps
			}
			req.Verify = req.Verify || verifyFlag

			if !skipPreflight {
				probe := *cfg
				probe.Output.Path = req.Output
				probe.Catalog.Enabled = cfg.Catalog.Enabled && !noCatalog
				if req.Duration > 0 {
					probe.Video.DurationSeconds = req.Duration
				}
				if failed := preflight.Failed(preflight.RunAll(&probe)); len(failed) > 0 {
					details := make([]string, 0, len(failed))
					for _, f := range failed {
						details = append(details, f.Name+": "+f.Detail)
					}
					return services.Wrap(services.ErrConfiguration, "preflight", "filesystem", strings.Join(details, "; "), nil)
				}
			}

			opts := []fixture.Option{fixture.WithLogger(logger)}
			if cfg.Catalog.Enabled && !noCatalog {
				store, err := catalog.Open(cfg)
				if err != nil {
					return services.Wrap(services.ErrTransient, "catalog", "open", cfg.Catalog.Path, err)
				}
				defer store.Close()
				opts = append(opts, fixture.WithRecorder(store))
			}

			result, err := fixture.NewGenerator(cfg, opts...).Generate(cmd.Context(), req)
			if result.Report != nil && !jsonOut {
				fmt.Fprintln(cmd.OutOrStdout(), renderReport(*result.Report, shouldColorize(cmd.OutOrStdout())))
			}
			if err != nil {
				if errors.Is(err, services.ErrVerification) {
					logging.ErrorWithContext(logger, "generated fixture failed verification", "verify_failed",
						logging.String(logging.FieldOutput, result.Output),
						logging.Error(err),
					)
				}
				return err
			}

			if jsonOut {
				out := generateOutput{
					RunID:     result.RunID,
					Output:    result.Output,
					Duration:  result.Duration,
					FPS:       result.FPS,
					Frames:    result.Frames,
					GOP:       result.GOP,
					Samples:   result.Samples,
					SHA256:    result.SHA256,
					SizeBytes: result.SizeBytes,
					ElapsedMS: result.Elapsed.Milliseconds(),
					CatalogID: result.CatalogID,
				}
				if result.Report != nil {
					out.Checks = checksOutput(*result.Report)
				}
				return writeJSON(cmd, out)
			}

			rows := [][]string{
				{"Output", result.Output},
				{"Duration", formatSeconds(result.Duration)},
				{"Frames", fmt.Sprintf("%s @ %d fps", formatCount(result.Frames), result.FPS)},
				{"Keyframe interval", fmt.Sprintf("%d frames", result.GOP)},
				{"Audio", fmt.Sprintf("%s samples @ %s Hz", formatCount(result.Samples), formatCount(result.SampleRate))},
				{"Size", formatBytes(result.SizeBytes)},
				{"SHA-256", result.SHA256},
				{"Elapsed", formatElapsed(result.Elapsed)},
			}
			if result.CatalogID != "" {
				rows = append(rows, []string{"Catalog id", result.CatalogID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tableSpec{
				title:   "Fixture generated",
				headers: []string{"Field", "Value"},
				rows:    rows,
			}.render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default output.path)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Clip length in seconds (default video.duration_seconds)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Frame rate (default video.fps)")
	cmd.Flags().BoolVar(&verifyFlag, "verify", false, "Verify the published file")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "Do not record the fixture in the catalog")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip output directory and free space checks")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}
