package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"orbitgen/internal/config"
	"orbitgen/internal/media/still"
	"orbitgen/internal/media/wavfile"
	"orbitgen/internal/services"
	"orbitgen/internal/synth/video"
)

// resolveDuration returns the flag value when set, else video.duration_seconds.
func resolveDuration(cmd *cobra.Command, cfg *config.Config, flag float64) float64 {
	if cmd.Flags().Changed("duration") {
		return flag
	}
	return cfg.Video.DurationSeconds
}

func ensureParent(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrTransient, "export", "create directory", dir, err)
		}
	}
	return nil
}

func newFrameCommand(ctx *commandContext) *cobra.Command {
	var output string
	var at float64
	var duration float64

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Write the frame shown at a timestamp as PNG, BMP or TIFF",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(output)
			if _, err := still.FormatForPath(target); err != nil {
				return services.Wrap(services.ErrValidation, "export", "frame", "", err)
			}
			geometry, err := cfg.Geometry()
			if err != nil {
				return services.Wrap(services.ErrValidation, "export", "geometry", "", err)
			}
			orbit, err := video.NewOrbit(geometry, resolveDuration(cmd, cfg, duration))
			if err != nil {
				return services.Wrap(services.ErrValidation, "export", "orbit", "", err)
			}
			if err := ensureParent(target); err != nil {
				return err
			}
			if err := still.Write(target, orbit.FrameAt(at).Image()); err != nil {
				return services.Wrap(services.ErrTransient, "export", "frame", target, err)
			}
			box := orbit.BoxAt(at)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote frame at %s to %s (box at %d,%d)\n", formatSeconds(at), target, box.Min.X, box.Min.Y)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "frame.png", "Destination image (.png, .bmp, .tif, .tiff)")
	cmd.Flags().Float64Var(&at, "at", 0, "Timestamp in seconds")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Orbit period in seconds (default video.duration_seconds)")
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var output string
	var duration float64

	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Write the beep track as a 16-bit stereo WAV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(output)
			if target == "" {
				return services.Wrap(services.ErrValidation, "export", "audio", "output path is required", nil)
			}
			total := resolveDuration(cmd, cfg, duration)
			track, err := cfg.Schedule().Render(total, cfg.Audio.SampleRate)
			if err != nil {
				return services.Wrap(services.ErrValidation, "export", "render tones", "", err)
			}
			if err := ensureParent(target); err != nil {
				return err
			}
			if err := wavfile.Write(target, track); err != nil {
				return services.Wrap(services.ErrTransient, "export", "audio", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s samples (%s) to %s\n",
				formatCount(len(track.Samples)), formatSeconds(track.Duration()), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "track.wav", "Destination WAV file")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Track length in seconds (default video.duration_seconds)")
	return cmd
}
