package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"orbitgen/internal/services"
	"orbitgen/internal/synth/audio"
	"orbitgen/internal/synth/video"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var duration float64
	var fps int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the tone schedule and orbit extents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			total := resolveDuration(cmd, cfg, duration)
			rate := cfg.Video.FPS
			if cmd.Flags().Changed("fps") {
				rate = fps
			}
			geometry, err := cfg.Geometry()
			if err != nil {
				return services.Wrap(services.ErrValidation, "schedule", "geometry", "", err)
			}
			orbit, err := video.NewOrbit(geometry, total)
			if err != nil {
				return services.Wrap(services.ErrValidation, "schedule", "orbit", "", err)
			}
			schedule := cfg.Schedule().Sorted()
			if err := schedule.Validate(cfg.Audio.SampleRate); err != nil {
				return services.Wrap(services.ErrValidation, "schedule", "tones", "", err)
			}
			schedule = schedule.Within(total)

			out := cmd.OutOrStdout()
			toneRows := make([][]string, 0, len(schedule))
			for i, b := range schedule {
				toneRows = append(toneRows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%g Hz", b.Frequency),
					formatSeconds(b.Start),
					formatSeconds(b.End()),
					formatCount(audio.SampleCount(b.Duration, cfg.Audio.SampleRate)),
				})
			}
			fmt.Fprintln(out, tableSpec{
				title:   fmt.Sprintf("Tones (%s Hz, %s track)", formatCount(cfg.Audio.SampleRate), formatSeconds(total)),
				headers: []string{"#", "Frequency", "Start", "End", "Samples"},
				aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
				rows:    toneRows,
			}.render())

			minX, minY, maxX, maxY := orbitExtents(orbit, rate)
			cx, cy := geometry.Center()
			fmt.Fprintln(out, tableSpec{
				title:   fmt.Sprintf("Orbit (%dx%d, box %d px)", geometry.Width, geometry.Height, geometry.BoxSize),
				headers: []string{"Field", "Value"},
				rows: [][]string{
					{"Centre position", fmt.Sprintf("%.1f, %.1f", cx, cy)},
					{"Radii", fmt.Sprintf("%.1f x %.1f", float64(geometry.OrbitWidth())/2, float64(geometry.OrbitHeight())/2)},
					{"Box x range", fmt.Sprintf("%d .. %d", minX, maxX+geometry.BoxSize)},
					{"Box y range", fmt.Sprintf("%d .. %d", minY, maxY+geometry.BoxSize)},
					{"Frames", fmt.Sprintf("%s @ %d fps", formatCount(video.FrameCount(total, rate)), rate)},
					{"Keyframe interval", fmt.Sprintf("%d frames", cfg.GOPFrames(rate))},
				},
			}.render())
			return nil
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Clip length in seconds (default video.duration_seconds)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Frame rate (default video.fps)")
	return cmd
}

// orbitExtents returns the smallest and largest box corner over every frame.
func orbitExtents(o *video.Orbit, fps int) (minX, minY, maxX, maxY int) {
	minX, minY = math.MaxInt, math.MaxInt
	maxX, maxY = math.MinInt, math.MinInt
	frames := video.FrameCount(o.Period(), fps)
	if frames == 0 {
		frames = 1
	}
	for i := 0; i < frames; i++ {
		p := o.Position(video.FrameTime(i, max(fps, 1)))
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
