package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"orbitgen/internal/media/ffprobe"
	"orbitgen/internal/services"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var keyframes bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "List the streams of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := requireMediaFile(args[0]); err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "probe", "ffprobe", args[0], err)
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				_, err := out.Write(result.RawJSON())
				return err
			}

			rows := lo.Map(result.Streams, func(s ffprobe.Stream, _ int) []string {
				return []string{strconv.Itoa(s.Index), s.CodecType, s.CodecName, streamDetail(s)}
			})
			footer := []string{
				"",
				result.Format.FormatName,
				formatSeconds(result.DurationSeconds()),
				fmt.Sprintf("%s, %s kb/s", formatBytes(result.SizeBytes()), formatCount(result.BitRate()/1000)),
			}
			fmt.Fprintln(out, tableSpec{
				title:   args[0],
				headers: []string{"#", "Type", "Codec", "Details"},
				aligns:  []columnAlignment{alignRight},
				rows:    rows,
				footer:  footer,
			}.render())

			if !keyframes {
				return nil
			}
			packets, err := ffprobe.Packets(cmd.Context(), cfg.FFprobeBinary(), args[0], "v:0")
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "probe", "ffprobe packets", args[0], err)
			}
			keyRows := lo.FilterMap(packets, func(p ffprobe.Packet, i int) ([]string, bool) {
				return []string{strconv.Itoa(i), p.PTSTime}, p.Keyframe()
			})
			fmt.Fprintln(out, tableSpec{
				title:   "Keyframes",
				headers: []string{"Packet", "PTS"},
				aligns:  []columnAlignment{alignRight, alignRight},
				rows:    keyRows,
				footer:  []string{formatCount(len(packets)), "packets"},
			}.render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw ffprobe JSON")
	cmd.Flags().BoolVar(&keyframes, "keyframes", false, "Also list video keyframe positions")
	return cmd
}

func streamDetail(s ffprobe.Stream) string {
	switch s.CodecType {
	case "video":
		detail := fmt.Sprintf("%dx%d (%s)", s.Width, s.Height, s.AspectLabel())
		if s.PixFmt != "" {
			detail += " " + s.PixFmt
		}
		if rate := s.FrameRate(); rate > 0 {
			detail += fmt.Sprintf(" %.3g fps", rate)
		}
		if n := s.FrameCount(); n > 0 {
			detail += ", " + formatCount(n) + " frames"
		}
		return detail
	case "audio":
		return fmt.Sprintf("%s Hz, %d ch", formatCount(s.SampleRateHz()), s.Channels)
	default:
		return s.CodecTag
	}
}

// requireMediaFile reports a missing or non-regular input as ErrNotFound.
func requireMediaFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "input", "stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrNotFound, "input", "stat", path+" is not a regular file", nil)
	}
	return nil
}
