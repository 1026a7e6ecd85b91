package preflight

import (
	"path/filepath"

	"orbitgen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// videoBytesPerSecond is a generous bound for the 640x360 H.264 stream.
const videoBytesPerSecond = 1 << 20

// RunAll executes the filesystem checks for the given config. The catalog
// directory is only checked when the catalog is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	outputDir := filepath.Dir(cfg.Output.Path)
	results := []Result{
		CheckCreatableDirectory("Output directory", outputDir),
		CheckFreeSpace("Output free space", outputDir, EstimateWorkingBytes(cfg)),
	}
	if cfg.Catalog.Enabled {
		results = append(results, CheckCreatableDirectory("Catalog directory", filepath.Dir(cfg.Catalog.Path)))
	}
	return results
}

// EstimateWorkingBytes bounds the disk needed while generating: the staged
// 16-bit stereo WAV plus the temporary and published MP4.
func EstimateWorkingBytes(cfg *config.Config) uint64 {
	seconds := cfg.Video.DurationSeconds
	if seconds <= 0 {
		return 0
	}
	wav := seconds * float64(cfg.Audio.SampleRate) * 2 * 2
	mp4 := seconds * videoBytesPerSecond
	return uint64(wav + 2*mp4)
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
