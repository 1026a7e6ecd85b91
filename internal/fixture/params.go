package fixture

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"orbitgen/internal/config"
	"orbitgen/internal/encoding"
)

// encodingParams maps the [encoding] section onto encoder parameters for a
// clip at fps.
func encodingParams(cfg *config.Config, fps int) encoding.Params {
	if cfg == nil {
		return encoding.DefaultParams(fps)
	}
	return encoding.Params{
		VideoCodec:   cfg.Encoding.VideoCodec,
		AudioCodec:   cfg.Encoding.AudioCodec,
		PixelFormat:  cfg.Encoding.PixelFormat,
		Preset:       cfg.Encoding.Preset,
		AudioBitrate: cfg.Encoding.AudioBitrate,
		GOP:          cfg.GOPFrames(fps),
		FastStart:    cfg.Encoding.FastStart,
		ExtraArgs:    append([]string(nil), cfg.Encoding.ExtraArgs...),
	}
}

// lockPath names the advisory lock guarding output. It lives in the temp
// directory so nothing but the fixture is left next to the output.
func lockPath(output string) string {
	abs, err := filepath.Abs(output)
	if err != nil {
		abs = filepath.Clean(output)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "orbitgen-"+hex.EncodeToString(sum[:8])+".lock")
}
