package verify

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"orbitgen/internal/services"
)

// Check names.
const (
	CheckVideoStream = "video_stream"
	CheckAudioStream = "audio_stream"
	CheckDuration    = "duration"
	CheckFrameCount  = "frame_count"
	CheckKeyframes   = "keyframes"
	CheckTone        = "tone"
	CheckSilence     = "silence"
)

// Result is the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Report collects every check run against a file.
type Report struct {
	Path    string
	Results []Result
}

func (r *Report) add(name string, passed bool, format string, args ...any) {
	r.Results = append(r.Results, Result{Name: name, Passed: passed, Detail: fmt.Sprintf(format, args...)})
}

// Failures returns the checks that did not pass.
func (r Report) Failures() []Result {
	return lo.Reject(r.Results, func(res Result, _ int) bool { return res.Passed })
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	return len(r.Results) > 0 && len(r.Failures()) == 0
}

// Err joins the failed checks into one verification error, or returns nil.
func (r Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	errs := lo.Map(failures, func(res Result, _ int) error {
		return fmt.Errorf("%s: %s", res.Name, res.Detail)
	})
	return services.Wrap(services.ErrVerification, stageVerify, "check", r.Path, errors.Join(errs...))
}
