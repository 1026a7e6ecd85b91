// Package verify checks an encoded fixture against the parameters it was
// generated with.
//
// Check probes stream layout with ffprobe, counts video packets, measures the
// spacing of keyframes and decodes the audio through ffmpeg to confirm each
// scheduled tone is present at its burst and the gaps are silent. Every check
// lands in the Report; Report.Err joins the failures under
// services.ErrVerification.
package verify
