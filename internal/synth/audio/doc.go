// Package audio synthesizes the beep track of the orbit fixture.
//
// Tone renders a stereo sine burst with identical channels. Compose mixes
// placed segments additively into a track of exact length; there is no
// normalization, so overlapping bursts can exceed unit amplitude until they
// are quantized. A Schedule describes the beeps declaratively and renders the
// whole track in one call.
//
// Goertzel and RMS support the round-trip checks that confirm an encoded
// file still carries the scheduled bursts.
package audio
