// Package wavfile stores synthesized tracks as 16-bit PCM WAV files.
package wavfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"orbitgen/internal/synth/audio"
)

const (
	bitDepth       = 16
	channels       = 2
	pcmFormat      = 1
	fullScale16Bit = math.MaxInt16
)

// Encode writes track as stereo 16-bit PCM. Samples are clamped to [-1, 1]
// before quantization.
func Encode(w io.WriteSeeker, track audio.Track) error {
	if track.SampleRate <= 0 {
		return fmt.Errorf("wav encode: invalid sample rate %d", track.SampleRate)
	}
	enc := wav.NewEncoder(w, track.SampleRate, bitDepth, channels, pcmFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: track.SampleRate},
		Data:           Quantize(track),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav finalize: %w", err)
	}
	return nil
}

// Write creates path and encodes track into it.
func Write(path string, track audio.Track) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close wav: %w", cerr)
		}
	}()
	return Encode(file, track)
}

// Read decodes a WAV file written by Write. Mono files are duplicated onto
// both channels.
func Read(path string) (audio.Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return audio.Track{}, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return audio.Track{}, errors.New("wav decode: not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Track{}, fmt.Errorf("wav decode: %w", err)
	}
	numChans := int(dec.NumChans)
	if numChans != 1 && numChans != 2 {
		return audio.Track{}, fmt.Errorf("wav decode: unsupported channel count %d", numChans)
	}
	scale := math.Exp2(float64(dec.BitDepth)-1) - 1
	if scale <= 0 {
		return audio.Track{}, fmt.Errorf("wav decode: unsupported bit depth %d", dec.BitDepth)
	}
	frames := len(buf.Data) / numChans
	track := audio.Track{SampleRate: int(dec.SampleRate), Samples: make([]audio.Sample, frames)}
	for i := 0; i < frames; i++ {
		l := float64(buf.Data[i*numChans]) / scale
		r := l
		if numChans == 2 {
			r = float64(buf.Data[i*numChans+1]) / scale
		}
		track.Samples[i] = audio.Sample{L: l, R: r}
	}
	return track, nil
}

// Quantize converts track into interleaved 16-bit sample values.
func Quantize(track audio.Track) []int {
	data := make([]int, 0, len(track.Samples)*channels)
	for _, s := range track.Samples {
		data = append(data, quantizeSample(s.L), quantizeSample(s.R))
	}
	return data
}

func quantizeSample(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return int(math.Round(v * fullScale16Bit))
}
