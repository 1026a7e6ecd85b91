package encoding

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Progress is one -progress block reported by ffmpeg.
type Progress struct {
	Frame       int
	TotalFrames int
	OutTime     time.Duration
	Percent     float64
	Speed       string
	Bitrate     string
	Done        bool
}

// parseProgress returns a line handler that accumulates -progress key=value
// pairs and emits a snapshot on every "progress=" terminator.
func parseProgress(totalFrames int, duration float64, cb func(Progress)) func(string) {
	progress := Progress{TotalFrames: totalFrames, Percent: -1}
	return func(line string) {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			return
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "frame":
			if frame, err := strconv.Atoi(value); err == nil {
				progress.Frame = frame
				if totalFrames > 0 {
					progress.Percent = percentOf(float64(frame), float64(totalFrames))
				}
			}
		case "out_time_us", "out_time_ms":
			// Both keys carry microseconds.
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				progress.OutTime = time.Duration(us) * time.Microsecond
				if totalFrames <= 0 && duration > 0 {
					progress.Percent = percentOf(progress.OutTime.Seconds(), duration)
				}
			}
		case "speed":
			progress.Speed = value
		case "bitrate":
			progress.Bitrate = value
		case "progress":
			if value == "end" {
				progress.Done = true
				progress.Percent = 100
			}
			if cb != nil {
				cb(progress)
			}
		}
	}
}

func percentOf(value, total float64) float64 {
	pct := value / total * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// lineWriter splits a byte stream into lines for fn.
type lineWriter struct {
	mu      sync.Mutex
	pending []byte
	fn      func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, p...)
	for {
		idx := bytes.IndexByte(w.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(w.pending[:idx], "\r"))
		w.pending = w.pending[idx+1:]
		w.fn(line)
	}
	return len(p), nil
}

// Flush delivers a trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) > 0 {
		w.fn(string(w.pending))
		w.pending = nil
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
