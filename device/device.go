// Package device encodes the LED controller's wire protocol: one ASCII
// line per command, `ledIndex,red,green,blue,brightnessPercent`, plus a
// bare "R" to clear everything. The device acknowledges nothing; the
// stream is fire-and-forget over whatever io.Writer the caller opened.
package device

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bep/debounce"
)

const ResetLine = "R"

// Command formats one LED command line, newline-terminated. Brightness
// is clamped to 0-100.
func Command(led int, r, g, b uint8, brightness int) string {
	if led < 0 {
		led = 0
	}
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 100 {
		brightness = 100
	}
	return fmt.Sprintf("%d,%d,%d,%d,%d\n", led, r, g, b, brightness)
}

// NoteLED maps a MIDI pitch onto a strip of ledCount LEDs laid along an
// 88-key keyboard (A0=21 through C8=108). Pitches outside that range
// report false.
func NoteLED(pitch uint8, ledCount int) (int, bool) {
	if pitch < 21 || pitch > 108 || ledCount <= 0 {
		return 0, false
	}
	led := int(pitch-21) * ledCount / 88
	if led >= ledCount {
		led = ledCount - 1
	}
	return led, true
}

// Streamer batches command lines and flushes them to the underlying
// writer. Note-on bursts produce many lines within a couple of
// milliseconds; writes are debounced so a burst goes out as one serial
// transfer.
type Streamer struct {
	mu        sync.Mutex
	w         io.Writer
	buf       bytes.Buffer
	debounced func(func())
}

func NewStreamer(w io.Writer) *Streamer {
	return &Streamer{
		w:         w,
		debounced: debounce.New(5 * time.Millisecond),
	}
}

func (s *Streamer) Set(led int, r, g, b uint8, brightness int) {
	s.mu.Lock()
	s.buf.WriteString(Command(led, r, g, b, brightness))
	s.mu.Unlock()
	s.debounced(func() { s.Flush() })
}

// Off turns one LED fully off.
func (s *Streamer) Off(led int) {
	s.Set(led, 0, 0, 0, 0)
}

// Reset queues the clear-all line.
func (s *Streamer) Reset() {
	s.mu.Lock()
	s.buf.WriteString(ResetLine + "\n")
	s.mu.Unlock()
	s.debounced(func() { s.Flush() })
}

// Flush writes everything queued so far. Errors are returned but the
// queue is drained either way; there is no ack or retry in the
// protocol.
func (s *Streamer) Flush() error {
	s.mu.Lock()
	data := s.buf.Bytes()
	out := make([]byte, len(data))
	copy(out, data)
	s.buf.Reset()
	s.mu.Unlock()

	if len(out) == 0 {
		return nil
	}
	_, err := s.w.Write(out)
	return err
}
