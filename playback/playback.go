// Package playback owns transport state so the converter does not have
// to. A Session is an explicit value held by the caller; scheduling is
// a pure function of (events, position, rate).
package playback

import "github.com/lumikey/lumikey/model"

type Session struct {
	Events []model.MidiEvent
	Rate   float64

	cursor int
}

func NewSession(events []model.MidiEvent) *Session {
	return &Session{Events: events, Rate: 1}
}

// Due returns the events that have become due at nowMs of wall-clock
// playback time and advances past them. A rate of 2 plays the piece
// twice as fast.
func (s *Session) Due(nowMs float64) []model.MidiEvent {
	rate := s.Rate
	if rate <= 0 {
		rate = 1
	}
	start := s.cursor
	for s.cursor < len(s.Events) && s.Events[s.cursor].TimeMs <= nowMs*rate {
		s.cursor++
	}
	return s.Events[start:s.cursor]
}

// Seek repositions the cursor to the first event at or after ms of
// score time. Pending events before that point are skipped, not
// replayed.
func (s *Session) Seek(ms float64) {
	s.cursor = 0
	for s.cursor < len(s.Events) && s.Events[s.cursor].TimeMs < ms {
		s.cursor++
	}
}

func (s *Session) Done() bool {
	return s.cursor >= len(s.Events)
}

// Remaining reports how many events have not yet been handed out.
func (s *Session) Remaining() int {
	return len(s.Events) - s.cursor
}
