package model

// TimedNote is a fully resolved note: MIDI pitch plus absolute
// millisecond start and end. Both conversion paths produce these before
// merging.
type TimedNote struct {
	Pitch   uint8
	StartMs float64
	EndMs   float64
}

// MidiEvent is a wire-ready 3-byte channel message with an absolute
// millisecond timestamp. Note-offs can be status 0x80 or 0x90 with
// velocity 0.
type MidiEvent struct {
	TimeMs float64 `json:"timeMs"`
	Status uint8   `json:"statusByte"`
	Pitch  uint8   `json:"pitch"`
	Vel    uint8   `json:"velocityOrZero"`
}

// IsNoteOff treats 0x90/velocity-0 as a note-off, like most players do.
func (e MidiEvent) IsNoteOff() bool {
	st := e.Status & 0xF0
	return st == 0x80 || (st == 0x90 && e.Vel == 0)
}

func (e MidiEvent) IsNoteOn() bool {
	return e.Status&0xF0 == 0x90 && e.Vel > 0
}

// TempoMapEntry maps a tick position to the tempo active from that tick
// on, with the elapsed milliseconds up to that tick precomputed.
type TempoMapEntry struct {
	Tick             int64
	MicrosPerQuarter int
	CumulativeMs     float64
}

// NotePair is the visualization-facing form: one entry per surviving
// (post-dedup) note.
type NotePair struct {
	Pitch   uint8   `json:"pitch"`
	StartMs float64 `json:"startMs"`
	EndMs   float64 `json:"endMs"`
}

// ConversionResult is the one output contract shared by the score and
// MIDI paths.
type ConversionResult struct {
	Events          []MidiEvent  `json:"events"`
	NotePairs       []NotePair   `json:"notePairs"`
	TotalDurationMs float64      `json:"totalDurationMs"`
	Diagnostics     []Diagnostic `json:"diagnostics,omitempty"`
}
