package model

// ScoreDocument is the parsed content of one MusicXML score. Timing
// values are in divisions (MusicXML's per-quarter-note unit); the
// divisions, meter and tempo are document-global, taken from the first
// occurrence in the file.
type ScoreDocument struct {
	Divisions   int
	Beats       int
	BeatUnit    int
	KeyFifths   int
	TempoMicros int
	Measures    []Measure
}

type Measure struct {
	Index  int
	Events []ScoreEvent
}

// ScoreEvent is a note or a rest inside one measure. Onset is relative
// to the start of the measure, in divisions. Rest events carry no pitch
// fields.
type ScoreEvent struct {
	Rest     bool
	Step     string
	Octave   int
	Alter    int
	Duration int
	Onset    int
	Chord    bool
	Part     int
}

var stepSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// MidiPitch converts the event's pitch spelling to a MIDI key number.
// The second return is false for rests, unknown steps and pitches that
// land outside 0-127.
func (e ScoreEvent) MidiPitch() (uint8, bool) {
	if e.Rest {
		return 0, false
	}
	semi, ok := stepSemitones[e.Step]
	if !ok {
		return 0, false
	}
	p := (e.Octave+1)*12 + semi + e.Alter
	if p < 0 || p > 127 {
		return 0, false
	}
	return uint8(p), true
}
