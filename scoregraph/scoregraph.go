// Package scoregraph is the seam for alternate conversion sources: any
// in-memory score tree that can answer for measures, voices and beat
// positions converts through the same timing and merge logic as the
// file decoders. Library-specific traversal stays in small adapters.
package scoregraph

import "github.com/lumikey/lumikey/model"

type Note struct {
	Pitch         uint8
	StartBeat     float64
	DurationBeats float64
}

type Voice interface {
	Notes() []Note
}

type Measure interface {
	StartBeat() float64
	Voices() []Voice
}

type Graph interface {
	Measures() []Measure
}

// Convert projects a graph's beat positions onto milliseconds at a
// fixed bpm. Beats are quarter notes.
func Convert(g Graph, bpm float64) []model.TimedNote {
	if bpm <= 0 {
		bpm = 120
	}
	msPerBeat := 60_000 / bpm

	var notes []model.TimedNote
	for _, measure := range g.Measures() {
		base := measure.StartBeat()
		for _, voice := range measure.Voices() {
			for _, n := range voice.Notes() {
				start := (base + n.StartBeat) * msPerBeat
				notes = append(notes, model.TimedNote{
					Pitch:   n.Pitch,
					StartMs: start,
					EndMs:   start + n.DurationBeats*msPerBeat,
				})
			}
		}
	}
	return notes
}
