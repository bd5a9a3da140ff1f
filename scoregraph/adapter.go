package scoregraph

import "github.com/lumikey/lumikey/model"

// FromScore adapts a parsed ScoreDocument to the Graph interface. It
// mainly exists to prove the seam; adapters over external renderer
// trees plug in the same way.
func FromScore(doc *model.ScoreDocument) Graph {
	return scoreGraph{doc: doc}
}

type scoreGraph struct {
	doc *model.ScoreDocument
}

func (g scoreGraph) Measures() []Measure {
	beatsPerMeasure := float64(g.doc.Beats) * 4 / float64(g.doc.BeatUnit)
	res := make([]Measure, 0, len(g.doc.Measures))
	for _, m := range g.doc.Measures {
		res = append(res, scoreMeasure{
			start:     float64(m.Index) * beatsPerMeasure,
			events:    m.Events,
			divisions: g.doc.Divisions,
		})
	}
	return res
}

type scoreMeasure struct {
	start     float64
	events    []model.ScoreEvent
	divisions int
}

func (m scoreMeasure) StartBeat() float64 { return m.start }

func (m scoreMeasure) Voices() []Voice {
	byPart := make(map[int][]Note)
	var parts []int
	for _, evt := range m.events {
		pitch, ok := evt.MidiPitch()
		if !ok {
			continue
		}
		if _, seen := byPart[evt.Part]; !seen {
			parts = append(parts, evt.Part)
		}
		byPart[evt.Part] = append(byPart[evt.Part], Note{
			Pitch:         pitch,
			StartBeat:     float64(evt.Onset) / float64(m.divisions),
			DurationBeats: float64(evt.Duration) / float64(m.divisions),
		})
	}
	res := make([]Voice, 0, len(parts))
	for _, part := range parts {
		res = append(res, noteVoice(byPart[part]))
	}
	return res
}

type noteVoice []Note

func (v noteVoice) Notes() []Note { return v }
