// Package timing projects musical time onto absolute milliseconds: a
// fixed-measure projection for parsed scores, and a tempo map for tick
// based SMF streams.
package timing

import (
	"sort"

	"github.com/lumikey/lumikey/constants"
	"github.com/lumikey/lumikey/model"
)

// ResolveScore turns a score's divisions-relative events into timed
// notes. Every measure is assumed to span the same duration, derived
// from the document's first time signature and tempo; mid-score tempo
// or meter changes are not reflected.
func ResolveScore(doc *model.ScoreDocument) []model.TimedNote {
	msPerDivision := float64(doc.TempoMicros) / 1000 / float64(doc.Divisions)
	msPerMeasure := float64(doc.Beats*doc.Divisions*4) / float64(doc.BeatUnit) * msPerDivision

	var notes []model.TimedNote
	for _, measure := range doc.Measures {
		base := float64(measure.Index) * msPerMeasure
		for _, evt := range measure.Events {
			pitch, ok := evt.MidiPitch()
			if !ok {
				// Rests and unusable pitches only advanced the clock.
				continue
			}
			start := base + float64(evt.Onset)*msPerDivision
			notes = append(notes, model.TimedNote{
				Pitch:   pitch,
				StartMs: start,
				EndMs:   start + float64(evt.Duration)*msPerDivision,
			})
		}
	}
	return notes
}

// TempoMap converts absolute ticks to milliseconds under mid-stream
// tempo changes. Entries are kept sorted by tick with cumulative
// elapsed time precomputed.
type TempoMap struct {
	Division int
	Entries  []model.TempoMapEntry
}

// NewTempoMap sorts the collected tempo events, guarantees a default
// entry at tick 0, and fills in CumulativeMs.
func NewTempoMap(entries []model.TempoMapEntry, division int) TempoMap {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Tick < entries[j].Tick
	})
	if len(entries) == 0 || entries[0].Tick != 0 {
		head := []model.TempoMapEntry{{Tick: 0, MicrosPerQuarter: constants.DefaultTempoMicros}}
		entries = append(head, entries...)
	}
	for i := 1; i < len(entries); i++ {
		prev := entries[i-1]
		deltaTicks := float64(entries[i].Tick - prev.Tick)
		entries[i].CumulativeMs = prev.CumulativeMs +
			deltaTicks/float64(division)*float64(prev.MicrosPerQuarter)/1000
	}
	return TempoMap{Division: division, Entries: entries}
}

// TimeAt returns the absolute millisecond position of a tick. A linear
// scan is fine at the track sizes we see.
func (m TempoMap) TimeAt(tick int64) float64 {
	entry := m.Entries[0]
	for _, e := range m.Entries {
		if e.Tick > tick {
			break
		}
		entry = e
	}
	return entry.CumulativeMs +
		float64(tick-entry.Tick)/float64(m.Division)*float64(entry.MicrosPerQuarter)/1000
}
