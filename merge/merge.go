// Package merge deduplicates coincident notes and emits the final
// sorted event stream. Multi-voice scores often notate the same pitch
// redundantly across staves at the same instant; only the longest of
// each such group should light up.
package merge

import (
	"math"
	"sort"

	"github.com/lumikey/lumikey/constants"
	"github.com/lumikey/lumikey/model"
)

type dedupKey struct {
	startCentiMs int64
	pitch        uint8
}

// Notes merges timed notes into the shared conversion result. Notes
// with the same pitch and the same start time (rounded to 2 decimals)
// collapse to the one with the strictly greatest duration; ties keep
// the first seen.
func Notes(notes []model.TimedNote) model.ConversionResult {
	byKey := make(map[dedupKey]model.TimedNote)
	var order []dedupKey

	for _, note := range notes {
		key := dedupKey{
			startCentiMs: int64(math.Round(note.StartMs * 100)),
			pitch:        note.Pitch,
		}
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = note
			order = append(order, key)
			continue
		}
		if note.EndMs-note.StartMs > existing.EndMs-existing.StartMs {
			byKey[key] = note
		}
	}

	var res model.ConversionResult
	res.Events = make([]model.MidiEvent, 0, 2*len(order))
	res.NotePairs = make([]model.NotePair, 0, len(order))
	for _, key := range order {
		note := byKey[key]
		res.Events = append(res.Events,
			model.MidiEvent{TimeMs: note.StartMs, Status: 0x90, Pitch: note.Pitch, Vel: constants.NoteOnVelocity},
			model.MidiEvent{TimeMs: note.EndMs, Status: 0x80, Pitch: note.Pitch, Vel: 0})
		res.NotePairs = append(res.NotePairs,
			model.NotePair{Pitch: note.Pitch, StartMs: note.StartMs, EndMs: note.EndMs})
	}

	// Stable: coincident on/off events keep their insertion order.
	sort.SliceStable(res.Events, func(i, j int) bool {
		return res.Events[i].TimeMs < res.Events[j].TimeMs
	})
	sort.SliceStable(res.NotePairs, func(i, j int) bool {
		return res.NotePairs[i].StartMs < res.NotePairs[j].StartMs
	})

	if len(res.Events) > 0 {
		res.TotalDurationMs = res.Events[len(res.Events)-1].TimeMs
	}
	return res
}
