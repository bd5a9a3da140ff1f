// Package smfout re-exports a conversion result as a Standard MIDI
// File, so a converted score can be opened in any sequencer or fed to a
// synth that only speaks .mid.
package smfout

import (
	"io"
	"math"

	"github.com/lumikey/lumikey/model"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = 480

// Build maps the merged events' millisecond timestamps back onto ticks
// at a fixed 120bpm (500ms per quarter) and lays them out on a single
// track.
func Build(events []model.MidiEvent) *smf.SMF {
	var res smf.SMF
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTempo(120))

	var lastTick uint32
	for _, evt := range events {
		tick := uint32(math.Round(evt.TimeMs * ticksPerQuarter / 500))
		delta := tick - lastTick
		lastTick = tick
		switch {
		case evt.IsNoteOn():
			track.Add(delta, midi.NoteOn(0, evt.Pitch, evt.Vel))
		case evt.IsNoteOff():
			track.Add(delta, midi.NoteOff(0, evt.Pitch))
		}
	}
	track.Close(0)

	res.Add(track)
	return &res
}

// Write builds and serializes in one go.
func Write(w io.Writer, events []model.MidiEvent) error {
	_, err := Build(events).WriteTo(w)
	return err
}
