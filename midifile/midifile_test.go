package midifile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lumikey/lumikey/model"
	"github.com/stretchr/testify/assert"
)

func buildSMF(division uint16, tracks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("MThd")
	binary.Write(&buf, binary.BigEndian, uint32(6))
	binary.Write(&buf, binary.BigEndian, uint16(1))
	binary.Write(&buf, binary.BigEndian, uint16(len(tracks)))
	binary.Write(&buf, binary.BigEndian, division)
	for _, t := range tracks {
		buf.WriteString("MTrk")
		binary.Write(&buf, binary.BigEndian, uint32(len(t)))
		buf.Write(t)
	}
	return buf.Bytes()
}

func tempoEvent(micros int) []byte {
	return []byte{0xFF, 0x51, 0x03, byte(micros >> 16), byte(micros >> 8), byte(micros)}
}

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

func TestParseRejectsMissingMagic(t *testing.T) {
	_, err := Parse([]byte("RIFFxxxxxxxxxxxx"))
	assert.ErrorIs(t, err, ErrInvalidHeader)

	_, err = Parse([]byte("MT"))
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestParseSingleNote(t *testing.T) {
	// division=480, tempo 500000 at tick 0, note on tick 0, off tick 480
	var track []byte
	track = append(track, 0x00)
	track = append(track, tempoEvent(500000)...)
	track = append(track, 0x00, 0x90, 60, 100)
	track = append(track, EncodeVarLen(480)...)
	track = append(track, 0x80, 60, 0)
	track = append(track, endOfTrack...)

	f, err := Parse(buildSMF(480, track))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(f.Events, 2)
	assert.Equal(0.0, f.Events[0].TimeMs)
	assert.Equal(uint8(0x90), f.Events[0].Status)
	assert.Equal(uint8(60), f.Events[0].Pitch)
	assert.Equal(500.0, f.Events[1].TimeMs)
	assert.Equal(uint8(0x80), f.Events[1].Status)
}

func TestParseRunningStatus(t *testing.T) {
	// Second event omits its status byte: note-on with velocity 0,
	// which counts as a note-off.
	var track []byte
	track = append(track, 0x00, 0x90, 60, 100)
	track = append(track, EncodeVarLen(96)...)
	track = append(track, 60, 0)
	track = append(track, endOfTrack...)

	f, err := Parse(buildSMF(96, track))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(f.Events, 2)
	assert.Equal(uint8(0x90), f.Events[1].Status)
	assert.Equal(uint8(0), f.Events[1].Vel)
	assert.True(f.Events[1].IsNoteOff())
	assert.Equal(500.0, f.Events[1].TimeMs)

	notes := f.Notes()
	assert.Len(notes, 1)
	assert.Equal(model.TimedNote{Pitch: 60, StartMs: 0, EndMs: 500}, notes[0])
}

func TestParseMidTrackTempoChange(t *testing.T) {
	// Tempo halves at tick 480: the note-off at tick 960 lands at
	// 500ms + 250ms.
	var track []byte
	track = append(track, 0x00)
	track = append(track, tempoEvent(500000)...)
	track = append(track, 0x00, 0x90, 72, 100)
	track = append(track, EncodeVarLen(480)...)
	track = append(track, tempoEvent(250000)...)
	track = append(track, EncodeVarLen(480)...)
	track = append(track, 0x80, 72, 0)
	track = append(track, endOfTrack...)

	f, err := Parse(buildSMF(480, track))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(f.Events, 2)
	assert.Equal(750.0, f.Events[1].TimeMs)
}

func TestTempoMapCumulativeIsMonotonic(t *testing.T) {
	var track []byte
	track = append(track, 0x00)
	track = append(track, tempoEvent(600000)...)
	track = append(track, EncodeVarLen(100)...)
	track = append(track, tempoEvent(300000)...)
	track = append(track, EncodeVarLen(1000)...)
	track = append(track, tempoEvent(900000)...)
	track = append(track, endOfTrack...)

	f, err := Parse(buildSMF(480, track))
	assert.NoError(t, err)

	prev := -1.0
	for _, e := range f.TempoMap.Entries {
		if e.CumulativeMs < prev {
			t.Fatalf("cumulative ms went backwards at tick %v", e.Tick)
		}
		prev = e.CumulativeMs
	}
}

func TestParseStopsOnMissingTrackSignature(t *testing.T) {
	var track []byte
	track = append(track, 0x00, 0x90, 60, 100)
	track = append(track, EncodeVarLen(480)...)
	track = append(track, 0x80, 60, 0)
	track = append(track, endOfTrack...)

	data := buildSMF(480, track)
	// Claim a second track but follow with garbage instead of MTrk.
	binary.BigEndian.PutUint16(data[10:12], 2)
	data = append(data, []byte("JUNKJUNKJUNK")...)

	f, err := Parse(data)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(f.Events, 2)

	found := false
	for _, d := range f.Diagnostics {
		if d.Kind == model.DiagPartialTrackDecode {
			found = true
		}
	}
	assert.True(found, "expected a partial track decode diagnostic")
}

func TestParseSkipsOtherChannelMessages(t *testing.T) {
	var track []byte
	track = append(track, 0x00, 0xB0, 0x07, 0x64) // volume CC
	track = append(track, 0x00, 0xC0, 0x01)       // program change
	track = append(track, 0x00, 0xE0, 0x00, 0x40) // pitch bend
	track = append(track, 0x00, 0x90, 64, 90)
	track = append(track, EncodeVarLen(48)...)
	track = append(track, 0x80, 64, 0)
	track = append(track, endOfTrack...)

	f, err := Parse(buildSMF(48, track))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(f.Events, 2)
	assert.Equal(uint8(64), f.Events[0].Pitch)
}

func TestParseSkipsSysexWithDiagnostic(t *testing.T) {
	var track []byte
	track = append(track, 0x00, 0xF0, 0x03, 0x01, 0x02, 0xF7)
	track = append(track, 0x00, 0x90, 60, 100)
	track = append(track, EncodeVarLen(48)...)
	track = append(track, 0x80, 60, 0)
	track = append(track, endOfTrack...)

	f, err := Parse(buildSMF(48, track))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(f.Events, 2)

	found := false
	for _, d := range f.Diagnostics {
		if d.Kind == model.DiagSysexSkipped {
			found = true
		}
	}
	assert.True(found)
}

func TestNotesDropsUnclosed(t *testing.T) {
	var track []byte
	track = append(track, 0x00, 0x90, 60, 100)
	track = append(track, 0x00, 0x90, 62, 100)
	track = append(track, EncodeVarLen(48)...)
	track = append(track, 0x80, 60, 0)
	track = append(track, endOfTrack...)

	f, err := Parse(buildSMF(48, track))
	assert.NoError(t, err)

	notes := f.Notes()

	assert := assert.New(t)
	assert.Len(notes, 1)
	assert.Equal(uint8(60), notes[0].Pitch)

	found := false
	for _, d := range f.Diagnostics {
		if d.Kind == model.DiagUnclosedNote {
			found = true
		}
	}
	assert.True(found)
}
