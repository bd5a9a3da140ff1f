// Package midifile decodes Standard MIDI Files into timestamped note
// events plus a tempo map. Decoding is best-effort per track: a track
// that cannot be read is reported as a diagnostic and the rest of the
// file still converts.
package midifile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/lumikey/lumikey/model"
	"github.com/lumikey/lumikey/timing"
)

// ErrInvalidHeader means the file does not start with the MThd magic.
var ErrInvalidHeader = errors.New("invalid midi header")

// File is one parsed SMF.
type File struct {
	Division    int
	Events      []model.MidiEvent
	TempoMap    timing.TempoMap
	Diagnostics []model.Diagnostic
}

type rawEvent struct {
	tick   int64
	status uint8
	data1  uint8
	data2  uint8
}

// Parse decodes an SMF byte stream. Ticks accumulate per track via
// delta times; the tempo maps of all tracks are combined before events
// are projected onto milliseconds.
func Parse(data []byte) (*File, error) {
	if len(data) < 14 || string(data[0:4]) != "MThd" {
		return nil, ErrInvalidHeader
	}

	// Chunk length, format type, track count, ticks per quarter.
	trackCount := int(binary.BigEndian.Uint16(data[10:12]))
	division := int(binary.BigEndian.Uint16(data[12:14]))
	if division <= 0 {
		division = 1
	}

	f := &File{Division: division}
	var raw []rawEvent
	var tempoEntries []model.TempoMapEntry

	offset := 14
	for i := 0; i < trackCount; i++ {
		if offset+8 > len(data) {
			break
		}
		if string(data[offset:offset+4]) != "MTrk" {
			f.diag(model.DiagPartialTrackDecode,
				fmt.Sprintf("track %v has no MTrk signature, stopping", i))
			break
		}
		trackLen := int(binary.BigEndian.Uint32(data[offset+4 : offset+8]))
		trackStart := offset + 8
		trackEnd := trackStart + trackLen
		if trackEnd > len(data) {
			f.diag(model.DiagPartialTrackDecode,
				fmt.Sprintf("track %v declares %v bytes past end of file", i, trackEnd-len(data)))
			trackEnd = len(data)
		}

		events, tempos, diags := decodeTrack(data[trackStart:trackEnd], i)
		raw = append(raw, events...)
		tempoEntries = append(tempoEntries, tempos...)
		f.Diagnostics = append(f.Diagnostics, diags...)

		offset = trackStart + trackLen
	}

	f.TempoMap = timing.NewTempoMap(tempoEntries, division)

	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].tick < raw[j].tick
	})
	f.Events = make([]model.MidiEvent, 0, len(raw))
	for _, e := range raw {
		f.Events = append(f.Events, model.MidiEvent{
			TimeMs: f.TempoMap.TimeAt(e.tick),
			Status: e.status,
			Pitch:  e.data1,
			Vel:    e.data2,
		})
	}
	return f, nil
}

// decodeTrack iterates one MTrk body. A walk that runs past the
// declared boundary or hits a status family we cannot size abandons the
// remainder of that track only.
func decodeTrack(track []byte, trackNum int) ([]rawEvent, []model.TempoMapEntry, []model.Diagnostic) {
	var events []rawEvent
	var tempos []model.TempoMapEntry
	var diags []model.Diagnostic

	pos := 0
	var tick int64
	var running uint8
	sysexCount := 0

	for pos < len(track) {
		delta, n := DecodeVarLen(track[pos:])
		pos += n
		tick += int64(delta)
		if pos >= len(track) {
			break
		}

		status := track[pos]
		if status < 0x80 {
			// Running status: the byte just read is already the first
			// data byte, so reinterpret from one position back.
			if running == 0 {
				diags = append(diags, model.Diag(model.DiagPartialTrackDecode,
					fmt.Sprintf("track %v: data byte with no running status", trackNum)))
				return events, tempos, diags
			}
			status = running
		} else {
			pos++
		}

		switch {
		case status == 0xFF:
			running = 0
			if pos >= len(track) {
				return events, tempos, diags
			}
			metaType := track[pos]
			pos++
			length, n := DecodeVarLen(track[pos:])
			pos += n
			if metaType == 0x51 && length >= 3 && pos+3 <= len(track) {
				micros := int(track[pos])<<16 | int(track[pos+1])<<8 | int(track[pos+2])
				tempos = append(tempos, model.TempoMapEntry{Tick: tick, MicrosPerQuarter: micros})
			}
			pos += int(length)

		case status == 0xF0 || status == 0xF7:
			running = 0
			length, n := DecodeVarLen(track[pos:])
			pos += n + int(length)
			sysexCount++

		case status >= 0xF1:
			// System common/realtime inside a track is not something
			// we can size reliably; give up on this track.
			diags = append(diags, model.Diag(model.DiagPartialTrackDecode,
				fmt.Sprintf("track %v: unsupported status 0x%02X", trackNum, status)))
			return events, tempos, diags

		default:
			running = status
			switch status & 0xF0 {
			case 0x80, 0x90:
				if pos+2 > len(track) {
					return events, tempos, diags
				}
				events = append(events, rawEvent{
					tick:   tick,
					status: status,
					data1:  track[pos],
					data2:  track[pos+1],
				})
				pos += 2
			case 0xA0, 0xB0, 0xE0:
				pos += 2
			case 0xC0, 0xD0:
				pos += 1
			}
		}
	}

	if pos > len(track) {
		diags = append(diags, model.Diag(model.DiagPartialTrackDecode,
			fmt.Sprintf("track %v decode ran %v bytes past its boundary", trackNum, pos-len(track))))
	}
	if sysexCount > 0 {
		diags = append(diags, model.Diag(model.DiagSysexSkipped,
			fmt.Sprintf("track %v: skipped %v sysex events", trackNum, sysexCount)))
	}
	return events, tempos, diags
}

// Notes pairs note-ons with their note-offs into timed notes. Offs
// close the oldest open note of the same pitch. Notes still open when
// the track data ends are dropped with a diagnostic.
func (f *File) Notes() []model.TimedNote {
	open := make(map[uint8][]model.TimedNote)
	var notes []model.TimedNote
	unclosed := 0

	for _, e := range f.Events {
		switch {
		case e.IsNoteOn():
			open[e.Pitch] = append(open[e.Pitch], model.TimedNote{Pitch: e.Pitch, StartMs: e.TimeMs})
		case e.IsNoteOff():
			stack := open[e.Pitch]
			if len(stack) == 0 {
				continue
			}
			note := stack[0]
			open[e.Pitch] = stack[1:]
			note.EndMs = e.TimeMs
			notes = append(notes, note)
		}
	}
	for _, stack := range open {
		unclosed += len(stack)
	}
	if unclosed > 0 {
		f.Diagnostics = append(f.Diagnostics, model.Diag(model.DiagUnclosedNote,
			fmt.Sprintf("dropped %v notes with no note-off", unclosed)))
	}
	return notes
}

func (f *File) diag(kind model.DiagKind, detail string) {
	f.Diagnostics = append(f.Diagnostics, model.Diag(kind, detail))
}
