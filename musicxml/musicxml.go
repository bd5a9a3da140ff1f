// Package musicxml parses a MusicXML document into a model.ScoreDocument.
//
// Divisions, key and time signature come from the first measure
// attributes seen anywhere in the document; tempo comes from the first
// sound element carrying a tempo attribute. Later changes are ignored,
// matching the fixed-measure timing model downstream.
package musicxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lumikey/lumikey/constants"
	"github.com/lumikey/lumikey/model"
	"golang.org/x/net/html/charset"
)

// ErrMalformedXML is returned when the document does not parse at all.
// Per-element problems degrade to diagnostics instead.
var ErrMalformedXML = errors.New("malformed xml")

type xmlPitch struct {
	Step   string `xml:"step"`
	Alter  int    `xml:"alter"`
	Octave int    `xml:"octave"`
}

type xmlNote struct {
	Pitch    *xmlPitch `xml:"pitch"`
	Rest     *struct{} `xml:"rest"`
	Chord    *struct{} `xml:"chord"`
	Duration int       `xml:"duration"`
}

type xmlAttributes struct {
	Divisions int `xml:"divisions"`
	Key       struct {
		Fifths int `xml:"fifths"`
	} `xml:"key"`
	Time struct {
		Beats    int `xml:"beats"`
		BeatType int `xml:"beat-type"`
	} `xml:"time"`
}

type xmlSound struct {
	Tempo float64 `xml:"tempo,attr"`
}

type xmlDuration struct {
	Duration int `xml:"duration"`
}

// Parse reads a MusicXML document from r. The returned diagnostics list
// per-element problems that were skipped over; a non-nil error means
// nothing usable was parsed.
func Parse(r io.Reader) (*model.ScoreDocument, []model.Diagnostic, error) {
	doc := &model.ScoreDocument{
		Divisions:   1,
		Beats:       4,
		BeatUnit:    4,
		TempoMicros: constants.DefaultTempoMicros,
	}
	var diags []model.Diagnostic

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	measures := make(map[int][]model.ScoreEvent)
	maxMeasures := 0

	partIdx := -1
	measureIdx := -1
	currentTime := 0
	lastOnset := 0
	attrsSeen := false
	tempoSeen := false
	rootSeen := false

	for {
		token, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, diags, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "score-partwise", "score-timewise":
			rootSeen = true

		case "part":
			partIdx++
			measureIdx = -1

		case "measure":
			measureIdx++
			currentTime = 0
			lastOnset = 0
			if measureIdx+1 > maxMeasures {
				maxMeasures = measureIdx + 1
			}

		case "attributes":
			var attrs xmlAttributes
			if err := dec.DecodeElement(&attrs, &start); err != nil {
				return nil, diags, fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
			if !attrsSeen {
				attrsSeen = true
				if attrs.Divisions > 0 {
					doc.Divisions = attrs.Divisions
				}
				if attrs.Time.Beats > 0 {
					doc.Beats = attrs.Time.Beats
				}
				if attrs.Time.BeatType > 0 {
					doc.BeatUnit = attrs.Time.BeatType
				}
				doc.KeyFifths = attrs.Key.Fifths
			}

		case "sound":
			var snd xmlSound
			if err := dec.DecodeElement(&snd, &start); err != nil {
				return nil, diags, fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
			if !tempoSeen && snd.Tempo > 0 {
				tempoSeen = true
				doc.TempoMicros = int(60_000_000 / snd.Tempo)
			}

		case "backup":
			var d xmlDuration
			if err := dec.DecodeElement(&d, &start); err != nil {
				return nil, diags, fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
			// May go below the part's true position; tolerated.
			currentTime -= d.Duration

		case "forward":
			var d xmlDuration
			if err := dec.DecodeElement(&d, &start); err != nil {
				return nil, diags, fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
			currentTime += d.Duration

		case "note":
			if measureIdx < 0 {
				continue
			}
			var n xmlNote
			if err := dec.DecodeElement(&n, &start); err != nil {
				return nil, diags, fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
			evt, ok := buildEvent(n, partIdx, currentTime, lastOnset, &diags)
			if ok {
				measures[measureIdx] = append(measures[measureIdx], evt)
				if !evt.Chord {
					lastOnset = currentTime
				}
			}
			// The clock still advances past a note we could not use,
			// otherwise everything after it shifts early.
			if n.Chord == nil {
				currentTime += n.Duration
			}
		}
	}

	if !rootSeen {
		return nil, diags, fmt.Errorf("%w: no score-partwise or score-timewise root", ErrMalformedXML)
	}
	if !attrsSeen {
		diags = append(diags, model.Diag(model.DiagMissingAttributes,
			"no measure attributes found, assuming divisions=1 and 4/4"))
	}

	doc.Measures = make([]model.Measure, maxMeasures)
	for i := 0; i < maxMeasures; i++ {
		doc.Measures[i] = model.Measure{Index: i, Events: measures[i]}
	}
	return doc, diags, nil
}

// ParseString is a convenience wrapper for callers holding the document
// in memory, which both the .xml and .mxl paths do.
func ParseString(text string) (*model.ScoreDocument, []model.Diagnostic, error) {
	return Parse(strings.NewReader(text))
}

func buildEvent(n xmlNote, part, currentTime, lastOnset int, diags *[]model.Diagnostic) (model.ScoreEvent, bool) {
	if n.Rest != nil {
		if n.Duration <= 0 {
			return model.ScoreEvent{}, false
		}
		return model.ScoreEvent{
			Rest:     true,
			Duration: n.Duration,
			Onset:    currentTime,
			Part:     part,
		}, true
	}
	if n.Pitch == nil || n.Pitch.Step == "" {
		*diags = append(*diags, model.Diag(model.DiagSkippedNote,
			fmt.Sprintf("note at offset %v has no usable pitch", currentTime)))
		return model.ScoreEvent{}, false
	}

	evt := model.ScoreEvent{
		Step:     n.Pitch.Step,
		Octave:   n.Pitch.Octave,
		Alter:    n.Pitch.Alter,
		Duration: n.Duration,
		Onset:    currentTime,
		Chord:    n.Chord != nil,
		Part:     part,
	}
	if evt.Chord {
		// Chord members share the onset of the note that opened the
		// group and contribute no clock advance of their own.
		evt.Onset = lastOnset
	}
	return evt, true
}
