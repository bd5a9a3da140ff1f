package musicxml

import (
	"testing"

	"github.com/lumikey/lumikey/model"
	"github.com/stretchr/testify/assert"
)

const simpleScore = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>1</divisions>
        <key><fifths>-1</fifths></key>
        <time><beats>4</beats><beat-type>4</beat-type></time>
      </attributes>
      <direction><sound tempo="120"/></direction>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>1</duration></note>
      <note><rest/><duration>1</duration></note>
      <note><pitch><step>E</step><octave>4</octave></pitch><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParseSimpleScore(t *testing.T) {
	doc, diags, err := ParseString(simpleScore)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Empty(diags)
	assert.Equal(1, doc.Divisions)
	assert.Equal(4, doc.Beats)
	assert.Equal(4, doc.BeatUnit)
	assert.Equal(-1, doc.KeyFifths)
	assert.Equal(500000, doc.TempoMicros)
	assert.Len(doc.Measures, 1)

	events := doc.Measures[0].Events
	assert.Len(events, 3)
	assert.Equal(model.ScoreEvent{Step: "C", Octave: 4, Duration: 1, Onset: 0}, events[0])
	assert.Equal(model.ScoreEvent{Rest: true, Duration: 1, Onset: 1}, events[1])
	assert.Equal(model.ScoreEvent{Step: "E", Octave: 4, Duration: 1, Onset: 2}, events[2])
}

const chordScore = `<?xml version="1.0"?>
<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>2</divisions><time><beats>4</beats><beat-type>4</beat-type></time></attributes>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><chord/><pitch><step>E</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><chord/><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><pitch><step>F</step><octave>4</octave></pitch><duration>2</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParseChordAdvancesClockOnce(t *testing.T) {
	doc, _, err := ParseString(chordScore)

	assert := assert.New(t)
	assert.NoError(err)
	events := doc.Measures[0].Events
	assert.Len(events, 4)

	// All three chord members share onset 0.
	assert.Equal(0, events[0].Onset)
	assert.Equal(0, events[1].Onset)
	assert.True(events[1].Chord)
	assert.Equal(0, events[2].Onset)
	assert.True(events[2].Chord)

	// The note after the chord group starts one group-duration later,
	// not three.
	assert.Equal(2, events[3].Onset)
	assert.False(events[3].Chord)
}

const backupScore = `<?xml version="1.0"?>
<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>1</divisions><time><beats>4</beats><beat-type>4</beat-type></time></attributes>
      <note><pitch><step>C</step><octave>5</octave></pitch><duration>4</duration></note>
      <backup><duration>4</duration></backup>
      <note><pitch><step>C</step><octave>3</octave></pitch><duration>2</duration></note>
      <forward><duration>1</duration></forward>
      <note><pitch><step>D</step><octave>3</octave></pitch><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParseBackupAndForward(t *testing.T) {
	doc, _, err := ParseString(backupScore)

	assert := assert.New(t)
	assert.NoError(err)
	events := doc.Measures[0].Events
	assert.Len(events, 3)
	assert.Equal(0, events[0].Onset)
	assert.Equal(0, events[1].Onset) // backup rewound to measure start
	assert.Equal(3, events[2].Onset) // 2 + forward 1
}

const multiPartScore = `<?xml version="1.0"?>
<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>1</divisions><time><beats>4</beats><beat-type>4</beat-type></time></attributes>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>4</duration></note>
    </measure>
    <measure number="2">
      <note><pitch><step>D</step><octave>4</octave></pitch><duration>4</duration></note>
    </measure>
  </part>
  <part id="P2">
    <measure number="1">
      <note><pitch><step>G</step><octave>2</octave></pitch><duration>4</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParseMergesPartsByMeasureIndex(t *testing.T) {
	doc, _, err := ParseString(multiPartScore)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(doc.Measures, 2)
	assert.Len(doc.Measures[0].Events, 2)
	assert.Equal(0, doc.Measures[0].Events[0].Part)
	assert.Equal(1, doc.Measures[0].Events[1].Part)
	// The shorter part simply contributes nothing to measure 2.
	assert.Len(doc.Measures[1].Events, 1)
}

const alteredScore = `<?xml version="1.0"?>
<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>1</divisions><time><beats>4</beats><beat-type>4</beat-type></time></attributes>
      <note><pitch><step>F</step><alter>1</alter><octave>4</octave></pitch><duration>1</duration></note>
      <note><pitch><step>B</step><alter>-1</alter><octave>3</octave></pitch><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParseAlterations(t *testing.T) {
	doc, _, err := ParseString(alteredScore)
	assert.NoError(t, err)

	events := doc.Measures[0].Events

	fs, ok := events[0].MidiPitch()
	assert.True(t, ok)
	assert.Equal(t, uint8(66), fs) // F#4

	bb, ok := events[1].MidiPitch()
	assert.True(t, ok)
	assert.Equal(t, uint8(58), bb) // Bb3
}

const brokenNoteScore = `<?xml version="1.0"?>
<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>1</divisions><time><beats>4</beats><beat-type>4</beat-type></time></attributes>
      <note><pitch><octave>4</octave></pitch><duration>1</duration></note>
      <note><pitch><step>E</step><octave>4</octave></pitch><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParseSkipsNoteWithoutStep(t *testing.T) {
	doc, diags, err := ParseString(brokenNoteScore)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(diags, 1)
	assert.Equal(model.DiagSkippedNote, diags[0].Kind)

	events := doc.Measures[0].Events
	assert.Len(events, 1)
	// The skipped note still took up its beat.
	assert.Equal(1, events[0].Onset)
}

func TestParseFirstAttributesWin(t *testing.T) {
	text := `<?xml version="1.0"?>
<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>4</divisions><time><beats>3</beats><beat-type>4</beat-type></time></attributes>
      <direction><sound tempo="90"/></direction>
    </measure>
    <measure number="2">
      <attributes><divisions>8</divisions><time><beats>6</beats><beat-type>8</beat-type></time></attributes>
      <direction><sound tempo="180"/></direction>
    </measure>
  </part>
</score-partwise>`

	doc, _, err := ParseString(text)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(4, doc.Divisions)
	assert.Equal(3, doc.Beats)
	assert.Equal(4, doc.BeatUnit)
	assert.Equal(666666, doc.TempoMicros) // 60000000/90, truncated
}

func TestParseMalformedXml(t *testing.T) {
	_, _, err := ParseString(`<score-partwise><part id="P1"><measure`)
	assert.ErrorIs(t, err, ErrMalformedXML)

	_, _, err = ParseString(`this is not xml at all`)
	assert.ErrorIs(t, err, ErrMalformedXML)
}

func TestParseDefaultsWhenAttributesMissing(t *testing.T) {
	text := `<?xml version="1.0"?>
<score-partwise>
  <part id="P1">
    <measure number="1">
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

	doc, diags, err := ParseString(text)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(1, doc.Divisions)
	assert.Equal(4, doc.Beats)
	assert.Equal(4, doc.BeatUnit)
	assert.Equal(500000, doc.TempoMicros)

	found := false
	for _, d := range diags {
		if d.Kind == model.DiagMissingAttributes {
			found = true
		}
	}
	assert.True(found)
}
