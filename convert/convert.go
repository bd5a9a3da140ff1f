// Package convert is the front door of the engine: it dispatches a file
// by extension through the right decoder chain and returns the shared
// conversion result. The converter is a pure function of its input
// bytes; it holds no state across calls.
package convert

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lumikey/lumikey/merge"
	"github.com/lumikey/lumikey/midifile"
	"github.com/lumikey/lumikey/model"
	"github.com/lumikey/lumikey/musicxml"
	"github.com/lumikey/lumikey/timing"
	"github.com/lumikey/lumikey/util"
	"github.com/lumikey/lumikey/zipread"
)

// ErrNoScoreFound means an archive contained no identifiable MusicXML
// member and the byte-pattern fallback found nothing either.
var ErrNoScoreFound = errors.New("no score found")

// ErrUnsupportedExtension means the filename matches none of the known
// input conventions.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// File reads and converts one score or MIDI file.
func File(path string) (*model.ConversionResult, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %v: %w", path, err)
	}
	return Bytes(path, dat)
}

// Bytes converts raw file content. The name is only consulted for its
// extension.
func Bytes(name string, data []byte) (*model.ConversionResult, error) {
	switch {
	case util.HasAnySuffix(name, ".mxl"):
		return fromArchive(data)
	case util.HasAnySuffix(name, ".xml", ".musicxml"):
		return fromXML(string(data), nil)
	case util.HasAnySuffix(name, ".mid", ".midi"):
		return fromMidi(data)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedExtension, name)
}

func fromXML(text string, diags []model.Diagnostic) (*model.ConversionResult, error) {
	doc, parseDiags, err := musicxml.ParseString(text)
	diags = append(diags, parseDiags...)
	if err != nil {
		return nil, err
	}
	res := merge.Notes(timing.ResolveScore(doc))
	res.Diagnostics = append(diags, res.Diagnostics...)
	return &res, nil
}

func fromMidi(data []byte) (*model.ConversionResult, error) {
	f, err := midifile.Parse(data)
	if err != nil {
		return nil, err
	}
	notes := f.Notes()
	res := merge.Notes(notes)
	res.Diagnostics = append(f.Diagnostics, res.Diagnostics...)
	return &res, nil
}

func fromArchive(data []byte) (*model.ConversionResult, error) {
	entries, diags := zipread.Scan(data)

	text, ok := selectScoreMember(entries)
	if ok {
		res, err := fromXML(text, diags)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, musicxml.ErrMalformedXML) {
			return nil, err
		}
		// Fall through to the raw-byte scan; truncated archives whose
		// members half-inflate land here.
		diags = append(diags, model.Diag(model.DiagFallbackUsed,
			fmt.Sprintf("archive member did not parse (%v), trying byte scan", err)))
	}

	if text, ok := FindEmbeddedXML(data); ok {
		diags = append(diags, model.Diag(model.DiagFallbackUsed,
			"recovered score via raw byte scan"))
		return fromXML(text, diags)
	}
	return nil, ErrNoScoreFound
}

type containerManifest struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// selectScoreMember applies the member policy: the path named by
// META-INF/container.xml wins, then the first .xml member outside
// META-INF/ and __MACOSX/.
func selectScoreMember(entries []zipread.Entry) (string, bool) {
	byName := make(map[string]zipread.Entry)
	for _, e := range entries {
		byName[e.Name] = e
	}

	if manifest, ok := byName["META-INF/container.xml"]; ok {
		var c containerManifest
		if err := xml.Unmarshal(manifest.Data, &c); err == nil {
			for _, rf := range c.Rootfiles {
				if target, ok := byName[rf.FullPath]; ok {
					return string(target.Data), true
				}
			}
		}
	}

	for _, e := range entries {
		if !util.HasAnySuffix(e.Name, ".xml") {
			continue
		}
		if strings.HasPrefix(e.Name, "META-INF/") || strings.HasPrefix(e.Name, "__MACOSX/") {
			continue
		}
		return string(e.Data), true
	}
	return "", false
}
