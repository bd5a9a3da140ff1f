package convert

import (
	"bytes"

	"github.com/lumikey/lumikey/constants"
	"github.com/lumikey/lumikey/util"
)

var (
	xmlProlog   = []byte("<?xml")
	partwiseEnd = []byte("</score-partwise>")
	timewiseEnd = []byte("</score-timewise>")
)

// FindEmbeddedXML scans raw (possibly still-compressed) bytes for a
// literal XML prolog and returns the text up to and including the
// closing score tag. Malformed and truncated archives are common in the
// wild; this is the last resort before giving up on one. It never
// fails, it just reports that nothing was found.
func FindEmbeddedXML(data []byte) (string, bool) {
	window := data
	if len(window) > constants.FallbackScanWindow {
		window = window[:constants.FallbackScanWindow]
	}

	start := bytes.Index(window, xmlProlog)
	if start < 0 {
		return "", false
	}
	rest := window[start:]

	end := bytes.Index(rest, partwiseEnd)
	closer := partwiseEnd
	if alt := bytes.Index(rest, timewiseEnd); alt >= 0 && (end < 0 || alt < end) {
		end = alt
		closer = timewiseEnd
	}
	if end < 0 {
		return "", false
	}
	return string(rest[:util.Min(end+len(closer), len(rest))]), true
}
