package constants

import "os"

func GetMetadataEndpoint() string {
	endpoint := os.Getenv("METADATA_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

const MetadataTable = "lumikey-metadata"

// Every emitted note-on carries the same fixed velocity.
const NoteOnVelocity = 100

// 500000 microseconds per quarter == 120bpm, the MIDI default.
const DefaultTempoMicros = 500000

// Upper bound on how far the raw-byte XML fallback will look for an
// embedded score before giving up.
const FallbackScanWindow = 5_000_000
