package model

// DiagKind labels a recoverable problem encountered during conversion.
// Diagnostics travel with the partial result instead of failing it.
type DiagKind string

const (
	DiagDecompressionFailed DiagKind = "decompression_failed"
	DiagPartialTrackDecode  DiagKind = "partial_track_decode"
	DiagSkippedNote         DiagKind = "skipped_note"
	DiagSkippedMember       DiagKind = "skipped_member"
	DiagSysexSkipped        DiagKind = "sysex_skipped"
	DiagMissingAttributes   DiagKind = "missing_attributes"
	DiagUnclosedNote        DiagKind = "unclosed_note"
	DiagFallbackUsed        DiagKind = "fallback_used"
)

type Diagnostic struct {
	Kind   DiagKind `json:"kind"`
	Detail string   `json:"detail"`
}

func Diag(kind DiagKind, detail string) Diagnostic {
	return Diagnostic{Kind: kind, Detail: detail}
}
