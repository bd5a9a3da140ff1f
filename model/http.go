package model

// ScoreMetadata is the optional catalog record attached to a conversion
// when a metadata table is available.
type ScoreMetadata struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Release string `json:"release"`
	Year    uint   `json:"year,omitempty"`
}

type ConvertResponse struct {
	Id       string           `json:"id"`
	Filename string           `json:"filename"`
	Result   ConversionResult `json:"result"`
	Metadata *ScoreMetadata   `json:"metadata,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
