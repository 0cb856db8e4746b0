// Package model defines the core domain types shared across the application.
package model

// LabelSource identifies the mechanism that produced an intent label.
type LabelSource string

// Known label provenance tags.
const (
	LabelSourceUnset      LabelSource = ""
	LabelSourcePseudo     LabelSource = "pseudo"
	LabelSourceMistralAPI LabelSource = "mistral_api"
)

// IntentRecord is one scraped page action, optionally carrying an inferred
// intent label. Records are created by the ingestion loader; this core only
// ever writes InferredIntent and LabelSource, together and at most once.
type IntentRecord struct {
	RelevanceScore  *float64
	ConfidenceScore *float64
	Domain          string
	URL             string
	PageTitle       string
	ActionText      string
	InferredIntent  string
	LabelSource     LabelSource
	ID              int64
}

// Labeled reports whether the record already carries an inferred intent.
func (r *IntentRecord) Labeled() bool {
	return r.InferredIntent != ""
}
