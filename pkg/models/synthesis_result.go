package models

// SynthesisResult is the engine's sole output: the regenerated header, the
// final idempotent definition body (header included), and the metadata
// entries the caller may apply. The engine performs no writes except through
// this explicit list.
type SynthesisResult struct {
	Identity ObjectIdentity  `json:"identity"`
	Header   string          `json:"header"`
	Body     string          `json:"body"`
	Writes   []MetadataEntry `json:"writes"`

	// WritesApplied is true when the caller asked the engine to apply the
	// write list and the store accepted it.
	WritesApplied bool `json:"writes_applied"`
}
