package models

// Parse statuses.
const (
	StatusParsed  = "parsed"  // at least one field recognised
	StatusPartial = "partial" // some fields unrecognised
	StatusEmpty   = "empty"   // nothing recognised
	StatusFailed  = "failed"
)

// UnrecognizedField is a stated value that no normalizer accepted.
type UnrecognizedField struct {
	Field  string `bson:"field" json:"field"`
	Family string `bson:"family,omitempty" json:"family,omitempty"`
	Raw    string `bson:"raw" json:"raw"`
}

// ParseResult is the outcome of parsing one post. It carries no timestamps,
// so the same input always gives the same bytes.
type ParseResult struct {
	Source          string              `bson:"source" json:"source"`
	Country         string              `bson:"country" json:"country"`
	Currency        string              `bson:"currency" json:"currency"`
	Fingerprint     string              `bson:"fingerprint" json:"fingerprint"`
	TablesVersion   string              `bson:"tables_version" json:"tables_version"`
	Status          string              `bson:"status" json:"status"`
	Record          CanonicalRecord     `bson:"record" json:"record"`
	Unrecognized    []UnrecognizedField `bson:"unrecognized" json:"unrecognized"`
	MissingSections []string            `bson:"missing_sections,omitempty" json:"missing_sections,omitempty"`
	Error           string              `bson:"error,omitempty" json:"error,omitempty"`
}

// FailedResult marks a batch item that could not be parsed at all.
func FailedResult(source string, err error) *ParseResult {
	return &ParseResult{
		Source:       source,
		Status:       StatusFailed,
		Unrecognized: []UnrecognizedField{},
		Error:        err.Error(),
	}
}
