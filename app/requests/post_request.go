package requests

import "github.com/salary-parser/internal/comments"

// ParseOptions tunes one parse call.
type ParseOptions struct {
	UseCache bool `json:"use_cache,omitempty"` // look up and store the result by fingerprint
}

// ParsePostRequest parses a single post body.
type ParsePostRequest struct {
	Source  string       `json:"source" binding:"required"`
	Body    string       `json:"body" binding:"required"`
	Options ParseOptions `json:"options,omitempty"`
}

// BatchParseRequest queues a batch of bodies from one source.
type BatchParseRequest struct {
	Source  string       `json:"source" binding:"required"`
	Bodies  []string     `json:"bodies" binding:"required,min=1"`
	Options ParseOptions `json:"options,omitempty"`
}

// SectionsRequest asks which section headings a body carries.
type SectionsRequest struct {
	Source string `json:"source" binding:"required"`
	Body   string `json:"body" binding:"required"`
}

// CommentTreeRequest carries the flat rows of one thread. A missing list is
// an empty thread.
type CommentTreeRequest struct {
	Comments []comments.Row `json:"comments"`
}

// SuggestQuery is the query string of a city suggestion.
type SuggestQuery struct {
	Q        string  `form:"q" binding:"required"`
	Country  string  `form:"country"`
	Locale   string  `form:"locale"`
	MinScore float64 `form:"min_score"`
}

// TranslateQuery is the query string of a place translation.
type TranslateQuery struct {
	Name   string `form:"name" binding:"required"`
	Locale string `form:"locale" binding:"required"`
}

// UnmappedQuery filters the unmapped-value report.
type UnmappedQuery struct {
	Family   string `form:"family"`
	MinUsage int    `form:"min_usage"`
	Limit    int    `form:"limit"`
}
