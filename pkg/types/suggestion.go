package types

// Suggestion 对应 lm_suggestion
// AnchorText is always a verbatim substring of the source item's raw content.
type Suggestion struct {
	ID              string  `json:"id" db:"id"`
	SourceContentID string  `json:"source_content_id" db:"source_content_id"`
	AnchorText      string  `json:"anchor_text" db:"anchor_text"`
	TargetContentID string  `json:"target_content_id" db:"target_content_id"`
	TargetURL       string  `json:"target_url" db:"target_url"`
	Confidence      float64 `json:"confidence" db:"confidence"`
	Context         string  `json:"context" db:"context"`
	ParagraphIndex  int     `json:"paragraph_index" db:"paragraph_index"`
	Applied         bool    `json:"applied" db:"applied"`
	CreatedAt       int64   `json:"created_at" db:"created_at"`
}
