package types

import "github.com/pgvector/pgvector-go"

// Vector 对应 lm_vectors，每个 content 一条 embedding 记录
type Vector struct {
	ContentID      string          `json:"content_id" db:"content_id"`
	Embedding      pgvector.Vector `json:"embedding" db:"embedding"`
	OriginalLength int             `json:"original_length" db:"original_length"`
	CreatedAt      int64           `json:"created_at" db:"created_at"`
	UpdatedAt      int64           `json:"updated_at" db:"updated_at"`
}

type VectorQueryResult struct {
	ContentID string  `json:"content_id" db:"content_id"`
	Cos       float64 `json:"cos" db:"cos"`
}
