package types

// Entity categories recognized by the extractor. Generic terms promoted
// from noun phrases carry ENTITY_TYPE_GENERIC.
const (
	ENTITY_TYPE_GARMENT      = "garment"
	ENTITY_TYPE_BRAND        = "brand"
	ENTITY_TYPE_STYLE        = "style"
	ENTITY_TYPE_MATERIAL     = "material"
	ENTITY_TYPE_BODY_SHAPE   = "body_shape"
	ENTITY_TYPE_COLOR_SEASON = "color_season"
	ENTITY_TYPE_SEASONAL     = "seasonal"
	ENTITY_TYPE_GENERIC      = "generic"
)

const (
	TOPIC_KIND_PRIMARY = "primary"
	TOPIC_KIND_SUB     = "sub"
)

// ContentItem 数据表结构对应 lm_content
// One ingested article/page. Re-ingestion replaces the record by id.
type ContentItem struct {
	ID         string `json:"id" db:"id"`
	SiteID     string `json:"site_id" db:"site_id"`
	Title      string `json:"title" db:"title"`
	URL        string `json:"url" db:"url"`
	RawContent string `json:"raw_content" db:"raw_content"`
	Hash       string `json:"hash" db:"hash"`
	IngestedAt int64  `json:"ingested_at" db:"ingested_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}

// Entity 对应 lm_entity
type Entity struct {
	ID             string  `json:"id" db:"id"`
	ContentID      string  `json:"content_id" db:"content_id"`
	Type           string  `json:"type" db:"type"`
	CanonicalName  string  `json:"canonical_name" db:"canonical_name"`
	Surface        string  `json:"surface" db:"surface"` // matched surface form, verbatim
	ParagraphIndex int     `json:"paragraph_index" db:"paragraph_index"`
	Offset         int     `json:"offset" db:"char_offset"`
	Confidence     float64 `json:"confidence" db:"confidence"`
}

// Topic 对应 lm_topic
type Topic struct {
	ID        string  `json:"id" db:"id"`
	ContentID string  `json:"content_id" db:"content_id"`
	Value     string  `json:"value" db:"value"`
	Kind      string  `json:"kind" db:"kind"`
	Weight    float64 `json:"weight" db:"weight"`
}

// Relationship 对应 lm_relationship，content_id_a < content_id_b
type Relationship struct {
	ContentIDA string  `json:"content_id_a" db:"content_id_a"`
	ContentIDB string  `json:"content_id_b" db:"content_id_b"`
	Weight     float64 `json:"weight" db:"weight"`
	UpdatedAt  int64   `json:"updated_at" db:"updated_at"`
}

// Candidate is a ranked link target produced by the knowledge base.
type Candidate struct {
	ContentID  string  `json:"content_id" db:"content_id"`
	Title      string  `json:"title" db:"title"`
	URL        string  `json:"url" db:"url"`
	Weight     float64 `json:"weight" db:"weight"`
	IngestedAt int64   `json:"ingested_at" db:"ingested_at"`
}

// MatchCount pairs a content id with how many of the probed values it shares.
type MatchCount struct {
	ContentID string `json:"content_id" db:"content_id"`
	Matches   int    `json:"matches" db:"matches"`
}

type KnowledgeStats struct {
	ContentCount      int64 `json:"content_count"`
	EntityCount       int64 `json:"entity_count"`
	TopicCount        int64 `json:"topic_count"`
	RelationshipCount int64 `json:"relationship_count"`
	ReadyForAnalysis  bool  `json:"ready_for_analysis"`
	MinimumRequired   int64 `json:"minimum_required"`
	Capacity          int64 `json:"capacity"`
}
