package types

const (
	NO_PAGINATION = 0

	// Knowledge base defaults. Overridable through [knowledge] config.
	DEFAULT_MINIMUM_REQUIRED = 100
	DEFAULT_CAPACITY         = 1000

	// Suggestion defaults.
	DEFAULT_MAX_SUGGESTIONS = 5
	DEFAULT_MIN_CONFIDENCE  = 0.3

	// Bulk job defaults.
	DEFAULT_BATCH_SIZE  = 10
	DEFAULT_MAX_RETRIES = 3
)
