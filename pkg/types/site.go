package types

// SiteConfig is resolved from the X-API-Key header before any processing.
type SiteConfig struct {
	SiteID    string `toml:"site_id" json:"site_id"`
	APIKey    string `toml:"api_key" json:"-"`
	Name      string `toml:"name" json:"name"`
	URL       string `toml:"url" json:"url"`
	RateLimit int    `toml:"rate_limit" json:"rate_limit"` // requests per minute
}
