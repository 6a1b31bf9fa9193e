package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/linkmesh-ai/linkmesh/pkg/ai"
	"github.com/linkmesh-ai/linkmesh/pkg/knowledge"
	"github.com/linkmesh-ai/linkmesh/pkg/suggest"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	conf.SetConfigBytes(raw)

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}
	conf.Analyze.FromENVOrDefault()

	return *conf
}

func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	if err := toml.Unmarshal(c.bytes, cfg); err != nil {
		return err
	}
	return nil
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr  string      `toml:"addr"`
	Log   Log         `toml:"log"`
	Store StoreConfig `toml:"store"`
	Redis RedisConfig `toml:"redis"`

	Knowledge knowledge.Config `toml:"knowledge"`
	Suggest   suggest.Config   `toml:"suggest"`
	Analyze   AnalyzeConfig    `toml:"analyze"`
	AI        AIConfig         `toml:"ai"`

	Sites []types.SiteConfig `toml:"sites"`

	bytes []byte `toml:"-"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("LINKMESH_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Store.FromENV()
	c.Redis.FromENV()
	c.Knowledge.FromENVOrDefault()
	c.Suggest.FromENVOrDefault()
	c.Analyze.FromENVOrDefault()
}

// SiteByAPIKey resolves the site config bound to an api key. Site lookups
// happen before any processing.
func (c CoreConfig) SiteByAPIKey(apiKey string) (*types.SiteConfig, bool) {
	for i := range c.Sites {
		if c.Sites[i].APIKey == apiKey {
			return &c.Sites[i], true
		}
	}
	return nil, false
}

const (
	STORE_DRIVER_POSTGRES = "postgres"
	STORE_DRIVER_MEMORY   = "memory"
)

// StoreConfig selects the persistence backend. The memory driver keeps
// everything in-process and is meant for evaluation setups and tests.
type StoreConfig struct {
	Driver   string   `toml:"driver"`
	Postgres PGConfig `toml:"postgres"`
}

func (s *StoreConfig) FromENV() {
	s.Driver = os.Getenv("LINKMESH_STORE_DRIVER")
	s.Postgres.FromENV()
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("LINKMESH_API_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`     // Redis地址，格式: host:port
	Password string `toml:"password"` // Redis密码
	DB       int    `toml:"db"`       // Redis数据库索引 (0-15)
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("LINKMESH_REDIS_ADDR")
	r.Password = os.Getenv("LINKMESH_REDIS_PASSWORD")
	if dbStr := os.Getenv("LINKMESH_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

// AnalyzeConfig tunes the synchronous analysis path.
type AnalyzeConfig struct {
	CacheTTLSecond int `toml:"cache_ttl_second"`
}

func (a *AnalyzeConfig) FromENVOrDefault() {
	if a.CacheTTLSecond <= 0 {
		a.CacheTTLSecond = 3600
	}
}

// AIConfig enables the embedding scorer. When disabled the suggestion
// engine falls back to lexical overlap.
type AIConfig struct {
	Enabled  bool      `toml:"enabled"`
	Embedder ai.Config `toml:"embedder"`
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("LINKMESH_API_LOG_LEVEL")
	l.Path = os.Getenv("LINKMESH_API_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
