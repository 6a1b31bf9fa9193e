package core

import (
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/linkmesh-ai/linkmesh/app/store"
	"github.com/linkmesh-ai/linkmesh/app/store/memstore"
	"github.com/linkmesh-ai/linkmesh/app/store/sqlstore"
	"github.com/linkmesh-ai/linkmesh/pkg/ai"
	"github.com/linkmesh-ai/linkmesh/pkg/analyzer"
	"github.com/linkmesh-ai/linkmesh/pkg/jobs"
	"github.com/linkmesh-ai/linkmesh/pkg/knowledge"
	"github.com/linkmesh-ai/linkmesh/pkg/suggest"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

type Core struct {
	cfg CoreConfig

	store          store.Store
	analyzer       *analyzer.Analyzer
	knowledge      *knowledge.Base
	suggest        *suggest.Engine
	suggestLexical *suggest.Engine
	embedder       ai.Embedder
	jobs           *jobs.Registry
	cache          types.Cache

	httpEngine *gin.Engine
	metrics    *Metrics
	limiters   *limiters
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28,   //days
				Compress:   true, // disabled by default
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("linkmesh", "core"),
		httpEngine: gin.New(),
		jobs:       jobs.NewRegistry(),
		limiters:   newLimiters(),
	}

	setupStore(core)
	setupCache(core)

	core.analyzer = analyzer.NewAnalyzer(nil)
	core.knowledge = knowledge.NewBase(core.store, cfg.Knowledge)
	core.suggestLexical = suggest.NewEngine(core.knowledge, nil, cfg.Suggest)
	core.suggest = suggest.NewEngine(core.knowledge, core.setupScorer(), cfg.Suggest)

	return core
}

// setupScorer picks the semantic scorer for the enhanced path. With ai
// disabled the engine runs on lexical overlap only.
func (s *Core) setupScorer() suggest.Scorer {
	if !s.cfg.AI.Enabled {
		return nil
	}
	s.embedder = ai.NewOpenAIEmbedder(s.cfg.AI.Embedder)
	return suggest.NewEmbeddingScorer(s.embedder, s.store.VectorStore())
}

func setupStore(core *Core) {
	switch core.cfg.Store.Driver {
	case STORE_DRIVER_MEMORY:
		core.store = memstore.New()
	case STORE_DRIVER_POSTGRES, "":
		stores := sqlstore.MustSetup(core.cfg.Store.Postgres)
		// 执行数据库表初始化
		if err := stores().Install(); err != nil {
			panic(err)
		}
		core.store = stores()
	default:
		panic("unknown store driver: " + core.cfg.Store.Driver)
	}
}

func setupCache(core *Core) {
	if core.cfg.Redis.Addr == "" {
		core.cache = emptyCache{}
		return
	}
	core.cache = newRedisCache(core.cfg.Redis)
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() store.Store {
	return s.store
}

func (s *Core) Analyzer() *analyzer.Analyzer {
	return s.analyzer
}

func (s *Core) Knowledge() *knowledge.Base {
	return s.knowledge
}

func (s *Core) Suggest() *suggest.Engine {
	return s.suggest
}

// SuggestLexical always scores by lexical overlap, no external calls.
func (s *Core) SuggestLexical() *suggest.Engine {
	return s.suggestLexical
}

// Embedder is nil unless ai is enabled.
func (s *Core) Embedder() ai.Embedder {
	return s.embedder
}

func (s *Core) Jobs() *jobs.Registry {
	return s.jobs
}

func (s *Core) Cache() types.Cache {
	return s.cache
}
