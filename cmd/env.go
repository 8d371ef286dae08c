package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/balei-miktzoa/draftgen/internal/composer"
	"github.com/balei-miktzoa/draftgen/internal/tone"
	"github.com/balei-miktzoa/draftgen/internal/variant"
	"github.com/balei-miktzoa/draftgen/pkg/llm"
)

// env bundles the wired components shared by the commands.
type env struct {
	Registry  *variant.Registry
	Composer  *composer.Composer
	Describer *tone.Describer
	Cursors   *variant.CursorBridge

	sqlite *variant.SQLiteStore
}

func initEnv() (*env, error) {
	catalog := variant.NewCatalog()
	if path := cfg.Draft.CatalogPath; path != "" {
		loaded, err := variant.LoadCatalogFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "load variant catalog")
		}
		catalog = loaded
		zap.L().Info("loaded variant catalog override", zap.String("path", path))
	}

	e := &env{}

	var store variant.Store
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := variant.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, eris.Wrap(err, "open variant store")
		}
		e.sqlite = s
		store = s
	case "", "memory":
		store = variant.NewMemoryStore()
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	e.Registry = variant.NewRegistry(catalog, store)
	e.Composer = composer.New(e.Registry, cfg.Draft.DisableCTA)
	e.Cursors = variant.NewCursorBridge(cfg.Draft.VariantCountFallback)
	e.Describer = tone.NewDescriber(
		buildLLMClient(),
		tone.WithCacheTTL(time.Duration(cfg.Cache.TTLMinutes)*time.Minute),
		tone.WithCacheMax(cfg.Cache.MaxEntries),
		tone.WithLLMTimeout(time.Duration(cfg.LLM.TimeoutSecs)*time.Second),
	)

	return e, nil
}

// buildLLMClient returns nil when the model path is off; the describer then
// serves deterministic fallback copy.
func buildLLMClient() llm.Client {
	switch cfg.LLM.Provider {
	case "ollama":
		opts := []llm.OllamaOption{
			llm.WithBaseURL(cfg.LLM.OllamaURL),
			llm.WithModel(cfg.LLM.OllamaModel),
		}
		if cfg.LLM.OllamaRPS > 0 {
			opts = append(opts, llm.WithRateLimit(cfg.LLM.OllamaRPS))
		}
		return llm.NewOllama(opts...)
	case "anthropic":
		if cfg.LLM.AnthropicKey == "" {
			zap.L().Warn("anthropic provider selected without api key, model path disabled")
			return nil
		}
		return llm.NewAnthropic(cfg.LLM.AnthropicKey,
			llm.WithAnthropicModel(cfg.LLM.AnthropicModel))
	}
	return nil
}

func (e *env) Close() {
	if e.sqlite != nil {
		if err := e.sqlite.Close(); err != nil {
			zap.L().Warn("close variant store", zap.Error(err))
		}
	}
}
