// Command gotara-server serves the English/Taralians translator over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ZaguanLabs/gotara"
	"github.com/ZaguanLabs/gotara/cache"
	"github.com/ZaguanLabs/gotara/internal/httpapi"
	"github.com/ZaguanLabs/gotara/internal/logger"
	"github.com/ZaguanLabs/gotara/processor"
	"github.com/ZaguanLabs/gotara/rules"
)

// CLI is the server configuration. Every flag can also be set from the
// environment.
type CLI struct {
	Addr        string        `name:"addr" default:":8080" env:"GOTARA_ADDR" help:"Listen address"`
	LogLevel    string        `name:"log-level" default:"info" env:"GOTARA_LOG_LEVEL" help:"Log level: debug, info, warn, error, off"`
	LogFormat   string        `name:"log-format" default:"json" enum:"json,console" env:"GOTARA_LOG_FORMAT" help:"Log format"`
	Rules       string        `name:"rules" type:"path" env:"GOTARA_RULES" help:"Rule file to use instead of the built-in rules"`
	FoldWidth   bool          `name:"fold-width" env:"GOTARA_FOLD_WIDTH" help:"Accept full-width katakana in Taralians input"`
	CacheTTL    int           `name:"cache-ttl" default:"3600" env:"GOTARA_CACHE_TTL" help:"Cache TTL in seconds (0 = no expiry)"`
	Redis       string        `name:"redis" env:"GOTARA_REDIS_URL" help:"Redis URL for a shared translation cache"`
	SQLite      string        `name:"sqlite" type:"path" env:"GOTARA_SQLITE" help:"SQLite file for a persistent translation cache"`
	RPM         int           `name:"rpm" default:"120" env:"GOTARA_RATE_LIMIT_RPM" help:"Requests per minute per client"`
	Burst       int           `name:"burst" default:"20" env:"GOTARA_RATE_LIMIT_BURST" help:"Burst size per client"`
	CORSOrigins []string      `name:"cors-origin" env:"GOTARA_CORS_ORIGINS" help:"Allowed CORS origins (default: any)"`
	Workers     int           `name:"workers" env:"GOTARA_WORKERS" help:"Goroutines per batch request (default: GOMAXPROCS)"`
	SlowRequest time.Duration `name:"slow-request" default:"500ms" env:"GOTARA_SLOW_REQUEST" help:"Log requests at least this slow as warnings"`
	PurgeEvery  time.Duration `name:"purge-every" default:"10m" env:"GOTARA_PURGE_EVERY" help:"How often expired cache entries are dropped"`

	Version kong.VersionFlag `name:"version" help:"Print version and exit"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gotara-server"),
		kong.Description(gotara.Description+" (HTTP API)"),
		kong.UsageOnError(),
		kong.Vars{"version": gotara.Name + " " + gotara.FullVersion()},
	)
	ctx.FatalIfErrorf(cli.Run())
}

// Run builds the translator and serves until SIGINT or SIGTERM.
func (c *CLI) Run() error {
	log := logger.New(logger.Options{
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		Service: "gotara-server",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translator, tc, closeCache, err := c.translator(ctx, log)
	if err != nil {
		return err
	}
	defer closeCache()

	cfg := httpapi.Config{
		Addr:       c.Addr,
		Translator: translator,
		Logger:     log,
		RateLimit: httpapi.RateLimitConfig{
			RequestsPerMinute: c.RPM,
			BurstSize:         c.Burst,
		},
		CORSOrigins:   c.CORSOrigins,
		Workers:       c.Workers,
		SlowRequest:   c.SlowRequest,
		PurgeInterval: c.PurgeEvery,
	}
	if p, ok := tc.(cache.Purger); ok {
		cfg.Purger = p
	}
	srv := httpapi.New(cfg)

	log.Info().
		Str("version", gotara.FullVersion()).
		Int("rules", translator.Table().Len()).
		Msg("starting")
	return srv.Run(ctx)
}

// translator assembles the Translator and its cache from the configuration.
// On success the returned function releases the cache.
func (c *CLI) translator(ctx context.Context, log logger.Logger) (*gotara.Translator, gotara.TranslationCache, func(), error) {
	opts := []gotara.TranslatorOption{
		gotara.WithProcessor(processor.NewHTMLProcessor()),
		gotara.WithProcessor(processor.NewTextProcessor()),
		gotara.WithWidthFolding(c.FoldWidth),
		gotara.WithLogger(logger.Named(log, "translator")),
	}

	if c.Rules != "" {
		data, err := os.ReadFile(c.Rules) // #nosec G304 - operator-supplied path
		if err != nil {
			return nil, nil, nil, fmt.Errorf("reading rules: %w", err)
		}
		table, err := rules.ParseTable(filepath.Base(c.Rules), data)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading rules: %w", err)
		}
		opts = append(opts, gotara.WithRuleTable(table))
	}

	var (
		tc         gotara.TranslationCache
		closeCache = func() {}
	)
	switch {
	case c.Redis != "":
		retry := gotara.DefaultRetryConfig()
		retry.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("redis not ready, retrying")
		}
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: c.Redis, TTL: c.CacheTTL, Retry: &retry})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		tc, closeCache = rc, func() { _ = rc.Close() }
		log.Info().Msg("using redis cache")
	case c.SQLite != "":
		sc, err := cache.NewSQLiteCache(c.SQLite, c.CacheTTL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		tc, closeCache = sc, func() { _ = sc.Close() }
		log.Info().Str("path", c.SQLite).Msg("using sqlite cache")
	default:
		tc = cache.NewInMemoryCache(c.CacheTTL, cache.WithMaxEntries(100000))
	}

	if p, ok := tc.(cache.Purger); ok {
		n, err := p.Purge()
		if err != nil {
			closeCache()
			return nil, nil, nil, fmt.Errorf("purging cache: %w", err)
		}
		if n > 0 {
			log.Info().Int64("purged", n).Msg("expired cache entries removed")
		}
	}
	opts = append(opts, gotara.WithCache(tc))

	return gotara.NewTranslator(opts...), tc, closeCache, nil
}
