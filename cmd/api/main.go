package main

import (
    "context"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    redis "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "shippingbytotal/internal/cache"
    "shippingbytotal/internal/config"
    "shippingbytotal/internal/db"
    "shippingbytotal/internal/logger"
    "shippingbytotal/internal/metrics"
    "shippingbytotal/internal/migration"
    "shippingbytotal/internal/rate"
    "shippingbytotal/internal/server"
    "shippingbytotal/internal/store"
)

type backend interface {
    rate.RuleStore
    rate.MethodCatalog
    rate.SettingsStore
}

func main() {
    cfg := config.Load()

    zl, err := logger.New(cfg.LogLevel)
    if err != nil {
        log.Fatalf("logger: %v", err)
    }
    defer zl.Sync()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    var be backend
    switch cfg.Storage {
    case config.StorageMemory:
        zl.Warn("using in-memory storage; rules are lost on restart")
        be = store.NewMemory()
    default:
        connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
        pool, err := db.NewPool(connectCtx, cfg.DatabaseURL)
        cancel()
        if err != nil {
            zl.Fatal("failed to connect db", zap.Error(err))
        }
        defer pool.Close()
        if err := migration.Up(pool); err != nil {
            zl.Fatal("failed to apply migrations", zap.Error(err))
        }
        be = store.NewPostgres(pool)
    }

    var rdb *redis.Client
    if cfg.RedisAddr != "" {
        rdb = redis.NewClient(&redis.Options{
            Addr:     cfg.RedisAddr,
            Password: cfg.RedisPassword,
            DB:       cfg.RedisDB,
        })
        defer rdb.Close()
        if err := rdb.Ping(ctx).Err(); err != nil {
            zl.Warn("redis unavailable; rule snapshots read from storage", zap.Error(err))
        }
    }
    rules := cache.NewRuleStore(be, rdb, cfg.RuleCacheTTL, zl)

    var opts []rate.MatcherOption
    if cfg.ZipMatching {
        opts = append(opts, rate.WithZipMatching())
    }
    matcher := rate.NewMatcherByName(cfg.MatchPolicy, opts...)

    svc := rate.NewService(rate.ServiceParam{
        Rules:          rules,
        Methods:        be,
        Settings:       be,
        Matcher:        matcher,
        DefaultStoreID: cfg.DefaultStoreID,
        Recorder:       metrics.New(prometheus.DefaultRegisterer),
        Log:            zl,
    })

    srv := &http.Server{
        Addr: ":" + cfg.Port,
        Handler: server.New(server.Deps{
            Service:  svc,
            Rules:    rules,
            Methods:  be,
            Settings: be,
            Gatherer: prometheus.DefaultGatherer,
            Log:      zl,
        }),
        ReadTimeout:       10 * time.Second,
        ReadHeaderTimeout: 10 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = srv.Shutdown(shutdownCtx)
    }()

    zl.Info("api listening",
        zap.String("port", cfg.Port),
        zap.String("storage", cfg.Storage),
        zap.String("match_policy", matcher.Policy()),
        zap.Bool("zip_matching", cfg.ZipMatching),
    )
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        zl.Error("server error", zap.Error(err))
        os.Exit(1)
    }
}
