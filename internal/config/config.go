package config

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

const (
    StoragePostgres = "postgres"
    StorageMemory   = "memory"
)

type Config struct {
    DatabaseURL    string
    Port           string
    Storage        string
    LogLevel       string
    RedisAddr      string
    RedisPassword  string
    RedisDB        int
    RuleCacheTTL   time.Duration
    MatchPolicy    string
    ZipMatching    bool
    DefaultStoreID int64
}

// Load reads configuration from the environment, after applying a .env file if present.
func Load() Config {
    _ = godotenv.Load()

    return Config{
        DatabaseURL:    os.Getenv("DATABASE_URL"),
        Port:           getenv("PORT", "8080"),
        Storage:        strings.ToLower(getenv("STORAGE", StoragePostgres)),
        LogLevel:       getenv("LOG_LEVEL", "info"),
        RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
        RedisPassword:  os.Getenv("REDIS_PASSWORD"),
        RedisDB:        int(getenvInt64("REDIS_DB", 0)),
        RuleCacheTTL:   getenvDuration("RULE_CACHE_TTL", time.Minute),
        MatchPolicy:    os.Getenv("RATE_MATCH_POLICY"),
        ZipMatching:    getenvBool("RATE_ZIP_MATCHING", false),
        DefaultStoreID: getenvInt64("DEFAULT_STORE_ID", 0),
    }
}

func getenv(key, def string) string {
    if v := strings.TrimSpace(os.Getenv(key)); v != "" {
        return v
    }
    return def
}

func getenvBool(key string, def bool) bool {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
    case "1", "true", "yes", "y", "on":
        return true
    case "0", "false", "no", "n", "off":
        return false
    default:
        return def
    }
}

func getenvInt64(key string, def int64) int64 {
    v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
    if err != nil {
        return def
    }
    return v
}

func getenvDuration(key string, def time.Duration) time.Duration {
    v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
    if err != nil || v <= 0 {
        return def
    }
    return v
}
