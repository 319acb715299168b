package config // package config loads application configuration from environment variables

import (
    "fmt"
    "log"
    "os"
    "strings"
)

// Store drivers accepted by STORE_DRIVER.
const (
    StoreMySQL  = "mysql"
    StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Redis, rate limit and cache settings are loaded
// separately by LoadRateLimitConfig, LoadCacheConfig and NewRedisClient.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    StoreDriver      string // "mysql" or "memory"
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    ConflictStrategy string // "query" or "scan"
    LogLevel         string // debug, info, warn, error
    LogFormat        string // json or text
    LogDir           string // directory of the reservation audit log
    EventsEnabled    bool   // publish lifecycle events to RabbitMQ
    RabbitURL        string // AMQP url, required when EventsEnabled
}

// Load reads configuration values from the process environment.  A missing
// required variable is fatal.
func Load() Config {
    cfg, err := FromLookup(os.LookupEnv)
    if err != nil {
        log.Fatal(err)
    }
    return cfg
}

// FromLookup builds a Config from lookup, which has the signature of
// os.LookupEnv.  The DB_* variables are only required for the mysql store.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
    var missing []string
    must := func(key string) string {
        v, ok := lookup(key)
        if !ok || v == "" {
            missing = append(missing, key)
        }
        return v
    }
    opt := func(key, def string) string {
        if v, ok := lookup(key); ok && v != "" {
            return v
        }
        return def
    }

    cfg := Config{
        Env:              must("APP_ENV"),
        Port:             must("APP_PORT"),
        StoreDriver:      strings.ToLower(opt("STORE_DRIVER", StoreMySQL)),
        ConflictStrategy: strings.ToLower(opt("CONFLICT_STRATEGY", "query")),
        LogLevel:         opt("LOG_LEVEL", "info"),
        LogFormat:        opt("LOG_FORMAT", "json"),
        LogDir:           opt("LOG_DIR", "logs"),
        EventsEnabled:    parseBool(opt("EVENTS_ENABLED", "false"), false),
    }

    switch cfg.StoreDriver {
    case StoreMySQL:
        cfg.DBUser = must("DB_USER")
        cfg.DBPass, _ = lookup("DB_PASS") // empty allowed
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = must("DB_PORT")
        cfg.DBName = must("DB_NAME")
    case StoreMemory:
    default:
        return Config{}, fmt.Errorf("invalid STORE_DRIVER %q (want mysql or memory)", cfg.StoreDriver)
    }

    switch cfg.ConflictStrategy {
    case "query", "scan":
    default:
        return Config{}, fmt.Errorf("invalid CONFLICT_STRATEGY %q (want query or scan)", cfg.ConflictStrategy)
    }

    if cfg.EventsEnabled {
        cfg.RabbitURL = must("RABBITMQ_URL")
    }

    if len(missing) > 0 {
        return Config{}, fmt.Errorf("missing required env var: %s", strings.Join(missing, ", "))
    }
    return cfg, nil
}

func parseBool(v string, def bool) bool {
    switch strings.ToLower(strings.TrimSpace(v)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return def
}
