package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string

	CatalogAPIBase        string
	CatalogHTTPTimeoutSec int

	SessionBackend    string
	SessionFilePath   string
	SessionDBPath     string
	SessionDBDriver   string
	SessionDBDSN      string
	SessionRedisURL   string
	SessionEncryptKey string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	CORSAllowedOrigins []string

	HTTPReadTimeoutSec       int
	HTTPReadHeaderTimeoutSec int
	HTTPWriteTimeoutSec      int
	HTTPIdleTimeoutSec       int
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:               env("LISTEN_ADDR", ":8080"),
		CatalogAPIBase:           env("CATALOG_API_BASE", ""),
		CatalogHTTPTimeoutSec:    envInt("CATALOG_HTTP_TIMEOUT_SEC", 30),
		SessionBackend:           strings.ToLower(env("SESSION_BACKEND", "file")),
		SessionFilePath:          env("SESSION_FILE_PATH", "./data/session.json"),
		SessionDBPath:            env("SESSION_DB_PATH", "./data/session.db"),
		SessionDBDriver:          env("SESSION_DB_DRIVER", ""),
		SessionDBDSN:             env("SESSION_DB_DSN", ""),
		SessionRedisURL:          env("SESSION_REDIS_URL", ""),
		SessionEncryptKey:        env("SESSION_ENCRYPT_KEY", ""),
		DBMaxOpenConns:           envInt("SESSION_DB_MAX_OPEN_CONNS", 2),
		DBMaxIdleConns:           envInt("SESSION_DB_MAX_IDLE_CONNS", 1),
		DBConnMaxLifetime:        time.Duration(envInt("SESSION_DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		CORSAllowedOrigins:       envCSV("CORS_ALLOWED_ORIGINS"),
		HTTPReadTimeoutSec:       envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPReadHeaderTimeoutSec: envInt("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		HTTPWriteTimeoutSec:      envInt("HTTP_WRITE_TIMEOUT_SEC", 30),
		HTTPIdleTimeoutSec:       envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
	}

	if strings.TrimSpace(cfg.CatalogAPIBase) == "" {
		return Config{}, fmt.Errorf("CATALOG_API_BASE is required")
	}
	u, err := url.Parse(cfg.CatalogAPIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("CATALOG_API_BASE must be an absolute URL")
	}
	if cfg.CatalogHTTPTimeoutSec <= 0 {
		return Config{}, fmt.Errorf("catalog HTTP timeout must be positive")
	}
	switch cfg.SessionBackend {
	case "file":
		if strings.TrimSpace(cfg.SessionFilePath) == "" {
			return Config{}, fmt.Errorf("SESSION_FILE_PATH is required for the file backend")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.SessionDBPath) == "" {
			return Config{}, fmt.Errorf("SESSION_DB_PATH is required for the sqlite backend")
		}
	case "sql":
		if strings.TrimSpace(cfg.SessionDBDriver) == "" || strings.TrimSpace(cfg.SessionDBDSN) == "" {
			return Config{}, fmt.Errorf("SESSION_DB_DRIVER and SESSION_DB_DSN are required for the sql backend")
		}
		if strings.EqualFold(cfg.SessionDBDriver, "sqlite") {
			return Config{}, fmt.Errorf("use SESSION_BACKEND=sqlite for the bundled sqlite driver")
		}
	case "redis":
		if strings.TrimSpace(cfg.SessionRedisURL) == "" {
			return Config{}, fmt.Errorf("SESSION_REDIS_URL is required for the redis backend")
		}
	default:
		return Config{}, fmt.Errorf("SESSION_BACKEND must be one of: file, sqlite, sql, redis")
	}
	if k := strings.TrimSpace(cfg.SessionEncryptKey); k != "" && len(k) < 24 {
		return Config{}, fmt.Errorf("SESSION_ENCRYPT_KEY must be at least 24 characters when set")
	}
	if cfg.DBMaxOpenConns <= 0 || cfg.DBMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("invalid session DB pool config")
	}
	return cfg, nil
}

func (c Config) CatalogHTTPTimeout() time.Duration {
	return time.Duration(c.CatalogHTTPTimeoutSec) * time.Second
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func envCSV(k string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
