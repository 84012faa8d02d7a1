// Package database opens the Postgres pool shared by the hotel catalog and
// the booking request store.
package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// ApplicationName shows up in pg_stat_activity, e.g. roomy-api or roomy-worker.
	ApplicationName string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// ConfigFromEnv reads DB_* variables. Unset or unparsable values fall back to
// local development defaults.
func ConfigFromEnv(applicationName string) Config {
	return Config{
		Host:            envString("DB_HOST", "localhost"),
		Port:            envInt("DB_PORT", 5432),
		User:            envString("DB_USER", "roomy"),
		Password:        envString("DB_PASSWORD", "localdev"),
		Database:        envString("DB_NAME", "roomy"),
		SSLMode:         envString("DB_SSL_MODE", "disable"),
		ApplicationName: applicationName,
		MaxConns:        envInt("DB_MAX_CONNS", 10),
		MinConns:        envInt("DB_MIN_CONNS", 2),
		ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		PingTimeout:     envDuration("DB_PING_TIMEOUT", 5*time.Second),
	}
}

// ConnectionString returns the postgres:// URL for the pool.
func (c Config) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Connect creates the pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns) //nolint:gosec // small operator-supplied value
	}
	if cfg.MinConns > 0 && cfg.MinConns <= cfg.MaxConns {
		poolConfig.MinConns = int32(cfg.MinConns) //nolint:gosec // bounded by MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := Ping(pool, cfg.PingTimeout)(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Ping returns a readiness probe for the pool. A zero timeout leaves the
// caller's deadline in charge.
func Ping(pool *pgxpool.Pool, timeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		return nil
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
