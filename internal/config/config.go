// Package config resolves the process configuration once at startup.
// Precedence: flags, then REALWORLD_* environment variables, then a .env
// file, then defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ServiceName = "realworld"
	EnvPrefix   = "REALWORLD_"

	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

type Config struct {
	Addr       string
	DiagAddr   string
	Routes     bool
	Debug      bool
	Store      string
	SQLitePath string
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	JWTSecret  string
	TokenTTL   time.Duration
	RateLimit  float64
	RateBurst  int
}

// DevSecret signs tokens in debug mode, or when only printing routes, if no
// secret is configured.
const DevSecret = "realworld-dev-secret"

// Load reads envFile (if it exists) into the environment and parses args.
func Load(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	fs := flag.NewFlagSet(ServiceName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		c        Config
		tokenTTL string
	)

	fs.StringVar(&c.Addr, "addr", getEnv("ADDR", ":3333"), "application port")
	fs.StringVar(&c.DiagAddr, "diag_addr", getEnv("DIAG_ADDR", ":9999"), "diag port")
	fs.BoolVar(&c.Routes, "routes", getEnvBool("ROUTES", false), "Generate router documentation")
	fs.BoolVar(&c.Debug, "debug", getEnvBool("DEBUG", false), "development logging and verbose SQL")
	fs.StringVar(&c.Store, "store", getEnv("STORE", StoreSQLite), "storage backend: sqlite or mongo")
	fs.StringVar(&c.SQLitePath, "sqlite_path", getEnv("SQLITE_PATH", "data/realworld.db"), "SQLite database file")
	fs.StringVar(&c.MongoURI, "mongo_uri", getEnv("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	fs.StringVar(&c.MongoDB, "mongo_db", getEnv("MONGO_DB", ServiceName), "MongoDB database name")
	fs.StringVar(&c.RedisAddr, "redis_addr", getEnv("REDIS_ADDR", ""), "Redis address for the tag cache, empty disables it")
	fs.StringVar(&c.JWTSecret, "jwt_secret", getEnv("JWT_SECRET", ""), "token signing secret")
	fs.StringVar(&tokenTTL, "token_ttl", getEnv("TOKEN_TTL", "1h"), "token lifetime")
	fs.Float64Var(&c.RateLimit, "rate_limit", getEnvFloat("RATE_LIMIT", 0), "requests per second per client, 0 disables")
	fs.IntVar(&c.RateBurst, "rate_burst", getEnvInt("RATE_BURST", 20), "rate limiter burst")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token_ttl: %w", err)
	}
	c.TokenTTL = ttl

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreSQLite, StoreMongo:
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store)
	}

	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}

	if c.JWTSecret == "" {
		if !c.Debug && !c.Routes {
			return errors.New("jwt_secret is required outside debug mode")
		}
		c.JWTSecret = DevSecret
	}

	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return def
	}

	return v
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return def
	}

	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(getEnv(key, "")), 64)
	if err != nil {
		return def
	}

	return v
}
