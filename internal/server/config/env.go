package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DotEnvFile is loaded (if present) before the environment is read.
// Variables already set in the process environment take precedence.
var DotEnvFile = ".env"

// parseEnv overlays values from environment variables. Unparseable numeric,
// boolean or duration values panic.
func parseEnv(config *Config) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("load %s: %w", DotEnvFile, err))
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDRESS")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDRESS")
	envString(&config.StorageBackend, "STORAGE_BACKEND")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.RedisAddr, "REDIS_ADDR")
	envString(&config.RedisPassword, "REDIS_PASSWORD")
	envInt(&config.RedisDB, "REDIS_DB")
	envDuration(&config.StorageTimeout, "STORAGE_TIMEOUT")
	envString(&config.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	envString(&config.RefreshTokenSecret, "REFRESH_TOKEN_SECRET")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_EXPIRY")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_EXPIRY")
	envBool(&config.CookieSecure, "COOKIE_SECURE")
	envString(&config.CookieSameSite, "COOKIE_SAME_SITE")
	envString(&config.CookieDomain, "COOKIE_DOMAIN")
	envString(&config.ClientURL, "CLIENT_URL")
	envString(&config.LogBackend, "LOG_BACKEND")
	envString(&config.LogFormat, "LOG_FORMAT")
	envString(&config.LogLevel, "LOG_LEVEL")
	envBool(&config.MetricsEnabled, "METRICS_ENABLED")
	envInt(&config.BcryptCost, "BCRYPT_COST")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = b
}

// envDuration accepts Go duration strings ("15m", "240h"). A bare integer
// is read as seconds.
func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}
