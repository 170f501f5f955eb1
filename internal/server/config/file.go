package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/videotube/internal/flagx"
	"github.com/dmitrijs2005/videotube/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from zero values so a partial file only overrides what it sets.
// Durations accept "15m" style strings or integer nanoseconds.
type FileConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	StorageBackend               *string         `json:"storage_backend" yaml:"storage_backend"`
	DatabaseDSN                  *string         `json:"database_dsn" yaml:"database_dsn"`
	RedisAddr                    *string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword                *string         `json:"redis_password" yaml:"redis_password"`
	RedisDB                      *int            `json:"redis_db" yaml:"redis_db"`
	StorageTimeout               *timex.Duration `json:"storage_timeout" yaml:"storage_timeout"`
	AccessTokenSecret            *string         `json:"access_token_secret" yaml:"access_token_secret"`
	RefreshTokenSecret           *string         `json:"refresh_token_secret" yaml:"refresh_token_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	CookieSecure                 *bool           `json:"cookie_secure" yaml:"cookie_secure"`
	CookieSameSite               *string         `json:"cookie_same_site" yaml:"cookie_same_site"`
	CookieDomain                 *string         `json:"cookie_domain" yaml:"cookie_domain"`
	ClientURL                    *string         `json:"client_url" yaml:"client_url"`
	LogBackend                   *string         `json:"log_backend" yaml:"log_backend"`
	LogFormat                    *string         `json:"log_format" yaml:"log_format"`
	LogLevel                     *string         `json:"log_level" yaml:"log_level"`
	MetricsEnabled               *bool           `json:"metrics_enabled" yaml:"metrics_enabled"`
	BcryptCost                   *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// parseFile overlays values from the file named by -c/-config (or the
// CONFIG environment variable). The format follows the extension: .yaml and
// .yml are YAML, anything else is JSON. Unreadable or invalid files panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func decodeFile(path string, data []byte) (*FileConfig, error) {
	fc := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, fc); err != nil {
			return nil, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, fc); err != nil {
			return nil, fmt.Errorf("parse json config %s: %w", path, err)
		}
	}

	return fc, nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.StorageBackend, fc.StorageBackend)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.RedisAddr, fc.RedisAddr)
	setString(&c.RedisPassword, fc.RedisPassword)
	if fc.RedisDB != nil {
		c.RedisDB = *fc.RedisDB
	}
	if fc.StorageTimeout != nil {
		c.StorageTimeout = fc.StorageTimeout.Duration
	}
	setString(&c.AccessTokenSecret, fc.AccessTokenSecret)
	setString(&c.RefreshTokenSecret, fc.RefreshTokenSecret)
	if fc.AccessTokenValidityDuration != nil {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.RefreshTokenValidityDuration != nil {
		c.RefreshTokenValidityDuration = fc.RefreshTokenValidityDuration.Duration
	}
	if fc.CookieSecure != nil {
		c.CookieSecure = *fc.CookieSecure
	}
	setString(&c.CookieSameSite, fc.CookieSameSite)
	setString(&c.CookieDomain, fc.CookieDomain)
	setString(&c.ClientURL, fc.ClientURL)
	setString(&c.LogBackend, fc.LogBackend)
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.MetricsEnabled != nil {
		c.MetricsEnabled = *fc.MetricsEnabled
	}
	if fc.BcryptCost != nil {
		c.BcryptCost = *fc.BcryptCost
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
