// Package config loads dbee's YAML configuration file.
//
// Every field is optional. Load starts from Default and overlays whatever
// the file sets, so a missing or empty file yields a working local setup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/koustreak/dbee/internal/database"
	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
	"github.com/koustreak/dbee/internal/logger"
	"go.yaml.in/yaml/v3"
)

// Config is the root of the configuration file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Assistant AssistantConfig `yaml:"assistant"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DatabaseConfig sizes the pool behind the session connection.
type DatabaseConfig struct {
	MaxConns        int32         `yaml:"maxConns"`
	MinConns        int32         `yaml:"minConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime"`
	ConnectTimeout  time.Duration `yaml:"connectTimeout"`
}

type StorageConfig struct {
	Provider string      `yaml:"provider"` // local, minio
	Dir      string      `yaml:"dir"`
	MinIO    MinIOConfig `yaml:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSSL"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
}

// AssistantConfig tunes the chat relay. Empty endpoints keep the
// providers' public URLs.
type AssistantConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	OpenAIEndpoint   string        `yaml:"openaiEndpoint"`
	DeepSeekEndpoint string        `yaml:"deepseekEndpoint"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	pool := database.DefaultPoolConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:7433",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			MaxConns:        pool.MaxConns,
			MinConns:        pool.MinConns,
			MaxConnLifetime: pool.MaxConnLifetime,
			MaxConnIdleTime: pool.MaxConnIdleTime,
			ConnectTimeout:  pool.ConnectTimeout,
		},
		Storage: StorageConfig{
			Provider: string(filestore.ProviderLocal),
			Dir:      filestore.DefaultDir(),
			MinIO:    MinIOConfig{Bucket: "dbee"},
		},
		Assistant: AssistantConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "config file "+path+" not found", err)
		}
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to read config file "+path, err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg and validates the result. Unknown keys are
// rejected so typos do not pass silently.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrKindSerialization, "failed to parse config", err)
	}
	return cfg.Validate()
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return invalid("server.addr cannot be empty")
	case c.Server.ReadTimeout < 0, c.Server.WriteTimeout < 0, c.Server.ShutdownTimeout < 0:
		return invalid("server timeouts cannot be negative")
	case !logger.ValidLevel(c.Log.Level):
		return invalid(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	case c.Log.Format != "json" && c.Log.Format != "console":
		return invalid(fmt.Sprintf("log.format %q is not one of json, console", c.Log.Format))
	case c.Database.MaxConns < 1:
		return invalid("database.maxConns must be at least 1")
	case c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns:
		return invalid("database.minConns must be between 0 and maxConns")
	case c.Database.ConnectTimeout <= 0:
		return invalid("database.connectTimeout must be positive")
	case c.Assistant.Timeout <= 0:
		return invalid("assistant.timeout must be positive")
	}

	switch filestore.Provider(c.Storage.Provider) {
	case filestore.ProviderLocal:
		if c.Storage.Dir == "" {
			return invalid("storage.dir cannot be empty")
		}
	case filestore.ProviderMinIO:
		if c.Storage.MinIO.Endpoint == "" {
			return invalid("storage.minio.endpoint cannot be empty")
		}
		if c.Storage.MinIO.Bucket == "" {
			return invalid("storage.minio.bucket cannot be empty")
		}
	default:
		return invalid(fmt.Sprintf("storage.provider %q is not one of local, minio", c.Storage.Provider))
	}
	return nil
}

// Pool converts the database section into driver pool settings.
func (c *Config) Pool() database.PoolConfig {
	return database.PoolConfig{
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
		ConnectTimeout:  c.Database.ConnectTimeout,
	}
}

// FileStore converts the storage section into backend settings.
func (c *Config) FileStore() *filestore.Config {
	return &filestore.Config{
		Provider:  filestore.Provider(c.Storage.Provider),
		Dir:       c.Storage.Dir,
		Endpoint:  c.Storage.MinIO.Endpoint,
		AccessKey: c.Storage.MinIO.AccessKey,
		SecretKey: c.Storage.MinIO.SecretKey,
		UseSSL:    c.Storage.MinIO.UseSSL,
		Region:    c.Storage.MinIO.Region,
		Bucket:    c.Storage.MinIO.Bucket,
	}
}

// Logger converts the log section into logger settings.
func (c *Config) Logger() *logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	return lc
}

func invalid(msg string) error {
	return errs.New(errs.ErrKindInvalidInput, msg)
}
