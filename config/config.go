/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/docstore/errors"
)

// Connection drivers.
const (
	DriverDynamoDB = "dynamodb"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// DefaultConnection is the connection name repositories use when none is given.
const DefaultConnection = "default"

const (
	defaultIndex        = "default"
	defaultRegion       = "us-east-1"
	defaultSQLiteDSN    = "docstore.db"
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
)

// Config is the top-level configuration file.
type Config struct {
	Log         LogConfig                   `yaml:"log"`
	Connections map[string]ConnectionConfig `yaml:"connections"`
}

// LogConfig selects the logger level and output format (text or json).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConnectionConfig describes one named connection. Which fields apply
// depends on Driver.
type ConnectionConfig struct {
	Driver string `yaml:"driver"`
	// Index is the default index: the table for dynamodb, a namespace for SQL.
	Index string `yaml:"index"`

	// SQL drivers.
	DSN         string `yaml:"dsn"`
	QueryLog    bool   `yaml:"query_log"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	// DynamoDB.
	Region         string        `yaml:"region"`
	AccessKey      string        `yaml:"access_key"`
	SecretKey      string        `yaml:"secret_key"`
	Endpoint       string        `yaml:"endpoint"`
	ConsistentRead bool          `yaml:"consistent_read"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
}

// Load reads a YAML configuration file. Environment files are loaded first
// (".env" when none are named and it exists) so ${VAR} references in the
// file can use them. Variables already set in the process win.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnv(envFiles); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration after expanding ${VAR} references.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration with a single default connection from
// environment variables. DynamoDB is selected when AWS_DDB_TABLE is set and
// DOCSTORE_DRIVER is not.
func FromEnv() (*Config, error) {
	conn := ConnectionConfig{
		Driver:    os.Getenv("DOCSTORE_DRIVER"),
		Index:     os.Getenv("DOCSTORE_INDEX"),
		DSN:       os.Getenv("DOCSTORE_DSN"),
		Endpoint:  os.Getenv("DOCSTORE_ENDPOINT"),
		Region:    os.Getenv("AWS_REGION"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("AWS_SECRET_KEY"),
	}
	table := os.Getenv("AWS_DDB_TABLE")
	if conn.Driver == "" {
		conn.Driver = DriverMemory
		if table != "" {
			conn.Driver = DriverDynamoDB
		}
	}
	if conn.Driver == DriverDynamoDB && conn.Index == "" {
		conn.Index = table
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  os.Getenv("DOCSTORE_LOG_LEVEL"),
			Format: os.Getenv("DOCSTORE_LOG_FORMAT"),
		},
		Connections: map[string]ConnectionConfig{DefaultConnection: conn},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Names returns the configured connection names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate fills defaults and rejects connections that cannot be opened.
func (c *Config) validate() error {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.NewConfigurationError("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}

	for name, conn := range c.Connections {
		if err := conn.validate(name); err != nil {
			return err
		}
		c.Connections[name] = conn
	}
	return nil
}

func (cc *ConnectionConfig) validate(name string) error {
	setting := func(field string) string {
		return fmt.Sprintf("connections.%s.%s", name, field)
	}

	switch cc.Driver {
	case DriverDynamoDB:
		if cc.Index == "" {
			return errors.NewConfigurationError(setting("index"), "dynamodb connections need a table")
		}
		if cc.Region == "" {
			cc.Region = defaultRegion
		}
		if cc.MaxRetries <= 0 {
			cc.MaxRetries = defaultMaxRetries
		}
		if cc.RetryBackoff <= 0 {
			cc.RetryBackoff = defaultRetryBackoff
		}
	case DriverSQLite:
		if cc.DSN == "" {
			cc.DSN = defaultSQLiteDSN
		}
	case DriverPostgres, DriverMySQL:
		if cc.DSN == "" {
			return errors.NewConfigurationError(setting("dsn"), fmt.Sprintf("%s connections need a dsn", cc.Driver))
		}
	case DriverMemory:
	case "":
		return errors.NewConfigurationError(setting("driver"), "driver is required")
	default:
		return errors.NewConfigurationError(setting("driver"), fmt.Sprintf("unknown driver %q", cc.Driver))
	}

	if cc.Index == "" {
		cc.Index = defaultIndex
	}
	return nil
}

func loadEnv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}
