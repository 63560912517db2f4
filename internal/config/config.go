package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/opencivic/assessing-api/internal/fiscal"
)

// Config holds all application configuration sourced from the environment.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	EGIS        EGISConfig
	ObjectStore ObjectStoreConfig
	CORS        CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
	// FiscalConfigPath locates the fiscal-year table (YAML).
	FiscalConfigPath string
}

// DatabaseConfig holds PostgreSQL connection configuration for the
// generated-forms metadata store.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// EGISConfig holds the upstream GIS query API settings.
type EGISConfig struct {
	BaseURL     string
	PageSize    int
	MaxAttempts int
}

// ObjectStoreConfig holds the S3-compatible store that caches generated PDF
// forms.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables with development
// defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("FISCAL_CONFIG_PATH", "configs/fiscal.yaml")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "assessing")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("EGIS_BASE_URL", "")
	v.SetDefault("EGIS_PAGE_SIZE", 50)
	v.SetDefault("EGIS_MAX_ATTEMPTS", 3)
	v.SetDefault("OBJECT_STORE_ENDPOINT", "localhost:9000")
	v.SetDefault("OBJECT_STORE_BUCKET", "tax-forms")
	v.SetDefault("OBJECT_STORE_USE_SSL", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:             v.GetString("PORT"),
			Env:              v.GetString("ENV"),
			FiscalConfigPath: v.GetString("FISCAL_CONFIG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		EGIS: EGISConfig{
			BaseURL:     strings.TrimRight(v.GetString("EGIS_BASE_URL"), "/"),
			PageSize:    v.GetInt("EGIS_PAGE_SIZE"),
			MaxAttempts: v.GetInt("EGIS_MAX_ATTEMPTS"),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  v.GetString("OBJECT_STORE_ENDPOINT"),
			AccessKey: v.GetString("OBJECT_STORE_ACCESS_KEY"),
			SecretKey: v.GetString("OBJECT_STORE_SECRET_KEY"),
			Bucket:    v.GetString("OBJECT_STORE_BUCKET"),
			UseSSL:    v.GetBool("OBJECT_STORE_USE_SSL"),
		},
		CORS: CORSConfig{
			Origins: splitList(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.FiscalConfigPath == "" {
		return fmt.Errorf("FISCAL_CONFIG_PATH is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	if c.EGIS.BaseURL == "" {
		return fmt.Errorf("EGIS_BASE_URL is required")
	}
	if c.EGIS.PageSize < 1 {
		return fmt.Errorf("EGIS_PAGE_SIZE must be at least 1")
	}
	if c.EGIS.MaxAttempts < 1 {
		return fmt.Errorf("EGIS_MAX_ATTEMPTS must be at least 1")
	}
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}
	return nil
}

// fiscalFile mirrors the YAML layout of the fiscal configuration table.
type fiscalFile struct {
	FiscalYears map[int]fiscal.YearConfig `mapstructure:"fiscal_years"`
	Defaults    fiscal.Defaults           `mapstructure:"defaults"`
}

// LoadFiscal reads the fiscal-year table from the given YAML file and builds
// the immutable resolver. Called once at startup; the resolver is injected
// into everything that needs rates or disclaimer dates.
func LoadFiscal(path string) (*fiscal.ConfigResolver, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read fiscal config %s: %w", path, err)
	}

	var file fiscalFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to parse fiscal config %s: %w", path, err)
	}

	if file.Defaults.TaxRates.Residential <= 0 || file.Defaults.TaxRates.Commercial <= 0 {
		return nil, fmt.Errorf("fiscal config %s: default tax rates are required", path)
	}

	return fiscal.NewConfigResolver(file.FiscalYears, file.Defaults), nil
}

// splitList splits a comma-separated value into trimmed non-empty entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
