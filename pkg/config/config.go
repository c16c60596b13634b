// Package config provides environment-backed configuration for lakeferry.
//
// All options come from the process environment (a .env file may be
// loaded by the CLI before Load runs). Keys bind 1:1 to environment
// variables: "source.uri" reads SOURCE_URI, "dest.account" reads
// DEST_ACCOUNT, and so on.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lakeferry/lakeferry/pkg/errors"
)

// SourceConfig addresses the document store collections are read from.
type SourceConfig struct {
	Type     string
	URI      string
	Database string
}

// DestConfig addresses the data-lake filesystem payloads are written to.
type DestConfig struct {
	Type       string
	Account    string
	Container  string
	Directory  string
	Credential string
	// Endpoint overrides the derived service URL, for emulators and
	// sovereign-cloud suffixes.
	Endpoint string
}

// MigrationConfig tunes the batch loop.
type MigrationConfig struct {
	// Workers bounds concurrent unit extraction. 1 keeps the loop
	// strictly sequential.
	Workers int
	// UnitTimeout bounds one unit's extract+serialize+upload step.
	// Zero disables the per-unit deadline.
	UnitTimeout time.Duration
	// ConnectTimeout bounds source server selection.
	ConnectTimeout time.Duration
}

// Config is constructed once at startup and passed by reference into
// connectors and the orchestrator.
type Config struct {
	Source    SourceConfig
	Dest      DestConfig
	Migration MigrationConfig
	LogLevel  string
}

// Load reads the full configuration from the environment, applying
// defaults and clamps. Call Validate before using the result.
func Load() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source.type", "mongodb")
	v.SetDefault("dest.type", "datalake")
	v.SetDefault("log.level", "info")
	v.SetDefault("migrate.workers", 1)
	v.SetDefault("unit.timeout", 5*time.Minute)
	v.SetDefault("connect.timeout", 5*time.Second)

	cfg := &Config{
		Source: SourceConfig{
			Type:     v.GetString("source.type"),
			URI:      v.GetString("source.uri"),
			Database: v.GetString("source.database"),
		},
		Dest: DestConfig{
			Type:       v.GetString("dest.type"),
			Account:    v.GetString("dest.account"),
			Container:  v.GetString("dest.container"),
			Directory:  v.GetString("dest.directory"),
			Credential: v.GetString("dest.credential"),
			Endpoint:   v.GetString("dest.endpoint"),
		},
		Migration: MigrationConfig{
			Workers:        v.GetInt("migrate.workers"),
			UnitTimeout:    v.GetDuration("unit.timeout"),
			ConnectTimeout: v.GetDuration("connect.timeout"),
		},
		LogLevel: v.GetString("log.level"),
	}

	if cfg.Dest.Directory == "" {
		cfg.Dest.Directory = cfg.Source.Database
	}
	if cfg.Migration.Workers < 1 {
		cfg.Migration.Workers = 1
	}
	if cfg.Migration.UnitTimeout < 0 {
		cfg.Migration.UnitTimeout = 0
	}
	if cfg.Migration.ConnectTimeout <= 0 {
		cfg.Migration.ConnectTimeout = 5 * time.Second
	}

	return cfg
}

// Validate checks that every required option is present. All missing
// keys are reported together so one run surfaces the whole fix, not
// just the first gap.
func (c *Config) Validate() error {
	var missing []string
	if c.Source.URI == "" {
		missing = append(missing, "SOURCE_URI")
	}
	if c.Source.Database == "" {
		missing = append(missing, "SOURCE_DATABASE")
	}
	if c.Dest.Account == "" {
		missing = append(missing, "DEST_ACCOUNT")
	}
	if c.Dest.Container == "" {
		missing = append(missing, "DEST_CONTAINER")
	}
	if c.Dest.Credential == "" {
		missing = append(missing, "DEST_CREDENTIAL")
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrorTypeConfig,
			fmt.Sprintf("missing required configuration: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// ServiceURL returns the destination service endpoint, honoring the
// DEST_ENDPOINT override when set.
func (c *DestConfig) ServiceURL() string {
	if c.Endpoint != "" {
		return strings.TrimSuffix(c.Endpoint, "/")
	}
	return fmt.Sprintf("https://%s.dfs.core.windows.net", c.Account)
}
