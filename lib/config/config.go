// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Hangar components.
//
// Configuration is loaded from a single file specified by:
//   - HANGAR_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections
// (development, staging, production) that override base values when
// the environment matches.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Hangar.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures file and directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Realm identifies this deployment for coupon binding.
	Realm RealmConfig `yaml:"realm"`

	// Spaces configures the pilot and racecraft identifier spaces.
	Spaces SpacesConfig `yaml:"spaces"`

	// Service configures the mint service socket.
	Service ServiceConfig `yaml:"service"`

	// Bootstrap seeds the admin role and trusted signer on first start.
	Bootstrap BootstrapConfig `yaml:"bootstrap"`

	// Windows schedules automatic flow openings and closings.
	Windows []WindowConfig `yaml:"windows"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Realm   *RealmConfig   `yaml:"realm,omitempty"`
	Service *ServiceConfig `yaml:"service,omitempty"`
}

// PathsConfig configures file and directory locations.
type PathsConfig struct {
	// Root is the base directory for Hangar data.
	Root string `yaml:"root"`

	// Database is the SQLite database file.
	// Default: ${HANGAR_ROOT}/hangar.db
	Database string `yaml:"database"`

	// Socket is the Unix socket the mint service listens on.
	// Default: /run/hangar/mint.sock
	Socket string `yaml:"socket"`

	// Keys is the directory holding sealed key material.
	// Default: ${HANGAR_ROOT}/keys
	Keys string `yaml:"keys"`

	// Snapshots is where state exports are written.
	// Default: ${HANGAR_ROOT}/snapshots
	Snapshots string `yaml:"snapshots"`
}

// RealmConfig identifies the deployment. Coupons are signed over the
// realm, so two deployments with different realms reject each other's
// coupons.
type RealmConfig struct {
	// Address is the deployment's own party address, "0x" hex.
	Address string `yaml:"address"`

	// Network distinguishes otherwise-identical deployments.
	Network uint64 `yaml:"network"`
}

// Party parses the realm address.
func (r RealmConfig) Party() (ref.Party, error) {
	return ref.ParseParty(r.Address)
}

// SpaceConfig configures one identifier space.
type SpaceConfig struct {
	// Ceiling is the highest token ID the space may ever issue.
	// Zero leaves the space unconfigured; its flows refuse to run.
	Ceiling uint64 `yaml:"ceiling"`

	// PassSeries is the pass series burned by this space's
	// redemptions.
	PassSeries uint64 `yaml:"pass_series"`
}

// SpacesConfig configures both identifier spaces.
type SpacesConfig struct {
	Pilot     SpaceConfig `yaml:"pilot"`
	Racecraft SpaceConfig `yaml:"racecraft"`
}

// ServiceConfig configures the mint service socket.
type ServiceConfig struct {
	// PoolSize is the database connection pool size.
	// Default: 0 (one connection per CPU, minimum four).
	PoolSize int `yaml:"pool_size"`

	// MaxRequestBytes caps a single socket request.
	// Default: 1048576
	MaxRequestBytes int64 `yaml:"max_request_bytes"`

	// RequestTimeout bounds one request/response exchange.
	// Default: 30s
	RequestTimeout string `yaml:"request_timeout"`
}

// Timeout parses the request timeout.
func (s ServiceConfig) Timeout() (time.Duration, error) {
	return time.ParseDuration(s.RequestTimeout)
}

// BootstrapConfig seeds state on first start. Both fields are only
// consulted when their tables are empty; later edits go through the
// service.
type BootstrapConfig struct {
	// Admin is granted the admin role when no role grants exist.
	Admin string `yaml:"admin"`

	// Signer becomes the trusted coupon signer when none is set.
	Signer string `yaml:"signer"`
}

// AdminParty parses the bootstrap admin, Party zero when unset.
func (b BootstrapConfig) AdminParty() (ref.Party, error) {
	if b.Admin == "" {
		return ref.Party{}, nil
	}
	return ref.ParseParty(b.Admin)
}

// SignerParty parses the bootstrap signer, Party zero when unset.
func (b BootstrapConfig) SignerParty() (ref.Party, error) {
	if b.Signer == "" {
		return ref.Party{}, nil
	}
	return ref.ParseParty(b.Signer)
}

// WindowConfig opens and closes one flow on a schedule. Open and
// Close are five-field cron expressions evaluated in UTC.
type WindowConfig struct {
	// Flow names the flow switch: claim, pilot, racecraft,
	// inventory, or reward.
	Flow string `yaml:"flow"`

	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "hangar")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:      defaultRoot,
			Database:  filepath.Join(defaultRoot, "hangar.db"),
			Socket:    "/run/hangar/mint.sock",
			Keys:      filepath.Join(defaultRoot, "keys"),
			Snapshots: filepath.Join(defaultRoot, "snapshots"),
		},
		Service: ServiceConfig{
			PoolSize:        0,
			MaxRequestBytes: 1 << 20,
			RequestTimeout:  "30s",
		},
	}
}

// Load loads configuration from HANGAR_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if HANGAR_CONFIG is not set, this fails.
// This ensures deterministic, auditable configuration with no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("HANGAR_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("HANGAR_CONFIG environment variable not set; " +
			"set it to the path of your hangar.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values - this ensures deterministic, auditable configuration.
// The only expansion performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Database != "" {
			c.Paths.Database = overrides.Paths.Database
		}
		if overrides.Paths.Socket != "" {
			c.Paths.Socket = overrides.Paths.Socket
		}
		if overrides.Paths.Keys != "" {
			c.Paths.Keys = overrides.Paths.Keys
		}
		if overrides.Paths.Snapshots != "" {
			c.Paths.Snapshots = overrides.Paths.Snapshots
		}
	}

	if overrides.Realm != nil {
		if overrides.Realm.Address != "" {
			c.Realm.Address = overrides.Realm.Address
		}
		if overrides.Realm.Network != 0 {
			c.Realm.Network = overrides.Realm.Network
		}
	}

	if overrides.Service != nil {
		if overrides.Service.PoolSize != 0 {
			c.Service.PoolSize = overrides.Service.PoolSize
		}
		if overrides.Service.MaxRequestBytes != 0 {
			c.Service.MaxRequestBytes = overrides.Service.MaxRequestBytes
		}
		if overrides.Service.RequestTimeout != "" {
			c.Service.RequestTimeout = overrides.Service.RequestTimeout
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HANGAR_ROOT": c.Paths.Root,
		"HOME":        os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["HANGAR_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Database = expandVars(c.Paths.Database, vars)
	c.Paths.Socket = expandVars(c.Paths.Socket, vars)
	c.Paths.Keys = expandVars(c.Paths.Keys, vars)
	c.Paths.Snapshots = expandVars(c.Paths.Snapshots, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// knownFlows are the flow switch names a window may schedule.
var knownFlows = map[string]bool{
	"claim":     true,
	"pilot":     true,
	"racecraft": true,
	"inventory": true,
	"reward":    true,
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Paths.Database == "" {
		errs = append(errs, fmt.Errorf("paths.database is required"))
	}
	if c.Paths.Socket == "" {
		errs = append(errs, fmt.Errorf("paths.socket is required"))
	}

	if c.Realm.Address == "" {
		errs = append(errs, fmt.Errorf("realm.address is required"))
	} else if party, err := c.Realm.Party(); err != nil {
		errs = append(errs, fmt.Errorf("realm.address: %w", err))
	} else if party.IsZero() {
		errs = append(errs, fmt.Errorf("realm.address must be non-zero"))
	}
	if c.Realm.Network == 0 {
		errs = append(errs, fmt.Errorf("realm.network is required"))
	}

	if c.Spaces.Pilot.PassSeries != 0 &&
		c.Spaces.Pilot.PassSeries == c.Spaces.Racecraft.PassSeries {
		errs = append(errs, fmt.Errorf("spaces.pilot and spaces.racecraft share pass series %d",
			c.Spaces.Pilot.PassSeries))
	}

	if c.Service.MaxRequestBytes <= 0 {
		errs = append(errs, fmt.Errorf("service.max_request_bytes must be positive"))
	}
	if _, err := c.Service.Timeout(); err != nil {
		errs = append(errs, fmt.Errorf("service.request_timeout: %w", err))
	}

	if _, err := c.Bootstrap.AdminParty(); err != nil {
		errs = append(errs, fmt.Errorf("bootstrap.admin: %w", err))
	}
	if _, err := c.Bootstrap.SignerParty(); err != nil {
		errs = append(errs, fmt.Errorf("bootstrap.signer: %w", err))
	}

	for i, window := range c.Windows {
		if !knownFlows[window.Flow] {
			errs = append(errs, fmt.Errorf("windows[%d].flow: unknown flow %q", i, window.Flow))
		}
		if window.Open == "" && window.Close == "" {
			errs = append(errs, fmt.Errorf("windows[%d]: at least one of open or close is required", i))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.Keys,
		c.Paths.Snapshots,
		filepath.Dir(c.Paths.Database),
		filepath.Dir(c.Paths.Socket),
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
