/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	applog "screenwriter/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	// Workspace is the default workspace directory used when a command gets none.
	Workspace string `yaml:"workspace"`
	// AutoFormat formats .fountain buffers the first time they are opened.
	AutoFormat bool `yaml:"auto_format"`
	// SnapshotKeep is how many text snapshots per workspace the index keeps.
	SnapshotKeep int `yaml:"snapshot_keep"`
	// RenderCacheSize is the number of rendered documents kept in memory.
	RenderCacheSize int `yaml:"render_cache_size"`
}

type RegistryConfig struct {
	// Driver selects where synced scenes are registered: "sqlite" (workspace index),
	// "postgres", "http" (a registry server) or "memory".
	Driver string `yaml:"driver"`
	// URL is the registry server used by the http driver.
	URL string `yaml:"url,omitempty"`
	// Token is the bearer token for the http driver. Env only.
	Token string `yaml:"-"`
	// DSN is only used by the postgres driver. It is never written to disk; Save moves it into
	// the OS keychain and Load reads it back from there.
	DSN string `yaml:"dsn,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Secret signs bearer tokens. Env only.
	Secret string `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Registry      RegistryConfig `yaml:"registry"`
	Server        ServerConfig   `yaml:"server"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Workspace: "", AutoFormat: true, SnapshotKeep: 50, RenderCacheSize: 128},
		Registry:      RegistryConfig{Driver: "sqlite"},
		Server:        ServerConfig{Addr: ":8080"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "SCW_CONFIG"
	EnvWorkspace    = "SCW_WORKSPACE"
	EnvAutoFormat   = "SCW_AUTO_FORMAT"
	EnvRegistry     = "SCW_REGISTRY"
	EnvRegistryDSN  = "SCW_PG_DSN"
	EnvSnapshotKeep = "SCW_SNAPSHOT_KEEP"
	EnvRegistryURL  = "SCW_REGISTRY_URL"
	EnvRegistryTok  = "SCW_REGISTRY_TOKEN"
	EnvServerAddr   = "SCW_SERVER_ADDR"
	EnvAuthSecret   = "SCW_AUTH_SECRET"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SCW_LOG_LEVEL"
	EnvLogFormat = "SCW_LOG_FORMAT"
	EnvLogSource = "SCW_LOG_SOURCE"
	EnvLogFile   = "SCW_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "Screenwriter"
	keyringDSN     = "registry_dsn"
)

// secretStore abstracts the keyring so tests can stub it.
var secretStore SecretStore = osKeyring{}

type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path. SCW_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Screenwriter")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Screenwriter")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "screenwriter")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "screenwriter")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges environment
// overrides. A postgres DSN missing from both file and env is read from the keyring.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if cfg.Registry.DSN == "" {
		if dsn, err := secretStore.Get(keyringService, keyringDSN); err == nil {
			cfg.Registry.DSN = dsn
		}
	}
	return cfg, nil
}

// Save writes the user config YAML. A non-empty registry DSN goes to the OS keyring instead of
// the file.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dsn := cfg.Registry.DSN
	cfg.Registry.DSN = ""
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if dsn != "" {
		if err := secretStore.Set(keyringService, keyringDSN, dsn); err != nil {
			return err
		}
	}
	return nil
}

// ForgetDSN removes the stored registry DSN from the keyring.
func ForgetDSN() error {
	err := secretStore.Delete(keyringService, keyringDSN)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.General.Workspace); s != "" {
		dst.General.Workspace = s
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.AutoFormat = src.General.AutoFormat
	if src.General.SnapshotKeep > 0 {
		dst.General.SnapshotKeep = src.General.SnapshotKeep
	}
	if src.General.RenderCacheSize > 0 {
		dst.General.RenderCacheSize = src.General.RenderCacheSize
	}
	if s := strings.ToLower(strings.TrimSpace(src.Registry.Driver)); s != "" {
		dst.Registry.Driver = s
	}
	if s := strings.TrimSpace(src.Registry.DSN); s != "" {
		dst.Registry.DSN = s
	}
	if s := strings.TrimSpace(src.Registry.URL); s != "" {
		dst.Registry.URL = s
	}
	if s := strings.TrimSpace(src.Server.Addr); s != "" {
		dst.Server.Addr = s
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvWorkspace)); v != "" {
		cfg.General.Workspace = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoFormat)); v != "" {
		cfg.General.AutoFormat = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapshotKeep)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.General.SnapshotKeep = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRegistry)); v != "" {
		cfg.Registry.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRegistryDSN)); v != "" {
		cfg.Registry.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRegistryURL)); v != "" {
		cfg.Registry.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRegistryTok)); v != "" {
		cfg.Registry.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvAuthSecret); v != "" {
		cfg.Server.Secret = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"general.workspace":     EnvWorkspace,
		"general.auto_format":   EnvAutoFormat,
		"general.snapshot_keep": EnvSnapshotKeep,
		"registry.driver":       EnvRegistry,
		"registry.dsn":          EnvRegistryDSN,
		"registry.url":          EnvRegistryURL,
		"server.addr":           EnvServerAddr,
		"logging.level":         EnvLogLevel,
		"logging.format":        EnvLogFormat,
		"logging.source":        EnvLogSource,
		"logging.file":          EnvLogFile,
	}
	env, ok := names[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Keys lists the settings reachable through Value and SetValue, in display order.
var Keys = []string{
	"general.workspace",
	"general.auto_format",
	"general.snapshot_keep",
	"general.render_cache_size",
	"registry.driver",
	"registry.url",
	"registry.dsn",
	"server.addr",
	"logging.level",
	"logging.format",
	"logging.source",
	"logging.file",
}

// Value returns the setting named key as text. The DSN is masked.
func Value(cfg AppConfig, key string) (string, error) {
	switch key {
	case "general.workspace":
		return cfg.General.Workspace, nil
	case "general.auto_format":
		return strconv.FormatBool(cfg.General.AutoFormat), nil
	case "general.snapshot_keep":
		return strconv.Itoa(cfg.General.SnapshotKeep), nil
	case "general.render_cache_size":
		return strconv.Itoa(cfg.General.RenderCacheSize), nil
	case "registry.driver":
		return cfg.Registry.Driver, nil
	case "registry.url":
		return cfg.Registry.URL, nil
	case "registry.dsn":
		if cfg.Registry.DSN == "" {
			return "", nil
		}
		return "(set)", nil
	case "server.addr":
		return cfg.Server.Addr, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	case "logging.source":
		return strconv.FormatBool(cfg.Logging.Source), nil
	case "logging.file":
		return cfg.Logging.File, nil
	}
	return "", fmt.Errorf("unknown setting %q", key)
}

// SetValue parses value and stores it in the setting named key.
func SetValue(cfg *AppConfig, key, value string) error {
	value = strings.TrimSpace(value)
	positive := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%s must be a positive number, got %q", key, value)
		}
		return n, nil
	}
	switch key {
	case "general.workspace":
		cfg.General.Workspace = value
	case "general.auto_format":
		cfg.General.AutoFormat = parseBool(value)
	case "general.snapshot_keep":
		n, err := positive()
		if err != nil {
			return err
		}
		cfg.General.SnapshotKeep = n
	case "general.render_cache_size":
		n, err := positive()
		if err != nil {
			return err
		}
		cfg.General.RenderCacheSize = n
	case "registry.driver":
		switch d := strings.ToLower(value); d {
		case "sqlite", "postgres", "http", "memory":
			cfg.Registry.Driver = d
		default:
			return fmt.Errorf("unknown registry driver %q", value)
		}
	case "registry.url":
		cfg.Registry.URL = value
	case "registry.dsn":
		cfg.Registry.DSN = value
	case "server.addr":
		cfg.Server.Addr = value
	case "logging.level":
		cfg.Logging.Level = strings.ToLower(value)
	case "logging.format":
		cfg.Logging.Format = strings.ToLower(value)
	case "logging.source":
		cfg.Logging.Source = parseBool(value)
	case "logging.file":
		cfg.Logging.File = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// LogOptions converts the logging section into logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
