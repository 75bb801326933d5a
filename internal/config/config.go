// Package config provides configuration management for glyph using Viper
// for loading from files, environment variables, and command-line flags.
//
// Configuration is read from .glyph.yml (or the file named by
// GLYPH_CONFIG_FILE) and may be overridden by GLYPH_ prefixed environment
// variables, e.g. GLYPH_FETCH_TIMEOUT=5s. It covers where icon assets are
// fetched from, which definition packs are loaded, the icon server and
// logging.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/types"
	"github.com/conneroisu/glyph/internal/validation"
)

type Config struct {
	Assets AssetsConfig `yaml:"assets" mapstructure:"assets"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Icons  IconsConfig  `yaml:"icons" mapstructure:"icons"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// AssetsConfig says where unregistered icons are loaded from. Source is the
// locator prefix; Dir, when set, serves assets from the local file system
// instead of HTTP; BaseURL resolves relative locators for HTTP fetches.
type AssetsConfig struct {
	Source  string `yaml:"source" mapstructure:"source"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

type FetchConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
}

type IconsConfig struct {
	Paths         []string          `yaml:"paths" mapstructure:"paths"`
	Watch         bool              `yaml:"watch" mapstructure:"watch"`
	ExtraSVGAttrs map[string]string `yaml:"extra_svg_attrs" mapstructure:"extra_svg_attrs"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("assets.source", "")
	v.SetDefault("assets.dir", "")
	v.SetDefault("assets.base_url", "")
	v.SetDefault("fetch.enabled", true)
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.cache_ttl", 5*time.Minute)
	v.SetDefault("fetch.user_agent", "glyph")
	v.SetDefault("icons.paths", []string{"./icons"})
	v.SetDefault("icons.watch", false)
	v.SetDefault("icons.extra_svg_attrs", map[string]string{"focusable": "false"})
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration held by the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, glypherrors.WrapConfig(err, glypherrors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	// Slices set through flags or the environment arrive as a single
	// comma-separated string.
	if v.IsSet("icons.paths") {
		config.Icons.Paths = splitList(v.GetStringSlice("icons.paths"))
	}
	if v.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = splitList(v.GetStringSlice("server.allowed_origins"))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	vec := &glypherrors.ValidationErrorCollection{}

	if c.Assets.Source != "" {
		if err := validation.ValidateAssetLocator(c.Assets.Source); err != nil {
			vec.AddField("assets.source", c.Assets.Source, err.Error(),
				"use a relative prefix such as \"static/\" or an http(s) URL")
		}
	}
	if c.Assets.Dir != "" {
		if err := validation.ValidatePath(c.Assets.Dir); err != nil {
			vec.AddField("assets.dir", c.Assets.Dir, err.Error())
		}
	}
	if c.Assets.BaseURL != "" {
		if err := validation.ValidateURL(c.Assets.BaseURL); err != nil {
			vec.AddField("assets.base_url", c.Assets.BaseURL, err.Error(),
				"use an absolute http or https URL")
		}
	}

	if c.Fetch.Timeout < 0 {
		vec.AddField("fetch.timeout", c.Fetch.Timeout, "timeout cannot be negative")
	}
	if c.Fetch.CacheTTL < 0 {
		vec.AddField("fetch.cache_ttl", c.Fetch.CacheTTL, "cache TTL cannot be negative",
			"use 0 to disable the body cache")
	}

	for _, path := range c.Icons.Paths {
		if err := validation.ValidatePath(path); err != nil {
			vec.AddField("icons.paths", path, err.Error())
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		vec.AddField("server.port", c.Server.Port, fmt.Sprintf("port %d is not in valid range 0-65535", c.Server.Port))
	}
	if c.Server.Host != "" && strings.ContainsAny(c.Server.Host, ";&|$`()<>\"'\\ ") {
		vec.AddField("server.host", c.Server.Host, "host contains dangerous characters")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		vec.AddField("log.level", c.Log.Level, err.Error(), "use debug, info, warn or error")
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		vec.AddField("log.format", c.Log.Format, "unknown log format", "use text or json")
	}

	if vec.HasErrors() {
		return vec.ToGlyphError("invalid configuration")
	}
	return nil
}

// ExtraAttrs returns the extra root attributes for generated icons in key
// order.
func (c *Config) ExtraAttrs() types.Attrs {
	keys := make([]string, 0, len(c.Icons.ExtraSVGAttrs))
	for key := range c.Icons.ExtraSVGAttrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make(types.Attrs, 0, len(keys))
	for _, key := range keys {
		attrs = attrs.Set(key, c.Icons.ExtraSVGAttrs[key])
	}
	return attrs
}

// LoggerConfig converts the log section into a logger configuration.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	level, _ := logging.ParseLevel(c.Log.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	return cfg
}

// Address returns host:port for the icon server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
