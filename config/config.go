package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/awsssrD/road/siteconfig"
)

// EnvPrefix is prepended to environment variables read by Load, e.g. ROAD_CONTENTDIR.
const EnvPrefix = "ROAD"

// Config encapsulates tool options. The site itself is described by siteconfig.
type Config struct {
	LogLevel    string `json:"logLevel" mapstructure:"logLevel"`
	LogFile     string `json:"logFile" mapstructure:"logFile"`
	ContentDir  string `json:"contentDir" mapstructure:"contentDir"`
	PublicDir   string `json:"publicDir" mapstructure:"publicDir"`
	OutputDir   string `json:"outputDir" mapstructure:"outputDir"`
	TemplateDir string `json:"templateDir" mapstructure:"templateDir"`
	BaseURL     string `json:"baseUrl" mapstructure:"baseUrl"`
	Listen      string `json:"listen" mapstructure:"listen"`
	SiteFile    string `json:"siteFile" mapstructure:"siteFile"`
	Format      string `json:"format" mapstructure:"format"`
	Minify      bool   `json:"minify" mapstructure:"minify"`

	format siteconfig.Format `json:"-"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("contentDir", "./docs")
	v.SetDefault("publicDir", "public")
	v.SetDefault("outputDir", "./dist")
	v.SetDefault("listen", ":8080")
	v.SetDefault("format", string(siteconfig.FormatJSON))
	v.SetDefault("minify", true)
}

// Load decodes the merged viper state into a Config and applies sane defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogFile = strings.TrimSpace(c.LogFile)

	c.ContentDir = strings.TrimSpace(c.ContentDir)
	if c.ContentDir == "" {
		c.ContentDir = "./docs"
	}
	c.PublicDir = strings.TrimSpace(c.PublicDir)
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = "./dist"
	}
	c.TemplateDir = strings.TrimSpace(c.TemplateDir)
	c.SiteFile = strings.TrimSpace(c.SiteFile)
	c.Listen = strings.TrimSpace(c.Listen)
	if c.Listen == "" {
		c.Listen = ":8080"
	}

	base, err := normalizeBaseURL(c.BaseURL)
	if err != nil {
		return fmt.Errorf("baseUrl: %w", err)
	}
	c.BaseURL = base

	if strings.TrimSpace(c.Format) == "" {
		c.Format = string(siteconfig.FormatJSON)
	}
	format, err := siteconfig.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	c.format = format
	c.Format = string(format)
	return nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if filepath.IsAbs(c.PublicDir) || strings.HasPrefix(filepath.ToSlash(filepath.Clean(c.PublicDir)), "..") {
		return fmt.Errorf("publicDir must stay inside contentDir: %q", c.PublicDir)
	}
	if sameDir(c.OutputDir, c.ContentDir) {
		return fmt.Errorf("outputDir must differ from contentDir")
	}
	return nil
}

// SiteFormat returns the parsed output format.
func (c *Config) SiteFormat() siteconfig.Format {
	return c.format
}

// PublicPath returns the directory holding static assets such as the favicon.
func (c *Config) PublicPath() string {
	return filepath.Join(c.ContentDir, c.PublicDir)
}

// Site returns the site configuration, read from SiteFile when one is set.
func (c *Config) Site() (*siteconfig.Config, error) {
	if c.SiteFile == "" {
		return siteconfig.Site(), nil
	}
	return siteconfig.LoadFile(c.SiteFile)
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if trimmed == "" || trimmed == "/" {
		return "/", nil
	}
	if strings.Contains(trimmed, "://") {
		return "", fmt.Errorf("must be a path, got %q", raw)
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "/" {
		return "/", nil
	}
	return cleaned + "/", nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
