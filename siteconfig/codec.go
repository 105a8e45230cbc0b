package siteconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the serialization used by Encode and Decode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatModule is an ES module default export with nav, sidebar and
	// socialLinks nested under themeConfig.
	FormatModule Format = "mjs"
)

// ErrUnknownFormat is returned for format names ParseFormat does not recognise.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "mjs", "js", "module":
		return FormatModule, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

type themeConfig struct {
	Nav         []NavItem        `json:"nav,omitempty" yaml:"nav,omitempty"`
	Sidebar     []SidebarSection `json:"sidebar,omitempty" yaml:"sidebar,omitempty"`
	SocialLinks []SocialLink     `json:"socialLinks,omitempty" yaml:"socialLinks,omitempty"`
}

type moduleConfig struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Head        []HeadTag   `json:"head"`
	ThemeConfig themeConfig `json:"themeConfig"`
}

// fileConfig accepts both the flat layout and the themeConfig nesting.
type fileConfig struct {
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	Head        []HeadTag        `json:"head" yaml:"head"`
	Nav         []NavItem        `json:"nav" yaml:"nav"`
	Sidebar     []SidebarSection `json:"sidebar" yaml:"sidebar"`
	SocialLinks []SocialLink     `json:"socialLinks" yaml:"socialLinks"`
	ThemeConfig *themeConfig     `json:"themeConfig" yaml:"themeConfig"`
}

// config merges the themeConfig nesting into the flat layout. A list set in both
// places is rejected rather than silently picking one.
func (f *fileConfig) config() (*Config, error) {
	cfg := &Config{
		Title:       f.Title,
		Description: f.Description,
		Head:        f.Head,
		Nav:         f.Nav,
		Sidebar:     f.Sidebar,
		SocialLinks: f.SocialLinks,
	}
	if tc := f.ThemeConfig; tc != nil {
		var v validator
		if len(tc.Nav) > 0 {
			if len(cfg.Nav) > 0 {
				v.add("themeConfig.nav", fmt.Errorf("%w: nav is also set at the top level", ErrDuplicate))
			}
			cfg.Nav = tc.Nav
		}
		if len(tc.Sidebar) > 0 {
			if len(cfg.Sidebar) > 0 {
				v.add("themeConfig.sidebar", fmt.Errorf("%w: sidebar is also set at the top level", ErrDuplicate))
			}
			cfg.Sidebar = tc.Sidebar
		}
		if len(tc.SocialLinks) > 0 {
			if len(cfg.SocialLinks) > 0 {
				v.add("themeConfig.socialLinks", fmt.Errorf("%w: socialLinks is also set at the top level", ErrDuplicate))
			}
			cfg.SocialLinks = tc.SocialLinks
		}
		if len(v.fields) > 0 {
			return nil, &ValidationError{Fields: v.fields}
		}
	}
	for i := range cfg.Sidebar {
		if len(cfg.Sidebar[i].Items) == 0 {
			cfg.Sidebar[i].Items = nil
		}
	}
	return cfg, nil
}

// Marshal returns cfg serialized in the given format.
func Marshal(cfg *Config, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, cfg, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes cfg to w in the given format.
func Encode(w io.Writer, cfg *Config, format Format) error {
	if cfg == nil {
		return errors.New("encode: nil config")
	}
	switch format {
	case FormatJSON:
		return encodeJSON(w, cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatModule:
		if _, err := io.WriteString(w, "export default "); err != nil {
			return err
		}
		return encodeJSON(w, &moduleConfig{
			Title:       cfg.Title,
			Description: cfg.Description,
			Head:        cfg.Head,
			ThemeConfig: themeConfig{
				Nav:         cfg.Nav,
				Sidebar:     cfg.Sidebar,
				SocialLinks: cfg.SocialLinks,
			},
		})
	default:
		return fmt.Errorf("encode: %w: %q", ErrUnknownFormat, format)
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Decode reads a site config in the given format and validates it.
func Decode(r io.Reader, format Format) (*Config, error) {
	var raw fileConfig
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse site config: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("parse site config: empty document")
			}
			return nil, fmt.Errorf("parse site config: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode: %w: %q", ErrUnknownFormat, format)
	}

	cfg, err := raw.config()
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a site config from disk, choosing the format by extension.
func LoadFile(path string) (*Config, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("site config %s: %w", path, err)
	}
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open site config: %w", err)
	}
	defer file.Close()

	return Decode(file, format)
}
