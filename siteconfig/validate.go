package siteconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmpty is reported for required values that are blank.
	ErrEmpty = errors.New("must not be empty")
	// ErrBadLink is reported for link targets that are neither root-relative nor absolute http(s).
	ErrBadLink = errors.New("link must be a root-relative path or an absolute http(s) URL")
	// ErrNotAbsolute is reported for social links that are not absolute URLs.
	ErrNotAbsolute = errors.New("link must be an absolute http(s) URL")
	// ErrDuplicate is reported for repeated navigation labels.
	ErrDuplicate = errors.New("duplicate entry")
)

// FieldError describes one invalid value.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError aggregates every problem found by Validate.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return "invalid site config: " + e.Fields[0].Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("invalid site config (%d problems): %s", len(e.Fields), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		errs = append(errs, f)
	}
	return errs
}

// Validate checks that cfg is well formed. It returns nil or a *ValidationError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return &ValidationError{Fields: []FieldError{{Field: "config", Err: ErrEmpty}}}
	}

	var v validator
	v.required("title", cfg.Title)

	for i, tag := range cfg.Head {
		v.required(fmt.Sprintf("head[%d].name", i), tag.Name)
	}

	seen := make(map[string]string, len(cfg.Nav))
	for i, item := range cfg.Nav {
		field := fmt.Sprintf("nav[%d]", i)
		v.navItem(field, item)
		label := normalizeLabel(item.Text)
		if label == "" {
			continue
		}
		if prev, ok := seen[label]; ok {
			v.add(field+".text", fmt.Errorf("%w: %q also used by %s", ErrDuplicate, item.Text, prev))
			continue
		}
		seen[label] = field
	}

	for i, section := range cfg.Sidebar {
		field := fmt.Sprintf("sidebar[%d]", i)
		v.required(field+".text", section.Text)
		for j, item := range section.Items {
			v.navItem(fmt.Sprintf("%s.items[%d]", field, j), item)
		}
	}

	for i, social := range cfg.SocialLinks {
		field := fmt.Sprintf("socialLinks[%d]", i)
		v.required(field+".icon", social.Icon)
		if strings.TrimSpace(social.Link) == "" {
			v.add(field+".link", ErrEmpty)
		} else if !IsExternal(social.Link) {
			v.add(field+".link", ErrNotAbsolute)
		}
	}

	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// IsExternal reports whether link is an absolute http(s) URL with a host.
func IsExternal(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsInternal reports whether link is a root-relative path on the site.
func IsInternal(link string) bool {
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "/") || strings.HasPrefix(link, "//") {
		return false
	}
	if strings.ContainsAny(link, " \t\r\n") {
		return false
	}
	_, err := url.Parse(link)
	return err == nil
}

type validator struct {
	fields []FieldError
}

func (v *validator) add(field string, err error) {
	v.fields = append(v.fields, FieldError{Field: field, Err: err})
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, ErrEmpty)
	}
}

func (v *validator) navItem(field string, item NavItem) {
	v.required(field+".text", item.Text)
	switch {
	case strings.TrimSpace(item.Link) == "":
		v.add(field+".link", ErrEmpty)
	case !IsInternal(item.Link) && !IsExternal(item.Link):
		v.add(field+".link", ErrBadLink)
	}
}

// normalizeLabel keeps case so "Home" and "home" stay distinct labels.
func normalizeLabel(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}
