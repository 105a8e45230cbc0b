package siteconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeJSONShape(t *testing.T) {
	out, err := Marshal(Site(), FormatJSON)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))

	assert.Equal(t, "Road", generic["title"])
	assert.Equal(t, []any{"link", map[string]any{"href": "/motorway.ico", "rel": "icon"}}, generic["head"].([]any)[0])

	sidebar := generic["sidebar"].([]any)
	require.Len(t, sidebar, 2)
	_, hasItems := sidebar[1].(map[string]any)["items"]
	assert.False(t, hasItems, "empty sidebar section must omit items")

	assert.Contains(t, string(out), `"socialLinks"`)
	assert.Contains(t, string(out), "架构", "non-ASCII text must not be escaped")
}

func TestEncodeModuleNestsThemeConfig(t *testing.T) {
	out, err := Marshal(Site(), FormatModule)
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.HasPrefix(text, "export default {"))

	var generic map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(text, "export default ")), &generic))
	assert.NotContains(t, generic, "nav")
	theme := generic["themeConfig"].(map[string]any)
	assert.Len(t, theme["nav"], 2)
	assert.Len(t, theme["sidebar"], 2)
	assert.Len(t, theme["socialLinks"], 1)
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			out, err := Marshal(Site(), format)
			require.NoError(t, err)

			decoded, err := Decode(strings.NewReader(string(out)), format)
			require.NoError(t, err)
			if diff := cmp.Diff(Site(), decoded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripEmptySidebarItems(t *testing.T) {
	cfg := Site()
	cfg.Sidebar[1].Items = []NavItem{}
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			out, err := Marshal(cfg, format)
			require.NoError(t, err)

			decoded, err := Decode(strings.NewReader(string(out)), format)
			require.NoError(t, err)
			if diff := cmp.Diff(cfg.Clone(), decoded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
			assert.Nil(t, decoded.Sidebar[1].Items)
		})
	}
	assert.Nil(t, cfg.Clone().Sidebar[1].Items)
}

func TestDecodeRejectsListInBothLayouts(t *testing.T) {
	src := `
title: Road
sidebar:
  - text: Backend
themeConfig:
  sidebar:
    - text: Frontend
`
	_, err := Decode(strings.NewReader(src), FormatYAML)
	require.ErrorIs(t, err, ErrDuplicate)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "themeConfig.sidebar", verr.Fields[0].Field)
}

func TestDecodeThemeConfigLayout(t *testing.T) {
	src := `
title: Road
description: My Road
head:
  - [link, {rel: icon, href: /motorway.ico}]
themeConfig:
  nav:
    - {text: Home, link: /}
  sidebar:
    - text: Backend
  socialLinks:
    - {icon: github, link: "https://github.com/awsssrD"}
`
	cfg, err := Decode(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []NavItem{{Text: "Home", Link: "/"}}, cfg.Nav)
	assert.Equal(t, []SidebarSection{{Text: "Backend"}}, cfg.Sidebar)
	assert.Equal(t, "/motorway.ico", cfg.Head[0].Attrs["href"])
	assert.Len(t, cfg.SocialLinks, 1)
}

func TestDecodeHeadTagWithContent(t *testing.T) {
	src := `{"title":"Road","head":[["script",{"async":""},"console.log(1)"]]}`
	cfg, err := Decode(strings.NewReader(src), FormatJSON)
	require.NoError(t, err)
	require.Len(t, cfg.Head, 1)
	assert.Equal(t, "script", cfg.Head[0].Name)
	assert.Equal(t, "console.log(1)", cfg.Head[0].Content)

	out, err := json.Marshal(cfg.Head[0])
	require.NoError(t, err)
	assert.JSONEq(t, `["script",{"async":""},"console.log(1)"]`, string(out))
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		src    string
		want   string
	}{
		{"unknown field", FormatJSON, `{"title":"Road","colour":"red"}`, "unknown field"},
		{"short head tuple", FormatJSON, `{"title":"Road","head":[["link"]]}`, "expected 2 or 3 elements"},
		{"head mapping", FormatYAML, "title: Road\nhead:\n  - {rel: icon}\n", "expected a sequence"},
		{"invalid", FormatJSON, `{"title":""}`, "invalid site config"},
		{"empty yaml", FormatYAML, "", "empty document"},
		{"module", FormatModule, `export default {}`, "unknown format"},
		{"nav in both layouts", FormatJSON, `{"title":"Road","nav":[{"text":"Home","link":"/"}],"themeConfig":{"nav":[{"text":"Libs","link":"/libs"}]}}`, "themeConfig.nav: duplicate entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"json": FormatJSON, ".json": FormatJSON, "YAML": FormatYAML, ".yml": FormatYAML, "mjs": FormatModule, ".js": FormatModule,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseFormat("toml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	out, err := Marshal(Site(), FormatYAML)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, out, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Road", cfg.Title)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(filepath.Join(dir, "site.toml"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}
