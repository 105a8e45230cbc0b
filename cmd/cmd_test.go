package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/awsssrD/road/siteconfig"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("road/test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func contentTree(t *testing.T) (content, output string) {
	t.Helper()
	root := t.TempDir()
	content = filepath.Join(root, "docs")
	for rel, body := range map[string]string{
		"index.md":                 "# Road\n",
		"libs.md":                  "# Libs\n",
		"frontend/architecture.md": "# 架构\n",
		"public/motorway.ico":      "ico",
	} {
		path := filepath.Join(content, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return content, filepath.Join(root, "dist")
}

func TestDumpJSON(t *testing.T) {
	out, err := run(t, "dump")
	require.NoError(t, err)

	got, err := siteconfig.Decode(strings.NewReader(out), siteconfig.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, siteconfig.Site(), got)
	assert.Contains(t, out, "架构")
}

func TestDumpYAML(t *testing.T) {
	out, err := run(t, "dump", "--format", "yaml")
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &raw))
	assert.Equal(t, "Road", raw["title"])
	assert.Equal(t, "My Road", raw["description"])
}

func TestDumpModule(t *testing.T) {
	out, err := run(t, "dump", "-f", "mjs", "--minify")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "export default"))
	assert.Contains(t, out, "themeConfig")
	assert.Contains(t, out, "https://github.com/awsssrD")
}

func TestDumpRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "dump", "--format", "toml")
	require.ErrorIs(t, err, siteconfig.ErrUnknownFormat)

	_, err = run(t, "dump", "--format", "yaml", "--minify")
	require.Error(t, err)
}

func TestDumpSiteFile(t *testing.T) {
	site := siteconfig.Site()
	site.Title = "Other Road"
	raw, err := siteconfig.Marshal(site, siteconfig.FormatYAML)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(file, raw, 0o644))

	out, err := run(t, "--site", file, "dump")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Other Road"`)
}

func TestCheck(t *testing.T) {
	content, output := contentTree(t)
	out, err := run(t, "--content-dir", content, "--output-dir", output, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "sidebar[0].items[0]")
	assert.Contains(t, out, "frontend/architecture.md")
	assert.Contains(t, out, "(external)")

	require.NoError(t, os.Remove(filepath.Join(content, "libs.md")))
	out, err = run(t, "--content-dir", content, "--output-dir", output, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s) found")
	assert.Contains(t, out, "nav[1]")
}

func TestBuild(t *testing.T) {
	content, output := contentTree(t)
	out, err := run(t, "--content-dir", content, "--output-dir", output, "build")
	require.NoError(t, err)
	assert.Contains(t, out, output)
	assert.FileExists(t, filepath.Join(output, "index.html"))
	assert.FileExists(t, filepath.Join(output, "config.json"))
	assert.FileExists(t, filepath.Join(output, "motorway.ico"))
}

func TestConfigFileAndEnv(t *testing.T) {
	content, output := contentTree(t)
	file := filepath.Join(t.TempDir(), "road.yaml")
	require.NoError(t, os.WriteFile(file, []byte("contentDir: "+content+"\nformat: yaml\n"), 0o644))
	t.Setenv("ROAD_OUTPUTDIR", output)

	out, err := run(t, "--config", file, "dump")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "title: Road"), out)

	_, err = run(t, "--config", file, "build")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(output, "index.html"))

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "dump")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "road/test\n", out)
}
