package site

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsssrD/road/config"
	"github.com/awsssrD/road/siteconfig"
	"github.com/awsssrD/road/templatex"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newTestService lays out a content tree that satisfies every link of the Road site.
func newTestService(t *testing.T) (*Service, *config.Config) {
	t.Helper()
	root := t.TempDir()
	content := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(content, "index.md"), "# Road\n\nWelcome.\n")
	writeFile(t, filepath.Join(content, "libs", "index.md"), "Libraries without a heading.\n")
	writeFile(t, filepath.Join(content, "frontend", "architecture.md"), "---\ntitle: Frontend architecture\ndescription: How the frontend is put together.\n---\n\n# 架构\n\n## Layers\n\nViews sit on top.\n\n## Build\n")
	writeFile(t, filepath.Join(content, "public", "motorway.ico"), "ico")

	cfg := &config.Config{
		LogLevel:   "info",
		ContentDir: content,
		PublicDir:  "public",
		OutputDir:  filepath.Join(root, "dist"),
		BaseURL:    "/",
		Minify:     true,
	}
	engine, err := templatex.Load("")
	require.NoError(t, err)
	return NewService(cfg, engine, zerolog.Nop()), cfg
}

func TestCheckResolvesRoadSite(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.Check(context.Background(), siteconfig.Site())
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Zero(t, report.Failures())

	require.Len(t, report.Links, 4)
	assert.Equal(t, "index.md", report.Links[0].Source)
	assert.Equal(t, "Road", report.Links[0].Title)
	assert.Equal(t, "libs/index.md", report.Links[1].Source)
	assert.Equal(t, "libs", report.Links[1].Title)
	assert.Equal(t, "frontend/architecture.md", report.Links[2].Source)
	assert.Equal(t, "Frontend architecture", report.Links[2].Title)
	assert.Equal(t, "How the frontend is put together.", report.Links[2].Description)
	require.Len(t, report.Links[2].Sections, 2)
	assert.Equal(t, "layers", report.Links[2].Sections[0].ID)
	assert.Equal(t, "Libraries without a heading.", report.Links[1].Description)
	assert.Empty(t, report.Links[1].Sections)
	assert.Equal(t, "/frontend/architecture", report.Links[2].Route)
	assert.True(t, report.Links[3].External)

	require.Len(t, report.Assets, 1)
	assert.Equal(t, "head[0].href", report.Assets[0].Location)
	assert.NoError(t, report.Assets[0].Err)
}

func TestCheckReportsProblems(t *testing.T) {
	svc, cfg := newTestService(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.PublicPath(), "motorway.ico")))

	site := siteconfig.Site()
	site.Nav = append(site.Nav, siteconfig.NavItem{Text: "Guide", Link: "/guide/"})
	site.Sidebar[1].Items = []siteconfig.NavItem{{Text: "Escape", Link: "/../secret"}}

	report, err := svc.Check(context.Background(), site)
	require.NoError(t, err)
	assert.NoError(t, report.Invalid)
	assert.Equal(t, 3, report.Failures())

	guide := report.Links[2]
	assert.Equal(t, "nav[2]", guide.Location)
	require.ErrorIs(t, guide.Err, ErrUnresolvedLink)
	assert.Contains(t, guide.Err.Error(), "guide/index.md")

	escape := report.Links[4]
	assert.Equal(t, "sidebar[1].items[0]", escape.Location)
	require.ErrorIs(t, escape.Err, ErrInvalidPath)

	require.ErrorIs(t, report.Assets[0].Err, ErrMissingAsset)

	joined := report.Err()
	require.Error(t, joined)
	assert.True(t, errors.Is(joined, ErrUnresolvedLink))
	assert.Contains(t, joined.Error(), `nav[2] "/guide/"`)
}

func TestCheckInvalidConfig(t *testing.T) {
	svc, _ := newTestService(t)
	site := siteconfig.Site()
	site.Title = ""
	site.Nav[1].Link = "libs"

	report, err := svc.Check(context.Background(), site)
	require.NoError(t, err)
	require.Error(t, report.Invalid)
	require.ErrorIs(t, report.Links[1].Err, siteconfig.ErrBadLink)
	assert.Equal(t, 2, report.Failures(), "empty title and the malformed link, each counted once")
	assert.Equal(t, 1, strings.Count(report.Err().Error(), "nav[1]"))

	site = siteconfig.Site()
	site.Nav[1].Link = "libs"
	report, err = svc.Check(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures())

	report, err = svc.Check(context.Background(), nil)
	require.NoError(t, err)
	assert.Error(t, report.Invalid)
}

func TestCheckHonoursCancellation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Check(ctx, siteconfig.Site())
	require.ErrorIs(t, err, context.Canceled)
}

func TestDocumentStoreReloadsChangedFiles(t *testing.T) {
	svc, cfg := newTestService(t)
	doc, err := svc.documents.Load("index.md")
	require.NoError(t, err)
	assert.Equal(t, "Road", doc.Title)

	path := filepath.Join(cfg.ContentDir, "index.md")
	writeFile(t, path, "---\ntitle: Start\n---\n")
	later := doc.ModTime.Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	doc, err = svc.documents.Load("index.md")
	require.NoError(t, err)
	assert.Equal(t, "Start", doc.Title)
}

func TestBuildPreview(t *testing.T) {
	svc, cfg := newTestService(t)
	svc.GeneratedBy = "road test"

	report, err := svc.BuildPreview(context.Background(), siteconfig.Site())
	require.NoError(t, err)
	assert.Zero(t, report.Failures())

	index, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
	require.NoError(t, err)
	html := string(index)
	assert.Contains(t, html, "<title>Road</title>")
	assert.Contains(t, html, `href="/motorway.ico"`)
	assert.Contains(t, html, "架构")
	assert.Contains(t, html, "Frontend architecture")
	assert.Contains(t, html, `href="/frontend/architecture#layers"`)
	assert.Contains(t, html, "How the frontend is put together.")
	assert.Contains(t, html, "z-chroma")
	assert.Contains(t, html, "road test")

	notFound, err := os.ReadFile(filepath.Join(cfg.OutputDir, "404.html"))
	require.NoError(t, err)
	assert.Contains(t, string(notFound), "404 - Not found")

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, "config.json"))
	require.NoError(t, err)
	decoded, err := siteconfig.Decode(strings.NewReader(string(raw)), siteconfig.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, siteconfig.Site(), decoded)
	assert.True(t, json.Valid(raw))
	assert.NotContains(t, strings.TrimSpace(string(raw)), "\n")

	module, err := os.ReadFile(filepath.Join(cfg.OutputDir, "config.mjs"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(module), "export default"))
	assert.Contains(t, string(module), "themeConfig")

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "motorway.ico"))

	entries, err := os.ReadDir(filepath.Dir(cfg.OutputDir))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".__preview-"), "staging dir left behind: %s", e.Name())
	}
}

func TestBuildPreviewRejectsInvalidConfig(t *testing.T) {
	svc, cfg := newTestService(t)
	site := siteconfig.Site()
	site.SocialLinks[0].Link = "github.com/awsssrD"

	_, err := svc.BuildPreview(context.Background(), site)
	require.ErrorIs(t, err, siteconfig.ErrNotAbsolute)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRouteCandidates(t *testing.T) {
	tests := []struct {
		link       string
		route      string
		candidates []string
	}{
		{"/", "/", []string{"index.md"}},
		{"/libs", "/libs", []string{"libs.md", "libs/index.md"}},
		{"/libs/", "/libs", []string{"libs/index.md", "libs.md"}},
		{"/libs/#usage", "/libs", []string{"libs/index.md", "libs.md"}},
		{"/frontend/architecture.html?x=1", "/frontend/architecture", []string{"frontend/architecture.md", "frontend/architecture/index.md"}},
		{"/frontend/index.md", "/frontend", []string{"frontend.md", "frontend/index.md"}},
		{"/index.html", "/", []string{"index.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			route, candidates, err := routeCandidates(tt.link)
			require.NoError(t, err)
			assert.Equal(t, tt.route, route)
			assert.Equal(t, tt.candidates, candidates)
		})
	}

	for _, bad := range []string{"libs", "/../etc/passwd", "/-rf", "https://example.com/x", "/a\x00b"} {
		_, _, err := routeCandidates(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestAssetPath(t *testing.T) {
	rel, err := assetPath("/motorway.ico?v=2")
	require.NoError(t, err)
	assert.Equal(t, "motorway.ico", rel)

	rel, err = assetPath("/img/./logo.svg")
	require.NoError(t, err)
	assert.Equal(t, "img/logo.svg", rel)

	_, err = assetPath("/../secret")
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = assetPath("/")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "libs", deriveTitle("libs/index.md"))
	assert.Equal(t, "getting started", deriveTitle("guide/getting-started.md"))
	assert.Equal(t, "index", deriveTitle("index.md"))
}
