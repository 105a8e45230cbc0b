package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/awsssrD/road/fsutil"
	"github.com/awsssrD/road/renderer"
	"github.com/awsssrD/road/siteconfig"
	"github.com/awsssrD/road/templatex"
)

const (
	previewIndex    = "index.html"
	previewNotFound = "404.html"
	configJSON      = "config.json"
	configModule    = "config.mjs"
	highlightStyle  = "github"
)

// BuildPreview renders the navigation chrome of site into the output directory.
// The new output replaces the previous one only after every file was written.
func (s *Service) BuildPreview(ctx context.Context, site *siteconfig.Config) (*Report, error) {
	start := time.Now()
	report, err := s.Check(ctx, site)
	if err != nil {
		return nil, err
	}
	if report.Invalid != nil {
		return report, report.Invalid
	}

	finalDir := s.cfg.OutputDir
	parent := filepath.Dir(finalDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output parent: %w", err)
	}
	tempDir, err := os.MkdirTemp(parent, ".__preview-")
	if err != nil {
		return nil, fmt.Errorf("create temp output dir: %w", err)
	}
	cleanTemp := true
	defer func() {
		if cleanTemp {
			_ = os.RemoveAll(tempDir)
		}
	}()

	if err := s.copyAssets(tempDir); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	configSource, err := s.writeConfigs(tempDir, site)
	if err != nil {
		return nil, err
	}

	data, err := s.pageData(site, report, configSource)
	if err != nil {
		return nil, err
	}
	if err := s.writePage(filepath.Join(tempDir, previewIndex), data); err != nil {
		return nil, err
	}

	notFound := *data
	notFound.PageTitle = "404 - " + data.Title
	notFound.ActivePath = ""
	notFound.ContentTemplate = templatex.NotFoundTemplate
	if err := s.writePage(filepath.Join(tempDir, previewNotFound), &notFound); err != nil {
		return nil, err
	}

	if err := fsutil.ReplaceDir(tempDir, finalDir); err != nil {
		return nil, err
	}
	cleanTemp = false

	s.log.Info().
		Str("output", finalDir).
		Int("links", len(report.Links)).
		Int("failures", report.Failures()).
		Dur("took", time.Since(start)).
		Msg("preview built")
	return report, nil
}

func (s *Service) copyAssets(tempDir string) error {
	public := s.cfg.PublicPath()
	if info, err := os.Stat(public); err == nil && info.IsDir() {
		if err := fsutil.CopyTree(public, tempDir); err != nil {
			return fmt.Errorf("copy public assets: %w", err)
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat public dir: %w", err)
	}

	if s.templates.StaticDir != "" {
		if err := fsutil.CopyTree(s.templates.StaticDir, filepath.Join(tempDir, "theme")); err != nil {
			return fmt.Errorf("copy theme assets: %w", err)
		}
	}
	return nil
}

// writeConfigs stores the configuration next to the preview and returns the
// indented JSON used for the highlighted listing.
func (s *Service) writeConfigs(tempDir string, site *siteconfig.Config) ([]byte, error) {
	pretty, err := siteconfig.Marshal(site, siteconfig.FormatJSON)
	if err != nil {
		return nil, err
	}
	compact, err := s.minifier.Bytes(renderer.MediaJSON, pretty)
	if err != nil {
		return nil, err
	}
	if err := fsutil.WriteFile(filepath.Join(tempDir, configJSON), compact); err != nil {
		return nil, fmt.Errorf("write %s: %w", configJSON, err)
	}

	module, err := siteconfig.Marshal(site, siteconfig.FormatModule)
	if err != nil {
		return nil, err
	}
	module, err = s.minifier.Bytes(renderer.MediaJavaScript, module)
	if err != nil {
		return nil, err
	}
	if err := fsutil.WriteFile(filepath.Join(tempDir, configModule), module); err != nil {
		return nil, fmt.Errorf("write %s: %w", configModule, err)
	}
	return pretty, nil
}

func (s *Service) pageData(site *siteconfig.Config, report *Report, configSource []byte) (*templatex.PageData, error) {
	configHTML, err := s.renderer.RenderCode("json", configSource)
	if err != nil {
		return nil, fmt.Errorf("highlight config: %w", err)
	}
	var css bytes.Buffer
	if err := s.renderer.HighlightCSS(&css, highlightStyle); err != nil {
		return nil, fmt.Errorf("highlight css: %w", err)
	}
	minCSS, err := s.minifier.Bytes(renderer.MediaCSS, css.Bytes())
	if err != nil {
		return nil, err
	}

	pages := make([]templatex.PageEntry, 0, len(report.Links))
	for _, link := range report.Links {
		entry := templatex.PageEntry{
			Location:    link.Location,
			Text:        link.Text,
			Link:        link.Link,
			Route:       link.Route,
			Source:      link.Source,
			Title:       link.Title,
			Description: link.Description,
			External:    link.External,
		}
		for _, h := range link.Sections {
			entry.Sections = append(entry.Sections, templatex.Anchor{ID: h.ID, Text: h.Text})
		}
		if link.Err != nil {
			entry.Problem = link.Err.Error()
		}
		pages = append(pages, entry)
	}

	return &templatex.PageData{
		Title:           site.Title,
		PageTitle:       site.Title,
		Description:     metaDescription(site.Description, site.Title),
		BaseURL:         s.cfg.BaseURL,
		Head:            site.Head,
		Nav:             site.Nav,
		Sidebar:         site.Sidebar,
		SocialLinks:     site.SocialLinks,
		ActivePath:      "/",
		ContentTemplate: templatex.ContentTemplate,
		ConfigHTML:      template.HTML(configHTML),
		HighlightCSS:    template.CSS(minCSS),
		Pages:           pages,
		GeneratedBy:     s.GeneratedBy,
	}, nil
}

func (s *Service) writePage(target string, data *templatex.PageData) error {
	var buf bytes.Buffer
	if err := s.templates.Render(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(target), err)
	}
	out, err := s.minifier.Bytes(renderer.MediaHTML, buf.Bytes())
	if err != nil {
		return err
	}
	return fsutil.WriteFile(target, out)
}
