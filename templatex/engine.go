package templatex

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/awsssrD/road/siteconfig"
)

const (
	LayoutTemplate  = "layout"
	ContentTemplate = "content-preview"
)

//go:embed templates/*.html templates/partials/*.html
var defaultTemplates embed.FS

// Engine is a thin wrapper around Go templates with an embedded default layout.
type Engine struct {
	templates *template.Template
	StaticDir string
}

// PageData is the model handed to the layout template.
type PageData struct {
	Title           string
	PageTitle       string
	Description     string
	BaseURL         string
	Head            []siteconfig.HeadTag
	Nav             []siteconfig.NavItem
	Sidebar         []siteconfig.SidebarSection
	SocialLinks     []siteconfig.SocialLink
	ActivePath      string
	ContentTemplate string
	ConfigHTML      template.HTML
	HighlightCSS    template.CSS
	Pages           []PageEntry
	GeneratedBy     string
}

// PageEntry summarizes one link of the configuration for the preview listing.
type PageEntry struct {
	Location    string
	Text        string
	Link        string
	Route       string
	Source      string
	Title       string
	Description string
	Sections    []Anchor
	External    bool
	Problem     string
}

// Anchor is a heading inside a page that can be linked with #ID.
type Anchor struct {
	ID   string
	Text string
}

// Load instantiates an engine. With an empty templateDir the embedded layout is used.
func Load(templateDir string) (*Engine, error) {
	tpl := template.New("root").Funcs(funcs())

	var err error
	if strings.TrimSpace(templateDir) == "" {
		tpl, err = tpl.ParseFS(defaultTemplates, "templates/*.html", "templates/partials/*.html")
		if err != nil {
			return nil, fmt.Errorf("parse embedded templates: %w", err)
		}
		return &Engine{templates: tpl}, nil
	}

	files, err := templateFiles(templateDir)
	if err != nil {
		return nil, err
	}
	tpl, err = tpl.ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if tpl.Lookup(LayoutTemplate) == nil {
		return nil, fmt.Errorf("template %q is not defined", LayoutTemplate)
	}

	engine := &Engine{templates: tpl}
	assetsPath := filepath.Join(templateDir, "assets")
	if info, err := os.Stat(assetsPath); err == nil && info.IsDir() {
		engine.StaticDir = assetsPath
	}
	return engine, nil
}

func templateFiles(templateDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("glob main templates: %w", err)
	}

	partialsDir := filepath.Join(templateDir, "partials")
	if info, err := os.Stat(partialsDir); err == nil && info.IsDir() {
		partials, err := filepath.Glob(filepath.Join(partialsDir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("glob partial templates: %w", err)
		}
		files = append(files, partials...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templateDir)
	}
	sort.Strings(files)
	return files, nil
}

// Render writes the rendered layout into w.
func (e *Engine) Render(w io.Writer, data *PageData) error {
	if e == nil || e.templates == nil {
		return fmt.Errorf("template engine not initialized")
	}
	if data != nil && strings.TrimSpace(data.ContentTemplate) == "" {
		data.ContentTemplate = ContentTemplate
	}
	return e.templates.ExecuteTemplate(w, LayoutTemplate, data)
}
