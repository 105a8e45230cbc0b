package site

import (
	"github.com/rs/zerolog"

	"github.com/awsssrD/road/config"
	"github.com/awsssrD/road/renderer"
	"github.com/awsssrD/road/siteconfig"
	"github.com/awsssrD/road/templatex"
)

// Service checks the site configuration against the content tree and builds previews.
type Service struct {
	cfg       *config.Config
	templates *templatex.Engine
	renderer  *renderer.Renderer
	minifier  *renderer.Minifier
	documents *DocumentStore
	log       zerolog.Logger

	// GeneratedBy is printed in the preview footer.
	GeneratedBy string
}

// NewService constructs a Service instance.
func NewService(cfg *config.Config, templates *templatex.Engine, log zerolog.Logger) *Service {
	rend := renderer.New()
	return &Service{
		cfg:       cfg,
		templates: templates,
		renderer:  rend,
		minifier:  renderer.NewMinifier(cfg.Minify),
		documents: newDocumentStore(cfg.ContentDir, rend),
		log:       log,
	}
}

// Site returns the site configuration in effect.
func (s *Service) Site() (*siteconfig.Config, error) {
	return s.cfg.Site()
}

// OutputDir returns the preview output directory.
func (s *Service) OutputDir() string {
	return s.cfg.OutputDir
}
