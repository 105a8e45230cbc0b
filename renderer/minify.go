package renderer

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

const (
	MediaHTML       = "text/html"
	MediaCSS        = "text/css"
	MediaJSON       = "application/json"
	MediaJavaScript = "application/javascript"
)

// Minifier compacts generated assets. A disabled Minifier returns input unchanged.
type Minifier struct {
	m       *minify.M
	enabled bool
}

// NewMinifier constructs a Minifier for HTML, CSS, JSON and JavaScript output.
func NewMinifier(enabled bool) *Minifier {
	m := minify.New()
	m.Add(MediaHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc(MediaCSS, css.Minify)
	m.AddFunc(MediaJSON, json.Minify)
	m.AddFunc(MediaJavaScript, js.Minify)
	return &Minifier{m: m, enabled: enabled}
}

// Enabled reports whether output is minified.
func (mi *Minifier) Enabled() bool {
	return mi != nil && mi.enabled
}

// Bytes minifies raw according to its media type.
func (mi *Minifier) Bytes(mediaType string, raw []byte) ([]byte, error) {
	if !mi.Enabled() {
		return raw, nil
	}
	out, err := mi.m.Bytes(mediaType, raw)
	if err != nil {
		return nil, fmt.Errorf("minify %s: %w", mediaType, err)
	}
	return out, nil
}
