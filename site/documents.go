package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/awsssrD/road/renderer"
)

// sectionLevel is the heading level listed as a page's sections.
const sectionLevel = 2

// document is what the checker learns about a page backing a link.
type document struct {
	Source      string
	Title       string
	Description string
	Sections    []renderer.Heading
	ModTime     time.Time
}

// DocumentStore reads markdown sources from the content directory and caches
// their rendered metadata until the file changes.
type DocumentStore struct {
	dir      string
	renderer *renderer.Renderer

	mu    sync.RWMutex
	cache map[string]document
}

func newDocumentStore(dir string, rend *renderer.Renderer) *DocumentStore {
	return &DocumentStore{dir: dir, renderer: rend, cache: make(map[string]document)}
}

// Find returns the first candidate that exists as a regular file.
func (d *DocumentStore) Find(candidates []string) (string, bool, error) {
	for _, rel := range candidates {
		info, err := os.Stat(d.path(rel))
		if err == nil {
			if !info.IsDir() {
				return rel, true, nil
			}
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, err
		}
	}
	return "", false, nil
}

// Load returns metadata for the page at rel, rendering it when the cache is stale.
func (d *DocumentStore) Load(rel string) (document, error) {
	full := d.path(rel)
	info, err := os.Stat(full)
	if err != nil {
		return document{}, err
	}

	d.mu.RLock()
	cached, ok := d.cache[rel]
	d.mu.RUnlock()
	if ok && cached.ModTime.Equal(info.ModTime()) {
		return cached, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", rel, err)
	}
	rendered, err := d.renderer.Render(data)
	if err != nil {
		return document{}, fmt.Errorf("render %s: %w", rel, err)
	}

	doc := document{
		Source:      rel,
		Title:       rendered.Title,
		Description: metaDescription(rendered.FrontMatterString("description"), rendered.PlainText),
		ModTime:     info.ModTime(),
	}
	if doc.Title == "" {
		doc.Title = deriveTitle(rel)
	}
	for _, h := range rendered.Headings {
		if h.Level == sectionLevel {
			doc.Sections = append(doc.Sections, h)
		}
	}

	d.mu.Lock()
	d.cache[rel] = doc
	d.mu.Unlock()
	return doc, nil
}

func (d *DocumentStore) path(rel string) string {
	return filepath.Join(d.dir, filepath.FromSlash(rel))
}
