package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/awsssrD/road/renderer"
	"github.com/awsssrD/road/siteconfig"
)

// LinkResult is the outcome of resolving one configured link.
type LinkResult struct {
	siteconfig.LinkRef
	Route       string
	Source      string
	Title       string
	Description string
	Sections    []renderer.Heading
	External    bool
	Err         error
}

// failed reports whether the link has a problem of its own, one not already
// reported by validation.
func (l LinkResult) failed() bool {
	return l.Err != nil && !errors.Is(l.Err, siteconfig.ErrBadLink)
}

// AssetResult is the outcome of locating one file referenced from a head tag.
type AssetResult struct {
	Location string
	Href     string
	File     string
	Err      error
}

// Report collects everything Check found.
type Report struct {
	Invalid error
	Links   []LinkResult
	Assets  []AssetResult
}

// Failures counts each distinct problem once: every invalid field, every link
// that could not be resolved and every missing asset. Malformed links are already
// counted as invalid fields.
func (r *Report) Failures() int {
	n := 0
	if r.Invalid != nil {
		var verr *siteconfig.ValidationError
		if errors.As(r.Invalid, &verr) {
			n += len(verr.Fields)
		} else {
			n++
		}
	}
	for _, l := range r.Links {
		if l.failed() {
			n++
		}
	}
	for _, a := range r.Assets {
		if a.Err != nil {
			n++
		}
	}
	return n
}

// Err joins every failure into one error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	if r.Invalid != nil {
		errs = append(errs, r.Invalid)
	}
	for _, l := range r.Links {
		if l.failed() {
			errs = append(errs, fmt.Errorf("%s %q: %w", l.Location, l.Link, l.Err))
		}
	}
	for _, a := range r.Assets {
		if a.Err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", a.Location, a.Href, a.Err))
		}
	}
	return errors.Join(errs...)
}

// Check validates site and resolves its internal links against the content directory.
// Problems with the configuration end up in the report; the returned error is
// reserved for I/O failures and cancellation.
func (s *Service) Check(ctx context.Context, site *siteconfig.Config) (*Report, error) {
	report := &Report{Invalid: siteconfig.Validate(site)}
	if site == nil {
		return report, nil
	}

	for _, ref := range site.Links() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := s.resolveLink(ref)
		if err != nil {
			return nil, err
		}
		if result.Err != nil {
			s.log.Warn().Str("location", ref.Location).Str("link", ref.Link).Err(result.Err).Msg("unresolved link")
		} else {
			s.log.Debug().Str("location", ref.Location).Str("link", ref.Link).Str("source", result.Source).Msg("resolved link")
		}
		report.Links = append(report.Links, result)
	}

	for i, tag := range site.Head {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, key := range []string{"href", "src"} {
			href, ok := tag.Attrs[key]
			if !ok || !siteconfig.IsInternal(href) {
				continue
			}
			asset, err := s.locateAsset(fmt.Sprintf("head[%d].%s", i, key), href)
			if err != nil {
				return nil, err
			}
			report.Assets = append(report.Assets, asset)
		}
	}

	return report, nil
}

func (s *Service) resolveLink(ref siteconfig.LinkRef) (LinkResult, error) {
	result := LinkResult{LinkRef: ref}
	switch {
	case siteconfig.IsExternal(ref.Link):
		result.External = true
		return result, nil
	case !siteconfig.IsInternal(ref.Link):
		result.Err = siteconfig.ErrBadLink
		return result, nil
	}

	route, candidates, err := routeCandidates(ref.Link)
	if err != nil {
		result.Err = err
		return result, nil
	}
	result.Route = route

	source, found, err := s.documents.Find(candidates)
	if err != nil {
		return result, fmt.Errorf("resolve %s: %w", ref.Link, err)
	}
	if !found {
		result.Err = fmt.Errorf("%w: tried %v", ErrUnresolvedLink, candidates)
		return result, nil
	}

	doc, err := s.documents.Load(source)
	if err != nil {
		return result, err
	}
	result.Source = doc.Source
	result.Title = doc.Title
	result.Description = doc.Description
	result.Sections = doc.Sections
	return result, nil
}

func (s *Service) locateAsset(location, href string) (AssetResult, error) {
	asset := AssetResult{Location: location, Href: href}
	rel, err := assetPath(href)
	if err != nil {
		asset.Err = err
		return asset, nil
	}
	asset.File = filepath.Join(s.cfg.PublicPath(), filepath.FromSlash(rel))

	info, err := os.Stat(asset.File)
	switch {
	case err == nil && info.IsDir():
		asset.Err = fmt.Errorf("%w: %s is a directory", ErrMissingAsset, asset.File)
	case errors.Is(err, fs.ErrNotExist):
		asset.Err = fmt.Errorf("%w: %s", ErrMissingAsset, asset.File)
	case err != nil:
		return asset, fmt.Errorf("stat %s: %w", asset.File, err)
	}
	return asset, nil
}
