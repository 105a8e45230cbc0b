package site

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

const indexDoc = "index.md"

// routeCandidates maps an internal link onto the markdown sources that may back it,
// in lookup order. "/" is index.md, "/x" is x.md or x/index.md.
func routeCandidates(link string) (string, []string, error) {
	route, err := normalizeRoute(link)
	if err != nil {
		return "", nil, err
	}
	if route == "/" {
		return route, []string{indexDoc}, nil
	}

	rel := strings.TrimPrefix(route, "/")
	if linkIsDirectory(link) {
		return route, []string{path.Join(rel, indexDoc), rel + ".md"}, nil
	}
	return route, []string{rel + ".md", path.Join(rel, indexDoc)}, nil
}

func linkIsDirectory(link string) bool {
	p, _, _ := strings.Cut(link, "#")
	p, _, _ = strings.Cut(p, "?")
	return strings.HasSuffix(strings.TrimSpace(p), "/")
}

// normalizeRoute strips query, fragment and page extensions and cleans the path.
func normalizeRoute(link string) (string, error) {
	candidate := strings.TrimSpace(link)
	if strings.Contains(candidate, "\x00") {
		return "", errors.Join(ErrInvalidPath, errors.New("contains null byte"))
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", errors.Join(ErrInvalidPath, err)
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return "", errors.Join(ErrInvalidPath, errors.New("not a site-relative link"))
	}

	raw := strings.ReplaceAll(parsed.Path, "\\", "/")
	if !strings.HasPrefix(raw, "/") {
		return "", errors.Join(ErrInvalidPath, errors.New("link must start with '/'"))
	}
	for _, segment := range strings.Split(strings.Trim(raw, "/"), "/") {
		if segment == ".." {
			return "", errors.Join(ErrInvalidPath, errors.New("path escapes content root"))
		}
		if strings.HasPrefix(segment, "-") {
			return "", errors.Join(ErrInvalidPath, errors.New("path segment cannot start with '-'"))
		}
	}

	cleaned := path.Clean(raw)
	lower := strings.ToLower(cleaned)
	for _, ext := range []string{".html", ".md"} {
		if strings.HasSuffix(lower, ext) {
			cleaned = cleaned[:len(cleaned)-len(ext)]
			break
		}
	}
	if strings.HasSuffix(cleaned, "/index") {
		cleaned = strings.TrimSuffix(cleaned, "index")
		cleaned = path.Clean(cleaned)
	}
	if cleaned == "" || cleaned == "." {
		cleaned = "/"
	}
	return cleaned, nil
}

// assetPath returns the public-dir relative file for a root-relative asset URL.
func assetPath(href string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", errors.Join(ErrInvalidPath, err)
	}
	cleaned := path.Clean("/" + strings.TrimPrefix(parsed.Path, "/"))
	if cleaned == "/" {
		return "", errors.Join(ErrInvalidPath, errors.New("asset path is empty"))
	}
	for _, segment := range strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/") {
		if segment == ".." {
			return "", errors.Join(ErrInvalidPath, errors.New("path escapes public root"))
		}
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}
