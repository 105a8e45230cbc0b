package site

import "errors"

var (
	// ErrInvalidPath is returned when a link cannot be mapped onto the content tree.
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnresolvedLink signals that no markdown source exists for an internal link.
	ErrUnresolvedLink = errors.New("link does not resolve to a page")
	// ErrMissingAsset signals that a head tag references a file absent from the public dir.
	ErrMissingAsset = errors.New("asset not found")
)
