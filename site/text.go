package site

import (
	"path"
	"strings"
)

func deriveTitle(relPath string) string {
	name := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	if name == "index" {
		if dir := path.Dir(relPath); dir != "." && dir != "/" {
			name = path.Base(dir)
		}
	}
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return name
}

func metaDescription(summary, fallback string) string {
	const limit = 160
	text := strings.TrimSpace(summary)
	if text == "" {
		text = strings.TrimSpace(fallback)
	}
	if text == "" {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "..."
}
