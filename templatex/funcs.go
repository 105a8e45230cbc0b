package templatex

import (
	"html/template"
	"strings"

	"github.com/awsssrD/road/siteconfig"
)

const NotFoundTemplate = "content-404"

var voidHeadElements = map[string]bool{
	"base": true,
	"link": true,
	"meta": true,
}

var rawTextHeadElements = map[string]bool{
	"script": true,
	"style":  true,
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(v any) template.HTML {
			switch value := v.(type) {
			case template.HTML:
				return value
			case string:
				return template.HTML(value)
			default:
				return ""
			}
		},
		"baseHref":   baseHref,
		"siteLink":   SiteLink,
		"isExternal": siteconfig.IsExternal,
		"isActive":   isActive,
		"headTag":    HeadTag,
	}
}

func baseHref(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return "/"
	}
	return "/" + strings.Trim(base, "/") + "/"
}

// SiteLink prefixes internal links with the base URL and leaves external links alone.
func SiteLink(base, link string) string {
	if !siteconfig.IsInternal(link) {
		return link
	}
	prefix := strings.TrimSuffix(baseHref(base), "/")
	return prefix + link
}

func isActive(active, link string) bool {
	if active == "" || !siteconfig.IsInternal(link) {
		return false
	}
	trim := func(s string) string {
		s = strings.TrimSuffix(s, ".html")
		if s != "/" {
			s = strings.TrimSuffix(s, "/")
		}
		return s
	}
	return trim(active) == trim(link)
}

// HeadTag renders a configured head element. Unknown element names render nothing.
func HeadTag(tag siteconfig.HeadTag) template.HTML {
	name := strings.ToLower(strings.TrimSpace(tag.Name))
	if !voidHeadElements[name] && !rawTextHeadElements[name] && name != "noscript" && name != "title" {
		return ""
	}

	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(name)
	for _, attr := range tag.SortedAttrs() {
		if !validAttrName(attr.Key) {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(attr.Key)
		sb.WriteString(`="`)
		sb.WriteString(template.HTMLEscapeString(attr.Value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if voidHeadElements[name] {
		return template.HTML(sb.String())
	}
	if rawTextHeadElements[name] {
		sb.WriteString(strings.ReplaceAll(tag.Content, "</", `<\/`))
	} else {
		sb.WriteString(template.HTMLEscapeString(tag.Content))
	}
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
	return template.HTML(sb.String())
}

func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ':':
		default:
			return false
		}
	}
	return true
}
