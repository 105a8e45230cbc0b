package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlRenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/unicode/norm"
)

// ClassPrefix is prepended to every chroma CSS class emitted by the renderer.
const ClassPrefix = "z-"

// Heading is a heading found while rendering.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// RenderResult holds what a page tells about itself: its title, outline and body text.
type RenderResult struct {
	PlainText   string
	Title       string
	Headings    []Heading
	FrontMatter map[string]any
}

// Renderer transforms markdown sources into HTML fragments.
type Renderer struct {
	md goldmark.Markdown
}

// New constructs a renderer with GitHub-flavored markdown, front matter and syntax highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(formatOptions()...),
				highlighting.WithWrapperRenderer(codeWrapper),
			),
			meta.Meta,
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			htmlRenderer.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

func formatOptions() []chromahtml.Option {
	return []chromahtml.Option{
		chromahtml.WithClasses(true),
		chromahtml.WithAllClasses(true),
		chromahtml.ClassPrefix(ClassPrefix),
		chromahtml.PreventSurroundingPre(true),
	}
}

// Render parses markdown and extracts the page title, headings, body text and front matter.
// Heading text is not part of PlainText.
func (r *Renderer) Render(src []byte) (*RenderResult, error) {
	pctx := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	frontMatter, err := meta.TryGet(pctx)
	if err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}

	headings := make([]Heading, 0, 8)
	plain := &strings.Builder{}
	slugCounts := make(map[string]int)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			label := extractText(node, src)
			id := ""
			if attr, ok := node.AttributeString("id"); ok {
				id = attributeToString(attr)
			}
			if id == "" {
				base := Slugify(label)
				if count := slugCounts[base]; count > 0 {
					id = fmt.Sprintf("%s-%d", base, count)
				} else {
					id = base
				}
				slugCounts[base]++
			} else {
				slugCounts[id]++
			}
			headings = append(headings, Heading{ID: id, Text: label, Level: node.Level})
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			plain.Write(node.Segment.Value(src))
			plain.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})

	return &RenderResult{
		PlainText:   strings.TrimSpace(plain.String()),
		Title:       pageTitle(frontMatter, headings),
		Headings:    headings,
		FrontMatter: frontMatter,
	}, nil
}

// RenderCode renders source as a highlighted code block for the given language.
func (r *Renderer) RenderCode(lang string, source []byte) ([]byte, error) {
	fence := "```"
	for bytes.Contains(source, []byte(fence)) {
		fence += "`"
	}
	var md bytes.Buffer
	md.WriteString(fence + lang + "\n")
	md.Write(source)
	if !bytes.HasSuffix(source, []byte("\n")) {
		md.WriteByte('\n')
	}
	md.WriteString(fence + "\n")

	var buf bytes.Buffer
	if err := r.md.Convert(md.Bytes(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HighlightCSS writes the stylesheet matching the classes emitted for code blocks.
func (r *Renderer) HighlightCSS(w io.Writer, style string) error {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	return chromahtml.New(formatOptions()...).WriteCSS(w, s)
}

// FrontMatterString returns a trimmed string value from front matter, or "".
func (res *RenderResult) FrontMatterString(key string) string {
	raw, ok := res.FrontMatter[key]
	if !ok || raw == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}

func pageTitle(frontMatter map[string]any, headings []Heading) string {
	if raw, ok := frontMatter["title"]; ok && raw != nil {
		if title := strings.TrimSpace(fmt.Sprint(raw)); title != "" {
			return title
		}
	}
	for _, h := range headings {
		if h.Level == 1 && h.Text != "" {
			return h.Text
		}
	}
	return ""
}

func extractText(root ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if n == root {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok && entering {
			sb.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func attributeToString(value any) string {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return ""
	}
}

// Slugify turns a heading into an anchor id. Letters and digits of any script are kept.
func Slugify(input string) string {
	input = strings.ToLower(strings.TrimSpace(norm.NFKC.String(input)))
	var sb strings.Builder
	lastDash := false
	for _, r := range input {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			sb.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if sb.Len() == 0 || lastDash {
				continue
			}
			sb.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "section"
	}
	return slug
}

func codeWrapper(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	lang := "text"
	if raw, ok := ctx.Language(); ok && len(raw) > 0 {
		lang = string(raw)
	}
	lang = string(util.EscapeHTML([]byte(lang)))
	if entering {
		_, _ = fmt.Fprintf(w, `<pre tabindex="0" class="%[2]schroma language-%[1]s" data-lang="%[1]s"><code class="language-%[1]s">`, lang, ClassPrefix)
		return
	}
	_, _ = w.WriteString("</code></pre>\n")
}
