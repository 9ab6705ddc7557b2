package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/store"
)

// HTMLName selects the HTML renderer.
const HTMLName = "html"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}</body>
</html>
`))

var inlineTags = map[string]string{
	TypeStrong: "strong",
	TypeEmph:   "em",
	TypeSub:    "sub",
	TypeSup:    "sup",
}

// HTML renders a tree as a standalone HTML page.
type HTML struct {
	logger *slog.Logger
	md     goldmark.Markdown
}

// NewHTML creates the HTML renderer.
func NewHTML(logger *slog.Logger) *HTML {
	return &HTML{logger: logger, md: goldmark.New()}
}

func (h *HTML) Name() string { return HTMLName }

type htmlState struct {
	ctx context.Context
	t   *ast.Tree
	res store.Resolver
	buf bytes.Buffer
}

func (h *HTML) Render(ctx context.Context, w io.Writer, t *ast.Tree, res store.Resolver) error {
	if err := checkResolved(t); err != nil {
		return err
	}
	s := &htmlState{ctx: ctx, t: t, res: res}
	root := t.Root()
	title := "Untitled"
	if v, ok := t.StringField(root, FieldTitle); ok {
		title = v
	}

	var body []ast.ID
	if t.Type(root) == TypeDocument || t.Kind(root) == ast.KindList {
		body = expand(t, t.Children(root))
	} else if root != ast.NoID {
		body = []ast.ID{root}
	}
	for _, id := range body {
		if err := h.node(s, id); err != nil {
			return err
		}
	}

	err := pageTemplate.Execute(w, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(s.buf.String())}) //nolint:gosec // assembled from escaped fragments
	if err != nil {
		return ErrRenderFailed.WithCause(err).WithContext("renderer", HTMLName)
	}
	return nil
}

func (h *HTML) node(s *htmlState, id ast.ID) error {
	t := s.t
	if err := s.ctx.Err(); err != nil {
		return err
	}
	switch t.Kind(id) {
	case ast.KindLiteral:
		s.buf.WriteString(template.HTMLEscapeString(literalString(t.Value(id))))
		return nil
	case ast.KindList:
		return h.children(s, expand(t, t.Children(id)))
	}

	typ := t.Type(id)
	if tag, ok := inlineTags[typ]; ok {
		fmt.Fprintf(&s.buf, "<%s>", tag)
		if err := h.children(s, expand(t, t.Children(id))); err != nil {
			return err
		}
		fmt.Fprintf(&s.buf, "</%s>", tag)
		return nil
	}

	switch typ {
	case TypePara:
		s.buf.WriteString("<p>")
		if err := h.children(s, expand(t, t.Children(id))); err != nil {
			return err
		}
		s.buf.WriteString("</p>\n")
	case TypeHead:
		lv := min(max(headingLevel(t, id), 1), 6)
		inline, blocks := splitInline(t, id)
		fmt.Fprintf(&s.buf, "<h%d>", lv)
		if err := h.children(s, inline); err != nil {
			return err
		}
		fmt.Fprintf(&s.buf, "</h%d>\n", lv)
		return h.children(s, blocks)
	case TypeMarkdown:
		if err := h.md.Convert([]byte(markdownSource(t, id)), &s.buf); err != nil {
			return ErrRenderFailed.WithCause(err).WithContext("node_type", typ)
		}
	case store.TypeBook, store.TypeAuthor:
		rec, err := resolveRecord(s.ctx, h.logger, t, id, s.res)
		if err != nil {
			return err
		}
		class := "book"
		if typ == store.TypeAuthor {
			class = "author"
		}
		name := template.HTMLEscapeString(rec.Name)
		if rec.URL != "" {
			fmt.Fprintf(&s.buf, `<a class="%s" href="%s">%s</a>`, class, template.HTMLEscapeString(rec.URL), name)
		} else {
			fmt.Fprintf(&s.buf, `<span class="%s">%s</span>`, class, name)
		}
	default:
		return h.children(s, expand(t, t.Children(id)))
	}
	return nil
}

func (h *HTML) children(s *htmlState, ids []ast.ID) error {
	for _, c := range ids {
		if err := h.node(s, c); err != nil {
			return err
		}
	}
	return nil
}
