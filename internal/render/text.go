package render

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/store"
)

// TextName selects the plain text renderer.
const TextName = "text"

// Text renders a tree as NFC-normalized UTF-8 plain text. The document title
// is title-cased, headings are underlined, and blocks are separated by blank
// lines.
type Text struct {
	logger *slog.Logger
	title  cases.Caser
}

// NewText creates the plain text renderer.
func NewText(logger *slog.Logger) *Text {
	return &Text{logger: logger, title: cases.Title(language.Und)}
}

func (x *Text) Name() string { return TextName }

type textState struct {
	ctx    context.Context
	t      *ast.Tree
	res    store.Resolver
	blocks []string
}

func (x *Text) Render(ctx context.Context, w io.Writer, t *ast.Tree, res store.Resolver) error {
	if err := checkResolved(t); err != nil {
		return err
	}
	s := &textState{ctx: ctx, t: t, res: res}
	root := t.Root()
	if title, ok := t.StringField(root, FieldTitle); ok {
		s.blocks = append(s.blocks, underline(x.title.String(title), '#'))
	}
	if root != ast.NoID {
		if err := x.block(s, root); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	out := norm.NFC.String(strings.Join(s.blocks, "\n\n"))
	if out != "" {
		out += "\n"
	}
	if _, err := bw.WriteString(out); err != nil {
		return ErrRenderFailed.WithCause(err).WithContext("renderer", TextName)
	}
	if err := bw.Flush(); err != nil {
		return ErrRenderFailed.WithCause(err).WithContext("renderer", TextName)
	}
	return nil
}

func (x *Text) block(s *textState, id ast.ID) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	t := s.t
	switch {
	case t.Kind(id) == ast.KindList:
		return x.blocksOf(s, expand(t, t.Children(id)))
	case isInline(t, id):
		p, err := x.inline(s, []ast.ID{id})
		if err != nil {
			return err
		}
		s.blocks = append(s.blocks, p)
		return nil
	}

	switch t.Type(id) {
	case TypePara:
		p, err := x.inline(s, expand(t, t.Children(id)))
		if err != nil {
			return err
		}
		if p != "" {
			s.blocks = append(s.blocks, p)
		}
		return nil
	case TypeHead:
		inline, blocks := splitInline(t, id)
		mark := '-'
		if headingLevel(t, id) <= 1 {
			mark = '='
		}
		title, err := x.inline(s, inline)
		if err != nil {
			return err
		}
		s.blocks = append(s.blocks, underline(title, mark))
		return x.blocksOf(s, blocks)
	case TypeMarkdown:
		if src := strings.TrimSpace(markdownSource(t, id)); src != "" {
			s.blocks = append(s.blocks, src)
		}
		return nil
	default:
		inline, blocks := splitInline(t, id)
		p, err := x.inline(s, inline)
		if err != nil {
			return err
		}
		if p != "" {
			s.blocks = append(s.blocks, p)
		}
		return x.blocksOf(s, blocks)
	}
}

func (x *Text) blocksOf(s *textState, ids []ast.ID) error {
	for _, id := range ids {
		if err := x.block(s, id); err != nil {
			return err
		}
	}
	return nil
}

// inline renders inline content on one line; nested blocks are flattened.
func (x *Text) inline(s *textState, ids []ast.ID) (string, error) {
	var b strings.Builder
	for _, id := range ids {
		t := s.t
		switch {
		case t.Kind(id) == ast.KindLiteral:
			b.WriteString(literalString(t.Value(id)))
		case t.Type(id) == store.TypeBook || t.Type(id) == store.TypeAuthor:
			rec, err := resolveRecord(s.ctx, x.logger, t, id, s.res)
			if err != nil {
				return "", err
			}
			b.WriteString(rec.Name)
			if rec.URL != "" {
				b.WriteString(" <" + rec.URL + ">")
			}
		default:
			p, err := x.inline(s, expand(t, t.Children(id)))
			if err != nil {
				return "", err
			}
			b.WriteString(p)
		}
	}
	return b.String(), nil
}

func underline(s string, mark rune) string {
	n := max(utf8.RuneCountInString(s), 1)
	return s + "\n" + strings.Repeat(string(mark), n)
}
