// Package render turns fully transformed trees into output documents.
package render

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
	"git.home.luguber.info/inful/astdoc/internal/store"
	"git.home.luguber.info/inful/astdoc/internal/transform"
)

var (
	// ErrUnresolvedTransform reports a tree that still holds transformation markers.
	ErrUnresolvedTransform = errors.RenderError("tree still contains transformation markers").Build()

	// ErrRenderFailed wraps output and conversion failures.
	ErrRenderFailed = errors.RenderError("failed to render document").Build()

	// ErrUnknownRenderer reports a renderer name with no implementation.
	ErrUnknownRenderer = errors.ValidationError("unknown renderer").Build()
)

// Node types with dedicated output.
const (
	TypeDocument = "Document"
	TypePara     = "Para"
	TypeHead     = "Head"
	TypeStrong   = "Strong"
	TypeEmph     = "Emph"
	TypeSub      = "Sub"
	TypeSup      = "Sup"
	TypeMarkdown = "Markdown"
)

// Fields read by renderers.
const (
	FieldTitle = "title"
	FieldBody  = "body"
)

// Renderer writes a transformed tree to w, resolving record ids through res.
type Renderer interface {
	Name() string
	Render(ctx context.Context, w io.Writer, t *ast.Tree, res store.Resolver) error
}

// New returns the renderer registered under name.
func New(name string, logger *slog.Logger) (Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case HTMLName:
		return NewHTML(logger), nil
	case TextName:
		return NewText(logger), nil
	default:
		return nil, ErrUnknownRenderer.
			WithContext("renderer", name).
			WithContext("available", Names())
	}
}

// Names lists the available renderers.
func Names() []string { return []string{HTMLName, TextName} }

// checkResolved refuses trees a failed or partial run left behind.
func checkResolved(t *ast.Tree) error {
	if left := transform.Outstanding(t); len(left) > 0 {
		return ErrUnresolvedTransform.
			WithContext("transform", t.TransformName(left[0])).
			WithContext("count", len(left))
	}
	return nil
}

var inlineTypes = []string{TypeStrong, TypeEmph, TypeSub, TypeSup, store.TypeBook, store.TypeAuthor}

func isInline(t *ast.Tree, id ast.ID) bool {
	return t.Kind(id) == ast.KindLiteral || slices.Contains(inlineTypes, t.Type(id))
}

// expand flattens lists, which have no output of their own.
func expand(t *ast.Tree, ids []ast.ID) []ast.ID {
	out := make([]ast.ID, 0, len(ids))
	for _, id := range ids {
		if t.Kind(id) == ast.KindList {
			out = append(out, expand(t, t.Children(id))...)
			continue
		}
		out = append(out, id)
	}
	return out
}

// splitInline separates the leading inline content of a node from its blocks.
func splitInline(t *ast.Tree, id ast.ID) (inline, blocks []ast.ID) {
	for _, c := range expand(t, t.Children(id)) {
		if isInline(t, c) {
			inline = append(inline, c)
		} else {
			blocks = append(blocks, c)
		}
	}
	return inline, blocks
}

func literalString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// markdownSource returns the Markdown of a node: its body field, or its
// text children joined by newlines.
func markdownSource(t *ast.Tree, id ast.ID) string {
	if body, ok := t.StringField(id, FieldBody); ok {
		return body
	}
	var src string
	for _, c := range expand(t, t.Children(id)) {
		if t.Kind(c) == ast.KindLiteral {
			if src != "" {
				src += "\n"
			}
			src += literalString(t.Value(c))
		}
	}
	return src
}

// resolveRecord looks up the record of a Book or Author node. A missing
// record renders as its bare id; any other lookup failure fails the render.
func resolveRecord(ctx context.Context, logger *slog.Logger, t *ast.Tree, id ast.ID, res store.Resolver) (store.Record, error) {
	rec := store.Record{Type: t.Type(id), ID: t.RecordID(id), Name: t.RecordID(id)}
	if res == nil || rec.ID == "" {
		return rec, nil
	}
	found, err := res.Resolve(ctx, rec.Type, rec.ID)
	switch {
	case err == nil:
		return found, nil
	case stderrors.Is(err, store.ErrNotFound):
		logger.Warn("Unresolved record", logfields.NodeType(rec.Type), slog.String("record_id", rec.ID), logfields.Error(err))
		return rec, nil
	default:
		return store.Record{}, ErrRenderFailed.WithCause(err).
			WithContext("node_type", rec.Type).
			WithContext("record_id", rec.ID)
	}
}

func headingLevel(t *ast.Tree, id ast.ID) int {
	lv, ok := t.HeadingLevel(id)
	if !ok {
		lv = transform.AmbientLevel(t, id) + 1
	}
	return lv
}
