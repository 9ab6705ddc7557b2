package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/store"
	"git.home.luguber.info/inful/astdoc/internal/transform"
)

type mapResolver map[string]store.Record

func (m mapResolver) Resolve(_ context.Context, typeTag, id string) (store.Record, error) {
	rec, ok := m[typeTag+"/"+id]
	if !ok {
		return store.Record{}, store.ErrNotFound.WithContext("id", id)
	}
	return rec, nil
}

// brokenResolver fails every lookup the way a broken database would.
type brokenResolver struct{}

func (brokenResolver) Resolve(_ context.Context, _, id string) (store.Record, error) {
	return store.Record{}, store.ErrQueryFailed.WithContext("id", id)
}

var records = mapResolver{
	"Book/b1":   {Type: store.TypeBook, ID: "b1", Name: "Dune", URL: "https://example.com/dune"},
	"Author/a1": {Type: store.TypeAuthor, ID: "a1", Name: "Frank Herbert"},
}

const doc = `
transform: compute_heading_levels
children:
  - node_type: Document
    title: reading notes
    children:
      - node_type: Head
        children:
          - Favourites
          - node_type: Para
            children:
              - "I liked "
              - node_type: Book
                id: b1
              - " by "
              - node_type: Author
                id: a1
              - " & "
              - node_type: Strong
                children: [more]
          - node_type: Head
            children:
              - Details
              - node_type: Markdown
                body: "Some *markdown* here."
      - node_type: Head
        children:
          - Unknown
          - node_type: Para
            children:
              - node_type: Book
                id: nope
`

func transformed(t *testing.T, src string) *ast.Tree {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	tr := ast.NewTree()
	root, err := tr.FromYAML(&n)
	require.NoError(t, err)
	require.NoError(t, tr.SetRoot(root))
	require.NoError(t, transform.NewEngine(transform.NewDefaultRegistry()).Run(tr))
	return tr
}

func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestHTMLRenderer(t *testing.T) {
	tr := transformed(t, doc)
	r, err := New(HTMLName, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, tr, records))

	page, err := html.Parse(&buf)
	require.NoError(t, err)

	titles := elements(page, "title")
	require.Len(t, titles, 1)
	assert.Equal(t, "reading notes", textOf(titles[0]))

	h1 := elements(page, "h1")
	require.Len(t, h1, 2)
	assert.Equal(t, "Favourites", textOf(h1[0]))
	h2 := elements(page, "h2")
	require.Len(t, h2, 1)
	assert.Equal(t, "Details", textOf(h2[0]))

	links := elements(page, "a")
	require.Len(t, links, 1)
	assert.Equal(t, "Dune", textOf(links[0]))
	assert.Contains(t, links[0].Attr, html.Attribute{Key: "href", Val: "https://example.com/dune"})

	paras := elements(page, "p")
	require.NotEmpty(t, paras)
	assert.Equal(t, "I liked Dune by Frank Herbert & more", textOf(paras[0]))
	assert.Len(t, elements(page, "strong"), 1)
	assert.Len(t, elements(page, "em"), 1, "markdown emphasis rendered by goldmark")

	spans := elements(page, "span")
	var unresolved bool
	for _, s := range spans {
		if textOf(s) == "nope" {
			unresolved = true
		}
	}
	assert.True(t, unresolved, "unknown record falls back to its id")
}

func TestHTMLClampsHeadingLevels(t *testing.T) {
	tr := ast.NewTree()
	root := tr.NewDict(TypeDocument)
	require.NoError(t, tr.SetRoot(root))
	h := tr.NewDict(TypeHead)
	require.NoError(t, tr.SetHeadingLevel(h, 9))
	require.NoError(t, tr.AppendChild(h, tr.NewText("deep")))
	require.NoError(t, tr.AppendChild(root, h))

	var buf bytes.Buffer
	require.NoError(t, NewHTML(nil).Render(context.Background(), &buf, tr, nil))
	assert.Contains(t, buf.String(), "<h6>deep</h6>")
}

func TestTextRenderer(t *testing.T) {
	tr := transformed(t, doc)
	r, err := New(TextName, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, tr, records))

	want := strings.Join([]string{
		"Reading Notes\n#############",
		"Favourites\n==========",
		"I liked Dune <https://example.com/dune> by Frank Herbert & more",
		"Details\n-------",
		"Some *markdown* here.",
		"Unknown\n=======",
		"nope",
	}, "\n\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderersRefuseUnresolvedTrees(t *testing.T) {
	tr := ast.NewTree()
	root := tr.NewDict(TypeDocument)
	require.NoError(t, tr.SetRoot(root))
	require.NoError(t, tr.AppendChild(root, tr.NewTransformation(transform.NameEnvVar)))

	for _, name := range Names() {
		r, err := New(name, nil)
		require.NoError(t, err)
		err = r.Render(context.Background(), &bytes.Buffer{}, tr, nil)
		assert.True(t, errors.Is(err, ErrUnresolvedTransform), name)
	}
}

func TestRenderersRefuseMarkersInFields(t *testing.T) {
	tr := ast.NewTree()
	root := tr.NewDict(TypeDocument)
	require.NoError(t, tr.SetRoot(root))
	require.NoError(t, tr.SetField(root, "title", tr.NewTransformation(transform.NameEnvVar)))

	for _, name := range Names() {
		r, err := New(name, nil)
		require.NoError(t, err)
		err = r.Render(context.Background(), &bytes.Buffer{}, tr, nil)
		assert.True(t, errors.Is(err, ErrUnresolvedTransform), name)
	}
}

func TestRecordLookupFailureFailsRender(t *testing.T) {
	tr := transformed(t, doc)
	for _, name := range Names() {
		r, err := New(name, nil)
		require.NoError(t, err)

		var buf bytes.Buffer
		err = r.Render(context.Background(), &buf, tr, brokenResolver{})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrRenderFailed), name)
		assert.True(t, errors.Is(err, store.ErrQueryFailed), name)
		assert.Empty(t, buf.String(), name)
	}
}

func TestUnknownRenderer(t *testing.T) {
	_, err := New("pdf", nil)
	assert.True(t, errors.Is(err, ErrUnknownRenderer))
}
