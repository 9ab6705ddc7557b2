package ast

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleDoc = `
node_type: Document
title: Sample
children:
  - node_type: Head
    children:
      - Introduction
  - transform: env_var
    body: GREETING
  - node_type: Book
    id: b1
  - node_type: Para
    weight: 2
    ratio: 0.5
    draft: false
    children:
      - plain text
      - [a, b]
`

func parse(t *testing.T, src string) (*Tree, ID) {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	tr := NewTree()
	root, err := tr.FromYAML(&doc)
	require.NoError(t, err)
	require.NoError(t, tr.SetRoot(root))
	return tr, root
}

func TestFromYAML(t *testing.T) {
	tr, root := parse(t, sampleDoc)

	assert.Equal(t, KindDict, tr.Kind(root))
	assert.Equal(t, "Document", tr.Type(root))
	title, ok := tr.StringField(root, "title")
	require.True(t, ok)
	assert.Equal(t, "Sample", title)

	kids := tr.Children(root)
	require.Len(t, kids, 4)

	head := kids[0]
	assert.Equal(t, "Head", tr.Type(head))
	headText := tr.Children(head)[0]
	assert.Equal(t, KindLiteral, tr.Kind(headText))
	assert.Equal(t, "Introduction", tr.Value(headText))

	env := kids[1]
	assert.Equal(t, KindTransformation, tr.Kind(env))
	assert.Equal(t, "env_var", tr.TransformName(env))
	assert.Equal(t, TypeTransformation, tr.Type(env))
	body, _ := tr.StringField(env, "body")
	assert.Equal(t, "GREETING", body)

	assert.Equal(t, "b1", tr.RecordID(kids[2]))

	para := kids[3]
	w, _ := tr.Field(para, "weight")
	assert.Equal(t, int64(2), tr.Value(w))
	r, _ := tr.Field(para, "ratio")
	assert.Equal(t, 0.5, tr.Value(r))
	d, _ := tr.Field(para, "draft")
	assert.Equal(t, false, tr.Value(d))
	pk := tr.Children(para)
	require.Len(t, pk, 2)
	assert.Equal(t, KindList, tr.Kind(pk[1]))
	assert.Len(t, tr.Children(pk[1]), 2)

	for _, k := range kids {
		assert.Equal(t, root, tr.Parent(k))
	}
}

func TestFromYAMLAliases(t *testing.T) {
	tr, root := parse(t, `
node_type: Document
shared: &s {node_type: Para, children: [x]}
children:
  - *s
  - *s
`)
	kids := tr.Children(root)
	require.Len(t, kids, 2)
	assert.NotEqual(t, kids[0], kids[1], "each alias use is a distinct node")
	assert.Equal(t, "Para", tr.Type(kids[1]))
}

func TestFromYAMLInvalid(t *testing.T) {
	tests := map[string]string{
		"children not a sequence": "node_type: Document\nchildren: nope\n",
		"bad heading level":       "node_type: Head\nheading_level: high\n",
		"empty transform":         "transform: ''\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			var doc yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
			_, err := NewTree().FromYAML(&doc)
			assert.True(t, errors.Is(err, ErrInvalidDocument), "got %v", err)
		})
	}
}

func TestToYAMLRoundTrip(t *testing.T) {
	tr, root := parse(t, sampleDoc)
	require.NoError(t, tr.SetHeadingLevel(tr.Children(root)[0], 1))

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, tr, root))
	out := buf.String()
	assert.Contains(t, out, "heading_level: 1")
	assert.Contains(t, out, "transform: env_var")
	assert.NotContains(t, out, "parent")

	again, root2 := parse(t, out)
	var first, second bytes.Buffer
	require.NoError(t, Dump(&first, tr, root))
	require.NoError(t, Dump(&second, again, root2))
	assert.Equal(t, first.String(), second.String())
	lv, ok := again.HeadingLevel(again.Children(root2)[0])
	require.True(t, ok)
	assert.Equal(t, 1, lv)
}

func TestFormatFloatKeepsFloatTag(t *testing.T) {
	assert.Equal(t, "2.0", formatFloat(2))
	assert.Equal(t, "0.25", formatFloat(0.25))
	assert.Equal(t, ".inf", formatFloat(math.Inf(1)))
}
