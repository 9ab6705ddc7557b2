package ast

import (
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagBool  = "!!bool"
	tagNull  = "!!null"
	tagMap   = "!!map"
	tagSeq   = "!!seq"
)

// FromYAML converts a decoded YAML node into a detached subtree of t and
// returns its root. Mappings carrying a transform key become transformation
// nodes, other mappings dicts, sequences lists and scalars literals. Aliases
// are resolved to the anchored value.
func (t *Tree) FromYAML(n *yaml.Node) (ID, error) {
	return t.fromYAML(n, 0)
}

func (t *Tree) fromYAML(n *yaml.Node, depth int) (ID, error) {
	if n == nil {
		return NoID, ErrInvalidDocument.WithContext("reason", "empty document")
	}
	if depth > DefaultMaxDepth {
		return NoID, ErrRecursionLimit.WithContext("max_depth", DefaultMaxDepth).WithContext("line", n.Line)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NoID, ErrInvalidDocument.WithContext("reason", "empty document")
		}
		return t.fromYAML(n.Content[0], depth)
	case yaml.AliasNode:
		return t.fromYAML(n.Alias, depth+1)
	case yaml.MappingNode:
		return t.mappingFromYAML(n, depth)
	case yaml.SequenceNode:
		list := t.NewList()
		if err := t.appendYAMLChildren(list, n, depth); err != nil {
			return NoID, err
		}
		return list, nil
	case yaml.ScalarNode:
		return t.scalarFromYAML(n)
	default:
		return NoID, ErrInvalidDocument.WithContext("reason", "unsupported yaml node").WithContext("line", n.Line)
	}
}

func (t *Tree) mappingFromYAML(n *yaml.Node, depth int) (ID, error) {
	if len(n.Content)%2 != 0 {
		return NoID, ErrInvalidDocument.WithContext("reason", "malformed mapping").WithContext("line", n.Line)
	}

	var nodeType, transform, recordID string
	var children *yaml.Node
	var level *int
	var fields []*yaml.Node
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i], resolveAlias(n.Content[i+1])
		switch k.Value {
		case KeyNodeType:
			nodeType = v.Value
		case KeyTransform:
			if v.Kind != yaml.ScalarNode || v.Value == "" {
				return NoID, ErrInvalidDocument.WithContext("reason", "transform must be a non-empty name").WithContext("line", v.Line)
			}
			transform = v.Value
		case KeyID:
			recordID = v.Value
		case KeyChildren:
			if v.Kind != yaml.SequenceNode {
				return NoID, ErrInvalidDocument.WithContext("reason", "children must be a sequence").WithContext("line", v.Line)
			}
			children = v
		case KeyHeadingLevel:
			lv, err := strconv.Atoi(v.Value)
			if err != nil {
				return NoID, ErrInvalidDocument.WithContext("reason", "heading_level must be an integer").WithContext("line", v.Line)
			}
			level = &lv
		default:
			fields = append(fields, k, n.Content[i+1])
		}
	}

	var id ID
	if transform != "" {
		id = t.NewTransformation(transform)
		if nodeType != "" {
			t.nodes[id].nodeType = nodeType
		}
	} else {
		id = t.NewDict(nodeType)
	}
	t.nodes[id].recordID = recordID
	if level != nil {
		_ = t.SetHeadingLevel(id, *level)
	}
	for i := 0; i < len(fields); i += 2 {
		v, err := t.fromYAML(fields[i+1], depth+1)
		if err != nil {
			return NoID, err
		}
		if err := t.SetField(id, fields[i].Value, v); err != nil {
			return NoID, err
		}
	}
	if children != nil {
		if err := t.appendYAMLChildren(id, children, depth); err != nil {
			return NoID, err
		}
	}
	return id, nil
}

func (t *Tree) appendYAMLChildren(parent ID, seq *yaml.Node, depth int) error {
	for _, item := range seq.Content {
		c, err := t.fromYAML(item, depth+1)
		if err != nil {
			return err
		}
		if err := t.AppendChild(parent, c); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) scalarFromYAML(n *yaml.Node) (ID, error) {
	switch n.ShortTag() {
	case tagInt:
		var v int64
		if err := n.Decode(&v); err != nil {
			return NoID, ErrInvalidDocument.WithContext("reason", "bad integer").WithContext("line", n.Line)
		}
		return t.NewLiteral(v), nil
	case tagFloat:
		var v float64
		if err := n.Decode(&v); err != nil {
			return NoID, ErrInvalidDocument.WithContext("reason", "bad float").WithContext("line", n.Line)
		}
		return t.NewLiteral(v), nil
	case tagBool:
		var v bool
		if err := n.Decode(&v); err != nil {
			return NoID, ErrInvalidDocument.WithContext("reason", "bad boolean").WithContext("line", n.Line)
		}
		return t.NewLiteral(v), nil
	case tagNull:
		return t.NewLiteral(nil), nil
	default:
		return t.NewLiteral(n.Value), nil
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// ToYAML converts the subtree at id back into the document shape accepted by
// FromYAML. Resolved heading levels are emitted; parent links never are.
func ToYAML(t *Tree, id ID) (*yaml.Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound.WithContext("node", id)
	}
	switch n.kind {
	case KindLiteral:
		return literalToYAML(n.value), nil
	case KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
		if err := appendYAMLNodes(t, seq, n.children); err != nil {
			return nil, err
		}
		return seq, nil
	case KindDict, KindTransformation:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
		if n.kind == KindTransformation {
			addPair(m, KeyTransform, strScalar(n.transform))
			if n.nodeType != TypeTransformation {
				addPair(m, KeyNodeType, strScalar(n.nodeType))
			}
		} else {
			addPair(m, KeyNodeType, strScalar(n.nodeType))
		}
		if n.recordID != "" {
			addPair(m, KeyID, strScalar(n.recordID))
		}
		if lv, ok := t.HeadingLevel(id); ok {
			addPair(m, KeyHeadingLevel, literalToYAML(int64(lv)))
		}
		for _, f := range n.fields {
			v, err := ToYAML(t, f.Value)
			if err != nil {
				return nil, err
			}
			addPair(m, f.Name, v)
		}
		if len(n.children) > 0 {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
			if err := appendYAMLNodes(t, seq, n.children); err != nil {
				return nil, err
			}
			addPair(m, KeyChildren, seq)
		}
		return m, nil
	default:
		return nil, ErrInvalidDocument.WithContext("reason", "unknown node kind").WithContext("node", id)
	}
}

func appendYAMLNodes(t *Tree, seq *yaml.Node, ids []ID) error {
	for _, c := range ids {
		v, err := ToYAML(t, c)
		if err != nil {
			return err
		}
		seq.Content = append(seq.Content, v)
	}
	return nil
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strScalar(key), value)
}

func strScalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: s}
}

func literalToYAML(v any) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	case string:
		return strScalar(x)
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagInt, Value: strconv.FormatInt(x, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagFloat, Value: formatFloat(x)}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagBool, Value: strconv.FormatBool(x)}
	default:
		// Foreign literal values only come from code, never from documents.
		n := &yaml.Node{}
		if err := n.Encode(x); err != nil {
			return strScalar("")
		}
		return n
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Dump writes the subtree at id as a YAML document.
func Dump(w io.Writer, t *Tree, id ID) error {
	n, err := ToYAML(t, id)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return err
	}
	return enc.Close()
}
