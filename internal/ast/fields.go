package ast

import (
	"maps"
	"math"
	"slices"
	"strconv"
)

// Field returns the value node of the named payload field.
func (t *Tree) Field(id ID, name string) (ID, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return NoID, false
	}
	i := n.fieldIndex(name)
	if i < 0 {
		return NoID, false
	}
	return n.fields[i].Value, true
}

// Fields returns a copy of the payload fields of id in declaration order.
func (t *Tree) Fields(id ID) []Field {
	if n, ok := t.nodes[id]; ok && len(n.fields) > 0 {
		return slices.Clone(n.fields)
	}
	return nil
}

// HasField reports whether the node carries the named payload field.
func (t *Tree) HasField(id ID, name string) bool {
	_, ok := t.Field(id, name)
	return ok
}

// SetField stores a detached node as the named field of a dict or
// transformation node. A previous value under the same name is freed and the
// field keeps its position.
func (t *Tree) SetField(id ID, name string, value ID) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if n.kind != KindDict && n.kind != KindTransformation {
		return ErrInvalidEdit.WithContext("reason", "node cannot carry fields").WithContext("node", id).WithContext("kind", n.kind.String())
	}
	v, err := t.detached(value)
	if err != nil {
		return err
	}
	v.parent = id
	if i := n.fieldIndex(name); i >= 0 {
		old := n.fields[i].Value
		n.fields[i].Value = value
		t.free(old)
		return nil
	}
	n.fields = append(n.fields, Field{Name: name, Value: value})
	return nil
}

// SetTextField is SetField with a freshly created Text literal.
func (t *Tree) SetTextField(id ID, name, value string) error {
	return t.SetField(id, name, t.NewText(value))
}

// StringField returns a literal field rendered as a string. Numbers and
// booleans are formatted; containers and missing fields report false.
func (t *Tree) StringField(id ID, name string) (string, bool) {
	v, ok := t.Field(id, name)
	if !ok || t.Kind(v) != KindLiteral {
		return "", false
	}
	switch x := t.Value(v).(type) {
	case string:
		return x, true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// IntField returns an integral literal field. Integral floats and numeric
// strings are accepted.
func (t *Tree) IntField(id ID, name string) (int64, bool) {
	v, ok := t.Field(id, name)
	if !ok || t.Kind(v) != KindLiteral {
		return 0, false
	}
	switch x := t.Value(v).(type) {
	case int64:
		return x, true
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int64(x), true
		}
	case string:
		if i, err := strconv.ParseInt(x, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Annotation returns a transform-scoped annotation of id.
func (t *Tree) Annotation(id ID, key string) (any, bool) {
	n, ok := t.nodes[id]
	if !ok || n.annotations == nil {
		return nil, false
	}
	v, ok := n.annotations[key]
	return v, ok
}

// SetAnnotation stores a transform-scoped annotation on id.
func (t *Tree) SetAnnotation(id ID, key string, value any) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if n.annotations == nil {
		n.annotations = make(map[string]any)
	}
	n.annotations[key] = value
	return nil
}

// DeleteAnnotation removes an annotation from id, if present.
func (t *Tree) DeleteAnnotation(id ID, key string) {
	if n, ok := t.nodes[id]; ok {
		delete(n.annotations, key)
	}
}

// Annotations returns a copy of every annotation on id.
func (t *Tree) Annotations(id ID) map[string]any {
	if n, ok := t.nodes[id]; ok {
		return maps.Clone(n.annotations)
	}
	return nil
}

// StringAnnotation returns a string annotation.
func (t *Tree) StringAnnotation(id ID, key string) (string, bool) {
	v, ok := t.Annotation(id, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntAnnotation returns an int annotation.
func (t *Tree) IntAnnotation(id ID, key string) (int, bool) {
	v, ok := t.Annotation(id, key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// HeadingLevel returns the resolved heading level of id.
func (t *Tree) HeadingLevel(id ID) (int, bool) {
	return t.IntAnnotation(id, AnnotationHeadingLevel)
}

// SetHeadingLevel stamps a resolved heading level onto id.
func (t *Tree) SetHeadingLevel(id ID, level int) error {
	return t.SetAnnotation(id, AnnotationHeadingLevel, level)
}

// NearestAnnotation returns the annotation of the closest node, starting at id
// itself and walking up through its ancestors, that carries key.
func (t *Tree) NearestAnnotation(id ID, key string) (any, ID, bool) {
	for cur := id; cur != NoID; cur = t.Parent(cur) {
		if v, ok := t.Annotation(cur, key); ok {
			return v, cur, true
		}
	}
	return nil, NoID, false
}
