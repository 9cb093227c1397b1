// Package raw holds the schema-free block tree produced by both parsers:
// scalars, lists and objects, isomorphic to JSON.
package raw

import (
	"encoding/json"
	"sort"

	"github.com/rgonek/docblocks/paragraph"
)

// Reserved object keys.
const (
	KeyType        = "type"
	KeyParseErrors = "parseErrors"
	KeyBody        = "body"
	KeyRefs        = "refs"
)

// Severity of a parse error recorded in a raw tree.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Value is a node of the raw tree: Scalar, List or Object.
type Value interface {
	isValue()
}

// Scalar is a string leaf. Text-bearing scalars hold inline markup.
type Scalar string

// List is an ordered sequence of values.
type List []Value

// Object maps keys to values. Key order is not significant.
type Object map[string]Value

func (Scalar) isValue() {}
func (List) isValue()   {}
func (Object) isValue() {}

// Document is a parsed raw tree plus the paragraph range each block came from.
// Range keys are block paths such as "body/3" or "body/3/left/0".
type Document struct {
	Root   Object
	Ranges map[string]paragraph.Range
}

// Text returns the scalar stored under key, or "".
func (o Object) Text(key string) string {
	if s, ok := o[key].(Scalar); ok {
		return string(s)
	}
	return ""
}

// Type returns the block type tag.
func (o Object) Type() string {
	return o.Text(KeyType)
}

// List returns the list stored under key.
func (o Object) List(key string) List {
	if l, ok := o[key].(List); ok {
		return l
	}
	return nil
}

// Object returns the object stored under key.
func (o Object) Object(key string) Object {
	if obj, ok := o[key].(Object); ok {
		return obj
	}
	return nil
}

// Keys returns the object keys in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseError is a diagnostic recorded inside a raw object.
type ParseError struct {
	Message   string
	IsWarning bool
}

// AddParseError appends a diagnostic to the object's parseErrors list unless
// an identical one is already present.
func (o Object) AddParseError(message string, warning bool) {
	severity := SeverityError
	if warning {
		severity = SeverityWarning
	}
	list := o.List(KeyParseErrors)
	for _, v := range list {
		if e, ok := v.(Object); ok && e.Text("message") == message && e.Text("severity") == severity {
			return
		}
	}
	o[KeyParseErrors] = append(list, Object{"message": Scalar(message), "severity": Scalar(severity)})
}

// ParseErrors decodes the object's parseErrors list.
func (o Object) ParseErrors() []ParseError {
	var out []ParseError
	for _, v := range o.List(KeyParseErrors) {
		e, ok := v.(Object)
		if !ok {
			continue
		}
		out = append(out, ParseError{
			Message:   e.Text("message"),
			IsWarning: e.Text("severity") == SeverityWarning,
		})
	}
	return out
}

// Equal reports whether two values are structurally identical, ignoring
// object key order. Nil and empty lists compare equal.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x == y
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		return false
	}
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch x := v.(type) {
	case List:
		out := make(List, len(x))
		for i, item := range x {
			out[i] = Clone(item)
		}
		return out
	case Object:
		out := make(Object, len(x))
		for k, item := range x {
			out[k] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CloneDocument returns a deep copy of doc.
func CloneDocument(doc Document) Document {
	out := Document{Ranges: make(map[string]paragraph.Range, len(doc.Ranges))}
	if doc.Root != nil {
		out.Root = Clone(doc.Root).(Object)
	}
	for k, r := range doc.Ranges {
		out.Ranges[k] = r
	}
	return out
}

// ToAny converts v into plain Go values suitable for JSON or YAML encoding.
func ToAny(v Value) any {
	switch x := v.(type) {
	case Scalar:
		return string(x)
	case List:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = ToAny(item)
		}
		return out
	case Object:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = ToAny(item)
		}
		return out
	default:
		return nil
	}
}

// FromAny converts decoded JSON or YAML values into a raw tree. Numbers and
// booleans become scalars.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Scalar("")
	case string:
		return Scalar(x)
	case []any:
		out := make(List, len(x))
		for i, item := range x {
			out[i] = FromAny(item)
		}
		return out
	case map[string]any:
		out := make(Object, len(x))
		for k, item := range x {
			out[k] = FromAny(item)
		}
		return out
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Scalar("")
		}
		return Scalar(string(b))
	}
}

// MarshalJSON encodes the scalar as a JSON string.
func (s Scalar) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

// MarshalJSON encodes the list as a JSON array.
func (l List) MarshalJSON() ([]byte, error) { return json.Marshal(ToAny(l)) }

// MarshalJSON encodes the object as a JSON object with sorted keys.
func (o Object) MarshalJSON() ([]byte, error) { return json.Marshal(ToAny(o)) }
