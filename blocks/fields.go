package blocks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

// fields reads the fields of one raw block object and collects diagnostics
// on the block being built.
type fields struct {
	b    *Builder
	obj  raw.Object
	path string
	meta *Meta
}

func (f *fields) markup(key string) string {
	return strings.TrimSpace(f.obj.Text(key))
}

// spans returns a text-bearing field as spans.
func (f *fields) spans(key string) []span.Span {
	return span.ParseMarkup(f.markup(key))
}

// plain returns a field as plain text with markup removed.
func (f *fields) plain(key string) string {
	return strings.TrimSpace(span.PlainText(f.spans(key)))
}

func (f *fields) missing(key string) {
	f.meta.addError("missing required field: " + key)
}

func (f *fields) requiredSpans(key string) []span.Span {
	s := f.spans(key)
	if len(s) == 0 {
		f.missing(key)
	}
	return s
}

func (f *fields) requiredPlain(key string) string {
	s := f.plain(key)
	if s == "" {
		f.missing(key)
	}
	return s
}

// enum returns a plain field restricted to allowed values, falling back to
// def when absent.
func (f *fields) enum(key, def string, allowed ...string) string {
	v := strings.ToLower(f.plain(key))
	if v == "" {
		return def
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	f.meta.addError(fmt.Sprintf("invalid %s: %q (expected one of %s)", key, v, strings.Join(allowed, ", ")))
	return def
}

func (f *fields) integer(key string, def int) int {
	v := f.plain(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.meta.addError(fmt.Sprintf("invalid %s: %q is not a number", key, v))
		return def
	}
	return n
}

// blocks builds a freeform array of child blocks. Each child keeps its own
// diagnostics.
func (f *fields) blocks(key string) Blocks {
	list := f.obj.List(key)
	out := make(Blocks, 0, len(list))
	for i, v := range list {
		out = append(out, f.b.BuildBlock(fmt.Sprintf("%s/%s/%d", f.path, key, i), v))
	}
	return out
}

func (f *fields) requiredBlocks(key string) Blocks {
	if _, ok := f.obj[key].(raw.List); !ok || len(f.obj.List(key)) == 0 {
		f.missing(key)
		return nil
	}
	return f.blocks(key)
}

// objects returns the object items of a simple array. Scalar items are
// passed to scalar as the value of key scalarKey.
func (f *fields) objects(key, scalarKey string) []raw.Object {
	var out []raw.Object
	for i, v := range f.obj.List(key) {
		switch x := v.(type) {
		case raw.Object:
			out = append(out, x)
		case raw.Scalar:
			if scalarKey == "" {
				f.meta.addError(fmt.Sprintf("invalid %s item %d: expected an object", key, i+1))
				continue
			}
			out = append(out, raw.Object{scalarKey: x})
		default:
			f.meta.addError(fmt.Sprintf("invalid %s item %d: expected an object", key, i+1))
		}
	}
	return out
}

// sub returns a reader over a nested object sharing this block's diagnostics.
func (f *fields) sub(obj raw.Object, path string) *fields {
	return &fields{b: f.b, obj: obj, path: path, meta: f.meta}
}
