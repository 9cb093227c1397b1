package raw

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"

	"github.com/rgonek/docblocks/refs"
	"github.com/rgonek/docblocks/span"
)

var refTagRe = regexp.MustCompile(`<ref id="([^"]*)"(?: n="\d+")?></ref>`)

// Normalize applies the tree-wide rewrites shared by both parsers: reference
// markers get their display numbers, and the root "refs" list is rebuilt from
// the table and any authored [.refs] entries in number order. Normalize is
// idempotent and never modifies doc.
func Normalize(doc Document, table *refs.Table) Document {
	out := CloneDocument(doc)
	if out.Root == nil {
		out.Root = Object{}
	}
	root := out.Root

	bodies := make(map[string]string)
	for _, e := range table.Entries() {
		bodies[e.ID] = span.Encode(span.TrimSpace(e.Body))
	}
	for _, id := range table.Uncited() {
		body, _ := table.Body(id)
		bodies[id] = span.Encode(span.TrimSpace(body))
	}
	for i, v := range root.List(KeyRefs) {
		item, ok := v.(Object)
		if !ok {
			root.AddParseError(fmt.Sprintf("refs item %d is not an object", i), true)
			continue
		}
		id := item.Text("id")
		if id == "" {
			root.AddParseError(fmt.Sprintf("refs item %d has no id", i), true)
			continue
		}
		if _, ok := bodies[id]; !ok {
			bodies[id] = item.Text("content")
		}
	}

	order := table.IDs()
	if table == nil {
		order = citationsInTree(root)
	}
	numbers := make(map[string]int, len(order))
	for i, id := range order {
		numbers[id] = i + 1
	}

	for k, v := range root {
		if k == KeyRefs || k == KeyParseErrors {
			continue
		}
		root[k] = rewriteRefs(v, func(id string) int {
			if _, ok := bodies[id]; !ok {
				return 0
			}
			return numbers[id]
		})
	}

	var list List
	for _, id := range order {
		content, ok := bodies[id]
		if !ok {
			continue
		}
		list = append(list, Object{
			"id":      Scalar(id),
			"number":  Scalar(strconv.Itoa(numbers[id])),
			"content": Scalar(content),
		})
	}
	if len(list) > 0 {
		root[KeyRefs] = list
	} else {
		delete(root, KeyRefs)
	}

	var uncited []string
	for id := range bodies {
		if _, ok := numbers[id]; !ok {
			uncited = append(uncited, id)
		}
	}
	sort.Strings(uncited)
	for _, id := range uncited {
		root.AddParseError(fmt.Sprintf("reference %q is never cited", id), true)
	}

	return out
}

func rewriteRefs(v Value, number func(id string) int) Value {
	switch x := v.(type) {
	case Scalar:
		s := refTagRe.ReplaceAllStringFunc(string(x), func(tag string) string {
			id := html.UnescapeString(refTagRe.FindStringSubmatch(tag)[1])
			return span.RefTag(id, number(id))
		})
		return Scalar(s)
	case List:
		out := make(List, len(x))
		for i, item := range x {
			out[i] = rewriteRefs(item, number)
		}
		return out
	case Object:
		out := make(Object, len(x))
		for k, item := range x {
			if k == KeyParseErrors {
				out[k] = item
				continue
			}
			out[k] = rewriteRefs(item, number)
		}
		return out
	default:
		return v
	}
}

// citationsInTree lists cited ids by walking the tree in list order and
// sorted key order.
func citationsInTree(root Object) []string {
	var order []string
	seen := make(map[string]bool)
	var walk func(Value)
	walk = func(v Value) {
		switch x := v.(type) {
		case Scalar:
			for _, m := range refTagRe.FindAllStringSubmatch(string(x), -1) {
				id := html.UnescapeString(m[1])
				if !seen[id] {
					seen[id] = true
					order = append(order, id)
				}
			}
		case List:
			for _, item := range x {
				walk(item)
			}
		case Object:
			for _, k := range x.Keys() {
				if k == KeyParseErrors || k == KeyRefs {
					continue
				}
				walk(x[k])
			}
		}
	}
	walk(root)
	return order
}
