// Package refs numbers reference (footnote) citations by first appearance and
// keeps their bodies.
package refs

import (
	"sort"

	"github.com/rgonek/docblocks/span"
)

// Entry is one numbered reference.
type Entry struct {
	ID     string
	Number int
	Body   []span.Span
}

// Table maps raw reference ids to display numbers. Numbers start at 1 and
// follow the order in which ids are first cited.
type Table struct {
	order   []string
	numbers map[string]int
	bodies  map[string][]span.Span
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		numbers: make(map[string]int),
		bodies:  make(map[string][]span.Span),
	}
}

// Cite records a citation of id and returns its number. Repeated citations
// reuse the number assigned on first appearance.
func (t *Table) Cite(id string) int {
	if n, ok := t.numbers[id]; ok {
		return n
	}
	t.order = append(t.order, id)
	n := len(t.order)
	t.numbers[id] = n
	return n
}

// Number returns the display number of id.
func (t *Table) Number(id string) (int, bool) {
	if t == nil {
		return 0, false
	}
	n, ok := t.numbers[id]
	return n, ok
}

// SetBody records the body of id. The first body recorded wins.
func (t *Table) SetBody(id string, body []span.Span) {
	if _, ok := t.bodies[id]; ok {
		return
	}
	t.bodies[id] = body
}

// Body returns the body of id.
func (t *Table) Body(id string) ([]span.Span, bool) {
	if t == nil {
		return nil, false
	}
	b, ok := t.bodies[id]
	return b, ok
}

// Len returns the number of cited ids.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// IDs returns cited ids in number order.
func (t *Table) IDs() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Entries returns cited ids that have a body, in number order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	var out []Entry
	for i, id := range t.order {
		body, ok := t.bodies[id]
		if !ok {
			continue
		}
		out = append(out, Entry{ID: id, Number: i + 1, Body: body})
	}
	return out
}

// Uncited returns ids that have a body but are never cited, sorted.
func (t *Table) Uncited() []string {
	if t == nil {
		return nil
	}
	var out []string
	for id := range t.bodies {
		if _, ok := t.numbers[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Unresolved returns cited ids without a body, in number order.
func (t *Table) Unresolved() []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, id := range t.order {
		if _, ok := t.bodies[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
