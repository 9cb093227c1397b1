package archie

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
)

var (
	keyRe       = regexp.MustCompile(`^([a-z][A-Za-z0-9_-]*)[ \t]*:[ \t]*(.*)$`)
	keyPrefixRe = regexp.MustCompile(`^([a-z][A-Za-z0-9_-]*)[ \t]*:[ \t]*`)
)

type frameKind int

const (
	freeformFrame frameKind = iota
	blockFrame
	arrayFrame
)

type frame struct {
	kind frameKind
	// obj is the block object for block frames and the object owning the
	// array field for freeform and array frames.
	obj       raw.Object
	key       string
	items     raw.List
	path      string
	ownerPath string
	start     int

	// open multi-line value
	openKey string

	// array frames: current object item
	item     raw.Object
	itemPath string

	// freeform frames: open list group
	list      raw.Object
	listItems raw.List
	ordered   bool
	listPath  string
	listStart int
}

// TreeBuilder assembles a raw block tree from classified lines. Both the line
// grammar parser and the paragraph segmenter drive it, so the tree shape only
// depends on the sequence of events.
//
// The root object has an implicit freeform "body" array. {.type} appends a
// block object to the innermost freeform array; [.name] and [.+name] add
// array fields to the innermost object. Warnings go to the innermost open
// block, or to the root when no block is open.
type TreeBuilder struct {
	root     raw.Object
	stack    []*frame
	ranges   map[string]paragraph.Range
	skipping bool
	ignoring bool
	last     int
}

// NewTreeBuilder returns a builder with the root body open.
func NewTreeBuilder() *TreeBuilder {
	root := raw.Object{raw.KeyBody: raw.List{}}
	return &TreeBuilder{
		root:   root,
		stack:  []*frame{{kind: freeformFrame, obj: root, key: raw.KeyBody, path: raw.KeyBody}},
		ranges: make(map[string]paragraph.Range),
		last:   -1,
	}
}

func (b *TreeBuilder) top() *frame {
	return b.stack[len(b.stack)-1]
}

// enclosing returns the innermost open block object, or the root.
func (b *TreeBuilder) enclosing() raw.Object {
	for i := len(b.stack) - 1; i > 0; i-- {
		if b.stack[i].kind == blockFrame {
			return b.stack[i].obj
		}
	}
	return b.root
}

func (b *TreeBuilder) warn(index int, format string, args ...any) {
	b.enclosing().AddParseError(fmt.Sprintf("line %d: ", index+1)+fmt.Sprintf(format, args...), true)
}

func (b *TreeBuilder) seen(index int) bool {
	if index > b.last {
		b.last = index
	}
	return !b.skipping && !b.ignoring
}

func joinPath(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

// appendItem adds v to an array frame and returns the item path.
func (f *frame) appendItem(v raw.Value) string {
	path := joinPath(f.path, strconv.Itoa(len(f.items)))
	f.items = append(f.items, v)
	f.obj[f.key] = f.items
	return path
}

func (b *TreeBuilder) closeList(f *frame) {
	if f.list == nil {
		return
	}
	f.list = nil
	f.listItems = nil
	f.listPath = ""
}

// Empty records an empty line. It closes an open multi-line value and ends a
// running list.
func (b *TreeBuilder) Empty(index int) {
	if !b.seen(index) {
		return
	}
	f := b.top()
	f.openKey = ""
	b.closeList(f)
}

// Text records an ordinary line holding inline markup. A line of the form
// "key: value" is handled as Key.
func (b *TreeBuilder) Text(index int, value string) {
	if !b.seen(index) {
		return
	}
	if m := keyRe.FindStringSubmatch(value); m != nil {
		b.key(index, m[1], m[2])
		return
	}
	f := b.top()
	switch f.kind {
	case freeformFrame:
		b.closeList(f)
		if value == "---" {
			path := f.appendItem(raw.Object{raw.KeyType: raw.Scalar("horizontal-rule")})
			b.ranges[path] = paragraph.Range{Start: index, End: index}
			return
		}
		path := f.appendItem(raw.Object{raw.KeyType: raw.Scalar("text"), "value": raw.Scalar(value)})
		b.ranges[path] = paragraph.Range{Start: index, End: index}
	case blockFrame:
		if !b.continueValue(f, f.obj, value) {
			b.warn(index, "stray text in {.%s} block: %q", f.obj.Type(), value)
		}
	case arrayFrame:
		if rest, ok := strings.CutPrefix(value, "* "); ok {
			b.scalarItem(f, rest)
			return
		}
		if f.item == nil || !b.continueValue(f, f.item, value) {
			b.warn(index, "stray text in [.%s] array: %q", f.key, value)
		}
	}
}

// Key records a "key: value" line. In a freeform array it appends a
// {type: key, value} item; in a block or an array item it sets the field and
// opens it for continuation lines.
func (b *TreeBuilder) Key(index int, key, value string) {
	if !b.seen(index) {
		return
	}
	b.key(index, key, value)
}

func (b *TreeBuilder) key(index int, key, value string) {
	f := b.top()
	switch f.kind {
	case freeformFrame:
		b.closeList(f)
		if key == raw.KeyType || key == raw.KeyParseErrors {
			b.warn(index, "key %q is reserved", key)
			return
		}
		path := f.appendItem(raw.Object{raw.KeyType: raw.Scalar(key), "value": raw.Scalar(value)})
		b.ranges[path] = paragraph.Range{Start: index, End: index}
	case blockFrame:
		b.setKey(index, f, f.obj, key, value)
	case arrayFrame:
		if f.item == nil || f.item[key] != nil {
			f.item = raw.Object{}
			f.itemPath = f.appendItem(f.item)
		}
		b.setKey(index, f, f.item, key, value)
	}
}

func (b *TreeBuilder) setKey(index int, f *frame, obj raw.Object, key, value string) {
	if key == raw.KeyType || key == raw.KeyParseErrors {
		b.warn(index, "key %q is reserved", key)
		f.openKey = ""
		return
	}
	obj[key] = raw.Scalar(value)
	f.openKey = key
}

func (b *TreeBuilder) continueValue(f *frame, obj raw.Object, value string) bool {
	if f.openKey == "" {
		return false
	}
	prev, ok := obj[f.openKey].(raw.Scalar)
	if !ok {
		return false
	}
	if prev == "" {
		obj[f.openKey] = raw.Scalar(value)
	} else {
		obj[f.openKey] = prev + "<br>" + raw.Scalar(value)
	}
	return true
}

func (b *TreeBuilder) scalarItem(f *frame, value string) {
	f.appendItem(raw.Scalar(value))
	f.item = nil
	f.itemPath = ""
	f.openKey = ""
}

// Heading records a heading paragraph. Outside freeform arrays it is read as
// an ordinary line.
func (b *TreeBuilder) Heading(index, level int, value string) {
	f := b.top()
	if f.kind != freeformFrame || !b.seen(index) {
		b.Text(index, value)
		return
	}
	b.closeList(f)
	path := f.appendItem(raw.Object{
		raw.KeyType: raw.Scalar("heading"),
		"text":      raw.Scalar(value),
		"level":     raw.Scalar(strconv.Itoa(level)),
	})
	b.ranges[path] = paragraph.Range{Start: index, End: index}
}

// ListItem records a bulleted or numbered paragraph. Consecutive items of the
// same kind in a freeform array form one list block; inside a simple array
// each item is a scalar entry.
func (b *TreeBuilder) ListItem(index int, ordered bool, value string) {
	f := b.top()
	if f.kind == blockFrame || !b.seen(index) {
		b.Text(index, value)
		return
	}
	if f.kind == arrayFrame {
		b.scalarItem(f, value)
		return
	}

	if f.list != nil && f.ordered == ordered {
		f.listItems = append(f.listItems, raw.Scalar(value))
		f.list["items"] = f.listItems
		b.ranges[f.listPath] = paragraph.Range{Start: f.listStart, End: index}
		return
	}
	b.closeList(f)
	listType := "list"
	if ordered {
		listType = "numbered-list"
	}
	f.listItems = raw.List{raw.Scalar(value)}
	f.list = raw.Object{raw.KeyType: raw.Scalar(listType), "items": f.listItems}
	f.ordered = ordered
	f.listStart = index
	f.listPath = f.appendItem(f.list)
	b.ranges[f.listPath] = paragraph.Range{Start: index, End: index}
}

// Control applies a control line. Styled reports that the line came from a
// heading or list paragraph, which is applied but flagged.
func (b *TreeBuilder) Control(index int, c Control, styled bool) {
	if index > b.last {
		b.last = index
	}
	if b.ignoring {
		return
	}
	if b.skipping {
		if c.Kind == EndSkip {
			b.skipping = false
		}
		return
	}
	if styled {
		b.warn(index, "styled paragraph %q read as a control line", c.Raw)
	}

	f := b.top()
	switch c.Kind {
	case Skip:
		b.skipping = true
	case EndSkip:
		b.warn(index, "%s without :skip", c.Raw)
	case Ignore:
		b.ignoring = true
	case End:
		f.openKey = ""
	case BlockOpen:
		b.openBlock(index, f, c)
	case BlockClose:
		b.closeBlock(index, c)
	case ArrayOpen:
		b.openArray(index, f, c)
	case ArrayClose:
		if f.kind == blockFrame || len(b.stack) == 1 {
			b.warn(index, "unexpected %s", c.Raw)
			return
		}
		b.closeList(f)
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func (b *TreeBuilder) openBlock(index int, f *frame, c Control) {
	if f.kind != freeformFrame {
		b.warn(index, "%s is only allowed in a freeform array", c.Raw)
		return
	}
	b.closeList(f)
	obj := raw.Object{raw.KeyType: raw.Scalar(c.Name)}
	path := f.appendItem(obj)
	b.ranges[path] = paragraph.Range{Start: index, End: index}
	b.stack = append(b.stack, &frame{kind: blockFrame, obj: obj, path: path, start: index})
}

func (b *TreeBuilder) closeBlock(index int, c Control) {
	at := -1
	for i := len(b.stack) - 1; i > 0; i-- {
		if b.stack[i].kind == blockFrame {
			at = i
			break
		}
	}
	if at < 0 {
		b.warn(index, "unexpected %s", c.Raw)
		return
	}
	for len(b.stack)-1 > at {
		open := b.top()
		b.warn(index, "[.%s] closed by %s", open.key, c.Raw)
		b.stack = b.stack[:len(b.stack)-1]
	}
	block := b.top()
	b.ranges[block.path] = paragraph.Range{Start: block.start, End: index}
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *TreeBuilder) openArray(index int, f *frame, c Control) {
	if c.Name == raw.KeyType || c.Name == raw.KeyParseErrors || (len(b.stack) == 1 && c.Name == raw.KeyBody) {
		b.warn(index, "array name %q is reserved", c.Name)
		return
	}

	var owner raw.Object
	var ownerPath string
	switch f.kind {
	case freeformFrame:
		b.closeList(f)
		owner, ownerPath = f.obj, f.ownerPath
	case blockFrame:
		owner, ownerPath = f.obj, f.path
	case arrayFrame:
		if f.item == nil {
			f.item = raw.Object{}
			f.itemPath = f.appendItem(f.item)
		}
		owner, ownerPath = f.item, f.itemPath
	}
	f.openKey = ""

	kind := arrayFrame
	if c.Freeform {
		kind = freeformFrame
	}
	owner[c.Name] = raw.List{}
	b.stack = append(b.stack, &frame{
		kind:      kind,
		obj:       owner,
		key:       c.Name,
		path:      joinPath(ownerPath, c.Name),
		ownerPath: ownerPath,
		start:     index,
	})
}

// Finish closes every open frame and returns the assembled document.
func (b *TreeBuilder) Finish() raw.Document {
	for len(b.stack) > 1 {
		f := b.top()
		switch f.kind {
		case blockFrame:
			f.obj.AddParseError(fmt.Sprintf("end of document: unclosed {.%s}", f.obj.Type()), true)
			b.ranges[f.path] = paragraph.Range{Start: f.start, End: max(b.last, f.start)}
		default:
			b.enclosing().AddParseError(fmt.Sprintf("end of document: unclosed [.%s]", f.key), true)
		}
		b.stack = b.stack[:len(b.stack)-1]
	}
	if b.skipping {
		b.root.AddParseError("end of document: unclosed :skip", true)
	}
	return raw.Document{Root: b.root, Ranges: b.ranges}
}
