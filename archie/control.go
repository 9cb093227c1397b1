// Package archie implements the legacy line-oriented text grammar that sits
// between paragraphs and the raw block tree, together with the tree assembler
// shared by both parsers.
package archie

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ControlKind identifies a structural control line.
type ControlKind int

const (
	// BlockOpen is {.type}.
	BlockOpen ControlKind = iota + 1
	// BlockClose is {}.
	BlockClose
	// ArrayOpen is [.name] or, when Freeform is set, [.+name].
	ArrayOpen
	// ArrayClose is [].
	ArrayClose
	// End is :end and closes an open multi-line value.
	End
	// Skip is :skip; everything up to :endskip is ignored.
	Skip
	// EndSkip is :endskip.
	EndSkip
	// Ignore is :ignore; the rest of the document is ignored.
	Ignore
)

// Control is a parsed control line.
type Control struct {
	Kind     ControlKind
	Name     string
	Freeform bool
	Raw      string
}

var commands = map[string]ControlKind{
	"end":     End,
	"skip":    Skip,
	"endskip": EndSkip,
	"ignore":  Ignore,
}

var controlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_\-]*`},
	{Name: "Punct", Pattern: `[{}\[\].+:]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

//nolint:govet
type controlGrammar struct {
	Block   *blockTag `  @@`
	Array   *arrayTag `| @@`
	Command *command  `| @@`
}

//nolint:govet
type blockTag struct {
	Open  string   `@"{"`
	Name  *tagName `@@?`
	Close string   `@"}"`
}

//nolint:govet
type arrayTag struct {
	Open  string   `@"["`
	Name  *tagName `@@?`
	Close string   `@"]"`
}

//nolint:govet
type tagName struct {
	Dot      string `@"."`
	Freeform bool   `@"+"?`
	Name     string `@Ident`
}

//nolint:govet
type command struct {
	Colon string `@":"`
	Name  string `@Ident`
}

var controlParser = participle.MustBuild[controlGrammar](
	participle.Lexer(controlLexer),
	participle.Elide("Whitespace"),
)

// ParseControl reports whether s is a control line and parses it. Anything
// that does not match the grammar exactly, including unknown commands, is
// ordinary text.
func ParseControl(s string) (Control, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsRune("{[:", rune(s[0])) {
		return Control{}, false
	}
	g, err := controlParser.ParseString("", s)
	if err != nil {
		return Control{}, false
	}

	c := Control{Raw: s}
	switch {
	case g.Block != nil:
		if g.Block.Name == nil {
			c.Kind = BlockClose
			return c, true
		}
		if g.Block.Name.Freeform {
			return Control{}, false
		}
		c.Kind = BlockOpen
		c.Name = strings.ToLower(g.Block.Name.Name)
	case g.Array != nil:
		if g.Array.Name == nil {
			c.Kind = ArrayClose
			return c, true
		}
		c.Kind = ArrayOpen
		c.Name = g.Array.Name.Name
		c.Freeform = g.Array.Name.Freeform
	case g.Command != nil:
		kind, ok := commands[strings.ToLower(g.Command.Name)]
		if !ok {
			return Control{}, false
		}
		c.Kind = kind
	default:
		return Control{}, false
	}
	return c, true
}
