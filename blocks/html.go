package blocks

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// checkHTML reports unbalanced tags in an html passthrough value. The value
// is kept as written either way.
func checkHTML(value string) []string {
	var (
		problems []string
		open     []string
	)
	z := html.NewTokenizer(strings.NewReader(value))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				problems = append(problems, fmt.Sprintf("invalid html: %v", err))
			}
			for i := len(open) - 1; i >= 0; i-- {
				problems = append(problems, fmt.Sprintf("html: unclosed <%s>", open[i]))
			}
			return problems
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !isVoid(tag) {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			i := len(open) - 1
			for i >= 0 && open[i] != tag {
				i--
			}
			if i < 0 {
				problems = append(problems, fmt.Sprintf("html: unexpected </%s>", tag))
				continue
			}
			for j := len(open) - 1; j > i; j-- {
				problems = append(problems, fmt.Sprintf("html: unclosed <%s>", open[j]))
			}
			open = open[:i]
		}
	}
}

func isVoid(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
