package pipeline

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/docs/v1"

	"github.com/rgonek/docblocks/blocks"
	"github.com/rgonek/docblocks/markdown"
	"github.com/rgonek/docblocks/raw"
)

var update = flag.Bool("update", false, "update golden files")

func textParagraph(text string) *docs.StructuralElement {
	return &docs.StructuralElement{Paragraph: &docs.Paragraph{
		Elements:       []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: text + "\n"}}},
		ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: "NORMAL_TEXT"},
	}}
}

func document(lines ...string) *docs.Document {
	content := make([]*docs.StructuralElement, 0, len(lines))
	for _, l := range lines {
		content = append(content, textParagraph(l))
	}
	return &docs.Document{Body: &docs.Body{Content: content}}
}

func loadFixture(t *testing.T, path string) Fixture {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := LoadFixture(data)
	require.NoError(t, err)
	return f
}

func TestRunPlainParagraph(t *testing.T) {
	for _, path := range []Path{PathParagraph, PathArchie} {
		t.Run(string(path), func(t *testing.T) {
			out, err := Run(context.Background(), document("Hello world."), Options{Path: path})
			require.NoError(t, err)
			assert.Equal(t, "Hello world.", out.Markdown.Markdown)
			assert.Empty(t, out.Markdown.Warnings)
			assert.Empty(t, out.Diagnostics)

			require.Len(t, out.Blocks.Blocks, 1)
			p, ok := out.Blocks.Blocks[0].(*blocks.Paragraph)
			require.True(t, ok)
			require.NotNil(t, p.SourceRange)
			assert.Equal(t, 0, p.SourceRange.Start)
		})
	}
}

func TestRunKeepsLiteralBlockMarkers(t *testing.T) {
	for _, path := range []Path{PathParagraph, PathArchie} {
		t.Run(string(path), func(t *testing.T) {
			out, err := Run(context.Background(), document("# not a heading", "1. not a list"), Options{Path: path})
			require.NoError(t, err)
			assert.Equal(t, "\\# not a heading\n\n1\\. not a list", out.Markdown.Markdown)
		})
	}
}

func TestRunInvalidDocument(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{})
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Run(context.Background(), &docs.Document{}, Options{})
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestRunUnknownPath(t *testing.T) {
	_, err := Run(context.Background(), document("x"), Options{Path: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown path "xml"`)
}

func TestRunInvalidMarkdownConfig(t *testing.T) {
	_, err := Run(context.Background(), document("x"), Options{
		Markdown: markdown.Config{RefStyle: "endnote"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markdown config")
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, document("x"), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestParserFor(t *testing.T) {
	p, err := ParserFor("")
	require.NoError(t, err)
	assert.NotNil(t, p)

	p, err = ParserFor("ARCHIE")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = ParserFor("html")
	require.Error(t, err)
}

func TestRunReferenceNumbering(t *testing.T) {
	f := loadFixture(t, "testdata/refs.yaml")
	paragraphs, footnotes := f.Extract()

	out, err := RunParagraphs(context.Background(), paragraphs, footnotes, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, out.Refs.IDs())
	for id, want := range map[string]int{"b": 1, "a": 2, "c": 3} {
		n, ok := out.Refs.Number(id)
		require.True(t, ok, id)
		assert.Equal(t, want, n, id)
	}
	assert.Empty(t, out.Unresolved)
}

func TestRunLogsStages(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(context.Background(), document("Hello world."), Options{Logger: logger})
	require.NoError(t, err)

	logs := buf.String()
	for _, stage := range []string{"extract", "refs", "parse", "normalize", "build", "render"} {
		assert.Contains(t, logs, "stage="+stage)
	}
}

func TestRunDiagnostics(t *testing.T) {
	f := loadFixture(t, "testdata/blocks.yaml")
	paragraphs, footnotes := f.Extract()

	out, err := RunParagraphs(context.Background(), paragraphs, footnotes, Options{})
	require.NoError(t, err)

	var messages []string
	for _, d := range out.Diagnostics {
		messages = append(messages, d.Type+": "+d.Message)
	}
	assert.Contains(t, messages, "bogus-type: unknown block type: bogus-type")
	assert.Contains(t, messages, `chart: invalid url: "ftp://example.test/chart" is not an http(s) URL`)

	require.NotEmpty(t, out.Markdown.Warnings)
	assert.Equal(t, markdown.WarningUnknownBlock, out.Markdown.Warnings[0].Type)
}

func TestRunDocumentIssues(t *testing.T) {
	f := loadFixture(t, "testdata/malformed.yaml")
	paragraphs, footnotes := f.Extract()

	out, err := RunParagraphs(context.Background(), paragraphs, footnotes, Options{})
	require.NoError(t, err)

	require.NotEmpty(t, out.Blocks.Blocks)
	issues, ok := out.Blocks.Blocks[0].(*blocks.DocumentIssues)
	require.True(t, ok)
	var messages []string
	for _, e := range issues.ParseErrors {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{"line 2: unexpected {}"}, messages)

	require.Len(t, out.Blocks.Blocks, 3)
	aside, ok := out.Blocks.Blocks[2].(*blocks.Aside)
	require.True(t, ok)
	require.Len(t, aside.ParseErrors, 1)
	assert.Equal(t, "end of document: unclosed {.aside}", aside.ParseErrors[0].Message)
	assert.Contains(t, out.Diagnostics, blocks.Diagnostic{
		Path:       "body/1",
		Type:       "aside",
		ParseError: blocks.ParseError{Message: "end of document: unclosed {.aside}", IsWarning: true},
	})
}

func TestNormalizeIsIdempotentOnOutput(t *testing.T) {
	matches, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f := loadFixture(t, path)
			paragraphs, footnotes := f.Extract()
			out, err := RunParagraphs(context.Background(), paragraphs, footnotes, Options{DocumentType: f.DocumentType})
			require.NoError(t, err)

			again := raw.Normalize(out.Raw, out.Refs)
			assert.True(t, raw.Equal(out.Raw.Root, again.Root))
		})
	}
}

func TestGoldenFixtures(t *testing.T) {
	matches, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f := loadFixture(t, path)
			paragraphs, footnotes := f.Extract()

			parity, err := CompareParagraphs(context.Background(), paragraphs, footnotes, Options{DocumentType: f.DocumentType})
			require.NoError(t, err)
			assert.True(t, parity.Equal, "raw diff:\n%s\nmarkdown diff:\n%s", parity.RawDiff, parity.MarkdownDiff)

			output := parity.Paragraph.Markdown.Markdown
			goldenPath := strings.TrimSuffix(path, ".yaml") + ".md"
			if *update {
				require.NoError(t, os.WriteFile(goldenPath, []byte(output+"\n"), 0o644))
				t.Logf("Updated golden file: %s", goldenPath)
				return
			}

			expected, err := os.ReadFile(goldenPath)
			if os.IsNotExist(err) {
				t.Fatalf("Golden file missing: %s. Run with -update to create it.", goldenPath)
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimRight(string(expected), "\n"), output)
		})
	}
}

func TestLoadFixtureRejectsUnknownInput(t *testing.T) {
	_, err := LoadFixture([]byte("paragraphs:\n  - text: a\n    style: bold\n"))
	require.Error(t, err)

	_, err = LoadFixture([]byte("paragraphs:\n  - type: table\n    text: a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "table"`)
}

func TestRunIsDeterministic(t *testing.T) {
	f := loadFixture(t, "testdata/article.yaml")
	paragraphs, footnotes := f.Extract()
	opts := Options{DocumentType: f.DocumentType}

	first, err := RunParagraphs(context.Background(), paragraphs, footnotes, opts)
	require.NoError(t, err)
	second, err := RunParagraphs(context.Background(), paragraphs, footnotes, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Markdown, second.Markdown)
	assert.True(t, raw.Equal(first.Raw.Root, second.Raw.Root))
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}
