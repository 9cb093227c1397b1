package markdown

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/docblocks/blocks"
	"github.com/rgonek/docblocks/span"
)

type hookContextKey string

const traceContextKey hookContextKey = "trace"

func linkParagraph(href, text string) []blocks.Block {
	return []blocks.Block{para(txt("See "), span.Link{URL: href, Children: []span.Span{txt(text)}})}
}

func TestLinkHookRewritesLink(t *testing.T) {
	var called atomic.Bool
	conv := newTestConverter(t, Config{
		LinkHook: func(ctx context.Context, in LinkRenderInput) (LinkRenderOutput, error) {
			called.Store(true)
			assert.Equal(t, "hook-test", ctx.Value(traceContextKey))
			assert.Equal(t, "text", in.BlockType)
			assert.Equal(t, "https://docs.example/d/123", in.Href)
			assert.Equal(t, "the doc", in.Text)
			return LinkRenderOutput{Href: " /articles/123 ", Handled: true}, nil
		},
	})

	ctx := context.WithValue(context.Background(), traceContextKey, "hook-test")
	result, err := conv.RenderWithContext(ctx, linkParagraph("https://docs.example/d/123", "the doc"))
	require.NoError(t, err)
	assert.True(t, called.Load())
	assert.Equal(t, "See [the doc](/articles/123)", result.Markdown)
}

func TestLinkHookTextOnly(t *testing.T) {
	conv := newTestConverter(t, Config{
		LinkHook: func(context.Context, LinkRenderInput) (LinkRenderOutput, error) {
			return LinkRenderOutput{TextOnly: true, Handled: true}, nil
		},
	})

	result := conv.Render(linkParagraph("https://a.test", "plain"))
	assert.Equal(t, "See plain", result.Markdown)
}

func TestLinkHookNotHandledKeepsLink(t *testing.T) {
	conv := newTestConverter(t, Config{
		LinkHook: func(context.Context, LinkRenderInput) (LinkRenderOutput, error) {
			return LinkRenderOutput{}, nil
		},
	})

	result := conv.Render(linkParagraph("https://a.test", "kept"))
	assert.Equal(t, "See [kept](https://a.test)", result.Markdown)
}

func TestLinkHookUnresolved(t *testing.T) {
	unresolved := func(context.Context, LinkRenderInput) (LinkRenderOutput, error) {
		return LinkRenderOutput{}, ErrUnresolved
	}

	t.Run("best effort", func(t *testing.T) {
		conv := newTestConverter(t, Config{LinkHook: unresolved})
		result, err := conv.RenderWithContext(context.Background(), linkParagraph("https://a.test", "x"))
		require.NoError(t, err)
		assert.Equal(t, "See [x](https://a.test)", result.Markdown)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningUnresolvedLink, result.Warnings[0].Type)
	})

	t.Run("strict", func(t *testing.T) {
		conv := newTestConverter(t, Config{LinkHook: unresolved, ResolutionMode: ResolutionStrict})
		_, err := conv.RenderWithContext(context.Background(), linkParagraph("https://a.test", "x"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnresolved))
	})

	t.Run("render never fails", func(t *testing.T) {
		conv := newTestConverter(t, Config{LinkHook: unresolved, ResolutionMode: ResolutionStrict})
		result := conv.Render(linkParagraph("https://a.test", "x"))
		assert.Equal(t, "See [x](https://a.test)", result.Markdown)
		assert.NotEmpty(t, result.Warnings)
	})
}

func TestLinkHookInvalidOutput(t *testing.T) {
	conv := newTestConverter(t, Config{
		LinkHook: func(context.Context, LinkRenderInput) (LinkRenderOutput, error) {
			return LinkRenderOutput{Handled: true}, nil
		},
	})

	_, err := conv.RenderWithContext(context.Background(), linkParagraph("https://a.test", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid link hook output")

	result := conv.Render(linkParagraph("https://a.test", "x"))
	assert.Equal(t, "See [x](https://a.test)", result.Markdown)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningHookFailed, result.Warnings[0].Type)
}

func TestRenderWithContextCancellation(t *testing.T) {
	var calls atomic.Int32
	conv := newTestConverter(t, Config{
		LinkHook: func(context.Context, LinkRenderInput) (LinkRenderOutput, error) {
			calls.Add(1)
			return LinkRenderOutput{}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.RenderWithContext(ctx, linkParagraph("https://a.test", "x"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
