package markdown

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolved is returned by a LinkRenderHook that cannot map a link, for
// example a Google Docs URL with no published counterpart.
var ErrUnresolved = errors.New("unresolved link reference")

// ResolutionMode decides what RenderWithContext does when a hook fails.
type ResolutionMode string

const (
	// ResolutionBestEffort keeps the original href and records a warning.
	ResolutionBestEffort ResolutionMode = "best_effort"
	// ResolutionStrict returns the hook error.
	ResolutionStrict ResolutionMode = "strict"
)

// LinkRenderHook can rewrite links during rendering.
type LinkRenderHook func(ctx context.Context, in LinkRenderInput) (LinkRenderOutput, error)

// LinkRenderInput describes a link being rendered.
type LinkRenderInput struct {
	// BlockType is the type tag of the block holding the link.
	BlockType string
	Href      string
	// Text is the plain text of the link label.
	Text string
}

// LinkRenderOutput is the hook decision. Handled false keeps the link as is;
// TextOnly drops the link and keeps its label.
type LinkRenderOutput struct {
	Href     string
	TextOnly bool
	Handled  bool
}

// resolveLink runs the link hook. It returns the href to render, or "" when
// only the label should be kept.
func (s *state) resolveLink(in LinkRenderInput) (string, error) {
	if s.config.LinkHook == nil {
		return in.Href, nil
	}
	if err := s.ctx.Err(); err != nil {
		return "", err
	}

	out, err := s.config.LinkHook(s.ctx, in)
	switch {
	case err != nil:
		return in.Href, s.hookFailed(in, err)
	case !out.Handled:
		return in.Href, nil
	case out.TextOnly:
		return "", nil
	}

	href := strings.TrimSpace(out.Href)
	if href == "" {
		return "", fmt.Errorf("invalid link hook output for %q: empty href without textOnly", in.Href)
	}
	return href, nil
}

// hookFailed turns a hook error into a warning unless rendering is strict.
func (s *state) hookFailed(in LinkRenderInput, err error) error {
	unresolved := errors.Is(err, ErrUnresolved)
	if s.strict {
		if unresolved {
			return fmt.Errorf("link %q: %w", in.Href, err)
		}
		return fmt.Errorf("link hook failed for %q: %w", in.Href, err)
	}

	if unresolved {
		s.addWarning(WarningUnresolvedLink, in.BlockType,
			fmt.Sprintf("unresolved link %q kept as is", in.Href))
	} else {
		s.addWarning(WarningHookFailed, in.BlockType,
			fmt.Sprintf("link hook failed for %q: %v", in.Href, err))
	}
	return nil
}
