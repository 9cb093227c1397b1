package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/docs/v1"

	"github.com/rgonek/docblocks/gdocs"
	"github.com/rgonek/docblocks/pipeline"
)

// loadInput reads a Google Docs JSON export, or a YAML paragraph fixture
// when the file ends in .yaml or .yml. "-" reads JSON from stdin.
func loadInput(path string, stdin io.Reader) (pipeline.Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- input path is user-provided
	}
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("reading input: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := pipeline.LoadFixture(data)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("%s: %w", path, err)
		}
		in := f.Input()
		in.Name = path
		return in, nil
	}

	var doc docs.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return pipeline.Input{}, fmt.Errorf("%s: parsing document JSON: %w", path, err)
	}
	in, err := pipeline.ExtractInput(&doc)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("%s: %w", path, err)
	}
	in.Name = path
	return in, nil
}

// fetchInput loads a document through the Docs API.
func (a *app) fetchInput(ctx context.Context, id, token string) (pipeline.Input, error) {
	fetcher, err := a.fetcher(ctx, token)
	if err != nil {
		return pipeline.Input{}, err
	}
	doc, err := fetcher.Fetch(ctx, id)
	if err != nil {
		return pipeline.Input{}, err
	}
	in, err := pipeline.ExtractInput(doc)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("document %s: %w", id, err)
	}
	in.Name = id
	return in, nil
}

func (a *app) fetcher(ctx context.Context, token string) (gdocs.Fetcher, error) {
	if a.newFetcher != nil {
		return a.newFetcher(ctx)
	}
	g := a.cfg.Google
	return gdocs.New(ctx, gdocs.Options{
		Token:             a.token(token),
		RequestsPerSecond: g.RequestsPerSecond,
		Retry:             gdocs.RetryPolicy{MaxAttempts: g.MaxAttempts},
		Timeout:           g.Timeout,
		Logger:            a.logger,
	})
}
