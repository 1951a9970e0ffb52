package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/lhaig/treegen/internal/backend"
	"github.com/lhaig/treegen/internal/model"
)

// ExportAll compiles m for every backend concurrently. Artifacts come back
// in backend order, and the first failure cancels the rest.
func ExportAll(ctx context.Context, m *model.Model, backends []*backend.Backend, opts Options) ([]*Artifact, error) {
	results := make([][]*Artifact, len(backends))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range backends {
		i, b := i, b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			artifacts, err := Compile(m, b, opts)
			if err != nil {
				return err
			}
			results[i] = artifacts
			slog.Debug("compiled target", "target", b.Name, "artifacts", len(artifacts))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*Artifact
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// Write stores artifacts under dir, creating it when needed, and returns
// the written paths.
func Write(dir string, artifacts []*Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.Name)
		if err := os.WriteFile(p, []byte(a.Code), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write output file: %w", err)
		}
		slog.Info("wrote artifact",
			"path", p,
			"target", a.Backend.Name,
			"size", humanize.Bytes(uint64(a.Size())))
		paths = append(paths, p)
	}
	return paths, nil
}

// Export compiles m for every backend and writes the artifacts to dir.
// Nothing is written unless every target compiled.
func Export(ctx context.Context, m *model.Model, backends []*backend.Backend, dir string, opts Options) ([]*Artifact, error) {
	artifacts, err := ExportAll(ctx, m, backends, opts)
	if err != nil {
		return nil, err
	}
	if _, err := Write(dir, artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}
