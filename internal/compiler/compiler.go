// Package compiler turns a decoded model into source artifacts for one or
// more targets and writes them to disk.
package compiler

import (
	"fmt"
	"strings"

	"github.com/lhaig/treegen/internal/backend"
	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/diagnostic"
	"github.com/lhaig/treegen/internal/model"
	"github.com/lhaig/treegen/internal/templates"
)

// confidenceSuffix marks the artifact yielding the metric instead of the
// prediction.
const confidenceSuffix = "_confidence"

// Options controls a compilation.
type Options struct {
	// Emit is passed to every emission. Its Attr field is set per artifact.
	Emit codegen.Options
	// Attr requests the separate metric artifact of the targets that
	// cannot return prediction and metric together.
	Attr bool
	// Store overrides the embedded helper fragments when set.
	Store *templates.Store
}

// Artifact is one generated source file, held in memory until written.
type Artifact struct {
	Backend *backend.Backend
	// Name is the file name, without directory.
	Name        string
	Attr        bool
	Code        string
	Function    *codegen.Function
	Diagnostics *diagnostic.Diagnostics
	Nodes       int
}

// Size returns the length of the generated code in bytes.
func (a *Artifact) Size() int {
	return len(a.Code)
}

// BaseName returns the stem shared by a model's artifact file names: the
// resource id with slashes replaced, or "model" when the document has none.
func BaseName(m *model.Model) string {
	if m.Resource == "" {
		return "model"
	}
	return strings.ReplaceAll(m.Resource, "/", "_")
}

// Compile renders every artifact b produces for m.
func Compile(m *model.Model, b *backend.Backend, opts Options) ([]*Artifact, error) {
	target := b.Target(opts.Store)
	base := BaseName(m)

	variants := []bool{false}
	if opts.Attr && b.ConfidenceArtifact {
		variants = append(variants, true)
	}

	out := make([]*Artifact, 0, len(variants))
	for _, attr := range variants {
		emitOpts := opts.Emit
		emitOpts.Attr = attr
		res, err := codegen.New(target, m.Catalog, emitOpts).Emit(m.Tree)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name, err)
		}

		name := base
		if attr {
			name += confidenceSuffix
		}
		out = append(out, &Artifact{
			Backend:     b,
			Name:        name + "." + b.Extension,
			Attr:        attr,
			Code:        res.Code,
			Function:    res.Function,
			Diagnostics: res.Diagnostics,
			Nodes:       res.Nodes,
		})
	}
	return out, nil
}
