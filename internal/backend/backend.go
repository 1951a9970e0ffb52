// Package backend maps target names given on the command line to code
// generation targets.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/jsbe"
	"github.com/lhaig/treegen/internal/pybe"
	"github.com/lhaig/treegen/internal/rbe"
	"github.com/lhaig/treegen/internal/sqlbe"
	"github.com/lhaig/treegen/internal/tableaube"
	"github.com/lhaig/treegen/internal/templates"
)

// ErrUnknownTarget is returned for a name no backend answers to.
var ErrUnknownTarget = errors.New("unknown target")

// Backend describes one output language.
type Backend struct {
	// Name is the canonical name, Aliases the other accepted spellings.
	Name    string
	Aliases []string
	// Extension is the file extension of generated artifacts, without dot.
	Extension string
	// ConfidenceArtifact is set for targets that cannot return the
	// prediction and its metric together and so get a second artifact.
	ConfidenceArtifact bool

	build func(store *templates.Store) codegen.Target
}

// Target returns a fresh target. Targets that embed helper fragments read
// them from store, or from the embedded set when store is nil.
func (b *Backend) Target(store *templates.Store) codegen.Target {
	return b.build(store)
}

var backends = []*Backend{
	{
		Name:      "javascript",
		Aliases:   []string{"js"},
		Extension: "js",
		build:     func(s *templates.Store) codegen.Target { return jsbe.New(s) },
	},
	{
		Name:               "mysql",
		Aliases:            []string{"sql"},
		Extension:          "sql",
		ConfidenceArtifact: true,
		build:              func(*templates.Store) codegen.Target { return sqlbe.New() },
	},
	{
		Name:      "r",
		Extension: "R",
		build:     func(s *templates.Store) codegen.Target { return rbe.New(s) },
	},
	{
		Name:               "tableau",
		Aliases:            []string{"tb"},
		Extension:          "tb",
		ConfidenceArtifact: true,
		build:              func(*templates.Store) codegen.Target { return tableaube.New() },
	},
	{
		Name:      "python",
		Aliases:   []string{"py"},
		Extension: "py",
		build:     func(s *templates.Store) codegen.Target { return pybe.New(s) },
	},
}

// Lookup returns the backend answering to name, case insensitively.
func Lookup(name string) (*Backend, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, b := range backends {
		if b.Name == key {
			return b, nil
		}
		for _, alias := range b.Aliases {
			if alias == key {
				return b, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownTarget, name, strings.Join(Names(), ", "))
}

// Resolve looks up every name and drops duplicates, keeping the first
// occurrence order.
func Resolve(names []string) ([]*Backend, error) {
	var out []*Backend
	seen := make(map[string]bool)
	for _, n := range names {
		b, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		out = append(out, b)
	}
	return out, nil
}

// Names returns the canonical backend names in registration order.
func Names() []string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name
	}
	return names
}

// All returns every backend in registration order.
func All() []*Backend {
	out := make([]*Backend, len(backends))
	copy(out, backends)
	return out
}
