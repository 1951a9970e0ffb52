// Package templates serves the static helper fragments (term and item
// matchers) that generated code embeds. Each fragment is read once per
// Store and cached for the life of the process.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"
)

//go:embed fragments
var embedded embed.FS

// Fragment names, relative to the fragment root.
const (
	JSTerms = "js/terms.js"
	JSItems = "js/items.js"
	RTerms  = "r/terms.R"
	RItems  = "r/items.R"
	PyTerms = "py/terms.py"
	PyItems = "py/items.py"
)

// Store loads fragments from a file system and caches them.
type Store struct {
	fsys  fs.FS
	label string

	mu    sync.Mutex
	cache map[string]string
}

// New returns a store reading from fsys. label names the source in errors.
func New(fsys fs.FS, label string) *Store {
	return &Store{fsys: fsys, label: label, cache: make(map[string]string)}
}

// FromDir returns a store reading fragments from a directory on disk.
func FromDir(dir string) *Store {
	return New(os.DirFS(dir), dir)
}

var defaultStore = sync.OnceValue(func() *Store {
	sub, err := fs.Sub(embedded, "fragments")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return New(sub, "embedded")
})

// Default returns the process wide store backed by the fragments compiled
// into the binary.
func Default() *Store {
	return defaultStore()
}

// Fragment returns the content of the named fragment.
func (s *Store) Fragment(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content, ok := s.cache[name]; ok {
		return content, nil
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read template fragment %s: %w", path.Join(s.label, name), err)
	}
	s.cache[name] = string(data)
	return s.cache[name], nil
}
