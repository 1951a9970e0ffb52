// Package model reads tree model documents, in JSON or YAML, into a field
// catalog and a tree.
package model

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/tree"
)

//go:embed schema.json
var schema []byte

var (
	// ErrInvalidDocument is returned for documents that cannot describe a
	// tree model.
	ErrInvalidDocument = errors.New("invalid model document")
	// ErrUnknownField is returned when the objective or an input names a
	// field the document does not define.
	ErrUnknownField = errors.New("unknown field")
)

// SchemaError lists the schema violations found in a document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Problems, "; "))
}

// Is makes errors.Is match ErrInvalidDocument.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// Model is a decoded tree model.
type Model struct {
	// Resource is the resource id, such as "model/5143a51a0d05", when the
	// document carries one.
	Resource    string
	Name        string
	Description string
	Catalog     *fields.Catalog
	Tree        *tree.Tree
	// Skipped lists ids of fields dropped for having an optype no tree
	// predicate can test.
	Skipped []string
}

// ID returns the part of the resource id after the slash, or "".
func (m *Model) ID() string {
	if i := strings.LastIndexByte(m.Resource, '/'); i >= 0 {
		return m.Resource[i+1:]
	}
	return m.Resource
}

// Load reads and parses the document at path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks data against the model schema. Violations come back as
// a *SchemaError.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(jsonCompatible(doc)))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, verr.Field()+": "+verr.Description())
	}
	return &SchemaError{Problems: problems}
}

// jsonCompatible rewrites maps with non string keys, which YAML allows
// and JSON does not.
func jsonCompatible(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = jsonCompatible(item)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = jsonCompatible(item)
		}
		return x
	default:
		return v
	}
}

// Parse validates and decodes a model document.
func Parse(data []byte) (*Model, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	body := &doc.rawModel
	head := doc.rawHead
	m := &Model{Resource: doc.Resource}
	if doc.Object != nil {
		head = doc.Object.rawHead
		m.Name = doc.Object.Name
		m.Description = doc.Object.Description
		if doc.Object.Model != nil {
			body = doc.Object.Model
		}
	}
	if body.Root == nil {
		return nil, fmt.Errorf("%w: no root node", ErrInvalidDocument)
	}

	objective := head.objective()
	if objective == "" {
		return nil, fmt.Errorf("%w: no objective field", ErrInvalidDocument)
	}
	catalog, skipped, err := buildCatalog(body, objective, head.InputFields)
	if err != nil {
		return nil, err
	}
	m.Catalog = catalog
	m.Skipped = skipped

	next := 0
	m.Tree = &tree.Tree{
		Root:       body.Root.node(&next),
		Regression: catalog.Objective().Optype == fields.Numeric,
	}
	if err := m.Tree.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return m, nil
}

func buildCatalog(body *rawModel, objective string, inputs []string) (*fields.Catalog, []string, error) {
	merged := make(map[string]*rawField, len(body.Fields)+len(body.ModelFields))
	for id, f := range body.Fields {
		merged[id] = f
	}
	// model_fields carries the summaries the model was trained with.
	for id, f := range body.ModelFields {
		merged[id] = f
	}
	if _, ok := merged[objective]; !ok {
		return nil, nil, fmt.Errorf("%w: objective %q", ErrUnknownField, objective)
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var list []*fields.Field
	var skipped []string
	for _, id := range ids {
		f := merged[id].field(id)
		if !f.Optype.Valid() {
			skipped = append(skipped, id)
			continue
		}
		list = append(list, f)
	}

	var known []string
	for _, id := range inputs {
		if _, ok := merged[id]; !ok {
			return nil, nil, fmt.Errorf("%w: input %q", ErrUnknownField, id)
		}
		if !merged[id].optype().Valid() || id == objective {
			continue
		}
		known = append(known, id)
	}

	catalog, err := fields.NewCatalog(list, objective, known)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return catalog, skipped, nil
}
