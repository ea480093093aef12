package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/plog"
)

// Document is a decoded but not yet validated pipeline file.
type Document struct {
	// Path is the file the document was read from, empty for in-memory documents.
	Path string

	// Raw is the generic YAML tree: maps, slices, strings, numbers and booleans.
	Raw map[string]any

	source []byte
}

// Load reads and decodes the pipeline file at path.
func Load(ctx context.Context, path string) (*Document, error) {
	plog.Logger(ctx).Debug("loading pipeline", "path", path)

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perr.NotFound("pipeline file", path)
		}
		return nil, perr.LoadFailed(path, err)
	}
	return Parse(b, path)
}

// Parse decodes source. YAML syntax errors carry an excerpt of the offending lines.
func Parse(source []byte, path string) (*Document, error) {
	name := path
	if name == "" {
		name = "<input>"
	}

	var tree any
	if err := yaml.Unmarshal(source, &tree); err != nil {
		return nil, perr.LoadFailed(name, errors.New(yaml.FormatError(err, false, true)))
	}

	doc := &Document{Path: path, source: source}
	switch t := tree.(type) {
	case nil:
		// an empty file decodes to nothing, validation reports what is missing
		doc.Raw = map[string]any{}
	case map[string]any:
		doc.Raw = t
	default:
		return nil, perr.LoadFailed(name, fmt.Errorf("top level must be a mapping, got %s", describe(t)))
	}
	return doc, nil
}

// FromMap wraps an already decoded tree, for callers that build documents in code.
func FromMap(raw map[string]any) *Document {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Document{Raw: raw}
}

// Annotate returns the source lines around field, a path such as
// "steps[1].type". The result is empty when the field is absent from the file.
func (d *Document) Annotate(field string, colored bool) string {
	if field == "" || len(d.source) == 0 {
		return ""
	}
	p, err := yaml.PathString("$." + field)
	if err != nil {
		return ""
	}
	b, err := p.AnnotateSource(d.source, colored)
	if err != nil {
		return ""
	}
	return string(b)
}

func describe(v any) string {
	switch v.(type) {
	case []any:
		return "a sequence"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}
