package common

import (
	"context"
	"os"

	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/pipeline"
	"github.com/kashev/singularity-pipeline/internal/schema"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// LoadPipeline reads and validates the configured pipeline file. The document
// is returned whenever it could be parsed, even if it is invalid.
func LoadPipeline(ctx context.Context, c *config.Configuration) (*pipeline.Document, schema.Outcome, error) {
	doc, err := pipeline.Load(ctx, c.PipelinePath)
	if err != nil {
		return nil, schema.Outcome{}, err
	}
	return doc, schema.Validate(doc.Raw), nil
}

// MissingFiles returns the paths that do not exist, in order.
func MissingFiles(paths []string) []string {
	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}

// CheckRunInputs verifies the image and every bind source exist.
func CheckRunInputs(image string, binds []types.Bind, noBind bool) error {
	if _, err := os.Stat(image); err != nil {
		return perr.NotFound("image", image)
	}
	if noBind {
		return nil
	}
	for _, b := range binds {
		if _, err := os.Stat(b.Source); err != nil {
			return perr.NotFound("bind source", b.Source)
		}
	}
	return nil
}
