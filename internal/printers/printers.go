package printers

import (
	"context"
	"io"

	"github.com/kashev/singularity-pipeline/internal/sanitize"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// Inspired by Kubernetes
//
// ResourcePrinter is an interface that knows how to print runtime objects.
type ResourcePrinter interface {
	// PrintResource receives a runtime object, formats it and prints it to a writer.
	PrintResource(context.Context, types.PrintableResource, io.Writer) error
}

// GetPrinter returns the printer for an output mode. Every printer redacts
// credentials.
func GetPrinter(mode types.OutputMode) ResourcePrinter {
	switch mode {
	case types.OutputModeJson:
		return JsonPrinter{Sanitizer: sanitize.Instance}
	case types.OutputModeYaml:
		return YamlPrinter{Sanitizer: sanitize.Instance, Color: true}
	case types.OutputModePlain:
		return TablePrinter{Sanitizer: sanitize.Instance}
	}
	return TablePrinter{Sanitizer: sanitize.Instance, Bold: true}
}
