package printers

import (
	"context"
	"encoding/json"
	"io"

	"github.com/hokaccha/go-prettyjson"

	"github.com/kashev/singularity-pipeline/internal/sanitize"
	"github.com/kashev/singularity-pipeline/internal/types"
)

type JsonPrinter struct {
	Sanitizer *sanitize.Sanitizer
	// Color enables prettyjson's colouring; off it prints plain indented JSON.
	Color bool
}

func (p JsonPrinter) PrintResource(_ context.Context, r types.PrintableResource, writer io.Writer) error {
	s, err := json.Marshal(r.GetItems())
	if err != nil {
		return err
	}
	if p.Sanitizer != nil {
		s = []byte(p.Sanitizer.SanitizeString(string(s)))
	}

	f := prettyjson.NewFormatter()
	f.DisabledColor = !p.Color
	s, err = f.Format(s)
	if err != nil {
		return err
	}

	_, err = writer.Write(append(s, '\n'))
	return err
}
