package printers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/lexer"
	"github.com/goccy/go-yaml/printer"

	"github.com/kashev/singularity-pipeline/internal/sanitize"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// Inspired by https://github.com/goccy/go-yaml/blob/master/cmd/ycat/ycat.go
type YamlPrinter struct {
	Sanitizer *sanitize.Sanitizer
	Color     bool
}

const escape = "\x1b"

func format(attr color.Attribute) string {
	return fmt.Sprintf("%s[%dm", escape, attr)
}

func property(attr color.Attribute) func() *printer.Property {
	return func() *printer.Property {
		return &printer.Property{
			Prefix: format(attr),
			Suffix: format(color.Reset),
		}
	}
}

func (px YamlPrinter) PrintResource(_ context.Context, r types.PrintableResource, writer io.Writer) error {
	// go through json so the json tags decide the field names
	s, err := json.Marshal(r.GetItems())
	if err != nil {
		return err
	}
	if px.Sanitizer != nil {
		s = []byte(px.Sanitizer.SanitizeString(string(s)))
	}

	yamlBytes, err := yaml.JSONToYAML(s)
	if err != nil {
		return err
	}

	if !px.Color || color.NoColor {
		_, err = writer.Write(yamlBytes)
		return err
	}

	tokens := lexer.Tokenize(string(yamlBytes))
	var p printer.Printer
	p.LineNumber = false
	p.Bool = property(color.FgHiMagenta)
	p.Number = property(color.FgHiMagenta)
	p.MapKey = property(color.FgHiCyan)
	p.Anchor = property(color.FgHiYellow)
	p.Alias = property(color.FgHiYellow)
	p.String = property(color.FgHiGreen)

	_, err = writer.Write([]byte(p.PrintTokens(tokens) + "\n"))
	return err
}
