package common

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/plog"
	"github.com/kashev/singularity-pipeline/internal/sanitize"
)

// ShowError prints err for the user: the title in red, then any validation
// details one per line.
func ShowError(ctx context.Context, w io.Writer, err error) {
	if err == nil {
		return
	}
	plog.Logger(ctx).Debug("command failed", "error", err)

	red := color.New(color.FgRed, color.Bold)
	e, ok := perr.As(err)
	if !ok {
		red.Fprintf(w, "Error: %s\n", sanitize.Instance.SanitizeString(err.Error()))
		return
	}

	red.Fprintf(w, "Error: %s\n", sanitize.Instance.SanitizeString(e.Error()))
	if errors.As(err, &shownError{}) {
		return
	}
	for _, d := range e.ValidationErrors {
		if d.Location != "" {
			fmt.Fprintf(w, "  %s: %s\n", d.Location, d.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", d.Message)
		}
	}
}

// shownError is an error whose details were already printed by the command.
type shownError struct {
	error
}

func (e shownError) Unwrap() error {
	return e.error
}

// Shown marks err as already explained to the user, so ShowError prints
// only its summary line.
func Shown(err error) error {
	if err == nil {
		return nil
	}
	return shownError{err}
}
