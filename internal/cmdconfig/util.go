package cmdconfig

import (
	"strings"

	"github.com/spf13/cobra"
)

// CommandFullKey is the dotted path of cmd below the root command, e.g.
// "check" rather than "singularity-pipeline.check". The root itself is "".
func CommandFullKey(cmd *cobra.Command) string {
	var names []string
	for c := cmd; c != nil && c.HasParent(); c = c.Parent() {
		names = append([]string{c.Name()}, names...)
	}
	return strings.Join(names, ".")
}
