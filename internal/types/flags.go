package types

import "github.com/thediveo/enumflag/v2"

// OutputMode selects how reports are printed.
type OutputMode enumflag.Flag

const (
	OutputModePretty OutputMode = iota
	OutputModePlain
	OutputModeYaml
	OutputModeJson
)

var OutputModeIds = map[OutputMode][]string{
	OutputModePretty: {"pretty"},
	OutputModePlain:  {"plain"},
	OutputModeYaml:   {"yaml"},
	OutputModeJson:   {"json"},
}

func (m OutputMode) String() string {
	if ids, ok := OutputModeIds[m]; ok {
		return ids[0]
	}
	return "pretty"
}

// ParseOutputMode maps a textual mode to its value, defaulting to pretty.
func ParseOutputMode(s string) OutputMode {
	for mode, ids := range OutputModeIds {
		for _, id := range ids {
			if id == s {
				return mode
			}
		}
	}
	return OutputModePretty
}
