package templates

import (
	"embed"
	"fmt"
)

//go:embed files/*.yaml
var templatesFs embed.FS

// PipelineFileName is the skeleton printed by the template command.
const PipelineFileName = "pipeline.yaml"

// Template returns an embedded file by name.
func Template(name string) ([]byte, error) {
	content, err := templatesFs.ReadFile(fmt.Sprintf("files/%s", name))
	if err != nil {
		return nil, err
	}

	return content, nil
}

// Pipeline returns the skeleton pipeline description.
func Pipeline() []byte {
	content, err := Template(PipelineFileName)
	if err != nil {
		// embedded at build time
		panic(err)
	}
	return content
}
