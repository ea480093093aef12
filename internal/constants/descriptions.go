package constants

const (
	// ShortDescription is a short description of the application used in the CLI.
	ShortDescription = "Build, run and test scientific pipelines with Singularity"

	// LongDescription is a long description of the application used in the CLI.
	LongDescription = `singularity-pipeline: a wrapper around Singularity to build, run and test
scientific pipelines described in a single YAML file.

Common commands:

  # Write a starting point
  singularity-pipeline template > pipeline.yaml

  # Validate the description and the installed tools
  singularity-pipeline check --tools

  # Build the image, run the pipeline and validate its output
  singularity-pipeline build
  singularity-pipeline run
  singularity-pipeline test

  # Show what would be executed
  singularity-pipeline run --dry-run`
)
