package constants

const (
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
	StateSkipped   = "skipped"

	SkipReasonDryRun      = "dry-run"
	SkipReasonAborted     = "pipeline aborted"
	SkipReasonImageExists = "image exists"
	SkipReasonTestFiles   = "test files exist"
)

// Process exit codes.
const (
	ExitCodeSuccess            = 0
	ExitCodeExecutionFailed    = 1
	ExitCodeValidationFailed   = 2
	ExitCodeLoadFailed         = 3
	ExitCodeExecutionCancelled = 4
	ExitCodeToolMissing        = 5
	ExitCodeUnknownError       = 10
)
