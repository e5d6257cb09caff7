package main

// Exit codes for the doc2pdf CLI.
// Usage and conversion errors share ExitFailure.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// exitCodeFor returns the process exit code for the outcome of a run.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFailure
}
