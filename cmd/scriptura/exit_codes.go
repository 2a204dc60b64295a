package main

// Exit codes: zero error-severity findings map to success, anything wrong
// with the document or the run itself maps to failure, bad invocations to
// usage.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)
