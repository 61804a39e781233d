package harness

import "errors"

// Failure kinds for scenario measurement. Both are terminal for the run that
// hits them; nothing is retried.
var (
	// ErrBuild marks an external tool invocation that exited non-zero.
	ErrBuild = errors.New("build tool failed")

	// ErrAmbiguousDependency marks a dependency graph that does not contain
	// exactly one record for the crate under test.
	ErrAmbiguousDependency = errors.New("ambiguous dependency")
)
