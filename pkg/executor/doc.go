// Package executor materializes assets by running a resolved rule's
// operation list: the builtin copy executes natively, shell operations
// run as subprocesses through the platform shell with $SOURCE, $TARGET,
// and $SCRATCH token substitution.
//
// Operations run strictly in order with fail-fast semantics: the first
// non-zero exit stops the chain, and the error carries the failing
// command's position, captured stderr, and exit code. The per-request
// scratch directory is removed on every exit path, and a run only
// counts as successful if the declared target actually exists on disk
// afterwards.
package executor
