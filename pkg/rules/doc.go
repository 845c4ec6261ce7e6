// Package rules defines the asset pipeline rule model and the registry
// that answers "which rules can produce this asset".
//
// A rule ties together a working-directory specification (relative to
// the referencing document, or absolute from the project root), a target
// glob, an ordered operation list (a builtin copy or shell commands),
// and an optional autorun glob used by dev-server watchers.
//
// Rules follow a register-then-freeze discipline: the scripting or
// configuration layer registers every rule before the build's resolution
// phase starts, the registry is frozen, and from then on it is an
// immutable snapshot safe for concurrent readers. Query results are
// totally ordered: descending specificity, with registration order
// breaking exact ties (earliest registered wins).
package rules
