// Package paths is the path authority for the asset pipeline: it owns
// the project layout (root, source dir, output dir, scratch root) and
// resolves a rule plus a requested asset URI into the absolute working
// directory, source path, and target path the executor operates on.
//
// Every resolution allocates a fresh, uniquely named scratch directory
// so concurrent resolutions never collide; the directory lives exactly
// as long as the ResolutionContext that owns it.
package paths
