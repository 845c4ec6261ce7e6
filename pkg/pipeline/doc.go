// Package pipeline is the orchestration layer of the asset engine: it
// composes the rule registry, the path resolver, and the executor into
// the single operation the rest of the build calls,
//
//	ResolveAndRun(uri, referencingDocument) -> ProducedAsset | error
//
// and provides a bounded worker pool for running many independent asset
// requests concurrently against a frozen registry.
package pipeline
