// Package engine resolves plugin dependencies and drives registration.
//
// One run flows through three phases: BuildGraph turns the discovered
// records into a dependency graph and a name index, Sort orders the graph
// with Kahn's algorithm (detecting cycles and never-discovered
// dependencies), and RegisterAll walks the order invoking each plugin's
// register entry point while tracking per-plugin success and failure.
//
// The engine holds no long-lived state and never loads plugin code itself;
// it consumes records produced by a loader and returns a serializable
// Report for the presentation layer.
package engine
