// Package connector provides the framework lakeferry's source and
// destination implementations plug into.
//
// # Architecture Overview
//
// The connector package is organized into several sub-packages:
//
//   - core: Defines the fundamental interfaces (Source, Destination) that
//     all connectors implement. A Source opens a connection, lists the
//     units (collections) it can extract, and materializes one unit at a
//     time into a tabular batch. A Destination opens a connection, creates
//     the batch directory for a run, and uploads one serialized payload
//     per unit.
//
//   - sources: Source connector implementations. MongoDB is the only
//     source today; it normalizes BSON documents into plain Go values and
//     strips the store-internal _id field.
//
//   - destinations: Destination connector implementations. Azure Data Lake
//     Storage Gen2 is the only destination today; it versions each run
//     under a timestamped directory and uploads CSV payloads with
//     overwrite semantics.
//
//   - registry: Implements a factory pattern for connector discovery and
//     instantiation. Connectors self-register during initialization, so a
//     blank import is all it takes to make a connector available by name.
//
// # Lifecycle
//
// Every connector follows the same lifecycle, driven by the migration
// orchestrator: Open (fatal on failure) → per-run or per-unit work →
// Close, with Close safe to call on every exit path, including after a
// failed Open.
//
// # Registration
//
// A connector package registers itself from an init function:
//
//	func init() {
//		_ = registry.GetRegistry().RegisterSource("mongodb",
//			func(cfg *config.Config) (core.Source, error) {
//				return NewSource(cfg)
//			})
//	}
//
// and the CLI makes it available with a blank import:
//
//	_ "github.com/lakeferry/lakeferry/pkg/connector/sources/mongodb"
package connector
