// Package core defines the connector contracts the migration loop is
// written against. Implementations live under connector/sources and
// connector/destinations and register themselves by type name; the
// orchestrator only ever sees these interfaces.
package core

import (
	"context"

	"github.com/lakeferry/lakeferry/pkg/tabular"
)

// Source is a document store collections are extracted from.
//
// Open must be called first and establishes a verified connection;
// every later method assumes it succeeded. Close releases the
// connection and must be safe to call on every exit path, including
// after a failed Open.
type Source interface {
	// Open establishes the connection and verifies liveness.
	Open(ctx context.Context) error

	// ListUnits returns the name of every extractable collection
	// visible to the configured credential, sorted. An empty result is
	// valid, not an error.
	ListUnits(ctx context.Context) ([]string, error)

	// Extract materializes every document of one unit into a batch,
	// with the store-internal identity field stripped. A unit with no
	// documents yields an empty batch and no error. Any read failure
	// is returned as this unit's failure only.
	Extract(ctx context.Context, unit string) (*tabular.Batch, error)

	// Close releases the source connection.
	Close(ctx context.Context) error
}

// Destination is a hierarchical namespace batch payloads are written
// into.
//
// Open verifies the configured container exists and the credential is
// accepted; both checks are preconditions for the whole run.
type Destination interface {
	// Open builds the client and verifies the container.
	Open(ctx context.Context) error

	// EnsureBatchDirectory derives this run's timestamped directory
	// under the configured base path and creates it. An already
	// existing directory is a success. Returns the directory path.
	EnsureBatchDirectory(ctx context.Context) (string, error)

	// Upload writes the payload as {dir}/{unit}.csv, overwriting any
	// existing file of that name, so re-delivery of the same unit
	// within the same batch is idempotent.
	Upload(ctx context.Context, dir, unit string, payload []byte) error

	// Close releases any destination resources.
	Close(ctx context.Context) error
}
