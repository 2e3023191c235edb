package merge

import (
	"context"

	"pdfmerge/pkg/types"
)

// Codec writes the concatenation of inputs, in order, to output.
type Codec interface {
	Combine(ctx context.Context, inputs []string, output string) error
}

// Observer receives progress notes during a merge batch.
type Observer interface {
	Notify(msg string)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(msg string)

// Notify calls f(msg).
func (f ObserverFunc) Notify(msg string) { f(msg) }

// Recorder persists the outcome of a merge batch and returns its batch ID.
type Recorder interface {
	Record(ctx context.Context, root string, mode types.SelectionMode, results []types.MergeResult) (string, error)
}

// OrderSource looks up a persisted merge order.
// *store.Store satisfies it.
type OrderSource interface {
	Get(key string) ([]string, bool)
}

// Merger defines the operations front ends call on the engine.
// This allows for dependency injection in tests and other parts of the application
type Merger interface {
	// ValidateDirectory checks that path names an existing, readable directory
	ValidateDirectory(path string) error

	// Preview reports what Merge would do without writing anything
	Preview(ctx context.Context, req Request) ([]types.PreviewEntry, error)

	// Merge combines every eligible subdirectory and returns the outputs written
	Merge(ctx context.Context, req Request) ([]string, error)

	// Stats summarises pattern matches below root
	Stats(root, pattern string) (*types.Stats, error)
}

// Ensure Engine implements the Merger interface
var _ Merger = (*Engine)(nil)
