package merge

import (
	"pdfmerge/internal/codec"
	"pdfmerge/internal/config"
	"pdfmerge/internal/store"
)

// Stores bundles the two merge-order tables named in the configuration.
type Stores struct {
	Roots      *store.Store // keyed by absolute root path
	Components *store.Store // keyed by subdirectory name
}

// OpenStores opens both tables. A corrupt file is not an error here; see
// store.Store.LoadErr.
func OpenStores(cfg *config.Config) (*Stores, error) {
	roots, err := store.Open(cfg.Store.RootConfigs, store.ByRoot)
	if err != nil {
		return nil, err
	}
	components, err := store.Open(cfg.Store.Components, store.ByName)
	if err != nil {
		return nil, err
	}
	return &Stores{Roots: roots, Components: components}, nil
}

// For returns the components table when byName is set, the roots table
// otherwise.
func (s *Stores) For(byName bool) *store.Store {
	if byName {
		return s.Components
	}
	return s.Roots
}

// EngineFactory is a function that creates a Merger
// This allows for dependency injection in tests
type EngineFactory func(cfg *config.Config, stores *Stores, opts ...Option) Merger

// DefaultEngineFactory creates an engine writing through pdfcpu.
var DefaultEngineFactory EngineFactory = func(cfg *config.Config, stores *Stores, opts ...Option) Merger {
	base := []Option{WithRootOrders(stores.Roots), WithComponentOrders(stores.Components)}
	return New(codec.New(), append(base, opts...)...)
}

// CurrentEngineFactory is the currently active factory
// This can be swapped in tests
var CurrentEngineFactory = DefaultEngineFactory

// SetEngineFactory sets a custom engine factory for dependency injection
func SetEngineFactory(factory EngineFactory) {
	CurrentEngineFactory = factory
}

// ResetEngineFactory resets to the default engine factory
func ResetEngineFactory() {
	CurrentEngineFactory = DefaultEngineFactory
}
