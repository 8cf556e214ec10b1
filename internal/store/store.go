// Package store persists extraction patterns behind a driver-agnostic
// interface with SQLite and PostgreSQL implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/rentfolio/billscan/internal/model"
)

// ErrPatternNotFound is returned when an id does not resolve to a stored
// pattern. Both drivers wrap it so callers can errors.Is against it.
var ErrPatternNotFound = eris.New("pattern not found")

// ListAll disables the row limit. Match ranking must score every stored
// pattern, so its callers pass this instead of the default page size.
const ListAll = -1

// PatternFilter narrows ListPatterns results. Limit 0 applies the default
// page size of 100; ListAll returns every row.
type PatternFilter struct {
	BillType model.BillType `json:"bill_type,omitempty"`
	Supplier string         `json:"supplier,omitempty"`
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
}

// Store defines the persistence interface for extraction patterns.
// ListPatterns returns patterns oldest first; match ranking relies on that
// order for stable tie-breaking.
type Store interface {
	SavePattern(ctx context.Context, in model.PatternInput) (*model.ExtractionPattern, error)
	GetPattern(ctx context.Context, id string) (*model.ExtractionPattern, error)
	UpdatePattern(ctx context.Context, id string, in model.PatternInput) (*model.ExtractionPattern, error)
	ListPatterns(ctx context.Context, filter PatternFilter) ([]model.ExtractionPattern, error)
	DeletePattern(ctx context.Context, id string) error

	Migrate(ctx context.Context) error
	Close() error
}
