package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one atomic batch against the store. Everything written
// through its repositories between Begin and Commit becomes visible together
// or not at all. Reads outside Begin go straight to the store.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	// Commit fails with errs.BatchConflictError when the store rejects the
	// batch; the caller may retry the whole action.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ParcelRepository() ParcelRepository
	ManifestRepository() ManifestRepository
	TransitRouteRepository() TransitRouteRepository
	EventRepository() EventRepository
	RelayCursorRepository() RelayCursorRepository
}
