// Package commands holds the write operations of the parcel engine. Every
// command is built through its constructor, validated by its handler, and
// executed inside one unit of work: Begin, deferred Rollback, Commit.
package commands

import (
	"context"

	"parcelhub/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	ParcelRepoFactory interface {
		ParcelRepository() ports.ParcelRepository
	}

	ManifestRepoFactory interface {
		ManifestRepository() ports.ManifestRepository
	}

	TransitRouteRepoFactory interface {
		TransitRouteRepository() ports.TransitRouteRepository
	}

	EventRepoFactory interface {
		EventRepository() ports.EventRepository
	}

	RelayCursorRepoFactory interface {
		RelayCursorRepository() ports.RelayCursorRepository
	}

	// ParcelUoW serves commands that only touch parcels.
	ParcelUoW interface {
		TxManager
		ParcelRepoFactory
	}

	ParcelUoWFactory interface {
		Create() ParcelUoW
	}

	// ManifestUoW serves commands that write a manifest and its parcels in
	// the same batch.
	ManifestUoW interface {
		TxManager
		ParcelRepoFactory
		ManifestRepoFactory
	}

	ManifestUoWFactory interface {
		Create() ManifestUoW
	}

	TransitRouteUoW interface {
		TxManager
		TransitRouteRepoFactory
	}

	TransitRouteUoWFactory interface {
		Create() TransitRouteUoW
	}

	// RelayUoW reads the log and moves the relay cursor atomically.
	RelayUoW interface {
		TxManager
		EventRepoFactory
		RelayCursorRepoFactory
	}

	RelayUoWFactory interface {
		Create() RelayUoW
	}
)
