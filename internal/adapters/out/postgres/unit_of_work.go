// Package postgres provides the GORM-based Unit of Work over the parcel,
// manifest, transit route and warehouse event tables.
//
// One unit of work is one database transaction. Every repository handed out
// between Begin and Commit shares that transaction, so a batch of parcel
// updates and their audit events becomes visible together or not at all.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.ParcelRepository().Update(ctx, p, e); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Change notification:
//
// Each parcel written through the unit of work is announced on the
// ChangeChannel with pg_notify inside the same transaction. Postgres delivers
// notifications only when the transaction commits, so listeners never see a
// change that was rolled back.
package postgres

import (
	"context"

	"parcelhub/internal/adapters/out/postgres/dberrs"
	"parcelhub/internal/adapters/out/postgres/eventrepo"
	"parcelhub/internal/adapters/out/postgres/manifestrepo"
	"parcelhub/internal/adapters/out/postgres/parcelrepo"
	"parcelhub/internal/adapters/out/postgres/transitrepo"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"

	"gorm.io/gorm"
)

// ChangeChannel is the LISTEN/NOTIFY channel carrying changed parcel ids.
const ChangeChannel = "parcelhub_changes"

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        string
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection
// pool. Each business operation gets a fresh instance.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db)
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

var _ ports.UnitOfWorkFactory = (*GormUnitOfWorkFactory)(nil)

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and remembers the
// aggregates written through it.
//
// Repositories obtained without Begin use the pool directly and every write
// commits on its own; parcels written that way are announced immediately.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

var _ ports.UnitOfWork = (*GormUnitOfWork)(nil)

// Begin opens the transaction. Calling it again on an open unit of work is a
// no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return dberrs.Translate("begin", err)
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit queues change notifications for the tracked parcels and commits.
// Serialization failures and unique violations come back as
// errs.BatchConflictError.
//
// Returns gorm.ErrInvalidTransaction if no transaction is open.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	tx := uow.tx
	uow.tx = nil

	if err := notifyParcels(tx.WithContext(ctx), uow.trackedAggregates); err != nil {
		_ = tx.Rollback().Error
		return dberrs.Translate("notify", err)
	}

	if err := tx.Commit().Error; err != nil {
		return dberrs.Translate("commit", err)
	}
	return nil
}

// Rollback discards the transaction and everything tracked in it.
//
// Returns gorm.ErrInvalidTransaction if no transaction is open, which makes
// a deferred Rollback after a successful Commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) ParcelRepository() ports.ParcelRepository {
	return parcelrepo.NewGormParcelRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) ManifestRepository() ports.ManifestRepository {
	return manifestrepo.NewGormManifestRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) TransitRouteRepository() ports.TransitRouteRepository {
	return transitrepo.NewGormTransitRouteRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) EventRepository() ports.EventRepository {
	return eventrepo.NewGormEventRepository(uow.conn())
}

func (uow *GormUnitOfWork) RelayCursorRepository() ports.RelayCursorRepository {
	return eventrepo.NewGormRelayCursorRepository(uow.conn())
}

// TrackAggregate is called by the repositories after each successful write.
func (uow *GormUnitOfWork) TrackAggregate(id string, aggregate any) {
	tracked := trackedAggregate{ID: id, Aggregate: aggregate}
	if uow.tx == nil {
		_ = notifyParcels(uow.db, []trackedAggregate{tracked})
		return
	}
	uow.trackedAggregates = append(uow.trackedAggregates, tracked)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// notifyParcels sends one notification per distinct parcel id.
func notifyParcels(db *gorm.DB, tracked []trackedAggregate) error {
	seen := make(map[string]struct{}, len(tracked))
	for _, t := range tracked {
		if _, ok := t.Aggregate.(*parcel.Parcel); !ok {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		if err := db.Exec("SELECT pg_notify(?, ?)", ChangeChannel, t.ID).Error; err != nil {
			return err
		}
	}
	return nil
}
