package eventrepo

import (
	"context"

	"parcelhub/internal/adapters/out/postgres/dberrs"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// logLockKey names the advisory lock held by every transaction that appends
// to the log. Sequences are drawn at insert time, so without it a later
// sequence could commit before an earlier one and a relay cursor would pass
// over the earlier event for good.
const logLockKey int64 = 0x70617263656c

// LockLog takes the append lock until the surrounding transaction ends.
// Writers call it before touching any row so it is always the first lock
// they hold.
func LockLog(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", logLockKey).Error
	return dberrs.Translate("lock event log", err)
}

type GormEventRepository struct {
	db *gorm.DB
}

var _ ports.EventRepository = (*GormEventRepository)(nil)

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Append inserts e. Other repositories call it inside their own writes so an
// aggregate change and its event share the transaction. Sequences commit in
// increasing order because appenders serialize on LockLog.
func (r *GormEventRepository) Append(ctx context.Context, e *event.WarehouseEvent) (kernel.UUID, error) {
	if err := e.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	if err := LockLog(ctx, r.db); err != nil {
		return kernel.UUID{}, err
	}

	dto := fromDomain(e)
	dto.Sequence = 0
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return kernel.UUID{}, dberrs.Translate("append event", err)
	}

	return e.ID(), nil
}

func (r *GormEventRepository) ListByParcel(ctx context.Context, parcelID string) ([]*event.WarehouseEvent, error) {
	return r.find(r.db.WithContext(ctx).Where("parcel_id = ?", parcelID).Order("sequence"))
}

func (r *GormEventRepository) ListByReference(ctx context.Context, referenceID kernel.UUID) ([]*event.WarehouseEvent, error) {
	if err := referenceID.Validate(); err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx).Where("reference_id = ?", referenceID.Google()).Order("sequence"))
}

func (r *GormEventRepository) ListAfter(ctx context.Context, sequence int64, limit int) ([]*event.WarehouseEvent, error) {
	return r.find(r.db.WithContext(ctx).
		Where("sequence > ?", sequence).
		Order("sequence").
		Limit(ports.EffectiveLimit(limit)))
}

func (r *GormEventRepository) find(q *gorm.DB) ([]*event.WarehouseEvent, error) {
	var dtos []EventDTO
	if err := q.Find(&dtos).Error; err != nil {
		return nil, err
	}

	events := make([]*event.WarehouseEvent, 0, len(dtos))
	for _, dto := range dtos {
		e, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

type GormRelayCursorRepository struct {
	db *gorm.DB
}

var _ ports.RelayCursorRepository = (*GormRelayCursorRepository)(nil)

func NewGormRelayCursorRepository(db *gorm.DB) *GormRelayCursorRepository {
	return &GormRelayCursorRepository{db: db}
}

// Get returns zero for a relay that never published.
func (r *GormRelayCursorRepository) Get(ctx context.Context, relay string) (int64, error) {
	var dtos []RelayCursorDTO
	if err := r.db.WithContext(ctx).Where("relay = ?", relay).Limit(1).Find(&dtos).Error; err != nil {
		return 0, err
	}
	if len(dtos) == 0 {
		return 0, nil
	}
	return dtos[0].Sequence, nil
}

func (r *GormRelayCursorRepository) Save(ctx context.Context, relay string, sequence int64) error {
	dto := RelayCursorDTO{Relay: relay, Sequence: sequence}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "relay"}},
		DoUpdates: clause.AssignmentColumns([]string{"sequence"}),
	}).Create(&dto).Error
	return dberrs.Translate("save relay cursor", err)
}
