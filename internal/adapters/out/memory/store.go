// Package memory is an in-process implementation of the durable store. It
// keeps the same contracts as the postgres adapter: batches commit all or
// nothing, the event log is append-only with a store-assigned sequence, and
// subscribers are re-sent their matching parcel set after every commit.
//
// It backs STORE_DRIVER=memory for local runs and the handler scenario tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
)

var ErrNoTransaction = errors.New("memory: no active transaction")

type Store struct {
	mu        sync.RWMutex
	parcels   map[string]parcel.Snapshot
	manifests map[kernel.UUID]manifest.Snapshot
	routes    map[kernel.UUID]transit.Snapshot
	events    []event.Snapshot
	cursors   map[string]int64
	sequence  int64
	failNext  error

	subMu   sync.Mutex
	subs    map[int]*subscription
	nextSub int
}

var _ ports.ChangeFeed = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		parcels:   make(map[string]parcel.Snapshot),
		manifests: make(map[kernel.UUID]manifest.Snapshot),
		routes:    make(map[kernel.UUID]transit.Snapshot),
		cursors:   make(map[string]int64),
		subs:      make(map[int]*subscription),
	}
}

// NewUnitOfWorkFactory returns a factory whose units of work share this store.
func (s *Store) NewUnitOfWorkFactory() *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: s}
}

// FailNextCommit makes the next commit fail as a store conflict. Tests use
// it to exercise BatchConflict handling.
func (s *Store) FailNextCommit(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = cause
}

type parcelChange struct {
	before *parcel.Snapshot
	after  parcel.Snapshot
}

func (s *Store) commit(b *batch) error {
	s.mu.Lock()

	if cause := s.failNext; cause != nil {
		s.failNext = nil
		s.mu.Unlock()
		return errs.NewBatchConflictError("commit", cause)
	}
	if err := s.checkConflicts(b); err != nil {
		s.mu.Unlock()
		return err
	}

	changes := make([]parcelChange, 0, len(b.parcels))
	for _, id := range b.parcelOrder {
		staged := b.parcels[id]
		change := parcelChange{after: staged.snapshot}
		if prev, ok := s.parcels[id]; ok {
			change.before = &prev
		}
		s.parcels[id] = staged.snapshot
		changes = append(changes, change)
	}
	for id, staged := range b.manifests {
		s.manifests[id] = staged.snapshot
	}
	for id, staged := range b.routes {
		s.routes[id] = staged.snapshot
	}
	for _, e := range b.events {
		s.sequence++
		e.Sequence = s.sequence
		s.events = append(s.events, e)
	}
	for relay, seq := range b.cursors {
		s.cursors[relay] = seq
	}

	s.mu.Unlock()

	if len(changes) > 0 {
		s.notify(changes)
	}
	return nil
}

// checkConflicts rejects inserts of keys that another batch committed first.
func (s *Store) checkConflicts(b *batch) error {
	for id, staged := range b.parcels {
		if _, exists := s.parcels[id]; staged.isNew && exists {
			return errs.NewBatchConflictError("commit", errors.New("parcel "+id+" already exists"))
		}
	}
	for id, staged := range b.manifests {
		if _, exists := s.manifests[id]; staged.isNew && exists {
			return errs.NewBatchConflictError("commit", errors.New("manifest "+id.String()+" already exists"))
		}
	}
	for id, staged := range b.routes {
		if _, exists := s.routes[id]; staged.isNew && exists {
			return errs.NewBatchConflictError("commit", errors.New("route "+id.String()+" already exists"))
		}
	}
	return nil
}

// listParcels must be called with s.mu held for reading.
func (s *Store) listParcels(filter ports.ParcelFilter, extra map[string]stagedParcel) []parcel.Snapshot {
	out := make([]parcel.Snapshot, 0)
	for id, p := range s.parcels {
		if staged, ok := extra[id]; ok {
			p = staged.snapshot
		}
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	for id, staged := range extra {
		if _, committed := s.parcels[id]; !committed && filter.Matches(staged.snapshot) {
			out = append(out, staged.snapshot)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if limit := ports.EffectiveLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Subscribe implements ports.ChangeFeed.
func (s *Store) Subscribe(ctx context.Context, filter ports.ParcelFilter) (<-chan []parcel.Snapshot, error) {
	sub := &subscription{filter: filter, ch: make(chan []parcel.Snapshot, 1)}

	// Registered before the first read so no commit falls between them.
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.mu.RLock()
	sub.ch <- s.listParcels(filter, nil)
	s.mu.RUnlock()
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, id)
		close(sub.ch)
		s.subMu.Unlock()
	}()

	return sub.ch, nil
}

type subscription struct {
	filter ports.ParcelFilter
	ch     chan []parcel.Snapshot
}

func (s *Store) notify(changes []parcelChange) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, sub := range s.subs {
		if !touches(sub.filter, changes) {
			continue
		}
		s.mu.RLock()
		set := s.listParcels(sub.filter, nil)
		s.mu.RUnlock()
		offerLatest(sub.ch, set)
	}
}

func touches(filter ports.ParcelFilter, changes []parcelChange) bool {
	for _, c := range changes {
		if filter.Matches(c.after) || (c.before != nil && filter.Matches(*c.before)) {
			return true
		}
	}
	return false
}

// offerLatest replaces an unread set with the newer one instead of blocking
// the committing writer.
func offerLatest(ch chan []parcel.Snapshot, set []parcel.Snapshot) {
	for {
		select {
		case ch <- set:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
