// Package changefeed turns postgres LISTEN/NOTIFY into parcel set
// subscriptions.
//
// The unit of work notifies ChangeChannel with the id of every parcel it
// commits. Feed listens on that channel and, on each notification, re-reads
// the matching set of every subscription and re-sends the ones that changed.
// A parcel leaving a station changes the old station's set too, so every
// subscription is re-read rather than only those matching the new state.
package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"parcelhub/internal/adapters/out/postgres"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

type Feed struct {
	dsn        string
	uowFactory ports.UnitOfWorkFactory
	logger     *slog.Logger

	mu      sync.Mutex
	subs    map[int]*subscription
	nextSub int
}

var _ ports.ChangeFeed = (*Feed)(nil)

func NewFeed(dsn string, uowFactory ports.UnitOfWorkFactory, logger *slog.Logger) (*Feed, error) {
	if dsn == "" {
		return nil, fmt.Errorf("changefeed: dsn is required")
	}
	if uowFactory == nil {
		return nil, fmt.Errorf("changefeed: unit of work factory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		dsn:        dsn,
		uowFactory: uowFactory,
		logger:     logger.With("component", "change_feed"),
		subs:       make(map[int]*subscription),
	}, nil
}

// Run listens until ctx ends. It returns only the error of the initial
// LISTEN; later connection losses are retried by the listener.
func (f *Feed) Run(ctx context.Context) error {
	listener := pq.NewListener(f.dsn, minReconnectInterval, maxReconnectInterval, f.onListenerEvent)
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(postgres.ChangeChannel); err != nil {
		return fmt.Errorf("changefeed: listen %s: %w", postgres.ChangeChannel, err)
	}
	f.logger.Info("listening", "channel", postgres.ChangeChannel)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect: notifications may have been lost.
			if n != nil {
				f.logger.Debug("parcel changed", "parcel_id", n.Extra)
			}
			drain(listener.Notify)
			f.refreshAll(ctx)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				f.logger.Warn("listener ping failed", "error", err)
			}
		}
	}
}

func (f *Feed) onListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		f.logger.Warn("listener connection lost", "error", err)
	case pq.ListenerEventReconnected:
		f.logger.Info("listener reconnected")
	}
}

// drain collapses a burst of notifications into one refresh.
func drain(ch <-chan *pq.Notification) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// Subscribe implements ports.ChangeFeed. The subscription is registered
// before the initial read so no commit can fall between them.
func (f *Feed) Subscribe(ctx context.Context, filter ports.ParcelFilter) (<-chan []parcel.Snapshot, error) {
	sub := &subscription{filter: filter, ch: make(chan []parcel.Snapshot, 1)}

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = sub
	f.mu.Unlock()

	if err := f.refresh(ctx, sub); err != nil {
		f.unsubscribe(id)
		return nil, err
	}

	go func() {
		<-ctx.Done()
		f.unsubscribe(id)
	}()

	return sub.ch, nil
}

func (f *Feed) unsubscribe(id int) {
	f.mu.Lock()
	sub, ok := f.subs[id]
	delete(f.subs, id)
	f.mu.Unlock()

	if ok {
		sub.close()
	}
}

func (f *Feed) refreshAll(ctx context.Context) {
	f.mu.Lock()
	subs := make([]*subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		if err := f.refresh(ctx, sub); err != nil {
			f.logger.Error("refresh subscription", "station_id", sub.filter.StationID, "error", err)
		}
	}
}

func (f *Feed) refresh(ctx context.Context, sub *subscription) error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return nil
	}

	parcels, err := f.uowFactory.Create().ParcelRepository().List(ctx, sub.filter)
	if err != nil {
		return err
	}
	set := make([]parcel.Snapshot, 0, len(parcels))
	for _, p := range parcels {
		set = append(set, p.Snapshot())
	}

	if sub.sent && reflect.DeepEqual(sub.last, set) {
		return nil
	}
	sub.last, sub.sent = set, true
	offerLatest(sub.ch, set)
	return nil
}

type subscription struct {
	filter ports.ParcelFilter
	ch     chan []parcel.Snapshot

	mu     sync.Mutex
	last   []parcel.Snapshot
	sent   bool
	closed bool
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// offerLatest replaces an unread set with the newer one.
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
