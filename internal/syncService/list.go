// Package syncer keeps the local read-model eventually consistent with the
// remote authority by polling it. A failed poll never touches held state.
package syncer

import (
	"context"
	"fmt"
	"time"

	"auction-sync/internal/models"
	"auction-sync/internal/repository"
	"auction-sync/internal/syncerrors"
	"auction-sync/utils"

	"github.com/jonboulle/clockwork"
)

// LotsFetcher loads the list snapshot from the remote authority.
type LotsFetcher interface {
	FetchLots(ctx context.Context) ([]models.Lot, error)
}

// ListSynchronizer owns the session's lot collection.
type ListSynchronizer struct {
	fetcher  LotsFetcher
	store    repository.ListStore
	clock    clockwork.Clock
	interval time.Duration

	lc        lifecycle
	listeners []func([]models.Lot)
}

// NewListSynchronizer creates a synchronizer writing into store.
func NewListSynchronizer(fetcher LotsFetcher, store repository.ListStore, clock clockwork.Clock, interval time.Duration) *ListSynchronizer {
	if interval <= 0 {
		interval = DefaultListInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ListSynchronizer{
		fetcher:  fetcher,
		store:    store,
		clock:    clock,
		interval: interval,
	}
}

// OnSnapshot registers fn to run after every applied snapshot. Listeners run
// synchronously, one snapshot at a time, and must not call Stop.
func (s *ListSynchronizer) OnSnapshot(fn func(lots []models.Lot)) {
	s.lc.applyMu.Lock()
	defer s.lc.applyMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Start mounts the synchronizer: fetch now, then every interval until ctx is
// done or Stop is called. Starting a running synchronizer is a no-op.
func (s *ListSynchronizer) Start(ctx context.Context) {
	s.lc.transition.Lock()
	defer s.lc.transition.Unlock()

	s.lc.applyMu.Lock()
	defer s.lc.applyMu.Unlock()
	if s.lc.current != nil {
		return
	}
	s.lc.current = startLoop(ctx, s.clock, s.interval, s.lc.gen, s.poll)
	utils.Debug("list sync started", map[string]any{"interval": s.interval.String()})
}

// Stop tears the poll loop down. Once Stop returns no listener fires again,
// even for fetches that were already in flight.
func (s *ListSynchronizer) Stop() {
	s.lc.transition.Lock()
	defer s.lc.transition.Unlock()
	s.lc.teardown()
}

// Refresh fetches and applies a snapshot right away.
func (s *ListSynchronizer) Refresh(ctx context.Context) error {
	s.lc.applyMu.Lock()
	if s.lc.current == nil {
		s.lc.applyMu.Unlock()
		return fmt.Errorf("syncer: refresh list: %w", syncerrors.ErrNotMounted)
	}
	gen := s.lc.current.gen
	s.lc.applyMu.Unlock()

	return s.fetchAndApply(ctx, gen)
}

// Snapshot returns a copy of the held collection and the current state.
func (s *ListSynchronizer) Snapshot() ([]models.Lot, State) {
	lots, loaded := s.store.Snapshot()
	if !loaded {
		return lots, StateLoading
	}
	return lots, StateReady
}

// State reports loading until the first successful fetch of the session.
func (s *ListSynchronizer) State() State {
	_, st := s.Snapshot()
	return st
}

// Lot returns one lot of the held collection.
func (s *ListSynchronizer) Lot(lotID string) (models.Lot, error) {
	return s.store.Get(lotID)
}

func (s *ListSynchronizer) poll(ctx context.Context, gen uint64) {
	if err := s.fetchAndApply(ctx, gen); err != nil && ctx.Err() == nil {
		utils.Warn("list poll failed, keeping last snapshot", map[string]any{"error": err.Error()})
	}
}

func (s *ListSynchronizer) fetchAndApply(ctx context.Context, gen uint64) error {
	seq := s.store.Begin()
	lots, err := s.fetcher.FetchLots(ctx)
	if err != nil {
		return fmt.Errorf("syncer: fetch lots: %w", err)
	}

	s.lc.applyMu.Lock()
	defer s.lc.applyMu.Unlock()

	if !s.lc.mounted(gen) {
		return nil
	}
	if !s.store.Replace(seq, lots) {
		utils.Debug("stale list response dropped", map[string]any{"seq": seq})
		return nil
	}

	snapshot, _ := s.store.Snapshot()
	for _, fn := range s.listeners {
		fn(models.CloneLots(snapshot))
	}
	return nil
}
