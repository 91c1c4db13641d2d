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

// LotFetcher loads one lot with its full bid history.
type LotFetcher interface {
	FetchLot(ctx context.Context, lotID, viewerID string) (models.Lot, error)
}

// ViewerFunc returns the identity detail fetches are scoped to.
type ViewerFunc func() models.Viewer

// DetailSynchronizer polls the one lot whose detail view is open.
type DetailSynchronizer struct {
	fetcher  LotFetcher
	slot     repository.DetailStore
	clock    clockwork.Clock
	interval time.Duration
	viewer   ViewerFunc

	lc        lifecycle
	listeners []func(models.Lot)
}

// NewDetailSynchronizer creates a synchronizer writing into slot.
func NewDetailSynchronizer(fetcher LotFetcher, slot repository.DetailStore, clock clockwork.Clock, interval time.Duration, viewer ViewerFunc) *DetailSynchronizer {
	if interval <= 0 {
		interval = DefaultDetailInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if viewer == nil {
		viewer = func() models.Viewer { return models.Viewer{ID: models.GuestID} }
	}
	return &DetailSynchronizer{
		fetcher:  fetcher,
		slot:     slot,
		clock:    clock,
		interval: interval,
		viewer:   viewer,
	}
}

// OnSnapshot registers fn to run after every applied detail snapshot. Same
// rules as the list listeners.
func (s *DetailSynchronizer) OnSnapshot(fn func(lot models.Lot)) {
	s.lc.applyMu.Lock()
	defer s.lc.applyMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Activate scopes the synchronizer to lotID. The previous loop, if any, has
// fully exited before the new one starts. placeholder seeds the snapshot
// until the first fetch lands. Re-activating the current lot is a no-op.
func (s *DetailSynchronizer) Activate(ctx context.Context, lotID string, placeholder *models.Lot) error {
	if lotID == "" {
		return fmt.Errorf("syncer: activate: %w", syncerrors.ErrLotNotFound)
	}

	s.lc.transition.Lock()
	defer s.lc.transition.Unlock()

	s.lc.applyMu.Lock()
	same := s.lc.current != nil && s.slot.ActiveID() == lotID
	s.lc.applyMu.Unlock()
	if same {
		return nil
	}

	s.lc.teardown()

	s.lc.applyMu.Lock()
	defer s.lc.applyMu.Unlock()
	s.slot.Reset(lotID, placeholder)
	s.lc.current = startLoop(ctx, s.clock, s.interval, s.lc.gen, s.poll)
	utils.Debug("detail sync activated", map[string]any{"lot_id": lotID})
	return nil
}

// Deactivate stops polling and discards the held snapshot.
func (s *DetailSynchronizer) Deactivate() {
	s.lc.transition.Lock()
	defer s.lc.transition.Unlock()

	s.lc.teardown()
	s.slot.Reset("", nil)
}

// DeactivateLot deactivates only if lotID is the active lot.
func (s *DetailSynchronizer) DeactivateLot(lotID string) bool {
	s.lc.transition.Lock()
	defer s.lc.transition.Unlock()

	if s.slot.ActiveID() != lotID || lotID == "" {
		return false
	}
	s.lc.teardown()
	s.slot.Reset("", nil)
	return true
}

// Refresh fetches the active lot right away. Refreshing a lot that is not
// active is a no-op.
func (s *DetailSynchronizer) Refresh(ctx context.Context, lotID string) error {
	s.lc.applyMu.Lock()
	if s.lc.current == nil {
		s.lc.applyMu.Unlock()
		return fmt.Errorf("syncer: refresh lot %s: %w", lotID, syncerrors.ErrNotMounted)
	}
	gen := s.lc.current.gen
	active := s.slot.ActiveID()
	s.lc.applyMu.Unlock()

	if lotID != "" && lotID != active {
		return nil
	}
	return s.fetchAndApply(ctx, gen, active)
}

// ActiveID returns the lot being viewed, or "".
func (s *DetailSynchronizer) ActiveID() string {
	return s.slot.ActiveID()
}

// Snapshot returns a copy of the held detail snapshot, if any.
func (s *DetailSynchronizer) Snapshot() (models.Lot, bool) {
	return s.slot.Snapshot()
}

func (s *DetailSynchronizer) poll(ctx context.Context, gen uint64) {
	lotID := s.slot.ActiveID()
	if err := s.fetchAndApply(ctx, gen, lotID); err != nil && ctx.Err() == nil {
		utils.Warn("detail poll failed, keeping last snapshot", map[string]any{"lot_id": lotID, "error": err.Error()})
	}
}

func (s *DetailSynchronizer) fetchAndApply(ctx context.Context, gen uint64, lotID string) error {
	if lotID == "" {
		return nil
	}
	seq := s.slot.Begin()
	lot, err := s.fetcher.FetchLot(ctx, lotID, s.viewer().ID)
	if err != nil {
		return fmt.Errorf("syncer: fetch lot %s: %w", lotID, err)
	}
	if lot.ID == "" {
		lot.ID = lotID
	}

	s.lc.applyMu.Lock()
	defer s.lc.applyMu.Unlock()

	if !s.lc.mounted(gen) {
		return nil
	}
	if !s.slot.Replace(seq, lot) {
		return nil
	}

	snapshot, _ := s.slot.Snapshot()
	for _, fn := range s.listeners {
		fn(snapshot.Clone())
	}
	return nil
}
