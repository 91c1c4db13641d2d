// Package engine wires one viewer session: the remote gateway, both
// synchronizers, the mutation coordinator and the win notifier. It is the only
// place that knows which listener feeds which component.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-sync/internal/config"
	"auction-sync/internal/countdown"
	"auction-sync/internal/display"
	"auction-sync/internal/gateway"
	"auction-sync/internal/models"
	"auction-sync/internal/mutation"
	"auction-sync/internal/notify"
	"auction-sync/internal/repository"
	syncer "auction-sync/internal/syncService"
	"auction-sync/internal/syncerrors"
	"auction-sync/utils"

	"github.com/jonboulle/clockwork"
)

const visitTimeout = 10 * time.Second

// Remote is everything the engine needs from the backend.
type Remote interface {
	syncer.LotsFetcher
	syncer.LotFetcher
	mutation.Gateway
	TrackVisit(ctx context.Context, viewer models.Viewer) error
}

// Options configures an Engine. Zero values fall back to package defaults.
type Options struct {
	Clock          clockwork.Clock
	ListInterval   time.Duration
	DetailInterval time.Duration
	SequenceGuard  bool
	Viewer         models.Viewer
	ProfileBase    string
	RecentBids     int
	NetworkError   string
	Notify         notify.Options
	Senders        []notify.Sender
	Ledger         *notify.Ledger
}

// OptionsFromConfig maps the daemon configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ListInterval:   cfg.Sync.ListInterval.Duration,
		DetailInterval: cfg.Sync.DetailInterval.Duration,
		SequenceGuard:  cfg.Sync.SequenceGuard,
		Viewer:         cfg.ViewerIdentity(),
		ProfileBase:    cfg.Display.ProfileBaseURL,
		RecentBids:     cfg.Display.RecentBidsLimit,
		NetworkError:   cfg.Messages.NetworkError,
		Notify: notify.Options{
			Title:      cfg.Notify.WinTitle,
			Message:    cfg.Notify.WinMessage,
			ButtonText: cfg.Notify.ButtonText,
			Timeout:    cfg.Notify.Timeout.Duration,
		},
	}
}

// RemoteFromConfig builds the HTTP gateway described by cfg.
func RemoteFromConfig(cfg *config.Config) *gateway.Client {
	return gateway.New(gateway.Endpoints{
		Lots:    cfg.Remote.LotsURL,
		Bid:     cfg.Remote.BidURL,
		AutoBid: cfg.Remote.AutoBidURL,
		Admin:   cfg.Remote.AdminURL,
		Visit:   cfg.Remote.VisitURL,
	}, cfg.Remote.RequestTimeout.Duration)
}

// LotsEvent is a projected list snapshot.
type LotsEvent struct {
	State syncer.State      `json:"state"`
	Lots  []display.LotView `json:"lots"`
}

// Engine is one session of the auction client.
type Engine struct {
	remote   Remote
	clock    clockwork.Clock
	list     *syncer.ListSynchronizer
	detail   *syncer.DetailSynchronizer
	coord    *mutation.Coordinator
	notifier *notify.WinNotifier
	masker   display.Masker
	recent   int

	// base outlives requests: detail loops and visit calls run under it.
	base   context.Context
	cancel context.CancelFunc

	viewerMu sync.RWMutex
	viewer   models.Viewer

	listenersMu    sync.RWMutex
	lotsListeners  []func(LotsEvent)
	lotListeners   []func(display.LotView)
	visitsInFlight sync.WaitGroup
	closeOnce      sync.Once
}

// New creates an engine talking to remote. Nothing polls until Run.
func New(remote Remote, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Viewer.ID == "" {
		opts.Viewer = models.Viewer{ID: models.GuestID}
	}
	if opts.RecentBids <= 0 {
		opts.RecentBids = display.DefaultRecentBids
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		remote: remote,
		clock:  opts.Clock,
		masker: display.NewMasker(opts.ProfileBase),
		recent: opts.RecentBids,
		base:   ctx,
		cancel: cancel,
		viewer: opts.Viewer,
	}

	e.list = syncer.NewListSynchronizer(remote, repository.NewLotCollection(opts.SequenceGuard), opts.Clock, opts.ListInterval)
	e.detail = syncer.NewDetailSynchronizer(remote, repository.NewLotSlot(opts.SequenceGuard), opts.Clock, opts.DetailInterval, e.Viewer)
	e.coord = mutation.NewCoordinator(remote, e.list, e.detail, mutation.Options{Clock: opts.Clock, NetworkError: opts.NetworkError})
	e.notifier = notify.NewWinNotifier(opts.Ledger, opts.Senders, opts.Notify)

	e.list.OnSnapshot(e.onLots)
	e.detail.OnSnapshot(e.onLot)
	return e
}

// Run starts list polling and blocks until ctx is done, then shuts the
// session down.
func (e *Engine) Run(ctx context.Context) error {
	e.list.Start(e.base)
	e.trackVisit(e.Viewer())
	utils.Info("engine started", map[string]any{"viewer_id": e.Viewer().ID})

	select {
	case <-ctx.Done():
	case <-e.base.Done():
	}
	e.Close()
	return nil
}

// Close stops every loop and waits for in-flight notifications.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.list.Stop()
		e.detail.Deactivate()
		e.cancel()
		e.visitsInFlight.Wait()
		e.notifier.Wait()
		utils.Info("engine stopped", nil)
	})
}

// OnLots registers fn for every applied list snapshot, projected for the
// session viewer.
func (e *Engine) OnLots(fn func(LotsEvent)) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.lotsListeners = append(e.lotsListeners, fn)
}

// OnLot registers fn for every applied detail snapshot.
func (e *Engine) OnLot(fn func(display.LotView)) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.lotListeners = append(e.lotListeners, fn)
}

// Viewer returns the session viewer.
func (e *Engine) Viewer() models.Viewer {
	e.viewerMu.RLock()
	defer e.viewerMu.RUnlock()
	return e.viewer
}

// SetViewer replaces the session viewer. An empty id means guest. A changed
// identity is reported to the visit endpoint, re-scanned for wins and gets
// the open detail refetched under its own scope.
func (e *Engine) SetViewer(v models.Viewer) models.Viewer {
	if v.ID == "" {
		v.ID = models.GuestID
	}

	e.viewerMu.Lock()
	prev := e.viewer
	e.viewer = v
	e.viewerMu.Unlock()

	if prev.ID == v.ID {
		return v
	}
	utils.Info("session viewer changed", map[string]any{"from": prev.ID, "to": v.ID})

	e.trackVisit(v)
	if lots, st := e.list.Snapshot(); st == syncer.StateReady {
		e.notifier.Scan(lots, v)
	}
	if e.detail.ActiveID() != "" {
		e.visitsInFlight.Add(1)
		go func() {
			defer e.visitsInFlight.Done()
			if err := e.detail.Refresh(e.base, ""); err != nil && e.base.Err() == nil {
				utils.Debug("detail refresh after viewer change failed", map[string]any{"error": err.Error()})
			}
		}()
	}
	return v
}

// Lots returns the list snapshot projected for the session viewer.
func (e *Engine) Lots() LotsEvent {
	lots, st := e.list.Snapshot()
	return LotsEvent{
		State: st,
		Lots:  display.BuildLotViews(lots, e.Viewer(), e.clock.Now(), e.viewOptions(false)),
	}
}

// OpenLot makes lotID the detail-view lot and returns its projection. The
// list entry, if any, is shown until the first detail fetch lands. A lot the
// list does not know is fetched before returning so that unknown ids fail
// with ErrLotNotFound instead of polling forever.
func (e *Engine) OpenLot(ctx context.Context, lotID string) (display.LotView, error) {
	var placeholder *models.Lot
	if lot, err := e.list.Lot(lotID); err == nil {
		placeholder = &lot
	}

	if err := e.detail.Activate(e.base, lotID, placeholder); err != nil {
		return display.LotView{}, fmt.Errorf("engine: open lot %s: %w", lotID, err)
	}

	if _, ok := e.detail.Snapshot(); !ok {
		if err := e.detail.Refresh(ctx, lotID); err != nil {
			if errors.Is(err, syncerrors.ErrLotNotFound) {
				e.detail.DeactivateLot(lotID)
			}
			if _, ok := e.detail.Snapshot(); !ok {
				return display.LotView{}, fmt.Errorf("engine: open lot %s: %w", lotID, err)
			}
		}
	}
	return e.LotView(lotID)
}

// LotView returns the detail projection of the active lot.
func (e *Engine) LotView(lotID string) (display.LotView, error) {
	if e.detail.ActiveID() != lotID {
		return display.LotView{}, fmt.Errorf("engine: lot %s is not open: %w", lotID, syncerrors.ErrNotMounted)
	}
	lot, ok := e.detail.Snapshot()
	if !ok {
		return display.LotView{}, fmt.Errorf("engine: lot %s: %w", lotID, syncerrors.ErrLotNotFound)
	}
	return display.BuildLotView(lot, e.Viewer(), e.clock.Now(), e.viewOptions(true)), nil
}

// CloseLot leaves the detail view of lotID. It reports false when lotID was
// not the open lot.
func (e *Engine) CloseLot(lotID string) bool {
	return e.detail.DeactivateLot(lotID)
}

// Deadline returns the deadline source a countdown for lotID should follow:
// the open detail snapshot when lotID is open, the list entry otherwise.
func (e *Engine) Deadline(lotID string) countdown.DeadlineFunc {
	return func() time.Time {
		if e.detail.ActiveID() == lotID {
			if lot, ok := e.detail.Snapshot(); ok {
				return lot.EndsAt
			}
		}
		if lot, err := e.list.Lot(lotID); err == nil {
			return lot.EndsAt
		}
		return time.Time{}
	}
}

// KnowsLot reports whether lotID is in either snapshot.
func (e *Engine) KnowsLot(lotID string) bool {
	if _, err := e.list.Lot(lotID); err == nil {
		return true
	}
	if e.detail.ActiveID() == lotID {
		_, ok := e.detail.Snapshot()
		return ok
	}
	return false
}

// PlaceBid submits a bid as the session viewer.
func (e *Engine) PlaceBid(ctx context.Context, lotID string, amount int64) (models.MutationResult, error) {
	return e.coord.PlaceBid(ctx, lotID, amount, e.Viewer())
}

// SetAutoBid configures the session viewer's auto-bid ceiling.
func (e *Engine) SetAutoBid(ctx context.Context, lotID string, maxAmount int64) (models.MutationResult, error) {
	return e.coord.SetAutoBid(ctx, lotID, maxAmount, e.Viewer())
}

// Admin performs an admin action.
func (e *Engine) Admin(ctx context.Context, action models.AdminAction) (models.MutationResult, error) {
	return e.coord.Admin(ctx, action)
}

// MutationState returns the state of one action key.
func (e *Engine) MutationState(key string) mutation.ActionState {
	return e.coord.State(key)
}

// Acknowledge returns a settled action to idle.
func (e *Engine) Acknowledge(key string) error {
	return e.coord.Acknowledge(key)
}

func (e *Engine) onLots(lots []models.Lot) {
	viewer := e.Viewer()
	e.notifier.Scan(lots, viewer)

	e.listenersMu.RLock()
	listeners := e.lotsListeners
	e.listenersMu.RUnlock()
	if len(listeners) == 0 {
		return
	}

	ev := LotsEvent{
		State: syncer.StateReady,
		Lots:  display.BuildLotViews(lots, viewer, e.clock.Now(), e.viewOptions(false)),
	}
	for _, fn := range listeners {
		fn(ev)
	}
}

func (e *Engine) onLot(lot models.Lot) {
	e.listenersMu.RLock()
	listeners := e.lotListeners
	e.listenersMu.RUnlock()
	if len(listeners) == 0 {
		return
	}

	view := display.BuildLotView(lot, e.Viewer(), e.clock.Now(), e.viewOptions(true))
	for _, fn := range listeners {
		fn(view)
	}
}

func (e *Engine) trackVisit(v models.Viewer) {
	if v.IsGuest() {
		return
	}
	e.visitsInFlight.Add(1)
	go func() {
		defer e.visitsInFlight.Done()
		ctx, cancel := context.WithTimeout(e.base, visitTimeout)
		defer cancel()
		if err := e.remote.TrackVisit(ctx, v); err != nil {
			utils.Warn("visit tracking failed", map[string]any{"viewer_id": v.ID, "error": err.Error()})
		}
	}()
}

func (e *Engine) viewOptions(history bool) display.ViewOptions {
	return display.ViewOptions{
		Masker:      e.masker,
		RecentBids:  e.recent,
		WithHistory: history,
	}
}
