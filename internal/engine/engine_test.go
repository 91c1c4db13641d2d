package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"auction-sync/internal/display"
	"auction-sync/internal/models"
	"auction-sync/internal/mutation"
	"auction-sync/internal/notify"
	syncer "auction-sync/internal/syncService"
	"auction-sync/internal/syncerrors"
	"auction-sync/utils"

	"github.com/golang/mock/gomock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.SetOutput(io.Discard)
}

type fakeRemote struct {
	mu        sync.Mutex
	lots      []models.Lot
	details   map[string]models.Lot
	bidErr    error
	lotsCalls int
	lotCalls  map[string]int
	viewerIDs []string
	visits    []models.Viewer
	bids      []int64
}

func newFakeRemote(lots ...models.Lot) *fakeRemote {
	r := &fakeRemote{details: map[string]models.Lot{}, lotCalls: map[string]int{}}
	r.setLots(lots...)
	return r
}

func (r *fakeRemote) setLots(lots ...models.Lot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lots = lots
	for _, l := range lots {
		r.details[l.ID] = l
	}
}

func (r *fakeRemote) FetchLots(ctx context.Context) ([]models.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lotsCalls++
	return models.CloneLots(r.lots), nil
}

func (r *fakeRemote) FetchLot(ctx context.Context, lotID, viewerID string) (models.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lotCalls[lotID]++
	r.viewerIDs = append(r.viewerIDs, viewerID)
	lot, ok := r.details[lotID]
	if !ok {
		return models.Lot{}, fmt.Errorf("gateway: fetch lot %s: %w", lotID, syncerrors.ErrLotNotFound)
	}
	return lot.Clone(), nil
}

func (r *fakeRemote) SubmitBid(ctx context.Context, lotID string, amount int64, viewer models.Viewer) (models.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bidErr != nil {
		return models.Receipt{}, r.bidErr
	}
	r.bids = append(r.bids, amount)
	return models.Receipt{ID: "b1", NewPrice: amount}, nil
}

func (r *fakeRemote) SubmitAutoBid(ctx context.Context, lotID string, maxAmount int64, viewer models.Viewer) (models.Receipt, error) {
	return models.Receipt{}, nil
}

func (r *fakeRemote) AdminAction(ctx context.Context, action models.AdminAction) (models.Receipt, error) {
	return models.Receipt{}, nil
}

func (r *fakeRemote) TrackVisit(ctx context.Context, viewer models.Viewer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, viewer)
	return nil
}

func (r *fakeRemote) counts(lotID string) (list, detail int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lotsCalls, r.lotCalls[lotID]
}

func (r *fakeRemote) visited() []models.Viewer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Viewer(nil), r.visits...)
}

var albert = models.Viewer{ID: "albert82a", Name: "Albert Smirnov"}

func lot(id string, status models.LotStatus, endsAt time.Time) models.Lot {
	return models.Lot{
		ID:           id,
		Title:        "Lot " + id,
		CurrentPrice: 1000,
		Step:         100,
		Status:       status,
		EndsAt:       endsAt,
		Bids:         []models.Bid{},
	}
}

// run starts e and returns a stop function that waits for Run to return.
func run(t *testing.T, e *Engine) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, e.Run(ctx))
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestEngine_ListSnapshotAndProjection(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	remote := newFakeRemote(lot("1", models.StatusActive, clock.Now().Add(time.Minute)))
	e := New(remote, Options{Clock: clock, Viewer: albert})

	events := make(chan LotsEvent, 4)
	e.OnLots(func(ev LotsEvent) { events <- ev })

	require.Equal(t, syncer.StateLoading, e.Lots().State)

	stop := run(t, e)
	defer stop()

	select {
	case ev := <-events:
		require.Equal(t, syncer.StateReady, ev.State)
		require.Len(t, ev.Lots, 1)
		require.Equal(t, int64(60_000), ev.Lots[0].RemainingMs)
	case <-time.After(2 * time.Second):
		t.Fatal("no lots event")
	}

	clock.Advance(61 * time.Second)
	got := e.Lots()
	require.Equal(t, models.StatusActive, got.Lots[0].Status, "no local status inference")
	require.LessOrEqual(t, got.Lots[0].RemainingMs, int64(-1000))

	require.Eventually(t, func() bool { return len(remote.visited()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestEngine_WinNotifiedOnceAcrossPolls(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sent := make(chan notify.Notification, 4)
	sender := notify.NewMockSender(ctrl)
	sender.EXPECT().Name().Return("mock").AnyTimes()
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, n notify.Notification) error {
		sent <- n
		return nil
	}).Times(1)

	clock := clockwork.NewFakeClock()
	won := lot("5", models.StatusFinished, clock.Now().Add(-time.Minute))
	won.WinnerID = albert.ID
	won.WinnerName = albert.Name
	remote := newFakeRemote(won)

	e := New(remote, Options{Clock: clock, Viewer: albert, Senders: []notify.Sender{sender}})
	stop := run(t, e)

	require.Eventually(t, func() bool { l, _ := remote.counts("5"); return l == 1 }, time.Second, 10*time.Millisecond)
	clock.Advance(syncer.DefaultListInterval)
	require.Eventually(t, func() bool { l, _ := remote.counts("5"); return l == 2 }, time.Second, 10*time.Millisecond)

	stop()

	note := <-sent
	require.Equal(t, "5", note.LotID)
	require.Equal(t, albert.ID, note.ViewerID)
	require.Empty(t, sent)
}

func TestEngine_OpenLot(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	listed := lot("1", models.StatusActive, clock.Now().Add(time.Hour))
	remote := newFakeRemote(listed)

	detailed := listed.Clone()
	detailed.Bids = []models.Bid{{ID: "b1", UserID: "100411622", UserName: "Иван Петров", Amount: 1000}}
	remote.details["1"] = detailed

	e := New(remote, Options{Clock: clock, Viewer: albert})
	stop := run(t, e)
	defer stop()

	require.Eventually(t, func() bool { return e.Lots().State == syncer.StateReady }, time.Second, 10*time.Millisecond)

	view, err := e.OpenLot(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "1", view.ID)

	require.Eventually(t, func() bool {
		v, err := e.LotView("1")
		return err == nil && len(v.Bids) == 1
	}, time.Second, 10*time.Millisecond)

	v, _ := e.LotView("1")
	require.Equal(t, "Иван", v.Bids[0].Bidder.Name)
	require.True(t, v.Bids[0].Bidder.Masked)

	require.False(t, e.CloseLot("2"))
	require.True(t, e.CloseLot("1"))
	_, err = e.LotView("1")
	require.ErrorIs(t, err, syncerrors.ErrNotMounted)
}

func TestEngine_OpenUnknownLot(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	remote := newFakeRemote()
	e := New(remote, Options{Clock: clock})
	defer e.Close()

	_, err := e.OpenLot(context.Background(), "404")
	require.ErrorIs(t, err, syncerrors.ErrLotNotFound)
	require.False(t, e.KnowsLot("404"))
	require.False(t, e.CloseLot("404"), "unknown lot is not left open")
}

func TestEngine_AcceptedBidRefreshesBoth(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	remote := newFakeRemote(lot("1", models.StatusActive, clock.Now().Add(time.Hour)))
	e := New(remote, Options{Clock: clock, Viewer: albert})
	stop := run(t, e)
	defer stop()

	require.Eventually(t, func() bool { return e.Lots().State == syncer.StateReady }, time.Second, 10*time.Millisecond)
	_, err := e.OpenLot(context.Background(), "1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { _, d := remote.counts("1"); return d >= 1 }, time.Second, 10*time.Millisecond)

	listBefore, detailBefore := remote.counts("1")

	res, err := e.PlaceBid(context.Background(), "1", 1100)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeOK, res.Outcome)

	listAfter, detailAfter := remote.counts("1")
	require.Greater(t, listAfter, listBefore)
	require.Greater(t, detailAfter, detailBefore)

	key := mutation.BidKey("1")
	require.Equal(t, mutation.PhaseSettled, e.MutationState(key).Phase)
	require.NoError(t, e.Acknowledge(key))
	require.Equal(t, mutation.PhaseIdle, e.MutationState(key).Phase)
}

func TestEngine_RejectedBidSurfacesMessage(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.bidErr = fmt.Errorf("gateway: submit bid: %w", syncerrors.Reject(200, "Bid too low"))
	e := New(remote, Options{Clock: clockwork.NewFakeClock(), Viewer: albert})
	defer e.Close()

	res, err := e.PlaceBid(context.Background(), "1", 500)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeRejected, res.Outcome)
	require.Equal(t, "Bid too low", res.Message)
}

func TestEngine_SetViewer(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	e := New(remote, Options{Clock: clockwork.NewFakeClock()})
	defer e.Close()

	require.True(t, e.Viewer().IsGuest())

	got := e.SetViewer(albert)
	require.Equal(t, albert, got)
	require.Equal(t, albert, e.Viewer())
	require.Eventually(t, func() bool { return len(remote.visited()) == 1 }, time.Second, 10*time.Millisecond)

	e.SetViewer(albert)
	e.SetViewer(models.Viewer{})
	require.True(t, e.Viewer().IsGuest())
	require.Len(t, remote.visited(), 1, "same viewer and guests are not tracked")
}

func TestEngine_Deadline(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	endsAt := clock.Now().Add(3 * time.Minute)
	remote := newFakeRemote(lot("1", models.StatusActive, endsAt))
	e := New(remote, Options{Clock: clock})
	stop := run(t, e)
	defer stop()

	require.Eventually(t, func() bool { return e.Lots().State == syncer.StateReady }, time.Second, 10*time.Millisecond)

	require.True(t, e.Deadline("1")().Equal(endsAt))
	require.True(t, e.Deadline("missing")().IsZero())
}

func TestNew_ViewOptions(t *testing.T) {
	t.Parallel()

	opts := Options{ProfileBase: "https://example.test/id", RecentBids: 2}
	e := New(newFakeRemote(), opts)
	defer e.Close()

	require.Equal(t, display.NewMasker("https://example.test/id"), e.masker)
	require.Equal(t, 2, e.recent)
}
