package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auction-sync/internal/models"
	"auction-sync/utils"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.SetOutput(io.Discard)
}

var winner = models.Viewer{ID: "albert82a", Name: "Albert Smirnov"}

func finishedLot(id, winnerID string, price int64) models.Lot {
	return models.Lot{
		ID:           id,
		Title:        "Vase " + id,
		CurrentPrice: price,
		Status:       models.StatusFinished,
		WinnerID:     winnerID,
		WinnerName:   "Albert Smirnov",
	}
}

func TestLedger_Claim(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	require.True(t, l.Claim("5", "albert82a"))
	require.False(t, l.Claim("5", "albert82a"))
	require.True(t, l.Claim("5", "100411622"), "keyed by viewer too")
	require.True(t, l.Claimed("5", "albert82a"))
	require.False(t, l.Claimed("6", "albert82a"))
	require.Equal(t, 2, l.Len())
}

func TestLedger_ConcurrentClaimsWinOnce(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Claim("5", "albert82a") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestWinNotifier_TwoPollsDispatchOnce(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sender := NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), Notification{
		LotID:      "5",
		LotTitle:   "Vase 5",
		ViewerID:   "albert82a",
		Price:      12500,
		Title:      DefaultTitle,
		Message:    "Поздравляем! Вы выиграли лот «Vase 5» за 12\u00a0500\u00a0₽. Свяжитесь с организатором для получения приза.",
		ButtonText: DefaultButtonText,
	}).Return(nil).Times(1)
	sender.EXPECT().Name().Return("mock").AnyTimes()

	n := NewWinNotifier(NewLedger(), []Sender{sender}, Options{})
	poll := []models.Lot{finishedLot("5", "albert82a", 12500)}

	require.Equal(t, 1, n.Scan(poll, winner))
	require.Equal(t, 0, n.Scan(poll, winner))
	n.Wait()
}

func TestWinNotifier_Scan(t *testing.T) {
	endsAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	active := models.Lot{ID: "7", Status: models.StatusActive, EndsAt: endsAt, LeaderID: "albert82a"}
	cancelled := finishedLot("8", "albert82a", 100)
	cancelled.Status = models.StatusCancelled

	tests := []struct {
		name   string
		lots   []models.Lot
		viewer models.Viewer
		want   int
	}{
		{name: "finished_with_viewer_as_winner", lots: []models.Lot{finishedLot("5", "albert82a", 100)}, viewer: winner, want: 1},
		{name: "finished_with_other_winner", lots: []models.Lot{finishedLot("5", "100411622", 100)}, viewer: winner, want: 0},
		{name: "leading_but_still_active", lots: []models.Lot{active}, viewer: winner, want: 0},
		{name: "cancelled", lots: []models.Lot{cancelled}, viewer: winner, want: 0},
		{name: "guest_never_notified", lots: []models.Lot{finishedLot("5", models.GuestID, 100)}, viewer: models.Viewer{ID: models.GuestID}, want: 0},
		{name: "empty_viewer_never_notified", lots: []models.Lot{finishedLot("5", "", 100)}, viewer: models.Viewer{}, want: 0},
		{
			name:   "several_wins_in_one_snapshot",
			lots:   []models.Lot{finishedLot("5", "albert82a", 100), finishedLot("6", "albert82a", 200), active},
			viewer: winner,
			want:   2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			sender := NewMockSender(ctrl)
			sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(tc.want)
			sender.EXPECT().Name().Return("mock").AnyTimes()

			n := NewWinNotifier(nil, []Sender{sender}, Options{})
			require.Equal(t, tc.want, n.Scan(tc.lots, tc.viewer))
			n.Wait()
		})
	}
}

func TestWinNotifier_SenderFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	slow := NewMockSender(ctrl)
	slow.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, n Notification) error {
		<-release
		return errors.New("bridge unreachable")
	}).Times(2)
	slow.EXPECT().Name().Return("slow").AnyTimes()

	ok := NewMockSender(ctrl)
	ok.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	ok.EXPECT().Name().Return("ok").AnyTimes()

	n := NewWinNotifier(NewLedger(), []Sender{slow, ok}, Options{Timeout: time.Second})

	done := make(chan int, 2)
	go func() {
		done <- n.Scan([]models.Lot{finishedLot("5", "albert82a", 100)}, winner)
		done <- n.Scan([]models.Lot{finishedLot("6", "albert82a", 100)}, winner)
	}()

	for i := 0; i < 2; i++ {
		select {
		case got := <-done:
			require.Equal(t, 1, got)
		case <-time.After(2 * time.Second):
			t.Fatal("scan blocked on a sender")
		}
	}

	close(release)
	n.Wait()
}

func TestWinNotifier_CustomTemplates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	got := make(chan Notification, 1)
	sender := NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, n Notification) error {
		got <- n
		return nil
	})
	sender.EXPECT().Name().Return("mock").AnyTimes()

	n := NewWinNotifier(NewLedger(), []Sender{sender}, Options{Title: "You won!", Message: "%s for %s", ButtonText: "OK"})
	n.Scan([]models.Lot{finishedLot("5", "albert82a", 1000)}, winner)
	n.Wait()

	note := <-got
	require.Equal(t, "You won!", note.Title)
	require.Equal(t, "Vase 5 for 1\u00a0000\u00a0₽", note.Message)
	require.Equal(t, "OK", note.ButtonText)
}

func TestBridgeSender_Send(t *testing.T) {
	t.Parallel()

	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies <- body
		if body["lotId"] == "fail" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "down")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewBridgeSender(srv.URL)
	require.Equal(t, "bridge", s.Name())

	require.NoError(t, s.Send(context.Background(), Notification{LotID: "5", ViewerID: "albert82a", Title: DefaultTitle, Price: 100}))
	body := <-bodies
	require.Equal(t, "win", body["type"])
	require.Equal(t, "5", body["lotId"])
	require.Equal(t, "albert82a", body["viewerId"])
	require.Equal(t, float64(100), body["price"])

	err := s.Send(context.Background(), Notification{LotID: "fail"})
	require.ErrorContains(t, err, "unexpected status 503: down")
	<-bodies
}
