package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"auction-sync/internal/engine"
	"auction-sync/internal/gateway"
	"auction-sync/internal/models"
	"auction-sync/internal/notify"
	"auction-sync/internal/server"
	"auction-sync/internal/server/ws"
	syncer "auction-sync/internal/syncService"
	"auction-sync/utils"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.SetOutput(io.Discard)
}

// backendLot is the remote record. The list endpoint serves it in snake_case
// and the detail endpoint in camelCase, the way the real backend mixes them.
type backendLot struct {
	ID         int
	Title      string
	Price      int64
	Step       int64
	Status     string
	EndsAt     time.Time
	WinnerID   string
	WinnerName string
	Bids       []backendBid
	Payment    string
}

type backendBid struct {
	ID       int
	UserID   string
	UserName string
	Amount   int64
	At       time.Time
}

// fakeBackend is an in-memory auction backend speaking the remote JSON contract.
type fakeBackend struct {
	mu      sync.Mutex
	lots    map[int]*backendLot
	nextID  int
	nextBid int
	down    bool
	visits  []string
}

func newFakeBackend(lots ...backendLot) *fakeBackend {
	b := &fakeBackend{lots: map[int]*backendLot{}, nextID: 100, nextBid: 1}
	for i := range lots {
		l := lots[i]
		b.lots[l.ID] = &l
	}
	return b
}

func (b *fakeBackend) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *fakeBackend) lot(id int) backendLot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.lots[id]
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/lots", b.serveLots)
	mux.HandleFunc("/bid", b.serveBid)
	mux.HandleFunc("/admin", b.serveAdmin)
	mux.HandleFunc("/visit", b.serveVisit)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		down := b.down
		b.mu.Unlock()
		if down {
			// drop the connection: no HTTP response at all
			hj, ok := w.(http.Hijacker)
			if ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) serveLots(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if raw := r.URL.Query().Get("id"); raw != "" {
		id, _ := strconv.Atoi(raw)
		l, ok := b.lots[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "Лот не найден"})
			return
		}
		_ = json.NewEncoder(w).Encode(detailJSON(l))
		return
	}

	ids := make([]int, 0, len(b.lots))
	for id := range b.lots {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, listJSON(b.lots[id]))
	}
	_ = json.NewEncoder(w).Encode(out)
}

func listJSON(l *backendLot) map[string]any {
	m := map[string]any{
		"id":            l.ID,
		"title":         l.Title,
		"current_price": strconv.FormatInt(l.Price, 10),
		"step":          l.Step,
		"status":        l.Status,
		"ends_at":       l.EndsAt.UTC().Format("2006-01-02T15:04:05"),
		"bid_count":     len(l.Bids),
		"winner_id":     l.WinnerID,
		"winner_name":   l.WinnerName,
	}
	if len(l.Bids) > 0 {
		m["leader_id"] = l.Bids[0].UserID
		m["leader_name"] = l.Bids[0].UserName
	}
	return m
}

func detailJSON(l *backendLot) map[string]any {
	bids := make([]map[string]any, 0, len(l.Bids))
	for _, bid := range l.Bids {
		bids = append(bids, map[string]any{
			"id":        bid.ID,
			"userId":    bid.UserID,
			"userName":  bid.UserName,
			"amount":    bid.Amount,
			"createdAt": bid.At.UTC().Format(time.RFC3339),
		})
	}
	return map[string]any{
		"id":            l.ID,
		"title":         l.Title,
		"currentPrice":  l.Price,
		"step":          l.Step,
		"status":        l.Status,
		"endsAt":        l.EndsAt.UTC().Format(time.RFC3339),
		"winnerId":      l.WinnerID,
		"winnerName":    l.WinnerName,
		"paymentStatus": l.Payment,
		"bids":          bids,
	}
}

func decodeBody(r *http.Request) map[string]any {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	_ = dec.Decode(&body)
	return body
}

func (b *fakeBackend) serveBid(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	id, _ := strconv.Atoi(fmt.Sprint(body["lotId"]))
	amount, _ := strconv.ParseInt(fmt.Sprint(body["amount"]), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.lots[id]
	switch {
	case !ok:
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Лот не найден"})
	case l.Status != string(models.StatusActive):
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Аукцион завершён"})
	case amount < l.Price+l.Step:
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Bid too low"})
	default:
		l.Price = amount
		l.Bids = append([]backendBid{{
			ID:       b.nextBid,
			UserID:   fmt.Sprint(body["userId"]),
			UserName: fmt.Sprint(body["userName"]),
			Amount:   amount,
			At:       time.Now(),
		}}, l.Bids...)
		b.nextBid++
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "bid_id": b.nextBid - 1, "new_price": amount, "extended": false})
	}
}

func (b *fakeBackend) serveAdmin(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	b.mu.Lock()
	defer b.mu.Unlock()

	id, _ := strconv.Atoi(fmt.Sprint(body["lotId"]))
	switch body["action"] {
	case "create":
		l := &backendLot{ID: b.nextID, Title: fmt.Sprint(body["title"]), Status: string(models.StatusActive), Step: 100, EndsAt: time.Now().Add(time.Hour)}
		if p, err := strconv.ParseInt(fmt.Sprint(body["startPrice"]), 10, 64); err == nil {
			l.Price = p
		}
		b.lots[l.ID] = l
		b.nextID++
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "id": l.ID})
	case "stop":
		l, ok := b.lots[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "not found")
			return
		}
		l.Status = string(models.StatusFinished)
		if len(l.Bids) > 0 {
			l.WinnerID, l.WinnerName = l.Bids[0].UserID, l.Bids[0].UserName
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	case "update":
		l, ok := b.lots[id]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "Лот не найден"})
			return
		}
		if ps, ok := body["paymentStatus"]; ok {
			l.Payment = fmt.Sprint(ps)
		}
		if title, ok := body["title"]; ok {
			l.Title = fmt.Sprint(title)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	case "delete":
		delete(b.lots, id)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "unknown action"})
	}
}

func (b *fakeBackend) serveVisit(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	b.mu.Lock()
	b.visits = append(b.visits, fmt.Sprint(body["vkUserId"]))
	b.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}

// chanSender records win notifications.
type chanSender chan notify.Notification

func (c chanSender) Send(ctx context.Context, n notify.Notification) error {
	c <- n
	return nil
}

func (c chanSender) Name() string { return "test" }

type testEnv struct {
	router  *gin.Engine
	backend *fakeBackend
	engine  *engine.Engine
	clock   *clockwork.FakeClock
	wins    chanSender
}

// SetupTestEnv starts a session against a fake backend seeded with lots and
// waits for the first list snapshot.
func SetupTestEnv(t *testing.T, viewer models.Viewer, lots ...backendLot) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := newFakeBackend(lots...)
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClockAt(time.Now())
	wins := make(chanSender, 8)

	remote := gateway.New(gateway.Endpoints{
		Lots:  srv.URL + "/lots",
		Bid:   srv.URL + "/bid",
		Admin: srv.URL + "/admin",
		Visit: srv.URL + "/visit",
	}, 2*time.Second)

	eng := engine.New(remote, engine.Options{
		Clock:         clock,
		Viewer:        viewer,
		Senders:       []notify.Sender{wins},
		SequenceGuard: true, // polls racing a mutation refresh must not roll it back
	})

	hub := ws.NewHub(clock)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, 2)
	go func() { _ = hub.Run(ctx); done <- struct{}{} }()
	go func() { _ = eng.Run(ctx); done <- struct{}{} }()
	t.Cleanup(func() {
		cancel()
		<-done
		<-done
	})

	env := &testEnv{
		router:  server.SetupRouter(eng, hub, []string{"*"}),
		backend: backend,
		engine:  eng,
		clock:   clock,
		wins:    wins,
	}
	require.Eventually(t, func() bool {
		return eng.Lots().State == syncer.StateReady
	}, 2*time.Second, 10*time.Millisecond, "first list snapshot")
	return env
}

// ExecuteRequestAndParse executes an HTTP request on the router and parses the envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

func data(resp map[string]any) map[string]any {
	d, _ := resp["data"].(map[string]any)
	return d
}
