// Package notify delivers the one-shot "you won" notification. A Ledger
// remembers which (lot, viewer) pairs were already notified this session and
// the WinNotifier fans claimed wins out to every registered Sender without
// ever blocking the poll that observed them.
package notify

//go:generate mockgen -source=notifier.go -destination=mock_sender.go -package=notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-sync/internal/display"
	"auction-sync/internal/models"
	"auction-sync/utils"
)

// Defaults for the win notification content.
const (
	DefaultTitle      = "🏆 Вы победили!"
	DefaultMessage    = "Поздравляем! Вы выиграли лот «%s» за %s. Свяжитесь с организатором для получения приза."
	DefaultButtonText = "Отлично!"
	DefaultTimeout    = 5 * time.Second
)

// Notification is one win to deliver.
type Notification struct {
	LotID      string `json:"lotId"`
	LotTitle   string `json:"lotTitle"`
	ViewerID   string `json:"viewerId"`
	Price      int64  `json:"price"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	ButtonText string `json:"button"`
}

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, n Notification) error
	Name() string
}

// Options tunes a WinNotifier.
type Options struct {
	Title      string
	Message    string // fmt template taking the lot title and the formatted price
	ButtonText string
	Timeout    time.Duration
}

// WinNotifier scans list snapshots for wins of the session viewer.
type WinNotifier struct {
	ledger  *Ledger
	senders []Sender
	opts    Options
	wg      sync.WaitGroup
}

// NewWinNotifier creates a notifier claiming wins in ledger.
func NewWinNotifier(ledger *Ledger, senders []Sender, opts Options) *WinNotifier {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	if opts.ButtonText == "" {
		opts.ButtonText = DefaultButtonText
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if ledger == nil {
		ledger = NewLedger()
	}
	return &WinNotifier{ledger: ledger, senders: senders, opts: opts}
}

// Scan claims every lot in lots that is finished with viewer as the winner
// and dispatches a notification for each new claim. It returns the number of
// dispatches started and never waits for them.
func (n *WinNotifier) Scan(lots []models.Lot, viewer models.Viewer) int {
	if viewer.IsGuest() {
		return 0
	}

	started := 0
	for _, lot := range lots {
		if lot.Status != models.StatusFinished || lot.WinnerID == "" || lot.WinnerID != viewer.ID {
			continue
		}
		if !n.ledger.Claim(lot.ID, viewer.ID) {
			continue
		}
		n.dispatch(n.build(lot, viewer))
		started++
	}
	return started
}

// Wait blocks until every dispatch started so far has finished.
func (n *WinNotifier) Wait() {
	n.wg.Wait()
}

func (n *WinNotifier) build(lot models.Lot, viewer models.Viewer) Notification {
	return Notification{
		LotID:      lot.ID,
		LotTitle:   lot.Title,
		ViewerID:   viewer.ID,
		Price:      lot.CurrentPrice,
		Title:      n.opts.Title,
		Message:    fmt.Sprintf(n.opts.Message, lot.Title, display.FormatPrice(lot.CurrentPrice)),
		ButtonText: n.opts.ButtonText,
	}
}

func (n *WinNotifier) dispatch(note Notification) {
	utils.Info("win detected", map[string]any{"lot_id": note.LotID, "viewer_id": note.ViewerID})

	for _, s := range n.senders {
		s := s
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), n.opts.Timeout)
			defer cancel()

			if err := s.Send(ctx, note); err != nil {
				utils.Error("win notification failed", map[string]any{
					"sender": s.Name(),
					"lot_id": note.LotID,
					"error":  err.Error(),
				})
				return
			}
			utils.Debug("win notification sent", map[string]any{"sender": s.Name(), "lot_id": note.LotID})
		}()
	}
}
