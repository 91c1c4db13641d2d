package display

import (
	"time"

	"auction-sync/internal/countdown"
	"auction-sync/internal/models"
)

// BidView is a bid with its bidder identity already masked for the viewer.
type BidView struct {
	ID         string   `json:"id"`
	Bidder     Identity `json:"bidder"`
	Avatar     string   `json:"avatar"`
	Amount     int64    `json:"amount"`
	PriceLabel string   `json:"priceLabel"`
	CreatedAt  string   `json:"createdAt"`
}

// LotView is the viewer-specific projection of a lot snapshot.
type LotView struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Image            string               `json:"image"`
	Video            string               `json:"video,omitempty"`
	VideoDuration    int                  `json:"videoDuration,omitempty"`
	StartPrice       int64                `json:"startPrice"`
	CurrentPrice     int64                `json:"currentPrice"`
	PriceLabel       string               `json:"priceLabel"`
	Step             int64                `json:"step"`
	StartsAt         string               `json:"startsAt,omitempty"`
	EndsAt           string               `json:"endsAt"`
	Status           models.LotStatus     `json:"status"`
	PaymentStatus    models.PaymentStatus `json:"paymentStatus,omitempty"`
	AntiSnipe        bool                 `json:"antiSnipe"`
	AntiSnipeMinutes int                  `json:"antiSnipeMinutes"`
	RemainingMs      int64                `json:"remainingMs"`
	Urgent           bool                 `json:"urgent"`
	TimerLabel       string               `json:"timerLabel"`
	Leader           *Identity            `json:"leader,omitempty"`
	Winner           *Identity            `json:"winner,omitempty"`
	ViewerLeads      bool                 `json:"viewerLeads"`
	ViewerWon        bool                 `json:"viewerWon"`
	BidCount         int                  `json:"bidCount"`
	RecentBids       []BidView            `json:"recentBids"`
	Bids             []BidView            `json:"bids,omitempty"`
	MyAutoBid        *models.AutoBid      `json:"myAutoBid,omitempty"`
}

// ViewOptions controls a projection.
type ViewOptions struct {
	Masker     Masker
	RecentBids int
	// WithHistory includes the full masked bid history (detail screen).
	WithHistory bool
}

// BuildLotView projects lot for viewer as rendered at now. Status is copied
// from the snapshot as-is, even when the countdown has run out.
func BuildLotView(lot models.Lot, viewer models.Viewer, now time.Time, opts ViewOptions) LotView {
	tick := countdown.Derive(lot.EndsAt, now)

	v := LotView{
		ID:               lot.ID,
		Title:            lot.Title,
		Description:      lot.Description,
		Image:            lot.Image,
		Video:            lot.Video,
		VideoDuration:    lot.VideoDuration,
		StartPrice:       lot.StartPrice,
		CurrentPrice:     lot.CurrentPrice,
		PriceLabel:       FormatPrice(lot.CurrentPrice),
		Step:             lot.Step,
		EndsAt:           formatTime(lot.EndsAt),
		Status:           lot.Status,
		PaymentStatus:    lot.PaymentStatus,
		AntiSnipe:        lot.AntiSnipe.Enabled,
		AntiSnipeMinutes: lot.AntiSnipe.ExtensionMinutes,
		RemainingMs:      tick.Millis(),
		Urgent:           tick.Urgent,
		TimerLabel:       countdown.Format(tick.Remaining),
		BidCount:         lot.BidCount,
		MyAutoBid:        lot.MyAutoBid,
	}
	if lot.StartsAt != nil {
		v.StartsAt = formatTime(*lot.StartsAt)
	}

	leaderID, leaderName := lot.LeaderID, lot.LeaderName
	if len(lot.Bids) > 0 {
		leaderID, leaderName = lot.Bids[0].UserID, lot.Bids[0].UserName
	}
	if leaderID != "" {
		id := opts.Masker.Identity(leaderID, leaderName, viewer)
		v.Leader = &id
		v.ViewerLeads = id.IsViewer
	}
	if lot.Status == models.StatusFinished && lot.WinnerID != "" {
		id := opts.Masker.Identity(lot.WinnerID, lot.WinnerName, viewer)
		v.Winner = &id
		v.ViewerWon = id.IsViewer
	}
	if v.BidCount < len(lot.Bids) {
		v.BidCount = len(lot.Bids)
	}

	v.RecentBids = bidViews(CollapseBids(lot.Bids, opts.RecentBids), viewer, opts.Masker)
	if opts.WithHistory {
		v.Bids = bidViews(lot.Bids, viewer, opts.Masker)
	}
	return v
}

// BuildLotViews projects a whole collection, preserving order.
func BuildLotViews(lots []models.Lot, viewer models.Viewer, now time.Time, opts ViewOptions) []LotView {
	out := make([]LotView, 0, len(lots))
	for _, lot := range lots {
		out = append(out, BuildLotView(lot, viewer, now, opts))
	}
	return out
}

func bidViews(bids []models.Bid, viewer models.Viewer, m Masker) []BidView {
	out := make([]BidView, 0, len(bids))
	for _, b := range bids {
		out = append(out, BidView{
			ID:         b.ID,
			Bidder:     m.Identity(b.UserID, b.UserName, viewer),
			Avatar:     b.UserAvatar,
			Amount:     b.Amount,
			PriceLabel: FormatPrice(b.Amount),
			CreatedAt:  formatTime(b.CreatedAt),
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
