package models

import "time"

// GuestID is the identity used when the host platform could not identify the viewer.
const GuestID = "guest"

// LotStatus is the lifecycle state of a lot. Transitions are one-way:
// upcoming -> active -> finished, or upcoming/active -> cancelled.
type LotStatus string

const (
	StatusUpcoming  LotStatus = "upcoming"
	StatusActive    LotStatus = "active"
	StatusFinished  LotStatus = "finished"
	StatusCancelled LotStatus = "cancelled"
)

// Valid reports whether s is one of the known lot statuses.
func (s LotStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is possible.
func (s LotStatus) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// PaymentStatus is the settlement state of a finished lot.
type PaymentStatus string

const (
	PaymentNone      PaymentStatus = ""
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentIssued    PaymentStatus = "issued"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether p is a known, non-empty payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentIssued, PaymentCancelled:
		return true
	}
	return false
}

// AntiSnipe is the server-side deadline extension configuration of a lot.
type AntiSnipe struct {
	Enabled          bool `json:"enabled"`
	ExtensionMinutes int  `json:"extensionMinutes"`
}

// AutoBid is the requesting viewer's auto-bid ceiling on a lot.
type AutoBid struct {
	MaxAmount int64 `json:"maxAmount"`
	Active    bool  `json:"active"`
}

// Bid represents one accepted bid on a lot
type Bid struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Lot represents an auctionable item as last reported by the remote authority.
// Bids is ordered newest first and is only complete on detail fetches.
type Lot struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Image         string        `json:"image"`
	Video         string        `json:"video,omitempty"`
	VideoDuration int           `json:"videoDuration,omitempty"`
	StartPrice    int64         `json:"startPrice"`
	CurrentPrice  int64         `json:"currentPrice"`
	Step          int64         `json:"step"`
	StartsAt      *time.Time    `json:"startsAt,omitempty"`
	EndsAt        time.Time     `json:"endsAt"`
	Status        LotStatus     `json:"status"`
	WinnerID      string        `json:"winnerId,omitempty"`
	WinnerName    string        `json:"winnerName,omitempty"`
	AntiSnipe     AntiSnipe     `json:"antiSnipe"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	LeaderID      string        `json:"leaderId,omitempty"`
	LeaderName    string        `json:"leaderName,omitempty"`
	LeaderAvatar  string        `json:"leaderAvatar,omitempty"`
	BidCount      int           `json:"bidCount"`
	Bids          []Bid         `json:"bids"`
	MyAutoBid     *AutoBid      `json:"myAutoBid,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Clone returns a deep copy of the lot so callers can never alias a held snapshot.
func (l Lot) Clone() Lot {
	out := l
	if l.StartsAt != nil {
		t := *l.StartsAt
		out.StartsAt = &t
	}
	if l.Bids != nil {
		out.Bids = append([]Bid(nil), l.Bids...)
	}
	if l.MyAutoBid != nil {
		ab := *l.MyAutoBid
		out.MyAutoBid = &ab
	}
	return out
}

// CloneLots deep-copies a lot collection.
func CloneLots(lots []Lot) []Lot {
	if lots == nil {
		return nil
	}
	out := make([]Lot, len(lots))
	for i := range lots {
		out[i] = lots[i].Clone()
	}
	return out
}

// Viewer is the identity the current session acts as. IsAdmin only changes
// how data is displayed; the remote authority decides what writes are allowed.
type Viewer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	IsAdmin bool   `json:"isAdmin"`
}

// IsGuest reports whether the viewer is anonymous.
func (v Viewer) IsGuest() bool {
	return v.ID == "" || v.ID == GuestID
}

// AdminActionKind discriminates admin payloads.
type AdminActionKind string

const (
	AdminCreate AdminActionKind = "create"
	AdminUpdate AdminActionKind = "update"
	AdminStop   AdminActionKind = "stop"
	AdminDelete AdminActionKind = "delete"
)

// LotDraft carries the lot fields an admin action sets. Nil fields are not sent.
type LotDraft struct {
	Title            *string        `json:"title,omitempty"`
	Description      *string        `json:"description,omitempty"`
	Image            *string        `json:"image,omitempty"`
	Video            *string        `json:"video,omitempty"`
	VideoDuration    *int           `json:"videoDuration,omitempty"`
	StartPrice       *int64         `json:"startPrice,omitempty"`
	Step             *int64         `json:"step,omitempty"`
	EndsAt           *time.Time     `json:"endsAt,omitempty"`
	AntiSnipe        *bool          `json:"antiSnipe,omitempty"`
	AntiSnipeMinutes *int           `json:"antiSnipeMinutes,omitempty"`
	PaymentStatus    *PaymentStatus `json:"paymentStatus,omitempty"`
}

// AdminAction is one admin mutation request.
type AdminAction struct {
	Kind  AdminActionKind `json:"action"`
	LotID string          `json:"lotId,omitempty"`
	Draft LotDraft        `json:"draft"`
}

// Receipt is the normalized acknowledgement of an accepted mutation.
type Receipt struct {
	ID        string     `json:"id,omitempty"`
	NewPrice  int64      `json:"newPrice,omitempty"`
	Extended  bool       `json:"extended"`
	NewEndsAt *time.Time `json:"newEndsAt,omitempty"`
}

// Outcome is the settled result of a submission attempt.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeRejected  Outcome = "rejected"
	OutcomeTransport Outcome = "transport_error"
)

// MutationResult is what the UI shows after a submission settles. For
// rejections Message is the server text, verbatim.
type MutationResult struct {
	Outcome Outcome  `json:"outcome"`
	Message string   `json:"message,omitempty"`
	Receipt *Receipt `json:"receipt,omitempty"`
}
