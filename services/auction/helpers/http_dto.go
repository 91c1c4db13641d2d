package helpers

import (
	"time"

	"auction-sync/internal/models"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type AutoBidRequest struct {
	MaxAmount int64 `json:"maxAmount" binding:"required"`
}

// AdminRequest is the discriminated admin payload. Only the fields present
// in the request are forwarded.
type AdminRequest struct {
	Action           string     `json:"action" binding:"required,oneof=create update stop delete"`
	LotID            string     `json:"lotId"`
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Image            *string    `json:"image"`
	Video            *string    `json:"video"`
	VideoDuration    *int       `json:"videoDuration"`
	StartPrice       *int64     `json:"startPrice"`
	Step             *int64     `json:"step"`
	EndsAt           *time.Time `json:"endsAt"`
	AntiSnipe        *bool      `json:"antiSnipe"`
	AntiSnipeMinutes *int       `json:"antiSnipeMinutes"`
	PaymentStatus    *string    `json:"paymentStatus"`
}

// ToAction converts the request into a domain admin action.
func (r AdminRequest) ToAction() models.AdminAction {
	action := models.AdminAction{
		Kind:  models.AdminActionKind(r.Action),
		LotID: r.LotID,
		Draft: models.LotDraft{
			Title:            r.Title,
			Description:      r.Description,
			Image:            r.Image,
			Video:            r.Video,
			VideoDuration:    r.VideoDuration,
			StartPrice:       r.StartPrice,
			Step:             r.Step,
			EndsAt:           r.EndsAt,
			AntiSnipe:        r.AntiSnipe,
			AntiSnipeMinutes: r.AntiSnipeMinutes,
		},
	}
	if r.PaymentStatus != nil {
		ps := models.PaymentStatus(*r.PaymentStatus)
		action.Draft.PaymentStatus = &ps
	}
	return action
}

type ViewerRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	IsAdmin bool   `json:"isAdmin"`
}

type MutationResponse struct {
	Key     string          `json:"key"`
	Outcome models.Outcome  `json:"outcome"`
	Message string          `json:"message,omitempty"`
	Receipt *models.Receipt `json:"receipt,omitempty"`
}
