package gateway

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"auction-sync/internal/models"
)

const (
	defaultStep             = 100
	defaultAntiSnipeMinutes = 2
	defaultAvatar           = "??"
)

// record is one decoded JSON object. Every accessor tries the camelCase key
// first and then its snake_case spelling, and degrades to a default instead
// of failing.
type record map[string]any

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func snakeCase(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (r record) get(key string) (any, bool) {
	if v, ok := r[key]; ok && v != nil {
		return v, true
	}
	if v, ok := r[snakeCase(key)]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func (r record) str(key, def string) string {
	v, ok := r.get(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return def
}

func (r record) int64(key string, def int64) int64 {
	v, ok := r.get(key)
	if !ok {
		return def
	}
	n, ok := toInt64(v)
	if !ok {
		return def
	}
	return n
}

func (r record) optInt(key string) (int, bool) {
	v, ok := r.get(key)
	if !ok {
		return 0, false
	}
	n, ok := toInt64(v)
	if !ok || n == 0 {
		return 0, false
	}
	return int(n), true
}

func (r record) boolean(key string, def bool) bool {
	v, ok := r.get(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return b
	}
	if n, ok := toInt64(v); ok {
		return n != 0
	}
	return def
}

func (r record) time(key string) (time.Time, bool) {
	v, ok := r.get(key)
	if !ok {
		return time.Time{}, false
	}
	return toTime(v)
}

func (r record) object(key string) (record, bool) {
	v, ok := r.get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return record(m), ok
}

func (r record) list(key string) []record {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]record, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, record(m))
		}
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float64:
		return floatToInt(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(n), true
		}
	case json.Number, float64:
		if n, ok := toInt64(t); ok {
			return fromEpoch(n), true
		}
	}
	return time.Time{}, false
}

// fromEpoch accepts both second and millisecond precision.
func fromEpoch(n int64) time.Time {
	if n > 1e11 || n < -1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func normalizeStatus(s string) models.LotStatus {
	st := models.LotStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return models.StatusActive
	}
	return st
}

func normalizePayment(s string) models.PaymentStatus {
	ps := models.PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !ps.Valid() {
		return models.PaymentNone
	}
	return ps
}

func normalizeLot(r record) models.Lot {
	lot := models.Lot{
		ID:            r.str("id", ""),
		Title:         r.str("title", ""),
		Description:   r.str("description", ""),
		Image:         r.str("image", ""),
		Video:         r.str("video", ""),
		StartPrice:    nonNegative(r.int64("startPrice", 0)),
		CurrentPrice:  nonNegative(r.int64("currentPrice", 0)),
		Step:          nonNegative(r.int64("step", defaultStep)),
		Status:        normalizeStatus(r.str("status", "")),
		WinnerID:      r.str("winnerId", ""),
		WinnerName:    r.str("winnerName", ""),
		PaymentStatus: normalizePayment(r.str("paymentStatus", "")),
		LeaderID:      r.str("leaderId", ""),
		LeaderName:    r.str("leaderName", ""),
		LeaderAvatar:  r.str("leaderAvatar", ""),
		BidCount:      int(nonNegative(r.int64("bidCount", 0))),
	}
	if d, ok := r.optInt("videoDuration"); ok {
		lot.VideoDuration = d
	}
	if ts, ok := r.time("endsAt"); ok {
		lot.EndsAt = ts
	}
	if ts, ok := r.time("startsAt"); ok {
		lot.StartsAt = &ts
	}
	if ts, ok := r.time("createdAt"); ok {
		lot.CreatedAt = ts
	}

	if nested, ok := r.object("antiSnipe"); ok {
		lot.AntiSnipe = models.AntiSnipe{
			Enabled:          nested.boolean("enabled", false),
			ExtensionMinutes: int(nested.int64("extensionMinutes", defaultAntiSnipeMinutes)),
		}
	} else {
		lot.AntiSnipe = models.AntiSnipe{
			Enabled:          r.boolean("antiSnipe", false),
			ExtensionMinutes: int(r.int64("antiSnipeMinutes", defaultAntiSnipeMinutes)),
		}
	}

	if ab, ok := r.object("myAutoBid"); ok {
		lot.MyAutoBid = &models.AutoBid{
			MaxAmount: nonNegative(ab.int64("maxAmount", 0)),
			Active:    ab.boolean("active", true),
		}
	}

	raw := r.list("bids")
	lot.Bids = make([]models.Bid, 0, len(raw))
	for _, b := range raw {
		lot.Bids = append(lot.Bids, normalizeBid(b))
	}
	return lot
}

func normalizeBid(r record) models.Bid {
	b := models.Bid{
		ID:         r.str("id", ""),
		UserID:     r.str("userId", ""),
		UserName:   r.str("userName", ""),
		UserAvatar: r.str("userAvatar", defaultAvatar),
		Amount:     nonNegative(r.int64("amount", 0)),
	}
	if ts, ok := r.time("createdAt"); ok {
		b.CreatedAt = ts
	}
	return b
}

// normalizeReceipt reads a mutation acknowledgement. Bid responses carry
// bidId, admin create carries id.
func normalizeReceipt(r record) models.Receipt {
	rc := models.Receipt{
		ID:       r.str("bidId", r.str("id", "")),
		NewPrice: nonNegative(r.int64("newPrice", 0)),
		Extended: r.boolean("extended", false),
	}
	if ts, ok := r.time("newEndsAt"); ok {
		rc.NewEndsAt = &ts
	}
	return rc
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
