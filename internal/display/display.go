// Package display holds the pure, role-aware transforms applied to lot data
// before it reaches the viewer. Nothing in here performs I/O or reads the
// wall clock; callers pass the instant they render at.
package display

import (
	"strconv"
	"strings"

	"auction-sync/internal/models"
)

const (
	anonymousName  = "Участник"
	hiddenID       = "***"
	maskedIDPrefix = 3

	// DefaultProfileBase is the profile link root of the host platform.
	DefaultProfileBase = "https://vk.com/"

	// DefaultRecentBids is how many bidders a lot card previews.
	DefaultRecentBids = 3
)

// Identity is a bidder as a particular viewer is allowed to see them.
type Identity struct {
	UserID     string `json:"userId,omitempty"`
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl,omitempty"`
	MaskedID   string `json:"maskedId,omitempty"`
	Masked     bool   `json:"masked"`
	IsViewer   bool   `json:"isViewer"`
}

// Masker decides how much of a bidder identity a viewer sees.
type Masker struct {
	ProfileBase string
}

// NewMasker returns a Masker linking profiles under base.
func NewMasker(base string) Masker {
	if base == "" {
		base = DefaultProfileBase
	}
	return Masker{ProfileBase: base}
}

// Identity masks a bidder for the viewer. Admins see full name and profile
// link, every viewer sees themselves unmasked, everyone else gets the first
// name and a partially hidden id.
func (m Masker) Identity(userID, fullName string, viewer models.Viewer) Identity {
	self := userID != "" && !viewer.IsGuest() && userID == viewer.ID

	switch {
	case viewer.IsAdmin:
		return Identity{
			UserID:     userID,
			Name:       orAnonymous(fullName),
			ProfileURL: ProfileURL(m.ProfileBase, userID),
			IsViewer:   self,
		}
	case self:
		return Identity{
			UserID:   userID,
			Name:     orAnonymous(fullName),
			IsViewer: true,
		}
	default:
		return Identity{
			Name:     FirstName(fullName),
			MaskedID: MaskID(userID),
			Masked:   true,
		}
	}
}

// FirstName returns the first word of a full name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return anonymousName
	}
	return fields[0]
}

// MaskID keeps the first three characters of a platform id.
func MaskID(userID string) string {
	if userID == "" || userID == models.GuestID {
		return hiddenID
	}
	r := []rune(userID)
	if len(r) > maskedIDPrefix {
		r = r[:maskedIDPrefix]
	}
	return string(r) + "*"
}

// ProfileURL links a platform profile. Numeric ids use the "id" prefix form,
// screen names are linked directly.
func ProfileURL(base, userID string) string {
	if userID == "" || userID == models.GuestID {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if isDigits(userID) {
		return base + "id" + userID
	}
	return base + userID
}

// CollapseBids keeps the highest bid of every distinct bidder, in the order
// those bids appear in the input, truncated to limit. A non-positive limit
// means no truncation.
func CollapseBids(bids []models.Bid, limit int) []models.Bid {
	best := make(map[string]int, len(bids))
	for i, b := range bids {
		j, seen := best[b.UserID]
		if !seen || b.Amount > bids[j].Amount {
			best[b.UserID] = i
		}
	}

	out := make([]models.Bid, 0, len(best))
	for i, b := range bids {
		if best[b.UserID] != i {
			continue
		}
		out = append(out, b)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// FormatPrice groups thousands with a no-break space and appends the currency sign.
func FormatPrice(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('\u00a0')
		}
		b.WriteRune(d)
	}
	b.WriteString("\u00a0₽")
	return b.String()
}

func orAnonymous(name string) string {
	if strings.TrimSpace(name) == "" {
		return anonymousName
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
