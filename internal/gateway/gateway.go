// Package gateway is the typed HTTP client for the remote auction backend.
// Every operation is one JSON round trip; responses are normalized into
// strict model records before they leave this package.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auction-sync/internal/models"
	"auction-sync/internal/syncerrors"
	"auction-sync/utils"
)

const (
	// DefaultTimeout bounds a single remote round trip.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// Endpoints are the remote URLs. AutoBid falls back to Bid and Visit is
// optional.
type Endpoints struct {
	Lots    string
	Bid     string
	AutoBid string
	Admin   string
	Visit   string
}

// Client talks to the remote authority.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
}

// New creates a gateway client with the given per-call timeout.
func New(endpoints Endpoints, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithHTTPClient(endpoints, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a gateway client on top of an existing http.Client.
func NewWithHTTPClient(endpoints Endpoints, hc *http.Client) *Client {
	if endpoints.AutoBid == "" {
		endpoints.AutoBid = endpoints.Bid
	}
	return &Client{endpoints: endpoints, httpClient: hc}
}

// FetchLots returns the list snapshot.
func (c *Client) FetchLots(ctx context.Context) ([]models.Lot, error) {
	payload, err := c.do(ctx, http.MethodGet, c.endpoints.Lots, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: fetch lots: %w", err)
	}

	var items []any
	switch t := payload.(type) {
	case []any:
		items = t
	case map[string]any:
		// some deployments wrap the array
		wrapped, ok := t["lots"].([]any)
		if !ok {
			return nil, fmt.Errorf("gateway: fetch lots: %w: %w: expected array", syncerrors.ErrTransport, syncerrors.ErrMalformedResponse)
		}
		items = wrapped
	default:
		return nil, fmt.Errorf("gateway: fetch lots: %w: %w: expected array", syncerrors.ErrTransport, syncerrors.ErrMalformedResponse)
	}

	lots := make([]models.Lot, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		lots = append(lots, normalizeLot(record(m)))
	}
	return lots, nil
}

// FetchLot returns one lot with its full bid history. viewerID scopes
// myAutoBid; guests are not sent.
func (c *Client) FetchLot(ctx context.Context, lotID, viewerID string) (models.Lot, error) {
	if lotID == "" {
		return models.Lot{}, fmt.Errorf("gateway: fetch lot: %w", syncerrors.ErrLotNotFound)
	}

	u, err := url.Parse(c.endpoints.Lots)
	if err != nil {
		return models.Lot{}, fmt.Errorf("gateway: fetch lot %s: parse url: %w", lotID, err)
	}
	q := u.Query()
	q.Set("id", lotID)
	if viewerID != "" && viewerID != models.GuestID {
		q.Set("userId", viewerID)
	}
	u.RawQuery = q.Encode()

	payload, err := c.do(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		var rej *syncerrors.RejectionError
		if errors.As(err, &rej) && rej.Status == http.StatusNotFound {
			return models.Lot{}, fmt.Errorf("gateway: fetch lot %s: %w: %w", lotID, syncerrors.ErrLotNotFound, err)
		}
		return models.Lot{}, fmt.Errorf("gateway: fetch lot %s: %w", lotID, err)
	}

	m, ok := payload.(map[string]any)
	if !ok {
		return models.Lot{}, fmt.Errorf("gateway: fetch lot %s: %w: %w: expected object", lotID, syncerrors.ErrTransport, syncerrors.ErrMalformedResponse)
	}
	lot := normalizeLot(record(m))
	if lot.ID == "" {
		lot.ID = lotID
	}
	return lot, nil
}

// SubmitBid places a bid on behalf of viewer.
func (c *Client) SubmitBid(ctx context.Context, lotID string, amount int64, viewer models.Viewer) (models.Receipt, error) {
	body := map[string]any{
		"lotId":      lotIDValue(lotID),
		"amount":     amount,
		"userId":     viewer.ID,
		"userName":   viewer.Name,
		"userAvatar": viewer.Avatar,
	}
	rc, err := c.mutate(ctx, c.endpoints.Bid, body)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("gateway: submit bid on lot %s: %w", lotID, err)
	}
	return rc, nil
}

// SubmitAutoBid sets the viewer's auto-bid ceiling.
func (c *Client) SubmitAutoBid(ctx context.Context, lotID string, maxAmount int64, viewer models.Viewer) (models.Receipt, error) {
	body := map[string]any{
		"lotId":      lotIDValue(lotID),
		"maxAmount":  maxAmount,
		"userId":     viewer.ID,
		"userName":   viewer.Name,
		"userAvatar": viewer.Avatar,
	}
	rc, err := c.mutate(ctx, c.endpoints.AutoBid, body)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("gateway: submit auto-bid on lot %s: %w", lotID, err)
	}
	return rc, nil
}

// AdminAction sends a create, update, stop or delete payload. Only the draft
// fields that are set are sent.
func (c *Client) AdminAction(ctx context.Context, action models.AdminAction) (models.Receipt, error) {
	body, err := adminPayload(action)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("gateway: admin %s: %w", action.Kind, err)
	}
	rc, err := c.mutate(ctx, c.endpoints.Admin, body)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("gateway: admin %s: %w", action.Kind, err)
	}
	return rc, nil
}

// TrackVisit reports a session start. It is a no-op without a visit endpoint.
func (c *Client) TrackVisit(ctx context.Context, viewer models.Viewer) error {
	if c.endpoints.Visit == "" || viewer.IsGuest() {
		return nil
	}
	body := map[string]any{"vkUserId": viewer.ID, "userName": viewer.Name}
	if _, err := c.do(ctx, http.MethodPost, c.endpoints.Visit, body); err != nil {
		return fmt.Errorf("gateway: track visit: %w", err)
	}
	return nil
}

func (c *Client) mutate(ctx context.Context, endpoint string, body any) (models.Receipt, error) {
	payload, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return models.Receipt{}, err
	}
	m, ok := payload.(map[string]any)
	if !ok {
		// an accepted write with a non-object body carries no receipt
		return models.Receipt{}, nil
	}
	return normalizeReceipt(record(m)), nil
}

// do performs one round trip and returns the decoded JSON payload. Errors are
// either ErrTransport (no usable response) or a *RejectionError.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) (any, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	reqID := utils.RequestID()
	req.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", syncerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", syncerrors.ErrTransport, err)
	}

	utils.Debug("remote call", map[string]any{
		"request_id": reqID,
		"method":     method,
		"url":        endpoint,
		"status":     resp.StatusCode,
		"latency":    time.Since(start).String(),
	})

	payload, decodeErr := decode(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil {
			if msg, ok := errorField(payload); ok {
				return nil, syncerrors.Reject(resp.StatusCode, msg)
			}
		}
		return nil, syncerrors.RejectHTTP(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %w: %w", syncerrors.ErrTransport, syncerrors.ErrMalformedResponse, decodeErr)
	}
	if msg, ok := errorField(payload); ok {
		return nil, syncerrors.Reject(resp.StatusCode, msg)
	}
	return payload, nil
}

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// errorField extracts the in-band rejection sentinel.
func errorField(payload any) (string, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	switch e := m["error"].(type) {
	case string:
		if e == "" {
			return "", false
		}
		return e, true
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg, true
		}
		raw, _ := json.Marshal(e)
		return string(raw), true
	}
	return "", false
}

func adminPayload(action models.AdminAction) (map[string]any, error) {
	switch action.Kind {
	case models.AdminCreate:
	case models.AdminUpdate, models.AdminStop, models.AdminDelete:
		if action.LotID == "" {
			return nil, fmt.Errorf("%w: %s requires a lot id", syncerrors.ErrInvalidAdminAction, action.Kind)
		}
	default:
		return nil, fmt.Errorf("%w: unknown action %q", syncerrors.ErrInvalidAdminAction, action.Kind)
	}

	body := map[string]any{"action": string(action.Kind)}
	if action.LotID != "" {
		body["lotId"] = lotIDValue(action.LotID)
	}

	d := action.Draft
	if d.Title != nil {
		body["title"] = *d.Title
	}
	if d.Description != nil {
		body["description"] = *d.Description
	}
	if d.Image != nil {
		body["image"] = *d.Image
	}
	if d.Video != nil {
		body["video"] = *d.Video
	}
	if d.VideoDuration != nil {
		body["videoDuration"] = *d.VideoDuration
	}
	if d.StartPrice != nil {
		body["startPrice"] = *d.StartPrice
	}
	if d.Step != nil {
		body["step"] = *d.Step
	}
	if d.EndsAt != nil {
		body["endsAt"] = d.EndsAt.UTC().Format(time.RFC3339)
	}
	if d.AntiSnipe != nil {
		body["antiSnipe"] = *d.AntiSnipe
	}
	if d.AntiSnipeMinutes != nil {
		body["antiSnipeMinutes"] = *d.AntiSnipeMinutes
	}
	if d.PaymentStatus != nil {
		body["paymentStatus"] = string(*d.PaymentStatus)
	}
	return body, nil
}

// lotIDValue sends numeric ids as JSON numbers, which the backend expects.
func lotIDValue(id string) any {
	if id == "" {
		return id
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
	}
	return json.Number(id)
}
