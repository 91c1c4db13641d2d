// Package mutation serializes user-initiated writes against the remote
// authority and reconciles the read-model after they are accepted.
package mutation

//go:generate mockgen -source=coordinator.go -destination=mock_coordinator.go -package=mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-sync/internal/models"
	"auction-sync/internal/syncerrors"
	"auction-sync/utils"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// DefaultNetworkError is shown when a submission got no usable response.
const DefaultNetworkError = "Ошибка сети. Попробуйте ещё раз."

// Gateway is the write side of the remote authority.
type Gateway interface {
	SubmitBid(ctx context.Context, lotID string, amount int64, viewer models.Viewer) (models.Receipt, error)
	SubmitAutoBid(ctx context.Context, lotID string, maxAmount int64, viewer models.Viewer) (models.Receipt, error)
	AdminAction(ctx context.Context, action models.AdminAction) (models.Receipt, error)
}

// ListRefresher triggers an immediate list fetch.
type ListRefresher interface {
	Refresh(ctx context.Context) error
}

// DetailRefresher triggers an immediate fetch of lotID if it is being viewed.
type DetailRefresher interface {
	Refresh(ctx context.Context, lotID string) error
}

// Phase is where one action is in its lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSettled    Phase = "settled"
)

// ActionState is the state of one action key.
type ActionState struct {
	Key       string                 `json:"key"`
	Phase     Phase                  `json:"phase"`
	Result    *models.MutationResult `json:"result,omitempty"`
	StartedAt time.Time              `json:"startedAt,omitempty"`
	SettledAt time.Time              `json:"settledAt,omitempty"`
}

// Options tunes a Coordinator.
type Options struct {
	Clock        clockwork.Clock
	NetworkError string
}

// Coordinator runs bid, auto-bid and admin submissions. Each action key moves
// idle -> submitting -> settled and back to idle only when acknowledged.
type Coordinator struct {
	gateway      Gateway
	list         ListRefresher
	detail       DetailRefresher
	clock        clockwork.Clock
	networkError string

	mu     sync.Mutex
	states map[string]ActionState
}

// NewCoordinator creates a coordinator.
func NewCoordinator(gateway Gateway, list ListRefresher, detail DetailRefresher, opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.NetworkError == "" {
		opts.NetworkError = DefaultNetworkError
	}
	return &Coordinator{
		gateway:      gateway,
		list:         list,
		detail:       detail,
		clock:        opts.Clock,
		networkError: opts.NetworkError,
		states:       make(map[string]ActionState),
	}
}

// BidKey is the action key of a bid on lotID.
func BidKey(lotID string) string { return "bid:" + lotID }

// AutoBidKey is the action key of an auto-bid on lotID.
func AutoBidKey(lotID string) string { return "autobid:" + lotID }

// AdminKey is the action key of an admin action. Creates use "new" as id.
func AdminKey(kind models.AdminActionKind, lotID string) string {
	if lotID == "" {
		lotID = "new"
	}
	return fmt.Sprintf("admin:%s:%s", kind, lotID)
}

// PlaceBid submits a bid. The returned error is only set when nothing was
// submitted (ErrSubmitInFlight, ErrInvalidAmount); remote outcomes are
// reported through the result.
func (c *Coordinator) PlaceBid(ctx context.Context, lotID string, amount int64, viewer models.Viewer) (models.MutationResult, error) {
	if amount <= 0 {
		return models.MutationResult{}, fmt.Errorf("mutation: bid on lot %s: %w", lotID, syncerrors.ErrInvalidAmount)
	}
	return c.submit(ctx, BidKey(lotID), lotID, func(ctx context.Context) (models.Receipt, error) {
		return c.gateway.SubmitBid(ctx, lotID, amount, viewer)
	})
}

// SetAutoBid submits an auto-bid ceiling. Only the ceiling is ever shown
// locally; the increments are placed remotely.
func (c *Coordinator) SetAutoBid(ctx context.Context, lotID string, maxAmount int64, viewer models.Viewer) (models.MutationResult, error) {
	if maxAmount <= 0 {
		return models.MutationResult{}, fmt.Errorf("mutation: auto-bid on lot %s: %w", lotID, syncerrors.ErrInvalidAmount)
	}
	return c.submit(ctx, AutoBidKey(lotID), lotID, func(ctx context.Context) (models.Receipt, error) {
		return c.gateway.SubmitAutoBid(ctx, lotID, maxAmount, viewer)
	})
}

// Admin submits an admin action. The list, and the lot if it is open, are
// refetched afterwards instead of patched locally.
func (c *Coordinator) Admin(ctx context.Context, action models.AdminAction) (models.MutationResult, error) {
	switch action.Kind {
	case models.AdminCreate:
	case models.AdminUpdate, models.AdminStop, models.AdminDelete:
		if action.LotID == "" {
			return models.MutationResult{}, fmt.Errorf("mutation: admin %s: %w: lot id required", action.Kind, syncerrors.ErrInvalidAdminAction)
		}
	default:
		return models.MutationResult{}, fmt.Errorf("mutation: admin %q: %w", action.Kind, syncerrors.ErrInvalidAdminAction)
	}
	return c.submit(ctx, AdminKey(action.Kind, action.LotID), action.LotID, func(ctx context.Context) (models.Receipt, error) {
		return c.gateway.AdminAction(ctx, action)
	})
}

// State returns the state of an action key. Unknown keys are idle.
func (c *Coordinator) State(key string) ActionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[key]
	if !ok {
		return ActionState{Key: key, Phase: PhaseIdle}
	}
	if st.Result != nil {
		res := *st.Result
		st.Result = &res
	}
	return st
}

// Acknowledge returns a settled action to idle.
func (c *Coordinator) Acknowledge(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[key]; ok && st.Phase == PhaseSubmitting {
		return fmt.Errorf("mutation: acknowledge %s: %w", key, syncerrors.ErrSubmitInFlight)
	}
	delete(c.states, key)
	return nil
}

func (c *Coordinator) submit(ctx context.Context, key, lotID string, call func(ctx context.Context) (models.Receipt, error)) (models.MutationResult, error) {
	if err := c.begin(key); err != nil {
		return models.MutationResult{}, err
	}

	receipt, err := call(ctx)

	var res models.MutationResult
	switch {
	case err == nil:
		c.refresh(ctx, lotID)
		rc := receipt
		res = models.MutationResult{Outcome: models.OutcomeOK, Receipt: &rc}
		utils.Info("mutation accepted", map[string]any{"key": key, "receipt_id": receipt.ID, "extended": receipt.Extended})
	case errors.Is(err, syncerrors.ErrRejected):
		msg, _ := syncerrors.RejectionMessage(err)
		res = models.MutationResult{Outcome: models.OutcomeRejected, Message: msg}
		utils.Info("mutation rejected", map[string]any{"key": key, "message": msg})
	default:
		res = models.MutationResult{Outcome: models.OutcomeTransport, Message: c.networkError}
		utils.Warn("mutation transport failure", map[string]any{"key": key, "error": err.Error()})
	}

	c.settle(key, res)
	return res, nil
}

// begin moves key to submitting. A settled, unacknowledged result is
// implicitly acknowledged by a new submission.
func (c *Coordinator) begin(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[key]; ok && st.Phase == PhaseSubmitting {
		return fmt.Errorf("mutation: %s: %w", key, syncerrors.ErrSubmitInFlight)
	}
	c.states[key] = ActionState{Key: key, Phase: PhaseSubmitting, StartedAt: c.clock.Now()}
	return nil
}

func (c *Coordinator) settle(key string, res models.MutationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.states[key]
	st.Phase = PhaseSettled
	st.Result = &res
	st.SettledAt = c.clock.Now()
	c.states[key] = st
}

// refresh runs the detail and list refetch concurrently and waits for both.
// Their failures are logged; the next poll will catch up.
func (c *Coordinator) refresh(ctx context.Context, lotID string) {
	var g errgroup.Group

	if lotID != "" {
		g.Go(func() error {
			if err := c.detail.Refresh(ctx, lotID); err != nil && !errors.Is(err, syncerrors.ErrNotMounted) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		if err := c.list.Refresh(ctx); err != nil && !errors.Is(err, syncerrors.ErrNotMounted) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		utils.Warn("refresh after mutation failed", map[string]any{"lot_id": lotID, "error": err.Error()})
	}
}
