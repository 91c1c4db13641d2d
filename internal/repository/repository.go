package repository

import (
	"fmt"
	"sync"

	"auction-sync/internal/models"
	"auction-sync/internal/syncerrors"
)

// ListStore holds the list snapshot of the session.
type ListStore interface {
	Begin() uint64
	Replace(seq uint64, lots []models.Lot) bool
	Snapshot() ([]models.Lot, bool)
	Get(lotID string) (models.Lot, error)
}

// DetailStore holds the snapshot of the one lot being viewed.
type DetailStore interface {
	Reset(lotID string, placeholder *models.Lot)
	Begin() uint64
	Replace(seq uint64, lot models.Lot) bool
	Snapshot() (models.Lot, bool)
	ActiveID() string
}

// sequencer hands out fetch tickets. With the guard enabled a response is only
// applied when its ticket is newer than the last applied one; otherwise the
// last response to arrive wins.
type sequencer struct {
	guard   bool
	issued  uint64
	applied uint64
}

func (s *sequencer) next() uint64 {
	s.issued++
	return s.issued
}

func (s *sequencer) accept(seq uint64) bool {
	if s.guard && seq <= s.applied {
		return false
	}
	if seq > s.applied {
		s.applied = seq
	}
	return true
}

// LotCollection is a concurrency-safe, copy-on-read store of the list snapshot
type LotCollection struct {
	mu     sync.RWMutex
	lots   []models.Lot
	byID   map[string]int // key: lotID -> value: index into lots
	loaded bool
	seq    sequencer
}

// NewLotCollection creates an empty collection. guard enables the sequence guard.
func NewLotCollection(guard bool) *LotCollection {
	return &LotCollection{
		byID: make(map[string]int),
		seq:  sequencer{guard: guard},
	}
}

// Begin reserves a sequence number for a fetch about to start.
func (c *LotCollection) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq.next()
}

// Replace swaps in a whole new snapshot. It reports false when the response
// was discarded as stale.
func (c *LotCollection) Replace(seq uint64, lots []models.Lot) bool {
	fresh := models.CloneLots(lots)
	if fresh == nil {
		fresh = []models.Lot{}
	}
	index := make(map[string]int, len(fresh))
	for i, l := range fresh {
		if _, dup := index[l.ID]; !dup {
			index[l.ID] = i
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seq.accept(seq) {
		return false
	}
	c.lots = fresh
	c.byID = index
	c.loaded = true
	return true
}

// Snapshot returns a copy of the held collection and whether any fetch has
// succeeded yet.
func (c *LotCollection) Snapshot() ([]models.Lot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return []models.Lot{}, false
	}
	return models.CloneLots(c.lots), true
}

// Get returns one lot from the list snapshot
func (c *LotCollection) Get(lotID string) (models.Lot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[lotID]
	if !ok {
		return models.Lot{}, fmt.Errorf("get lot %s: %w", lotID, syncerrors.ErrLotNotFound)
	}
	return c.lots[i].Clone(), nil
}

// LotSlot is a concurrency-safe store of the detail snapshot. It holds at most
// one lot id at a time; responses for any other id are dropped.
type LotSlot struct {
	mu          sync.RWMutex
	lotID       string
	lot         models.Lot
	has         bool
	placeholder bool
	guard       bool
	seq         sequencer
}

// NewLotSlot creates an empty slot.
func NewLotSlot(guard bool) *LotSlot {
	return &LotSlot{guard: guard, seq: sequencer{guard: guard}}
}

// Reset points the slot at lotID, seeding it with placeholder when given. An
// empty lotID clears the slot.
func (s *LotSlot) Reset(lotID string, placeholder *models.Lot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lotID = lotID
	s.lot = models.Lot{}
	s.has = false
	s.placeholder = false
	s.seq = sequencer{guard: s.guard}
	if lotID != "" && placeholder != nil {
		s.lot = placeholder.Clone()
		s.has = true
		s.placeholder = true
	}
}

// Begin reserves a sequence number for a fetch about to start.
func (s *LotSlot) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.next()
}

// Replace stores lot as the detail snapshot if it belongs to the active id.
func (s *LotSlot) Replace(seq uint64, lot models.Lot) bool {
	fresh := lot.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lotID == "" || fresh.ID != s.lotID {
		return false
	}
	if !s.seq.accept(seq) {
		return false
	}
	s.lot = fresh
	s.has = true
	s.placeholder = false
	return true
}

// Snapshot returns a copy of the held lot, if any.
func (s *LotSlot) Snapshot() (models.Lot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.has {
		return models.Lot{}, false
	}
	return s.lot.Clone(), true
}

// IsPlaceholder reports whether the held lot is still the list-seeded placeholder.
func (s *LotSlot) IsPlaceholder() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.placeholder
}

// ActiveID returns the id the slot is scoped to.
func (s *LotSlot) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotID
}
