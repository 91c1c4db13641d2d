package notify

import "sync"

type ledgerKey struct {
	lotID    string
	viewerID string
}

// Ledger is the session-lifetime record of dispatched wins. It is never
// persisted; a new session starts with an empty ledger.
type Ledger struct {
	mu   sync.Mutex
	seen map[ledgerKey]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[ledgerKey]struct{})}
}

// Claim records (lotID, viewerID) and reports whether this call was the first
// to do so. Check and insert happen under one lock.
func (l *Ledger) Claim(lotID, viewerID string) bool {
	k := ledgerKey{lotID: lotID, viewerID: viewerID}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[k]; ok {
		return false
	}
	l.seen[k] = struct{}{}
	return true
}

// Claimed reports whether the pair was already claimed.
func (l *Ledger) Claimed(lotID, viewerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[ledgerKey{lotID: lotID, viewerID: viewerID}]
	return ok
}

// Len returns the number of claimed pairs.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
