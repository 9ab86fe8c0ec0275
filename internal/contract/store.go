package contract

import (
	"context"
	"time"
)

// Store is the key-value substrate the contract persists into. A Store handed
// to ContractState must be scoped to a single atomic operation.
//
// Entries are retained for a bounded time. An entry whose lease lapsed is
// archived, never dropped: Get, Set, Has and ExtendTTL fail with ErrArchived
// for it until Restore revives it.
type Store interface {
	// Get returns the stored bytes and whether the key exists.
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	// Set writes value under key. A new entry starts with the store's minimum
	// TTL; overwriting a live entry keeps its expiry.
	Set(ctx context.Context, key Key, value []byte) error
	// Has reports whether key holds an entry.
	Has(ctx context.Context, key Key) (bool, error)
	// ExtendTTL pushes the expiry of a live entry to now+extendTo when its
	// remaining TTL is below threshold. Missing entries are ignored.
	ExtendTTL(ctx context.Context, key Key, threshold, extendTo time.Duration) error
	// Restore revives an archived entry with expiry now+extendTo and reports
	// whether it did. Live and missing entries are left alone.
	Restore(ctx context.Context, key Key, extendTo time.Duration) (bool, error)
}

// Retention describes how far the contract refreshes entry leases.
type Retention struct {
	Threshold time.Duration
	ExtendTo  time.Duration
}

// LedgerInterval approximates one ledger close.
const LedgerInterval = 5 * time.Second

// DefaultRetention refreshes entries to 100 ledgers whenever less than 100
// ledgers remain.
var DefaultRetention = Retention{
	Threshold: 100 * LedgerInterval,
	ExtendTo:  100 * LedgerInterval,
}

func (r Retention) normalize() Retention {
	if r.ExtendTo <= 0 {
		r.ExtendTo = DefaultRetention.ExtendTo
	}
	if r.Threshold <= 0 || r.Threshold > r.ExtendTo {
		r.Threshold = r.ExtendTo
	}
	return r
}
