package components

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/candidate"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/service"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CandidateLister is the read side of the Candidate Lookup
type CandidateLister interface {
	ListOutstanding(ctx context.Context, direction shared.TransactionType, amountRange candidate.AmountRange) ([]*candidate.Document, error)
}

// AmountWindow reports the outstanding amounts that can match a transaction amount
type AmountWindow interface {
	AmountRange(amount decimal.Decimal) candidate.AmountRange
}

// CandidatePoolProvider caches one candidate pool per direction for the lifetime of a pass.
// Failed lookups are not cached so a later transaction can try again.
type CandidatePoolProvider struct {
	lookup CandidateLister
	ranges map[shared.TransactionType]candidate.AmountRange
	logger *slog.Logger

	mu    sync.Mutex
	pools map[shared.TransactionType][]*candidate.Document
}

// NewCandidatePoolProvider creates a provider querying each direction within its amount range.
// Directions without a range have no transactions in the pass and yield an empty pool.
func NewCandidatePoolProvider(lookup CandidateLister, ranges map[shared.TransactionType]candidate.AmountRange, logger *slog.Logger) *CandidatePoolProvider {
	return &CandidatePoolProvider{
		lookup: lookup,
		ranges: ranges,
		logger: logger,
		pools:  make(map[shared.TransactionType][]*candidate.Document),
	}
}

// Pool returns the cached pool for direction, loading it on first use
func (p *CandidatePoolProvider) Pool(ctx context.Context, direction shared.TransactionType) ([]*candidate.Document, error) {
	p.mu.Lock()
	pool, cached := p.pools[direction]
	p.mu.Unlock()
	if cached {
		return pool, nil
	}

	amountRange, ok := p.ranges[direction]
	if !ok {
		return []*candidate.Document{}, nil
	}

	pool, err := p.lookup.ListOutstanding(ctx, direction, amountRange)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.pools[direction] = pool
	p.mu.Unlock()
	return pool, nil
}

// Prefetch loads every direction concurrently
func (p *CandidatePoolProvider) Prefetch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for direction := range p.ranges {
		direction := direction
		g.Go(func() error {
			_, err := p.Pool(gctx, direction)
			return err
		})
	}
	return g.Wait()
}

// PoolProviderFactory builds a prefetched provider for the transactions of a pass
type PoolProviderFactory struct {
	lookup CandidateLister
	window AmountWindow
	logger *slog.Logger
}

func NewPoolProviderFactory(lookup CandidateLister, window AmountWindow, logger *slog.Logger) service.PoolProviderFactory {
	return &PoolProviderFactory{lookup: lookup, window: window, logger: logger}
}

// NewProvider spans one amount range per direction over all transactions of the pass.
// A prefetch failure is logged; the provider retries lazily.
func (f *PoolProviderFactory) NewProvider(ctx context.Context, txns []*banktxn.Transaction) service.CandidatePoolProvider {
	provider := NewCandidatePoolProvider(f.lookup, SpanRanges(f.window, txns), f.logger)
	if err := provider.Prefetch(ctx); err != nil {
		f.logger.Warn("Failed to prefetch candidate pools", "error", err)
	}
	return provider
}

// SpanRanges returns, per direction, the smallest range covering the amount window of every
// unreconciled transaction with valid amounts
func SpanRanges(window AmountWindow, txns []*banktxn.Transaction) map[shared.TransactionType]candidate.AmountRange {
	ranges := make(map[shared.TransactionType]candidate.AmountRange)
	for _, txn := range txns {
		if txn.IsReconciled() {
			continue
		}
		direction, err := txn.Direction()
		if err != nil {
			continue
		}

		w := window.AmountRange(txn.Amount())
		current, ok := ranges[direction]
		if !ok {
			ranges[direction] = w
			continue
		}
		if w.Min.LessThan(current.Min) {
			current.Min = w.Min
		}
		if w.Max.GreaterThan(current.Max) {
			current.Max = w.Max
		}
		ranges[direction] = current
	}
	return ranges
}
