// Package books exposes on-demand order book reads for trading decisions.
package books

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

// Reader fetches a fresh order book snapshot at the point of decision.
// No caching and no internal retries: a stale book is worse than a slow
// one, and price-sensitive callers decide for themselves whether to retry.
type Reader struct {
	books ports.BookProvider
}

// NewReader creates a Reader backed by the given provider.
func NewReader(books ports.BookProvider) *Reader {
	return &Reader{books: books}
}

// Read returns the current order book for the given outcome of a market.
// Fails with STALE_OR_UNAVAILABLE before any fetch if the market is not
// open, and with RETRIEVAL_FAILED on transport errors.
func (r *Reader) Read(ctx context.Context, m domain.Market, outcome int) (domain.OrderBookSnapshot, error) {
	if m.Status != domain.MarketOpen {
		return domain.OrderBookSnapshot{}, domain.Ef(domain.KindStaleOrUnavailable, "books.Read",
			"market %s is %s", m.ID, m.Status)
	}
	tokenID, ok := m.TokenFor(outcome)
	if !ok {
		return domain.OrderBookSnapshot{}, domain.Ef(domain.KindValidation, "books.Read",
			"market %s has no token for outcome %d", m.ID, outcome)
	}

	book, err := r.books.FetchBook(ctx, tokenID)
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("books.Read %s: %w", m.ID, err)
	}
	if book.MarketID == "" {
		book.MarketID = m.ConditionID
	}
	return book, nil
}

// ReadToken returns the current order book for a raw token id. Used by the
// reconciler, which works from fills and may not hold a full Market.
func (r *Reader) ReadToken(ctx context.Context, tokenID string) (domain.OrderBookSnapshot, error) {
	if tokenID == "" {
		return domain.OrderBookSnapshot{}, domain.Ef(domain.KindValidation, "books.ReadToken",
			"empty token id")
	}
	book, err := r.books.FetchBook(ctx, tokenID)
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("books.ReadToken: %w", err)
	}
	return book, nil
}
