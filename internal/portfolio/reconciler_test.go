package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

type fakeTrades struct {
	history  ports.TradeHistory
	fillsErr error
	holdings []ports.Holding
}

func (f *fakeTrades) FetchWalletFills(context.Context, string) (ports.TradeHistory, error) {
	return f.history, f.fillsErr
}

func (f *fakeTrades) FetchHoldings(context.Context, string) ([]ports.Holding, error) {
	return f.holdings, nil
}

func (f *fakeTrades) FetchWalletRank(context.Context, string, domain.Window) (domain.WalletRank, bool, error) {
	return domain.WalletRank{}, false, nil
}

type fakeMarks struct {
	books map[string]domain.OrderBookSnapshot
}

func (f *fakeMarks) ReadToken(_ context.Context, tokenID string) (domain.OrderBookSnapshot, error) {
	if b, ok := f.books[tokenID]; ok {
		return b, nil
	}
	return domain.OrderBookSnapshot{}, errors.New("no book")
}

func at(h int) time.Time {
	return time.Date(2026, 8, 1, h, 0, 0, 0, time.UTC)
}

func fill(side domain.OrderSide, price, size float64, ts time.Time) domain.Fill {
	return domain.Fill{
		MarketID:  "0xcond",
		TokenID:   "tok-yes",
		Outcome:   "Yes",
		Side:      side,
		Price:     price,
		Size:      size,
		Timestamp: ts,
	}
}

func TestReconcileWeightedAverageCostBasis(t *testing.T) {
	trades := &fakeTrades{history: ports.TradeHistory{Fills: []domain.Fill{
		fill(domain.Buy, 0.40, 10, at(1)),
		fill(domain.Buy, 0.60, 10, at(2)),
		fill(domain.Sell, 0.70, 5, at(3)),
	}}}
	marks := &fakeMarks{books: map[string]domain.OrderBookSnapshot{
		"tok-yes": {
			TokenID: "tok-yes",
			Bids:    []domain.BookEntry{{Price: 0.64, Size: 100}},
			Asks:    []domain.BookEntry{{Price: 0.66, Size: 100}},
		},
	}}
	r := NewReconciler(trades, marks)

	p, err := r.Reconcile(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, p.Positions, 1)

	pos := p.Positions[0]
	assert.InDelta(t, 15, pos.Quantity, 1e-9)
	assert.InDelta(t, 0.50, pos.AvgEntryPrice, 1e-9)
	assert.InDelta(t, 1.00, pos.RealizedPnL, 1e-9, "(0.70-0.50)*5")
	assert.InDelta(t, 0.65, pos.MarkPrice, 1e-9, "book midpoint")
	assert.InDelta(t, (0.65-0.50)*15, pos.UnrealizedPnL(), 1e-9)
}

func TestReconcileOutOfOrderFillsAreSorted(t *testing.T) {
	// Mismos fills que arriba pero entregados desordenados: el resultado
	// debe ser idéntico porque el replay ordena por timestamp.
	trades := &fakeTrades{history: ports.TradeHistory{Fills: []domain.Fill{
		fill(domain.Sell, 0.70, 5, at(3)),
		fill(domain.Buy, 0.60, 10, at(2)),
		fill(domain.Buy, 0.40, 10, at(1)),
	}}}
	r := NewReconciler(trades, &fakeMarks{})

	p, err := r.Reconcile(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, p.Positions, 1)
	assert.InDelta(t, 0.50, p.Positions[0].AvgEntryPrice, 1e-9)
	assert.InDelta(t, 1.00, p.Positions[0].RealizedPnL, 1e-9)
}

func TestReconcileClosedPositionKeepsRealized(t *testing.T) {
	trades := &fakeTrades{history: ports.TradeHistory{Fills: []domain.Fill{
		fill(domain.Buy, 0.30, 10, at(1)),
		fill(domain.Sell, 0.80, 10, at(2)),
	}}}
	r := NewReconciler(trades, &fakeMarks{})

	p, err := r.Reconcile(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, p.Positions, 1, "la posición cerrada no desaparece")

	pos := p.Positions[0]
	assert.False(t, pos.Open())
	assert.Zero(t, pos.Quantity)
	assert.InDelta(t, 5.00, pos.RealizedPnL, 1e-9, "(0.80-0.30)*10")
	assert.Zero(t, pos.UnrealizedPnL())
	assert.Len(t, p.Fills, 2, "la historia se conserva para performance")
}

func TestReconcilePositionSumMatchesAllTimeBucket(t *testing.T) {
	// Una posición totalmente cerrada y otra abierta: la suma de TotalPnL
	// por posición debe coincidir con el total del bucket ALL, que
	// recomputa los mismos fills por su cuenta.
	closedTok := func(side domain.OrderSide, price, size float64, ts time.Time) domain.Fill {
		f := fill(side, price, size, ts)
		f.MarketID, f.TokenID, f.Outcome = "0xother", "tok-no", "No"
		return f
	}
	trades := &fakeTrades{history: ports.TradeHistory{Fills: []domain.Fill{
		closedTok(domain.Buy, 0.40, 10, at(1)),
		closedTok(domain.Sell, 0.60, 10, at(2)),
		fill(domain.Buy, 0.50, 8, at(3)),
	}}}
	marks := &fakeMarks{books: map[string]domain.OrderBookSnapshot{
		"tok-yes": {
			TokenID: "tok-yes",
			Bids:    []domain.BookEntry{{Price: 0.54, Size: 100}},
			Asks:    []domain.BookEntry{{Price: 0.56, Size: 100}},
		},
	}}
	r := NewReconciler(trades, marks)

	p, err := r.Reconcile(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, p.Positions, 2)

	var positionSum float64
	for _, pos := range p.Positions {
		positionSum += pos.TotalPnL()
	}
	all := Performance(p, domain.WindowAll, at(12))
	assert.InDelta(t, 2.00+(0.55-0.50)*8, positionSum, 1e-9)
	assert.InDelta(t, positionSum, all.TotalPnL(), 1e-9)
}

func TestReconcileTruncatedHistory(t *testing.T) {
	trades := &fakeTrades{history: ports.TradeHistory{
		Fills:     []domain.Fill{fill(domain.Buy, 0.50, 10, at(1))},
		Truncated: true,
	}}
	r := NewReconciler(trades, &fakeMarks{})

	p, err := r.Reconcile(context.Background(), "0xwallet")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindIncompleteHistory))
	assert.True(t, p.Partial)
	require.Len(t, p.Positions, 1, "los datos parciales siguen siendo usables")
}

func TestReconcileMarkPriceFallbacks(t *testing.T) {
	trades := &fakeTrades{
		history: ports.TradeHistory{Fills: []domain.Fill{
			fill(domain.Buy, 0.45, 10, at(1)),
		}},
		holdings: []ports.Holding{
			{TokenID: "tok-yes", Title: "Will it rain?", CurPrice: 0.52},
		},
	}
	// Sin book disponible: cae al CurPrice del holding.
	r := NewReconciler(trades, &fakeMarks{})

	p, err := r.Reconcile(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, p.Positions, 1)
	assert.InDelta(t, 0.52, p.Positions[0].MarkPrice, 1e-9)
	assert.Equal(t, "Will it rain?", p.Positions[0].Title)

	// Sin book ni holding: último fill del token.
	r = NewReconciler(&fakeTrades{history: trades.history}, &fakeMarks{})
	p, err = r.Reconcile(context.Background(), "0xwallet")
	require.NoError(t, err)
	assert.InDelta(t, 0.45, p.Positions[0].MarkPrice, 1e-9)
}

func TestReconcileEmptyWallet(t *testing.T) {
	r := NewReconciler(&fakeTrades{}, &fakeMarks{})
	_, err := r.Reconcile(context.Background(), "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
