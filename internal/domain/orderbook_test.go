package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMidpointFallsBackToAvailableSide(t *testing.T) {
	both := OrderBookSnapshot{
		Bids: []BookEntry{{Price: 0.40, Size: 10}},
		Asks: []BookEntry{{Price: 0.50, Size: 10}},
	}
	assert.InDelta(t, 0.45, both.Midpoint(), 1e-9)

	onlyBids := OrderBookSnapshot{Bids: []BookEntry{{Price: 0.40, Size: 10}}}
	assert.InDelta(t, 0.40, onlyBids.Midpoint(), 1e-9)

	onlyAsks := OrderBookSnapshot{Asks: []BookEntry{{Price: 0.50, Size: 10}}}
	assert.InDelta(t, 0.50, onlyAsks.Midpoint(), 1e-9)

	assert.Zero(t, OrderBookSnapshot{}.Midpoint())
	assert.True(t, OrderBookSnapshot{}.Empty())
}

func TestDepthUSDC(t *testing.T) {
	book := OrderBookSnapshot{
		Bids: []BookEntry{{Price: 0.40, Size: 100}, {Price: 0.30, Size: 50}},
		Asks: []BookEntry{{Price: 0.60, Size: 10}},
	}
	assert.InDelta(t, 0.40*100+0.30*50, book.BidDepthUSDC(), 1e-9)
	assert.InDelta(t, 6, book.AskDepthUSDC(), 1e-9)
	assert.InDelta(t, 0.20, book.Spread(), 1e-9)
}

func TestWindowDuration(t *testing.T) {
	assert.Equal(t, 24.0, WindowDay.Duration().Hours())
	assert.Equal(t, 7*24.0, WindowWeek.Duration().Hours())
	assert.Equal(t, 30*24.0, WindowMonth.Duration().Hours())
	assert.Zero(t, WindowAll.Duration())
}

func TestPositionPnL(t *testing.T) {
	p := Position{Quantity: 15, AvgEntryPrice: 0.50, MarkPrice: 0.65, RealizedPnL: 1}
	assert.InDelta(t, 2.25, p.UnrealizedPnL(), 1e-9)
	assert.InDelta(t, 3.25, p.TotalPnL(), 1e-9)
	assert.InDelta(t, 9.75, p.MarketValue(), 1e-9)
	assert.InDelta(t, 7.5, p.CostBasis(), 1e-9)
}
