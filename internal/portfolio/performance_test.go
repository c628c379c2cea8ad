package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

func TestPerformanceWindowBoundsExclusiveEnd(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	dayStart := now.Add(-24 * time.Hour)

	p := Portfolio{Fills: []domain.Fill{
		// Compra vieja que fija el cost basis fuera de cualquier ventana corta.
		fill(domain.Buy, 0.40, 20, now.Add(-72*time.Hour)),
		// Venta exactamente en el inicio de la ventana: dentro (inclusivo).
		fill(domain.Sell, 0.60, 5, dayStart),
		// Venta exactamente en el fin de la ventana: fuera (exclusivo).
		fill(domain.Sell, 0.90, 5, now),
	}}

	b := Performance(p, domain.WindowDay, now)
	assert.Equal(t, 1, b.TradeCount)
	assert.InDelta(t, (0.60-0.40)*5, b.RealizedPnL, 1e-9)
	assert.InDelta(t, 0.60*5, b.Volume, 1e-9)
}

func TestPerformanceCostBasisCrossesWindowBoundary(t *testing.T) {
	// La compra queda fuera de la ventana pero su precio determina el
	// realized de la venta de dentro: el replay usa la historia completa.
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	p := Portfolio{Fills: []domain.Fill{
		fill(domain.Buy, 0.25, 10, now.Add(-40*24*time.Hour)),
		fill(domain.Sell, 0.75, 10, now.Add(-time.Hour)),
	}}

	b := Performance(p, domain.WindowDay, now)
	assert.InDelta(t, (0.75-0.25)*10, b.RealizedPnL, 1e-9)
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 0, b.Losses)
}

func TestPerformanceWinsAndLosses(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	mk := func(token string, side domain.OrderSide, price, size float64, ts time.Time) domain.Fill {
		f := fill(side, price, size, ts)
		f.TokenID = token
		return f
	}
	p := Portfolio{Fills: []domain.Fill{
		mk("a", domain.Buy, 0.50, 10, now.Add(-3*time.Hour)),
		mk("a", domain.Sell, 0.70, 10, now.Add(-2*time.Hour)), // win
		mk("b", domain.Buy, 0.50, 10, now.Add(-3*time.Hour)),
		mk("b", domain.Sell, 0.30, 10, now.Add(-2*time.Hour)), // loss
		mk("c", domain.Buy, 0.50, 10, now.Add(-3*time.Hour)),
		mk("c", domain.Sell, 0.50, 10, now.Add(-2*time.Hour)), // flat, ni win ni loss
	}}

	b := Performance(p, domain.WindowDay, now)
	assert.Equal(t, 3, b.TradeCount)
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 1, b.Losses)
	assert.InDelta(t, 0.5, b.WinRate(), 1e-9)
	assert.InDelta(t, 0.0, b.RealizedPnL, 1e-9)
}

func TestPerformanceAllWindowIncludesUnrealized(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	p := Portfolio{
		Fills: []domain.Fill{
			fill(domain.Buy, 0.40, 10, at(1)),
			fill(domain.Buy, 0.60, 10, at(2)),
			fill(domain.Sell, 0.70, 5, at(3)),
		},
		Positions: []domain.Position{{
			MarketID: "0xcond", TokenID: "tok-yes",
			Quantity: 15, AvgEntryPrice: 0.50, MarkPrice: 0.65,
		}},
	}

	all := Performance(p, domain.WindowAll, now)
	assert.InDelta(t, 1.00, all.RealizedPnL, 1e-9)
	assert.InDelta(t, (0.65-0.50)*15, all.UnrealizedPnL, 1e-9)

	// Consistencia: el total del bucket ALL coincide con la suma de
	// realized + unrealized de las posiciones.
	var want float64
	for _, pos := range p.Positions {
		want += pos.TotalPnL()
	}
	assert.InDelta(t, want, all.TotalPnL(), 1e-9)

	day := Performance(p, domain.WindowDay, now)
	assert.Zero(t, day.UnrealizedPnL, "solo ALL incluye unrealized")
}

func TestPerformancePartialPropagates(t *testing.T) {
	p := Portfolio{Partial: true}
	b := Performance(p, domain.WindowWeek, time.Now())
	assert.True(t, b.Partial)
}

func TestAllWindowsShareTheSameInstant(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	buckets := AllWindows(Portfolio{}, now)
	assert.Len(t, buckets, 4)
	for _, b := range buckets {
		assert.Equal(t, now, b.End)
	}
}
