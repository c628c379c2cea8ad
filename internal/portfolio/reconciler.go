// Package portfolio reconstruye posiciones y P&L desde la historia
// completa de fills de la wallet. Nunca parchea estado incremental:
// cada reconciliación reconstruye todo desde cero.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

// minQuantity descarta restos de redondeo flotante al decidir si una
// posición sigue abierta.
const minQuantity = 1e-9

// MarkSource provee el precio de referencia actual de un token.
type MarkSource interface {
	ReadToken(ctx context.Context, tokenID string) (domain.OrderBookSnapshot, error)
}

// Portfolio es el resultado de una reconciliación completa.
type Portfolio struct {
	Positions []domain.Position
	// Fills es la historia completa ordenada por timestamp ascendente.
	// Performance la reutiliza para recomputar ventanas desde cero.
	Fills []domain.Fill
	// Partial marca que la historia upstream llegó truncada: las
	// posiciones y P&L pueden infra-reportar.
	Partial bool
}

// Reconciler reconstruye el estado de cartera desde el trade provider,
// con mark prices frescos del order book.
type Reconciler struct {
	trades ports.TradeProvider
	marks  MarkSource
}

// NewReconciler crea un Reconciler.
func NewReconciler(trades ports.TradeProvider, marks MarkSource) *Reconciler {
	return &Reconciler{trades: trades, marks: marks}
}

// Reconcile reconstruye las posiciones de la wallet desde su historia
// completa de fills, con cost basis promedio ponderado.
//
// Si la historia llegó truncada devuelve el portfolio calculado junto a
// un error INCOMPLETE_HISTORY: los datos son usables pero parciales, y
// el caller decide si mostrarlos con aviso.
func (r *Reconciler) Reconcile(ctx context.Context, wallet string) (Portfolio, error) {
	const op = "portfolio.Reconcile"
	if wallet == "" {
		return Portfolio{}, domain.Ef(domain.KindValidation, op, "empty wallet address")
	}

	history, err := r.trades.FetchWalletFills(ctx, wallet)
	if err != nil {
		return Portfolio{}, fmt.Errorf("%s: %w", op, err)
	}

	// Holdings son soporte (títulos, fallback de mark price): su fallo
	// no bloquea la reconciliación.
	holdings, err := r.trades.FetchHoldings(ctx, wallet)
	if err != nil {
		slog.Warn("holdings fetch failed, marks will fall back to last trade", "err", err)
		holdings = nil
	}
	holdingByToken := make(map[string]ports.Holding, len(holdings))
	for _, h := range holdings {
		holdingByToken[h.TokenID] = h
	}

	fills := sortedFills(history.Fills)
	positions := replayFills(fills)

	for i := range positions {
		// Las posiciones cerradas no necesitan mark price: su unrealized
		// es cero por construcción.
		if positions[i].Open() {
			positions[i].MarkPrice = r.markPrice(ctx, positions[i], holdingByToken, fills)
		}
		if h, ok := holdingByToken[positions[i].TokenID]; ok {
			if positions[i].Title == "" {
				positions[i].Title = h.Title
			}
			if positions[i].Outcome == "" {
				positions[i].Outcome = h.Outcome
			}
		}
	}

	p := Portfolio{Positions: positions, Fills: fills, Partial: history.Truncated}
	if history.Truncated {
		return p, domain.Ef(domain.KindIncompleteHistory, op,
			"fill history truncated after %d fills", len(fills))
	}
	return p, nil
}

// sortedFills devuelve una copia ordenada por timestamp ascendente.
// Orden estable: fills con el mismo timestamp conservan el orden de
// llegada de la API.
func sortedFills(fills []domain.Fill) []domain.Fill {
	out := make([]domain.Fill, len(fills))
	copy(out, fills)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// tokenState es el acumulador de replay por (mercado, token).
type tokenState struct {
	pos domain.Position
}

// replayFills reproduce la historia completa en orden cronológico con
// cost basis promedio ponderado:
//
//	compra: avg' = (avg×qty + price×size) / (qty + size)
//	venta:  realized += (price - avg) × min(size, qty); el avg no cambia
//
// Devuelve todas las posiciones que la historia tocó: las cerradas
// quedan con Quantity 0 y su RealizedPnL acumulado, de modo que la suma
// de TotalPnL por posición cuadra con el bucket de la ventana ALL.
func replayFills(fills []domain.Fill) []domain.Position {
	states := make(map[string]*tokenState)
	var order []string

	for _, f := range fills {
		key := f.MarketID + "|" + f.TokenID
		st, ok := states[key]
		if !ok {
			st = &tokenState{pos: domain.Position{
				MarketID: f.MarketID,
				TokenID:  f.TokenID,
				Outcome:  f.Outcome,
				Title:    f.Title,
			}}
			states[key] = st
			order = append(order, key)
		}
		applyFill(&st.pos, f)
	}

	positions := make([]domain.Position, 0, len(order))
	for _, key := range order {
		positions = append(positions, states[key].pos)
	}
	return positions
}

func applyFill(pos *domain.Position, f domain.Fill) {
	switch f.Side {
	case domain.Buy:
		total := pos.Quantity + f.Size
		if total > 0 {
			pos.AvgEntryPrice = (pos.AvgEntryPrice*pos.Quantity + f.Price*f.Size) / total
		}
		pos.Quantity = total
	case domain.Sell:
		matched := math.Min(f.Size, pos.Quantity)
		if f.Size > pos.Quantity+minQuantity {
			// Venta mayor que la posición conocida: historia incompleta
			// o split/merge on-chain que la Data API no refleja.
			slog.Warn("sell exceeds tracked position",
				"token", f.TokenID, "size", f.Size, "held", pos.Quantity)
		}
		pos.RealizedPnL += (f.Price - pos.AvgEntryPrice) * matched
		pos.Quantity -= matched
		if pos.Quantity <= minQuantity {
			pos.Quantity = 0
		}
	}
	if pos.Title == "" && f.Title != "" {
		pos.Title = f.Title
	}
}

// markPrice resuelve el precio de referencia de una posición abierta:
// midpoint del book fresco, luego CurPrice del holding, luego el último
// fill del token como último recurso.
func (r *Reconciler) markPrice(ctx context.Context, pos domain.Position, holdings map[string]ports.Holding, fills []domain.Fill) float64 {
	if book, err := r.marks.ReadToken(ctx, pos.TokenID); err == nil && !book.Empty() {
		if mid := book.Midpoint(); mid > 0 {
			return mid
		}
	} else if err != nil {
		slog.Debug("book unavailable for mark price", "token", pos.TokenID, "err", err)
	}
	if h, ok := holdings[pos.TokenID]; ok && h.CurPrice > 0 {
		return h.CurPrice
	}
	for i := len(fills) - 1; i >= 0; i-- {
		if fills[i].TokenID == pos.TokenID {
			return fills[i].Price
		}
	}
	return 0
}
