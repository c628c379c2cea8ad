package portfolio

import (
	"time"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// Performance recomputa el bucket de una ventana desde la historia
// completa del portfolio. Nunca acumula sobre un bucket anterior:
// recomputar desde cero garantiza que ventanas adyacentes no diverjan.
//
// La ventana es [start, end): un fill exactamente en end queda fuera.
// El replay recorre SIEMPRE la historia completa porque el cost basis
// de una venta dentro de la ventana depende de compras anteriores a ella.
func Performance(p Portfolio, w domain.Window, now time.Time) domain.PerformanceBucket {
	bucket := domain.PerformanceBucket{
		Window:  w,
		End:     now,
		Partial: p.Partial,
	}
	if d := w.Duration(); d > 0 {
		bucket.Start = now.Add(-d)
	}

	type state struct {
		qty float64
		avg float64
	}
	states := make(map[string]*state)

	for _, f := range p.Fills {
		key := f.MarketID + "|" + f.TokenID
		st, ok := states[key]
		if !ok {
			st = &state{}
			states[key] = st
		}

		inWindow := bucket.Contains(f.Timestamp)
		if inWindow {
			bucket.Volume += f.Price * f.Size
		}

		switch f.Side {
		case domain.Buy:
			total := st.qty + f.Size
			if total > 0 {
				st.avg = (st.avg*st.qty + f.Price*f.Size) / total
			}
			st.qty = total
		case domain.Sell:
			matched := f.Size
			if matched > st.qty {
				matched = st.qty
			}
			realized := (f.Price - st.avg) * matched
			st.qty -= matched
			if !inWindow {
				continue
			}
			bucket.RealizedPnL += realized
			bucket.TradeCount++
			switch {
			case realized > 0:
				bucket.Wins++
			case realized < 0:
				bucket.Losses++
			}
		}
	}

	// Solo la ventana ALL incluye el no-realizado de posiciones abiertas:
	// las ventanas cortas miden actividad, no exposición.
	if w == domain.WindowAll {
		for _, pos := range p.Positions {
			bucket.UnrealizedPnL += pos.UnrealizedPnL()
		}
	}
	return bucket
}

// AllWindows devuelve los buckets de las cuatro ventanas estándar, todos
// recomputados contra el mismo instante.
func AllWindows(p Portfolio, now time.Time) []domain.PerformanceBucket {
	windows := []domain.Window{
		domain.WindowDay,
		domain.WindowWeek,
		domain.WindowMonth,
		domain.WindowAll,
	}
	buckets := make([]domain.PerformanceBucket, 0, len(windows))
	for _, w := range windows {
		buckets = append(buckets, Performance(p, w, now))
	}
	return buckets
}
