package ports

import (
	"context"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// TradeHistory es el resultado paginado completo de los fills de una wallet.
type TradeHistory struct {
	Fills []domain.Fill
	// Truncated marca que la paginación upstream cortó antes del final:
	// los fills presentes son válidos pero la historia está incompleta.
	Truncated bool
}

// Holding es una posición según la Data API, usada como referencia de
// titulación y fallback de mark price.
type Holding struct {
	MarketID  string
	TokenID   string
	Outcome   string
	Title     string
	Size      float64
	AvgPrice  float64
	CurPrice  float64
}

// TradeProvider obtiene la historia de trading de una wallet.
type TradeProvider interface {
	// FetchWalletFills devuelve todos los fills de la wallet, paginando
	// hasta agotar resultados o alcanzar el límite de páginas upstream.
	FetchWalletFills(ctx context.Context, wallet string) (TradeHistory, error)

	// FetchHoldings devuelve las posiciones actuales según la Data API.
	FetchHoldings(ctx context.Context, wallet string) ([]Holding, error)

	// FetchWalletRank devuelve la entrada de leaderboard de la wallet
	// para la ventana dada, o false si no está rankeada.
	FetchWalletRank(ctx context.Context, wallet string, w domain.Window) (domain.WalletRank, bool, error)
}
