package ports

import (
	"context"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// BookProvider obtiene orderbooks del CLOB.
type BookProvider interface {
	// FetchBook devuelve el orderbook actual del token dado.
	// Siempre un fetch fresco; la API no cachea y nosotros tampoco.
	FetchBook(ctx context.Context, tokenID string) (domain.OrderBookSnapshot, error)
}
