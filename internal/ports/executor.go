package ports

import (
	"context"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// SubmitRequest is the already-validated order the executor signs and posts.
type SubmitRequest struct {
	TokenID     string
	ConditionID string
	Side        domain.OrderSide
	Price       float64 // limit price, or the aggressive marketable price
	Size        float64 // shares
	TimeInForce string  // "GTC" for limit, "FOK" for market
}

// OrderExecutor signs and submits real orders on the Polymarket CLOB.
type OrderExecutor interface {
	// Submit signs the order and posts it. Mutates exchange state:
	// never retried by the implementation after an ambiguous response.
	Submit(ctx context.Context, req SubmitRequest) (domain.OrderReceipt, error)

	// Cancel cancels a specific order by its CLOB order ID.
	Cancel(ctx context.Context, orderID string) error

	// OpenOrders returns all currently open orders for this wallet.
	OpenOrders(ctx context.Context) ([]domain.OpenOrder, error)

	// Balance returns the available USDC balance of the funding wallet.
	Balance(ctx context.Context) (float64, error)
}
