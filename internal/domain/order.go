package domain

// order.go — order intents and their lifecycle on the CLOB.
//
// An OrderIntent is built by the terminal controller and consumed exactly
// once by the execution gateway. MARKET orders go out as FOK at an
// aggressive price; LIMIT orders rest as GTC.

import "time"

// OrderSide is the direction of an order.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderType distinguishes immediate execution from resting orders.
type OrderType string

const (
	MarketOrder OrderType = "MARKET"
	LimitOrder  OrderType = "LIMIT"
)

// OrderIntent is a single trade decision. Consumed exactly once: the
// gateway marks it and rejects a second submission of the same intent.
type OrderIntent struct {
	Market     Market
	Outcome    int // index into Market.Outcomes
	Side       OrderSide
	Type       OrderType
	Size       float64 // shares
	LimitPrice float64 // required for LIMIT, in (0,1) exclusive

	consumed bool
}

// Consumed reports whether the intent was already submitted.
func (i *OrderIntent) Consumed() bool { return i.consumed }

// MarkConsumed flags the intent as submitted. Called by the gateway only.
func (i *OrderIntent) MarkConsumed() { i.consumed = true }

// OrderReceipt is the placement outcome reported by the CLOB.
type OrderReceipt struct {
	LocalID     string // local tracking UUID
	CLOBOrderID string // Polymarket order hash (0x...)
	Status      string // "matched" | "live" | "delayed"...
	TakenAmount float64 // USDC filled immediately (taker portion)
	MadeAmount  float64 // USDC resting in the book (maker portion)
	PlacedAt    time.Time
}

// Filled reports whether the order matched immediately.
func (r OrderReceipt) Filled() bool {
	return r.Status == "matched" || r.TakenAmount > 0
}

// OpenOrder is a resting order currently live on the CLOB.
type OpenOrder struct {
	OrderID       string
	MarketID      string // condition id
	TokenID       string
	Outcome       string
	Side          OrderSide
	Price         float64
	OriginalSize  float64 // shares
	RemainingSize float64 // shares still unfilled
	CreatedAt     time.Time
}

// CancelReceipt is the per-order outcome of a cancellation.
// CancelAll colecta uno por orden y nunca aborta en el primer fallo.
type CancelReceipt struct {
	OrderID  string
	Canceled bool
	Reason   string // populated when Canceled is false
}
