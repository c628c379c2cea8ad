// Package execution is the order execution gateway: the one place in the
// system whose side effects are irreversible once the exchange accepts them.
package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

// Marketable prices for MARKET orders, submitted FOK: cross the whole
// book or fill nothing.
const (
	marketBuyPrice  = 0.99
	marketSellPrice = 0.01
)

// Gateway validates order intents and forwards them to the executor.
// Placements are journaled before the network call so an ambiguous
// outcome can be reconciled later.
type Gateway struct {
	exec    ports.OrderExecutor
	journal ports.Journal
}

// NewGateway creates a Gateway.
func NewGateway(exec ports.OrderExecutor, journal ports.Journal) *Gateway {
	return &Gateway{exec: exec, journal: journal}
}

// Place validates and submits an order intent. The intent is consumed:
// a second Place with the same intent fails with VALIDATION regardless
// of the first outcome. All validation happens before any network call.
//
// An ambiguous submission (timeout after the POST went out) surfaces as
// AMBIGUOUS_OUTCOME and is never retried here: the caller must reconcile
// positions first.
func (g *Gateway) Place(ctx context.Context, intent *domain.OrderIntent) (domain.OrderReceipt, error) {
	if err := validateIntent(intent); err != nil {
		return domain.OrderReceipt{}, err
	}
	tokenID, _ := intent.Market.TokenFor(intent.Outcome)

	price := intent.LimitPrice
	tif := "GTC"
	if intent.Type == domain.MarketOrder {
		tif = "FOK"
		if intent.Side == domain.Buy {
			price = marketBuyPrice
		} else {
			price = marketSellPrice
		}
	}

	// Consumido antes de enviar: un reintento del mismo intent tras un
	// resultado ambiguo debe rechazarse, no re-ejecutarse.
	intent.MarkConsumed()

	localID := uuid.NewString()
	entry := ports.JournalEntry{
		LocalID:     localID,
		ConditionID: intent.Market.ConditionID,
		TokenID:     tokenID,
		Side:        intent.Side,
		Type:        intent.Type,
		Price:       price,
		Size:        intent.Size,
		Status:      "submitted",
		CreatedAt:   time.Now().UTC(),
	}
	if err := g.journal.RecordSubmission(ctx, entry); err != nil {
		// El journal es soporte, no bloqueo: la orden sigue adelante.
		slog.Warn("journal write failed", "err", err)
	}

	receipt, err := g.exec.Submit(ctx, ports.SubmitRequest{
		TokenID:     tokenID,
		ConditionID: intent.Market.ConditionID,
		Side:        intent.Side,
		Price:       price,
		Size:        intent.Size,
		TimeInForce: tif,
	})
	if err != nil {
		status := "rejected"
		if domain.IsKind(err, domain.KindAmbiguousOutcome) {
			status = "ambiguous"
		}
		if jerr := g.journal.UpdateStatus(ctx, localID, "", status); jerr != nil {
			slog.Warn("journal update failed", "err", jerr)
		}
		return domain.OrderReceipt{}, fmt.Errorf("execution.Place: %w", err)
	}

	receipt.LocalID = localID
	status := "live"
	if receipt.Filled() {
		status = "matched"
	}
	if jerr := g.journal.UpdateStatus(ctx, localID, receipt.CLOBOrderID, status); jerr != nil {
		slog.Warn("journal update failed", "err", jerr)
	}

	slog.Info("order placed",
		"market", intent.Market.ConditionID,
		"side", intent.Side,
		"type", intent.Type,
		"size", intent.Size,
		"status", receipt.Status,
	)
	return receipt, nil
}

// validateIntent aplica todas las validaciones previas a la red.
func validateIntent(intent *domain.OrderIntent) error {
	const op = "execution.Place"
	if intent == nil {
		return domain.Ef(domain.KindValidation, op, "nil intent")
	}
	if intent.Consumed() {
		return domain.Ef(domain.KindValidation, op, "intent already consumed")
	}
	if intent.Side != domain.Buy && intent.Side != domain.Sell {
		return domain.Ef(domain.KindValidation, op, "invalid side %q", intent.Side)
	}
	if intent.Size <= 0 {
		return domain.Ef(domain.KindValidation, op, "size must be > 0, got %v", intent.Size)
	}
	if intent.Type == domain.LimitOrder && (intent.LimitPrice <= 0 || intent.LimitPrice >= 1) {
		// Mercados binarios: el precio es una probabilidad, (0,1) exclusivo.
		return domain.Ef(domain.KindValidation, op,
			"limit price must be in (0,1) exclusive, got %v", intent.LimitPrice)
	}
	if intent.Type != domain.MarketOrder && intent.Type != domain.LimitOrder {
		return domain.Ef(domain.KindValidation, op, "invalid order type %q", intent.Type)
	}
	if intent.Market.Status != domain.MarketOpen {
		return domain.Ef(domain.KindStaleOrUnavailable, op,
			"market %s is %s", intent.Market.ID, intent.Market.Status)
	}
	if _, ok := intent.Market.TokenFor(intent.Outcome); !ok {
		return domain.Ef(domain.KindValidation, op,
			"market %s has no token for outcome %d", intent.Market.ID, intent.Outcome)
	}
	return nil
}

// Cancel cancels a single order by its CLOB order ID.
func (g *Gateway) Cancel(ctx context.Context, orderID string) (domain.CancelReceipt, error) {
	if orderID == "" {
		return domain.CancelReceipt{}, domain.Ef(domain.KindValidation, "execution.Cancel",
			"empty order id")
	}
	if err := g.exec.Cancel(ctx, orderID); err != nil {
		return domain.CancelReceipt{OrderID: orderID, Reason: err.Error()},
			fmt.Errorf("execution.Cancel: %w", err)
	}
	return domain.CancelReceipt{OrderID: orderID, Canceled: true}, nil
}

// CancelAll cancels every open order, optionally restricted to one market
// (marketID = condition id, "" = all). Best-effort: collects one receipt
// per order and never aborts on the first failure.
func (g *Gateway) CancelAll(ctx context.Context, marketID string) ([]domain.CancelReceipt, error) {
	orders, err := g.exec.OpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("execution.CancelAll: list orders: %w", err)
	}

	var receipts []domain.CancelReceipt
	for _, o := range orders {
		if marketID != "" && o.MarketID != marketID {
			continue
		}
		if err := g.exec.Cancel(ctx, o.OrderID); err != nil {
			slog.Warn("cancel failed", "order", o.OrderID, "err", err)
			receipts = append(receipts, domain.CancelReceipt{
				OrderID: o.OrderID,
				Reason:  err.Error(),
			})
			continue
		}
		receipts = append(receipts, domain.CancelReceipt{OrderID: o.OrderID, Canceled: true})
	}
	return receipts, nil
}

// OpenOrders returns the wallet's currently open orders.
func (g *Gateway) OpenOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	orders, err := g.exec.OpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("execution.OpenOrders: %w", err)
	}
	return orders, nil
}

// Balance returns the available USDC balance of the funding wallet.
func (g *Gateway) Balance(ctx context.Context) (float64, error) {
	bal, err := g.exec.Balance(ctx)
	if err != nil {
		return 0, fmt.Errorf("execution.Balance: %w", err)
	}
	return bal, nil
}

// AmbiguousSubmissions returns journaled placements whose outcome is
// still unknown. The controller surfaces these before allowing a retry.
func (g *Gateway) AmbiguousSubmissions(ctx context.Context) ([]ports.JournalEntry, error) {
	entries, err := g.journal.AmbiguousEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("execution.AmbiguousSubmissions: %w", err)
	}
	return entries, nil
}

// SessionSubmissions returns every placement attempt journaled during
// the current session, in submission order.
func (g *Gateway) SessionSubmissions(ctx context.Context) ([]ports.JournalEntry, error) {
	entries, err := g.journal.SessionEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("execution.SessionSubmissions: %w", err)
	}
	return entries, nil
}
