package terminal

// render.go — tablas y vistas de solo lectura del terminal.

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
	"github.com/alejandrodnm/polyterm/internal/portfolio"
)

// renderEvents imprime la página actual de eventos numerada para selección.
func renderEvents(out io.Writer, events []domain.Event) {
	table := tablewriter.NewWriter(out)
	table.Header("#", "Event", "Markets", "Volume", "Liquidity", "Ends")

	for i, ev := range events {
		title := domain.TruncateQuestion(ev.Title, ev.Slug, 48)
		if ev.EnrichmentFailed {
			title += " (!)"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			title,
			fmt.Sprintf("%d", len(ev.Markets)),
			fmt.Sprintf("$%.0f", ev.Volume),
			fmt.Sprintf("$%.0f", ev.Liquidity),
			shortDate(ev.EndDate),
		)
	}
	table.Render()
	if hasDegraded(events) {
		fmt.Fprintln(out, "  (!) = detail fetch failed, summary data only")
	}
}

// renderMarkets imprime los mercados de un evento con sus precios.
func renderMarkets(out io.Writer, markets []domain.Market) {
	table := tablewriter.NewWriter(out)
	table.Header("#", "Market", "Outcome", "Price", "Bid", "Ask", "Volume", "Status")

	for i, m := range markets {
		label := domain.TruncateQuestion(m.Question, m.ID, 42)
		for j, outcome := range m.Outcomes {
			idx := ""
			q := ""
			if j == 0 {
				idx = fmt.Sprintf("%d", i+1)
				q = label
			}
			table.Append(
				idx, q, outcome,
				priceLabel(m.PriceFor(j)),
				priceLabel(m.BestBid),
				priceLabel(m.BestAsk),
				fmt.Sprintf("$%.0f", m.Volume),
				string(m.Status),
			)
		}
	}
	table.Render()
}

// renderBook imprime el snapshot del order book con mejor bid/ask y depth.
func renderBook(out io.Writer, m domain.Market, outcome string, book domain.OrderBookSnapshot) {
	fmt.Fprintf(out, "\n%s / %s (fetched %s)\n",
		domain.TruncateQuestion(m.Question, m.ID, 60), outcome,
		book.FetchedAt.Format("15:04:05"))

	if book.Empty() {
		fmt.Fprintln(out, "  empty book")
		return
	}

	table := tablewriter.NewWriter(out)
	table.Header("Bid Size", "Bid", "Ask", "Ask Size")

	depth := len(book.Bids)
	if len(book.Asks) > depth {
		depth = len(book.Asks)
	}
	if depth > 10 {
		depth = 10
	}
	for i := 0; i < depth; i++ {
		var bidSize, bid, ask, askSize string
		if i < len(book.Bids) {
			bidSize = fmt.Sprintf("%.0f", book.Bids[i].Size)
			bid = fmt.Sprintf("%.3f", book.Bids[i].Price)
		}
		if i < len(book.Asks) {
			ask = fmt.Sprintf("%.3f", book.Asks[i].Price)
			askSize = fmt.Sprintf("%.0f", book.Asks[i].Size)
		}
		table.Append(bidSize, bid, ask, askSize)
	}
	table.Render()

	fmt.Fprintf(out, "  mid %.3f | spread %.3f | depth bid $%.0f / ask $%.0f\n",
		book.Midpoint(), book.Spread(), book.BidDepthUSDC(), book.AskDepthUSDC())
}

// renderPositions imprime la cartera reconciliada. Solo las posiciones
// abiertas salen en la tabla; el realized de las cerradas sigue contando
// en el total para que cuadre con la vista de performance.
func renderPositions(out io.Writer, p portfolio.Portfolio) {
	var totalUnreal, totalReal float64
	open := 0
	for _, pos := range p.Positions {
		totalUnreal += pos.UnrealizedPnL()
		totalReal += pos.RealizedPnL
		if pos.Open() {
			open++
		}
	}

	if open == 0 {
		fmt.Fprintln(out, "  no open positions")
	} else {
		table := tablewriter.NewWriter(out)
		table.Header("Market", "Outcome", "Qty", "Entry", "Mark", "Unreal", "Realized")
		for _, pos := range p.Positions {
			if !pos.Open() {
				continue
			}
			table.Append(
				domain.TruncateQuestion(pos.Title, pos.MarketID, 40),
				pos.Outcome,
				fmt.Sprintf("%.2f", pos.Quantity),
				fmt.Sprintf("%.3f", pos.AvgEntryPrice),
				fmt.Sprintf("%.3f", pos.MarkPrice),
				pnlLabel(pos.UnrealizedPnL()),
				pnlLabel(pos.RealizedPnL),
			)
		}
		table.Render()
	}

	if len(p.Positions) == 0 {
		return
	}
	fmt.Fprintf(out, "  total: unrealized %s | realized %s\n",
		pnlLabel(totalUnreal), pnlLabel(totalReal))
	if p.Partial {
		fmt.Fprintln(out, "  WARNING: fill history truncated, P&L may under-report")
	}
}

// renderOpenOrders imprime las órdenes vivas numeradas para cancelación.
func renderOpenOrders(out io.Writer, orders []domain.OpenOrder) {
	if len(orders) == 0 {
		fmt.Fprintln(out, "  no open orders")
		return
	}

	table := tablewriter.NewWriter(out)
	table.Header("#", "Order", "Side", "Price", "Remaining", "Original", "Placed")

	for i, o := range orders {
		table.Append(
			fmt.Sprintf("%d", i+1),
			shortID(o.OrderID),
			string(o.Side),
			fmt.Sprintf("%.3f", o.Price),
			fmt.Sprintf("%.2f", o.RemainingSize),
			fmt.Sprintf("%.2f", o.OriginalSize),
			o.CreatedAt.Format("01-02 15:04"),
		)
	}
	table.Render()
}

// renderPerformance imprime los buckets de las cuatro ventanas.
func renderPerformance(out io.Writer, buckets []domain.PerformanceBucket, rank *domain.WalletRank) {
	table := tablewriter.NewWriter(out)
	table.Header("Window", "Realized", "Unrealized", "Volume", "Trades", "Win rate")

	for _, b := range buckets {
		unreal := "-"
		if b.Window == domain.WindowAll {
			unreal = pnlLabel(b.UnrealizedPnL)
		}
		label := string(b.Window)
		if b.Partial {
			label += " *"
		}
		table.Append(
			label,
			pnlLabel(b.RealizedPnL),
			unreal,
			fmt.Sprintf("$%.2f", b.Volume),
			fmt.Sprintf("%d", b.TradeCount),
			fmt.Sprintf("%.0f%%", b.WinRate()*100),
		)
	}
	table.Render()

	if rank != nil {
		fmt.Fprintf(out, "  leaderboard: #%d (%s) pnl %s vol $%.0f\n",
			rank.Rank, rank.Window, pnlLabel(rank.PnL), rank.Volume)
	}
	for _, b := range buckets {
		if b.Partial {
			fmt.Fprintln(out, "  * = computed from truncated history")
			break
		}
	}
}

// renderJournal imprime los intentos de orden registrados.
func renderJournal(out io.Writer, entries []ports.JournalEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "  journal empty")
		return
	}

	table := tablewriter.NewWriter(out)
	table.Header("Local", "CLOB", "Side", "Type", "Price", "Size", "Status", "At")

	for _, e := range entries {
		table.Append(
			shortID(e.LocalID),
			shortID(e.CLOBOrderID),
			string(e.Side),
			string(e.Type),
			fmt.Sprintf("%.3f", e.Price),
			fmt.Sprintf("%.2f", e.Size),
			e.Status,
			e.CreatedAt.Format("01-02 15:04"),
		)
	}
	table.Render()
}

func hasDegraded(events []domain.Event) bool {
	for _, ev := range events {
		if ev.EnrichmentFailed {
			return true
		}
	}
	return false
}

func priceLabel(p float64) string {
	if p <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", p)
}

func pnlLabel(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+$%.2f", v)
	}
	return fmt.Sprintf("-$%.2f", -v)
}

func shortID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:10]
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
