// Package terminal implementa la interfaz interactiva de línea de comandos:
// menús numerados, tablas y el flujo de confirmación previo a cada orden.
// Ningún error de las capas de abajo tumba el proceso: se muestra con su
// clase y se vuelve al menú.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/polyterm/internal/books"
	"github.com/alejandrodnm/polyterm/internal/discovery"
	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/execution"
	"github.com/alejandrodnm/polyterm/internal/ports"
	"github.com/alejandrodnm/polyterm/internal/portfolio"
)

// Controller es el loop principal del terminal. Orquesta descubrimiento,
// lectura de books, ejecución y cartera; no contiene lógica de dominio.
type Controller struct {
	in  *bufio.Scanner
	out io.Writer

	catalog    *discovery.Catalog
	enricher   *discovery.Enricher
	reader     *books.Reader
	gateway    *execution.Gateway
	reconciler *portfolio.Reconciler
	trades     ports.TradeProvider
	wallet     string
}

// NewController crea el controller sobre los streams dados.
func NewController(in io.Reader, out io.Writer, catalog *discovery.Catalog, enricher *discovery.Enricher, reader *books.Reader, gateway *execution.Gateway, reconciler *portfolio.Reconciler, trades ports.TradeProvider, wallet string) *Controller {
	return &Controller{
		in:         bufio.NewScanner(in),
		out:        out,
		catalog:    catalog,
		enricher:   enricher,
		reader:     reader,
		gateway:    gateway,
		reconciler: reconciler,
		trades:     trades,
		wallet:     wallet,
	}
}

// Run ejecuta el menú principal hasta quit o cancelación del contexto.
func (c *Controller) Run(ctx context.Context) error {
	c.warnAmbiguous(ctx)

	for {
		fmt.Fprintln(c.out, "\n=== polyterm ===")
		fmt.Fprintln(c.out, "  1) browse markets")
		fmt.Fprintln(c.out, "  2) search markets")
		fmt.Fprintln(c.out, "  3) wallet")
		fmt.Fprintln(c.out, "  q) quit")

		choice, err := c.prompt(ctx, "> ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			c.runErr(c.browseFlow(ctx, ""))
		case "2":
			keyword, err := c.prompt(ctx, "keyword: ")
			if err != nil {
				return err
			}
			c.runErr(c.browseFlow(ctx, keyword))
		case "3":
			c.runErr(c.walletMenu(ctx))
		case "q", "quit", "exit":
			return nil
		}
	}
}

// runErr muestra un error de flujo sin abortar el loop principal.
func (c *Controller) runErr(err error) {
	if err == nil || errors.Is(err, errBack) {
		return
	}
	c.showError(err)
}

// errBack señala "volver al menú anterior" sin ser un fallo.
var errBack = errors.New("back")

// showError imprime la clase y el mensaje. Nunca un stack trace.
func (c *Controller) showError(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintf(c.out, "  [%s] %v\n", domain.KindOf(err), err)
	if domain.IsKind(err, domain.KindAmbiguousOutcome) {
		fmt.Fprintln(c.out, "  the order MAY have been placed: check positions before retrying")
	}
}

// warnAmbiguous avisa al arrancar si hay envíos pendientes de reconciliar.
func (c *Controller) warnAmbiguous(ctx context.Context) {
	entries, err := c.gateway.AmbiguousSubmissions(ctx)
	if err != nil || len(entries) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\nWARNING: %d past submission(s) with unknown outcome:\n", len(entries))
	renderJournal(c.out, entries)
	fmt.Fprintln(c.out, "  reconcile positions before placing new orders")
}

// --- descubrimiento ---

// browseFlow pagina eventos (con keyword o navegando el catálogo completo),
// los enriquece y deja escoger uno.
func (c *Controller) browseFlow(ctx context.Context, keyword string) error {
	filters := discovery.Filters{}
	if keyword == "" {
		if err := c.promptFilters(ctx, &filters); err != nil {
			return err
		}
	}

	pager, err := c.catalog.Search(keyword, filters)
	if err != nil {
		return err
	}

	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			fmt.Fprintln(c.out, "  no more events")
			return nil
		}

		enriched, err := c.enricher.Enrich(ctx, page)
		if err != nil {
			return err
		}

		if err := c.pageLoop(ctx, enriched, pager.Done()); err != nil {
			if errors.Is(err, errNextPage) {
				continue
			}
			return err
		}
		return nil
	}
}

// errNextPage señala "pedir la página siguiente" desde el page loop.
var errNextPage = errors.New("next page")

// pageLoop muestra una página enriquecida y procesa selección, refinado
// local y paginación.
func (c *Controller) pageLoop(ctx context.Context, events []domain.Event, last bool) error {
	visible := events
	for {
		renderEvents(c.out, visible)
		hint := "  [#] open event | f) refine | n) next page | b) back"
		if last {
			hint = "  [#] open event | f) refine | b) back"
		}
		fmt.Fprintln(c.out, hint)

		choice, err := c.prompt(ctx, "> ")
		if err != nil {
			return err
		}
		switch choice {
		case "b", "":
			return errBack
		case "n":
			if last {
				fmt.Fprintln(c.out, "  no more pages")
				continue
			}
			return errNextPage
		case "f":
			refined, err := c.refine(ctx, events)
			if err != nil {
				return err
			}
			visible = refined
		default:
			idx, err := strconv.Atoi(choice)
			if err != nil || idx < 1 || idx > len(visible) {
				fmt.Fprintln(c.out, "  invalid selection")
				continue
			}
			if err := c.eventFlow(ctx, visible[idx-1]); err != nil && !errors.Is(err, errBack) {
				c.showError(err)
			}
		}
	}
}

// refine aplica filtros locales sobre la página ya enriquecida.
func (c *Controller) refine(ctx context.Context, events []domain.Event) ([]domain.Event, error) {
	query, err := c.prompt(ctx, "  filter text (empty = none): ")
	if err != nil {
		return nil, err
	}
	minVol, err := c.promptFloat(ctx, "  min volume (0 = none): ")
	if err != nil {
		return nil, err
	}
	expiring, err := c.confirm(ctx, "  only expiring within 48h?")
	if err != nil {
		return nil, err
	}

	r := discovery.Refine{Query: query, MinVolume: minVol, ExpiringSoon: expiring}
	refined := r.Apply(events)
	fmt.Fprintf(c.out, "  %d of %d events match\n", len(refined), len(events))
	return refined, nil
}

// promptFilters pide los filtros de navegación del catálogo.
func (c *Controller) promptFilters(ctx context.Context, f *discovery.Filters) error {
	fmt.Fprintf(c.out, "  sort keys: %s\n", strings.Join(discovery.SortKeys(), ", "))
	sortBy, err := c.prompt(ctx, "  sort by (empty = volume): ")
	if err != nil {
		return err
	}
	if sortBy == "" {
		sortBy = "volume"
	}
	f.SortBy = sortBy
	f.MinVolume, err = c.promptFloat(ctx, "  min volume (0 = none): ")
	if err != nil {
		return err
	}
	f.Category, err = c.prompt(ctx, "  category tag (empty = all): ")
	return err
}

// eventFlow muestra los mercados de un evento y deja escoger uno.
func (c *Controller) eventFlow(ctx context.Context, ev domain.Event) error {
	if ev.EnrichmentFailed || len(ev.Markets) == 0 {
		fmt.Fprintln(c.out, "  no market detail available for this event")
		return nil
	}

	fmt.Fprintf(c.out, "\n%s\n", ev.Title)
	renderMarkets(c.out, ev.Markets)

	choice, err := c.prompt(ctx, "  open market # (empty = back): ")
	if err != nil {
		return err
	}
	if choice == "" {
		return nil
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(ev.Markets) {
		fmt.Fprintln(c.out, "  invalid selection")
		return nil
	}
	return c.marketFlow(ctx, ev.Markets[idx-1])
}

// marketFlow muestra el book de un outcome y ofrece operar.
func (c *Controller) marketFlow(ctx context.Context, m domain.Market) error {
	outcome := 0
	if len(m.Outcomes) > 1 {
		for i, o := range m.Outcomes {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, o)
		}
		idx, err := c.promptInt(ctx, "  outcome #: ")
		if err != nil {
			return err
		}
		if idx < 1 || idx > len(m.Outcomes) {
			return domain.Ef(domain.KindValidation, "terminal.marketFlow",
				"outcome %d out of range", idx)
		}
		outcome = idx - 1
	}

	for {
		book, err := c.reader.Read(ctx, m, outcome)
		if err != nil {
			return err
		}
		renderBook(c.out, m, m.OutcomeLabel(outcome), book)

		choice, err := c.prompt(ctx, "  t) trade | r) refresh | b) back > ")
		if err != nil {
			return err
		}
		switch choice {
		case "t":
			if err := c.tradeFlow(ctx, m, outcome, book); err != nil {
				c.showError(err)
			}
		case "r":
			// El siguiente Read trae un snapshot fresco.
		default:
			return nil
		}
	}
}

// --- ejecución ---

// tradeFlow construye el intent, pide confirmación explícita y lo coloca.
func (c *Controller) tradeFlow(ctx context.Context, m domain.Market, outcome int, book domain.OrderBookSnapshot) error {
	side := domain.Buy
	if yes, err := c.confirm(ctx, "  sell? (no = buy)"); err != nil {
		return err
	} else if yes {
		side = domain.Sell
	}

	typ := domain.LimitOrder
	if yes, err := c.confirm(ctx, "  market order? (no = limit)"); err != nil {
		return err
	} else if yes {
		typ = domain.MarketOrder
	}

	size, err := c.promptFloat(ctx, "  size (shares): ")
	if err != nil {
		return err
	}

	intent := domain.OrderIntent{
		Market:  m,
		Outcome: outcome,
		Side:    side,
		Type:    typ,
		Size:    size,
	}
	if typ == domain.LimitOrder {
		intent.LimitPrice, err = c.promptFloat(ctx, "  limit price (0-1): ")
		if err != nil {
			return err
		}
	}

	c.printOrderSummary(m, outcome, intent, book)
	ok, err := c.confirm(ctx, "  confirm order?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "  aborted")
		return nil
	}

	receipt, err := c.gateway.Place(ctx, &intent)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  placed: %s status=%s", shortID(receipt.CLOBOrderID), receipt.Status)
	if receipt.Filled() {
		fmt.Fprintf(c.out, " taken=$%.2f made=%.2f", receipt.TakenAmount, receipt.MadeAmount)
	}
	fmt.Fprintln(c.out)
	return nil
}

// printOrderSummary imprime el resumen que el usuario confirma. Para un
// MARKET muestra el coste estimado cruzando el book, no el precio FOK.
func (c *Controller) printOrderSummary(m domain.Market, outcome int, intent domain.OrderIntent, book domain.OrderBookSnapshot) {
	fmt.Fprintf(c.out, "\n  %s %s %.2f shares of %q (%s)\n",
		intent.Side, intent.Type, intent.Size,
		domain.TruncateQuestion(m.Question, m.ID, 50), m.OutcomeLabel(outcome))

	switch intent.Type {
	case domain.LimitOrder:
		fmt.Fprintf(c.out, "  at %.3f | max cost $%.2f\n",
			intent.LimitPrice, intent.LimitPrice*intent.Size)
	case domain.MarketOrder:
		ref := book.BestAsk()
		if intent.Side == domain.Sell {
			ref = book.BestBid()
		}
		if ref > 0 {
			fmt.Fprintf(c.out, "  ~market price %.3f | est. $%.2f | fill-or-kill\n",
				ref, ref*intent.Size)
		} else {
			fmt.Fprintln(c.out, "  no resting liquidity on the taker side | fill-or-kill")
		}
	}
}

// --- cartera ---

// walletMenu es el submenu de cartera.
func (c *Controller) walletMenu(ctx context.Context) error {
	for {
		fmt.Fprintln(c.out, "\n--- wallet ---")
		fmt.Fprintln(c.out, "  1) positions & P&L")
		fmt.Fprintln(c.out, "  2) open orders")
		fmt.Fprintln(c.out, "  3) performance")
		fmt.Fprintln(c.out, "  4) session journal")
		fmt.Fprintln(c.out, "  5) balance")
		fmt.Fprintln(c.out, "  b) back")

		choice, err := c.prompt(ctx, "> ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			c.runErr(c.positionsFlow(ctx))
		case "2":
			c.runErr(c.ordersFlow(ctx))
		case "3":
			c.runErr(c.performanceFlow(ctx))
		case "4":
			c.runErr(c.journalFlow(ctx))
		case "5":
			bal, err := c.gateway.Balance(ctx)
			if err != nil {
				c.showError(err)
				continue
			}
			fmt.Fprintf(c.out, "  USDC balance: $%.2f\n", bal)
		default:
			return nil
		}
	}
}

func (c *Controller) positionsFlow(ctx context.Context) error {
	p, err := c.reconciler.Reconcile(ctx, c.wallet)
	if err != nil && !domain.IsKind(err, domain.KindIncompleteHistory) {
		return err
	}
	renderPositions(c.out, p)
	return nil
}

func (c *Controller) ordersFlow(ctx context.Context) error {
	orders, err := c.gateway.OpenOrders(ctx)
	if err != nil {
		return err
	}
	renderOpenOrders(c.out, orders)
	if len(orders) == 0 {
		return nil
	}

	choice, err := c.prompt(ctx, "  cancel [#], a) all, b) back > ")
	if err != nil {
		return err
	}
	switch choice {
	case "a":
		ok, err := c.confirm(ctx, fmt.Sprintf("  cancel all %d orders?", len(orders)))
		if err != nil || !ok {
			return err
		}
		receipts, err := c.gateway.CancelAll(ctx, "")
		if err != nil {
			return err
		}
		for _, r := range receipts {
			if r.Canceled {
				fmt.Fprintf(c.out, "  cancelled %s\n", shortID(r.OrderID))
			} else {
				fmt.Fprintf(c.out, "  FAILED %s: %s\n", shortID(r.OrderID), r.Reason)
			}
		}
	case "b", "":
	default:
		idx, convErr := strconv.Atoi(choice)
		if convErr != nil || idx < 1 || idx > len(orders) {
			fmt.Fprintln(c.out, "  invalid selection")
			return nil
		}
		receipt, err := c.gateway.Cancel(ctx, orders[idx-1].OrderID)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "  cancelled %s\n", shortID(receipt.OrderID))
	}
	return nil
}

func (c *Controller) performanceFlow(ctx context.Context) error {
	p, err := c.reconciler.Reconcile(ctx, c.wallet)
	if err != nil && !domain.IsKind(err, domain.KindIncompleteHistory) {
		return err
	}

	buckets := portfolio.AllWindows(p, time.Now().UTC())

	var rank *domain.WalletRank
	if r, found, err := c.trades.FetchWalletRank(ctx, c.wallet, domain.WindowAll); err == nil && found {
		rank = &r
	}
	renderPerformance(c.out, buckets, rank)
	return nil
}

func (c *Controller) journalFlow(ctx context.Context) error {
	entries, err := c.gateway.SessionSubmissions(ctx)
	if err != nil {
		return err
	}
	renderJournal(c.out, entries)
	return nil
}

// --- prompts ---

// prompt lee una línea. Devuelve context.Canceled si el contexto murió
// mientras esperaba input.
func (c *Controller) prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Controller) promptFloat(ctx context.Context, label string) (float64, error) {
	s, err := c.prompt(ctx, label)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, domain.Ef(domain.KindValidation, "terminal.prompt", "not a number: %q", s)
	}
	return v, nil
}

func (c *Controller) promptInt(ctx context.Context, label string) (int, error) {
	s, err := c.prompt(ctx, label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.Ef(domain.KindValidation, "terminal.prompt", "not a number: %q", s)
	}
	return v, nil
}

func (c *Controller) confirm(ctx context.Context, label string) (bool, error) {
	s, err := c.prompt(ctx, label+" [y/N]: ")
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return s == "y" || s == "yes", nil
}
