package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyterm/internal/books"
	"github.com/alejandrodnm/polyterm/internal/discovery"
	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/execution"
	"github.com/alejandrodnm/polyterm/internal/portfolio"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

// fakeBackend implementa todos los ports que el controller necesita.
type fakeBackend struct {
	submitted []ports.SubmitRequest
	submitErr error
	journal   []ports.JournalEntry
}

func (f *fakeBackend) SearchEvents(_ context.Context, keyword string, _ int) ([]domain.Event, error) {
	return []domain.Event{{ID: "ev-1", Slug: "rain-madrid", Title: "Rain in Madrid"}}, nil
}

func (f *fakeBackend) ListEvents(context.Context, ports.CatalogQuery, int, int) ([]domain.Event, error) {
	return nil, nil
}

func (f *fakeBackend) EventBySlug(_ context.Context, slug string) (domain.Event, error) {
	return domain.Event{
		ID: "ev-1", Slug: slug, Title: "Rain in Madrid",
		Markets: []domain.Market{{
			ID:           "m-1",
			ConditionID:  "0xcond",
			Question:     "Will it rain tomorrow?",
			Outcomes:     []string{"Yes", "No"},
			ClobTokenIDs: []string{"tok-yes", "tok-no"},
			Status:       domain.MarketOpen,
		}},
	}, nil
}

func (f *fakeBackend) FetchBook(_ context.Context, tokenID string) (domain.OrderBookSnapshot, error) {
	return domain.OrderBookSnapshot{
		TokenID: tokenID,
		Bids:    []domain.BookEntry{{Price: 0.40, Size: 100}},
		Asks:    []domain.BookEntry{{Price: 0.44, Size: 80}},
	}, nil
}

func (f *fakeBackend) Submit(_ context.Context, req ports.SubmitRequest) (domain.OrderReceipt, error) {
	if f.submitErr != nil {
		return domain.OrderReceipt{}, f.submitErr
	}
	f.submitted = append(f.submitted, req)
	return domain.OrderReceipt{CLOBOrderID: "clob-1", Status: "live"}, nil
}

func (f *fakeBackend) Cancel(context.Context, string) error { return nil }

func (f *fakeBackend) OpenOrders(context.Context) ([]domain.OpenOrder, error) { return nil, nil }

func (f *fakeBackend) Balance(context.Context) (float64, error) { return 250, nil }

func (f *fakeBackend) RecordSubmission(_ context.Context, e ports.JournalEntry) error {
	f.journal = append(f.journal, e)
	return nil
}

func (f *fakeBackend) UpdateStatus(_ context.Context, localID, clobID, status string) error {
	for i := range f.journal {
		if f.journal[i].LocalID == localID {
			f.journal[i].Status = status
			f.journal[i].CLOBOrderID = clobID
		}
	}
	return nil
}

func (f *fakeBackend) AmbiguousEntries(context.Context) ([]ports.JournalEntry, error) {
	return nil, nil
}

func (f *fakeBackend) SessionEntries(context.Context) ([]ports.JournalEntry, error) {
	return f.journal, nil
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) FetchWalletFills(context.Context, string) (ports.TradeHistory, error) {
	return ports.TradeHistory{}, nil
}

func (f *fakeBackend) FetchHoldings(context.Context, string) ([]ports.Holding, error) {
	return nil, nil
}

func (f *fakeBackend) FetchWalletRank(context.Context, string, domain.Window) (domain.WalletRank, bool, error) {
	return domain.WalletRank{}, false, nil
}

func newTestController(backend *fakeBackend, script string) (*Controller, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := NewController(
		strings.NewReader(script), out,
		discovery.NewCatalog(backend, 10),
		discovery.NewEnricher(backend, 2),
		books.NewReader(backend),
		execution.NewGateway(backend, backend),
		portfolio.NewReconciler(backend, noMarks{}),
		backend,
		"0xwallet",
	)
	return c, out
}

type noMarks struct{}

func (noMarks) ReadToken(context.Context, string) (domain.OrderBookSnapshot, error) {
	return domain.OrderBookSnapshot{}, nil
}

func TestScriptedTradeSession(t *testing.T) {
	// Sesión completa: search → evento → mercado → outcome → book →
	// limit order confirmada → quit.
	script := strings.Join([]string{
		"2",      // search markets
		"rain",   // keyword
		"1",      // open event 1
		"1",      // open market 1
		"1",      // outcome Yes
		"t",      // trade
		"n",      // sell? no → buy
		"n",      // market order? no → limit
		"10",     // size
		"0.42",   // limit price
		"y",      // confirm
		"b",      // back from book
		"b",      // back from page
		"q",      // quit
	}, "\n") + "\n"

	backend := &fakeBackend{}
	c, out := newTestController(backend, script)

	err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, backend.submitted, 1)
	req := backend.submitted[0]
	assert.Equal(t, "tok-yes", req.TokenID)
	assert.Equal(t, domain.Buy, req.Side)
	assert.Equal(t, "GTC", req.TimeInForce)
	assert.InDelta(t, 0.42, req.Price, 1e-9)
	assert.InDelta(t, 10, req.Size, 1e-9)

	text := out.String()
	assert.Contains(t, text, "Rain in Madrid")
	assert.Contains(t, text, "placed")
	assert.Contains(t, text, "status=live")

	// El intento quedó journaled y actualizado.
	require.Len(t, backend.journal, 1)
	assert.Equal(t, "live", backend.journal[0].Status)
}

func TestScriptedTradeAborted(t *testing.T) {
	script := strings.Join([]string{
		"2", "rain", "1", "1", "1",
		"t", "n", "n", "10", "0.42",
		"n", // NO confirmar
		"b", "b", "q",
	}, "\n") + "\n"

	backend := &fakeBackend{}
	c, out := newTestController(backend, script)

	require.NoError(t, c.Run(context.Background()))
	assert.Empty(t, backend.submitted, "sin confirmación no hay envío")
	assert.Contains(t, out.String(), "aborted")
}

func TestErrorsShowKindAndReturnToMenu(t *testing.T) {
	script := strings.Join([]string{
		"2", "rain", "1", "1", "1",
		"t", "n", "n",
		"0", "0.5", // size 0 → VALIDATION en el gateway
		"b", "b", "q",
	}, "\n") + "\n"

	backend := &fakeBackend{}
	c, out := newTestController(backend, script)

	require.NoError(t, c.Run(context.Background()), "un error de orden nunca tumba el loop")
	assert.Contains(t, out.String(), "VALIDATION")
	assert.Empty(t, backend.submitted)
}

func TestWalletBalance(t *testing.T) {
	script := "3\n5\nb\nq\n"
	backend := &fakeBackend{}
	c, out := newTestController(backend, script)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "$250.00")
}
