package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

func tradeFixture(i int) map[string]any {
	return map[string]any{
		"id":          fmt.Sprintf("t-%d", i),
		"conditionId": "0xcond",
		"asset":       "tok-1",
		"outcome":     "Yes",
		"title":       "Will it rain?",
		"side":        "BUY",
		"price":       "0.45",
		"size":        "10",
		"timestamp":   1756600000 + i,
	}
}

// tradesServer sirve /trades paginado desde un total fijo de fills.
func tradesServer(t *testing.T, total int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trades", r.URL.Path)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		page := []map[string]any{}
		for i := offset; i < offset+limit && i < total; i++ {
			page = append(page, tradeFixture(i))
		}
		json.NewEncoder(w).Encode(page)
	}))
}

func TestFetchWalletFillsPaginates(t *testing.T) {
	srv := tradesServer(t, 620)
	defer srv.Close()

	c := NewClient("", "", srv.URL)
	history, err := c.FetchWalletFills(context.Background(), "0xwallet")
	require.NoError(t, err)

	assert.Len(t, history.Fills, 620)
	assert.False(t, history.Truncated)

	first := history.Fills[0]
	assert.Equal(t, "t-0", first.ID)
	assert.Equal(t, "0xcond", first.MarketID)
	assert.Equal(t, domain.Buy, first.Side)
	assert.InDelta(t, 0.45, first.Price, 1e-9)
	assert.Equal(t, int64(1756600000), first.Timestamp.Unix())
}

func TestFetchWalletFillsTruncatedAtPageLimit(t *testing.T) {
	// Más fills de los que caben en tradesMaxPages páginas: el resultado
	// llega marcado como truncado.
	srv := tradesServer(t, tradesMaxPages*tradesPerPage+1)
	defer srv.Close()

	c := NewClient("", "", srv.URL)
	history, err := c.FetchWalletFills(context.Background(), "0xwallet")
	require.NoError(t, err)

	assert.Len(t, history.Fills, tradesMaxPages*tradesPerPage)
	assert.True(t, history.Truncated)
}

func TestFetchHoldingsMapsPositions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/positions", r.URL.Path)
		assert.Equal(t, "0xwallet", r.URL.Query().Get("user"))
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"conditionId": "0xcond",
				"asset":       "tok-1",
				"outcome":     "Yes",
				"title":       "Will it rain?",
				"size":        "15",
				"avgPrice":    "0.50",
				"curPrice":    "0.65",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL)
	holdings, err := c.FetchHoldings(context.Background(), "0xwallet")
	require.NoError(t, err)

	require.Len(t, holdings, 1)
	h := holdings[0]
	assert.Equal(t, "0xcond", h.MarketID)
	assert.Equal(t, "tok-1", h.TokenID)
	assert.InDelta(t, 15, h.Size, 1e-9)
	assert.InDelta(t, 0.50, h.AvgPrice, 1e-9)
	assert.InDelta(t, 0.65, h.CurPrice, 1e-9)
}

func TestFetchWalletRank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/leaderboard", r.URL.Path)
		assert.Equal(t, "ALL", r.URL.Query().Get("timePeriod"))
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"user":     "0xwallet",
				"userName": "trader1",
				"pnl":      "1234.5",
				"vol":      "99000",
				"rank":     42,
			},
		})
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL)
	rank, found, err := c.FetchWalletRank(context.Background(), "0xwallet", domain.WindowAll)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 42, rank.Rank)
	assert.Equal(t, "trader1", rank.Username)
	assert.InDelta(t, 1234.5, rank.PnL, 1e-9)
	assert.Equal(t, domain.WindowAll, rank.Window)
}

func TestFetchWalletRankNotRanked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL)
	_, found, err := c.FetchWalletRank(context.Background(), "0xwallet", domain.WindowWeek)
	require.NoError(t, err)
	assert.False(t, found)
}
