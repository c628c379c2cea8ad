package polymarket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

func TestFetchBookSortsAndSkipsInvalidLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/book", r.URL.Path)
		assert.Equal(t, "tok-1", r.URL.Query().Get("token_id"))
		json.NewEncoder(w).Encode(map[string]any{
			"market":   "0xcond",
			"asset_id": "tok-1",
			"bids": []map[string]string{
				{"price": "0.40", "size": "100"},
				{"price": "0.45", "size": "50"},
				{"price": "0", "size": "999"},
				{"price": "0.42", "size": "0"},
			},
			"asks": []map[string]string{
				{"price": "0.55", "size": "10"},
				{"price": "0.48", "size": "20"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	book, err := c.FetchBook(context.Background(), "tok-1")
	require.NoError(t, err)

	assert.Equal(t, "0xcond", book.MarketID)
	assert.Equal(t, "tok-1", book.TokenID)
	assert.WithinDuration(t, time.Now(), book.FetchedAt, time.Second)

	// Bids de mayor a menor, asks de menor a mayor, niveles inválidos fuera.
	require.Len(t, book.Bids, 2)
	assert.Equal(t, 0.45, book.Bids[0].Price)
	assert.Equal(t, 0.40, book.Bids[1].Price)
	require.Len(t, book.Asks, 2)
	assert.Equal(t, 0.48, book.Asks[0].Price)
	assert.Equal(t, 0.55, book.Asks[1].Price)

	assert.Equal(t, 0.45, book.BestBid())
	assert.Equal(t, 0.48, book.BestAsk())
	assert.InDelta(t, 0.465, book.Midpoint(), 1e-9)
}

func TestFetchBookMalformedLevelIsParseFailed(t *testing.T) {
	// Un nivel con precio no numérico invalida el snapshot entero: tratarlo
	// como liquidez ausente enmascararía un cambio de formato de la API.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"asset_id": "tok-1",
			"bids": []map[string]string{
				{"price": "0.40", "size": "100"},
				{"price": "garbage", "size": "50"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	_, err := c.FetchBook(context.Background(), "tok-1")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindParseFailed))
	assert.False(t, domain.Retryable(err))
}

func TestFetchBookBackfillsTokenID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"bids": []map[string]string{{"price": "0.5", "size": "1"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	book, err := c.FetchBook(context.Background(), "tok-xyz")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", book.TokenID)
}

func TestFetchBookEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"asset_id": "tok-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	book, err := c.FetchBook(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, book.Empty())
	assert.Zero(t, book.Midpoint())
}
