package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

const bookPath = "/book"

// FetchBook obtiene el orderbook actual de un token del CLOB.
// Siempre fetch fresco: en trading el riesgo de staleness pesa más que
// la latencia ahorrada por cachear.
func (c *Client) FetchBook(ctx context.Context, tokenID string) (domain.OrderBookSnapshot, error) {
	reqURL := fmt.Sprintf("%s%s?token_id=%s", c.clobBase, bookPath, url.QueryEscape(tokenID))

	var resp bookResponse
	if err := c.get(ctx, c.booksLimiter, reqURL, &resp); err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("clob.FetchBook: %w", err)
	}

	book, err := mapBook(resp, time.Now().UTC())
	if err != nil {
		return domain.OrderBookSnapshot{}, domain.E(domain.KindParseFailed, "clob.FetchBook", err)
	}
	if book.TokenID == "" {
		book.TokenID = tokenID
	}
	return book, nil
}
