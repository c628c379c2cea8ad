package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

const (
	tradesPerPage    = 500
	tradesMaxPages   = 10
	holdingsPerPage  = 500
	holdingsMaxPages = 10
)

// FetchWalletFills obtiene toda la historia de fills de una wallet desde la
// Data API pública. Pagina hasta agotar resultados; si el límite de páginas
// corta antes del final, marca Truncated para que el caller sepa que las
// estadísticas derivadas pueden estar incompletas.
func (c *Client) FetchWalletFills(ctx context.Context, wallet string) (ports.TradeHistory, error) {
	var history ports.TradeHistory

	for page := 0; page < tradesMaxPages; page++ {
		offset := page * tradesPerPage
		reqURL := fmt.Sprintf("%s/trades?user=%s&limit=%d&offset=%d",
			c.dataBase, url.QueryEscape(wallet), tradesPerPage, offset)

		var resp []dataTrade
		if err := c.get(ctx, c.clobLimiter, reqURL, &resp); err != nil {
			return ports.TradeHistory{}, fmt.Errorf("data-api.FetchWalletFills: %w", err)
		}

		for _, rt := range resp {
			history.Fills = append(history.Fills, mapFill(rt))
		}

		slog.Debug("fetched trades page", "page", page, "count", len(resp), "total", len(history.Fills))

		if len(resp) < tradesPerPage {
			return history, nil
		}
	}

	// Se agotaron las páginas con resultados aún llegando: historia truncada.
	history.Truncated = true
	slog.Warn("trade history truncated by page limit",
		"wallet", truncate(wallet, 10), "fills", len(history.Fills))
	return history, nil
}

// FetchHoldings devuelve las posiciones actuales de la wallet según la
// Data API, paginando igual que el cliente original.
func (c *Client) FetchHoldings(ctx context.Context, wallet string) ([]ports.Holding, error) {
	var all []ports.Holding

	params := url.Values{}
	params.Set("user", wallet)
	params.Set("sizeThreshold", "1")
	params.Set("sortBy", "TOKENS")
	params.Set("sortDirection", "DESC")

	for page := 0; page < holdingsMaxPages; page++ {
		params.Set("limit", strconv.Itoa(holdingsPerPage))
		params.Set("offset", strconv.Itoa(page*holdingsPerPage))
		reqURL := c.dataBase + "/positions?" + params.Encode()

		var resp []dataPosition
		if err := c.get(ctx, c.clobLimiter, reqURL, &resp); err != nil {
			return nil, fmt.Errorf("data-api.FetchHoldings: %w", err)
		}

		for _, rp := range resp {
			all = append(all, ports.Holding{
				MarketID: rp.ConditionID,
				TokenID:  rp.Asset,
				Outcome:  rp.Outcome,
				Title:    rp.Title,
				Size:     numToFloat(rp.Size),
				AvgPrice: numToFloat(rp.AvgPrice),
				CurPrice: numToFloat(rp.CurPrice),
			})
		}

		if len(resp) < holdingsPerPage {
			break
		}
	}

	return all, nil
}

// FetchWalletRank busca la wallet en el leaderboard para la ventana dada.
// Devuelve false si la wallet no aparece rankeada en esa ventana.
func (c *Client) FetchWalletRank(ctx context.Context, wallet string, w domain.Window) (domain.WalletRank, bool, error) {
	params := url.Values{}
	params.Set("category", "OVERALL")
	params.Set("timePeriod", string(w))
	params.Set("orderBy", "PNL")
	params.Set("limit", "25")
	params.Set("user", wallet)

	reqURL := c.dataBase + "/v1/leaderboard?" + params.Encode()

	var resp []leaderboardEntry
	if err := c.get(ctx, c.clobLimiter, reqURL, &resp); err != nil {
		return domain.WalletRank{}, false, fmt.Errorf("data-api.FetchWalletRank: %w", err)
	}

	var entry *leaderboardEntry
	for i := range resp {
		if resp[i].User == wallet || resp[i].WalletAddress == wallet {
			entry = &resp[i]
			break
		}
	}
	if entry == nil && len(resp) == 1 {
		entry = &resp[0]
	}
	if entry == nil {
		return domain.WalletRank{}, false, nil
	}

	rank, _ := entry.Rank.Int64()
	return domain.WalletRank{
		Window:   w,
		PnL:      numToFloat(entry.PnL),
		Volume:   numToFloat(entry.Vol),
		Rank:     int(rank),
		Username: entry.UserName,
	}, true, nil
}
