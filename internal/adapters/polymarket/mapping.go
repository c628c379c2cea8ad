package polymarket

// mapping.go — frontera estricta de parse-and-validate.
//
// Los payloads de Gamma son dinámicos: numéricos como strings, listas
// stringificadas, campos ausentes. Aquí se convierten a los shapes fijos
// de domain; un shape inválido falla rápido como PARSE_FAILED en lugar de
// propagar campos indefinidos hacia abajo.

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// mapEvent convierte un gammaEvent a domain.Event.
// Falla con PARSE_FAILED si el evento no tiene identificador.
func mapEvent(raw gammaEvent) (domain.Event, error) {
	if raw.ID == "" {
		return domain.Event{}, domain.Ef(domain.KindParseFailed, "polymarket.mapEvent",
			"event without id (slug=%q title=%q)", raw.Slug, raw.Title)
	}

	e := domain.Event{
		ID:          raw.ID,
		Slug:        raw.Slug,
		Title:       raw.Title,
		Description: raw.Description,
		CreatedAt:   parseISOTime(raw.CreatedAt),
		EndDate:     parseISOTime(raw.EndDate),
		Volume:      numToFloat(raw.Volume),
		Volume24h:   numToFloat(raw.Volume24h),
		Liquidity:   numToFloat(raw.Liquidity),
	}

	e.Markets = make([]domain.Market, 0, len(raw.Markets))
	for _, rm := range raw.Markets {
		m, err := mapMarket(rm, raw.ID)
		if err != nil {
			return domain.Event{}, fmt.Errorf("event %s: %w", raw.ID, err)
		}
		e.Markets = append(e.Markets, m)
	}
	return e, nil
}

// mapMarket convierte un gammaMarket a domain.Market.
func mapMarket(raw gammaMarket, eventID string) (domain.Market, error) {
	if raw.ID == "" {
		return domain.Market{}, domain.Ef(domain.KindParseFailed, "polymarket.mapMarket",
			"market without id (question=%q)", raw.Question)
	}

	outcomes, err := parseStringList(raw.Outcomes)
	if err != nil {
		return domain.Market{}, domain.E(domain.KindParseFailed, "polymarket.mapMarket",
			fmt.Errorf("market %s: outcomes: %w", raw.ID, err))
	}
	tokenIDs, err := parseStringList(raw.ClobTokenIDs)
	if err != nil {
		return domain.Market{}, domain.E(domain.KindParseFailed, "polymarket.mapMarket",
			fmt.Errorf("market %s: clobTokenIds: %w", raw.ID, err))
	}
	prices, err := parseFloatList(raw.OutcomePrices)
	if err != nil {
		return domain.Market{}, domain.E(domain.KindParseFailed, "polymarket.mapMarket",
			fmt.Errorf("market %s: outcomePrices: %w", raw.ID, err))
	}

	m := domain.Market{
		ID:            raw.ID,
		EventID:       eventID,
		ConditionID:   raw.ConditionID,
		Question:      raw.Question,
		Outcomes:      outcomes,
		OutcomePrices: prices,
		ClobTokenIDs:  tokenIDs,
		BestBid:       numToFloat(raw.BestBid),
		BestAsk:       numToFloat(raw.BestAsk),
		Volume:        numToFloat(raw.Volume),
		Volume24h:     numToFloat(raw.Volume24h),
		Liquidity:     numToFloat(raw.Liquidity),
		EndDate:       parseISOTime(raw.EndDate),
		Status:        marketStatus(raw),
	}
	return m, nil
}

// marketStatus deriva el enum de estado desde los flags de la API.
func marketStatus(raw gammaMarket) domain.MarketStatus {
	switch {
	case raw.UmaResolved:
		return domain.MarketResolved
	case raw.Closed || !raw.Active:
		return domain.MarketClosed
	}
	return domain.MarketOpen
}

// parseStringList decodifica una lista JSON stringificada ("[\"Yes\",\"No\"]").
// Una lista vacía o ausente es válida; un string no-JSON no lo es.
func parseStringList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("not a JSON string list: %q", truncate(s, 40))
	}
	return out, nil
}

// parseFloatList decodifica una lista stringificada de números-como-strings.
func parseFloatList(s string) ([]float64, error) {
	raw, err := parseStringList(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric price %q", r)
		}
		out[i] = v
	}
	return out, nil
}

// mapBook convierte la respuesta de /book a un snapshot inmutable.
// Un nivel mal formado invalida el snapshot entero: un book a medias no
// se distingue de un book sin liquidez y es peor que ningún book.
func mapBook(raw bookResponse, fetchedAt time.Time) (domain.OrderBookSnapshot, error) {
	bids, err := mapBookEntries(raw.Bids, false)
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("bids: %w", err)
	}
	asks, err := mapBookEntries(raw.Asks, true)
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("asks: %w", err)
	}
	return domain.OrderBookSnapshot{
		MarketID:  raw.Market,
		TokenID:   raw.AssetID,
		FetchedAt: fetchedAt,
		Bids:      bids,
		Asks:      asks,
	}, nil
}

// mapBookEntries convierte entries raw a domain.BookEntry y los ordena.
// ascending=true → menor a mayor (asks), ascending=false → mayor a menor (bids).
func mapBookEntries(raw []bookEntryRaw, ascending bool) ([]domain.BookEntry, error) {
	entries := make([]domain.BookEntry, 0, len(raw))
	for _, r := range raw {
		price, err := strconv.ParseFloat(r.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric price %q", r.Price)
		}
		size, err := strconv.ParseFloat(r.Size, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric size %q", r.Size)
		}
		if price <= 0 || size <= 0 {
			continue
		}
		entries = append(entries, domain.BookEntry{Price: price, Size: size})
	}

	sort.Slice(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Price < entries[j].Price
		}
		return entries[i].Price > entries[j].Price
	})

	return entries, nil
}

// mapFill convierte un dataTrade a domain.Fill.
func mapFill(raw dataTrade) domain.Fill {
	price, _ := raw.Price.Float64()
	size, _ := raw.Size.Float64()
	side := domain.Buy
	if raw.Side == "SELL" {
		side = domain.Sell
	}
	return domain.Fill{
		ID:        raw.ID,
		MarketID:  raw.ConditionID,
		TokenID:   raw.Asset,
		Outcome:   raw.Outcome,
		Title:     raw.Title,
		Side:      side,
		Price:     price,
		Size:      size,
		Timestamp: parseUnixOrISO(raw.Timestamp.String()),
	}
}

func numToFloat(n json.Number) float64 {
	v, _ := n.Float64()
	return v
}

// parseISOTime intenta los formatos de fecha que Polymarket usa.
func parseISOTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseUnixOrISO acepta timestamps unix (segundos o milisegundos) o ISO.
func parseUnixOrISO(s string) time.Time {
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1e12 {
			return time.UnixMilli(sec).UTC()
		}
		return time.Unix(sec, 0).UTC()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC()
	}
	return parseISOTime(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
