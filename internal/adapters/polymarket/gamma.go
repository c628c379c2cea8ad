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
	gammaEventsPath = "/events"
	gammaSearchPath = "/public-search"
	gammaSlugPath   = "/events/slug/"
)

// SearchEvents hace keyword search contra Gamma /public-search.
// Devuelve resúmenes de eventos activos; los cerrados se descartan aquí
// porque search los incluye aunque no sean tradeables.
func (c *Client) SearchEvents(ctx context.Context, keyword string, limit int) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("events_status", "active")
	params.Set("limit_per_type", strconv.Itoa(limit))
	params.Set("sort", "liquidity")
	params.Set("optimized", "true")

	reqURL := c.gammaBase + gammaSearchPath + "?" + params.Encode()

	var resp searchResponse
	if err := c.get(ctx, c.gammaLimiter, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("gamma.SearchEvents %q: %w", keyword, err)
	}

	events := make([]domain.Event, 0, len(resp.Events))
	for _, raw := range resp.Events {
		if raw.Closed {
			continue
		}
		e, err := mapEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("gamma.SearchEvents: %w", err)
		}
		events = append(events, e)
	}

	slog.Debug("keyword search complete", "q", keyword, "hits", len(events))
	return events, nil
}

// ListEvents devuelve una página del catálogo ordenada según la query.
// Idempotente para un (query, limit, offset) dado — reintentable.
func (c *Client) ListEvents(ctx context.Context, q ports.CatalogQuery, limit, offset int) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("order", q.OrderField)
	params.Set("ascending", strconv.FormatBool(q.Ascending))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	if q.LiquidityMin > 0 {
		params.Set("liquidity_min", strconv.FormatFloat(q.LiquidityMin, 'f', -1, 64))
	}
	if q.VolumeMin > 0 {
		params.Set("volume_min", strconv.FormatFloat(q.VolumeMin, 'f', -1, 64))
	}
	if q.TagSlug != "" {
		params.Set("tag_slug", q.TagSlug)
	}
	if q.FeaturedOnly {
		params.Set("featured", "true")
	}
	if !q.ShowClosed {
		params.Set("active", "true")
		params.Set("closed", "false")
		params.Set("archived", "false")
	}

	reqURL := c.gammaBase + gammaEventsPath + "?" + params.Encode()

	var resp []gammaEvent
	if err := c.get(ctx, c.gammaLimiter, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("gamma.ListEvents offset=%d: %w", offset, err)
	}

	events := make([]domain.Event, 0, len(resp))
	for _, raw := range resp {
		e, err := mapEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("gamma.ListEvents: %w", err)
		}
		events = append(events, e)
	}

	slog.Debug("fetched catalog page", "offset", offset, "count", len(events))
	return events, nil
}

// EventBySlug devuelve el detalle completo de un evento, mercados incluidos.
func (c *Client) EventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	reqURL := c.gammaBase + gammaSlugPath + url.PathEscape(slug)

	var raw gammaEvent
	if err := c.get(ctx, c.gammaLimiter, reqURL, &raw); err != nil {
		return domain.Event{}, fmt.Errorf("gamma.EventBySlug %q: %w", slug, err)
	}

	e, err := mapEvent(raw)
	if err != nil {
		return domain.Event{}, fmt.Errorf("gamma.EventBySlug %q: %w", slug, err)
	}
	return e, nil
}
