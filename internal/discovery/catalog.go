package discovery

// catalog.go — consultas al catálogo de eventos.
//
// Dos modos de descubrimiento: keyword search (Gamma public-search) y
// browse por atributos (Gamma /events paginado). Al menos uno debe estar
// activo. El resultado es un pager lazy y reiniciable: cada página es un
// fetch idempotente que el caller puede reintentar.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

const (
	defaultPageSize  = 100
	defaultLimit     = 20
	keywordSearchMax = 25
)

// sortFields mapea las keys de orden que acepta el usuario al vocabulario
// de la API. Una key desconocida es un error de VALIDATION, no un typo
// que silenciosamente ordena por defecto.
var sortFields = map[string]string{
	"volume":        "volume",
	"hot":           "volume24hr",
	"weekly":        "volume1wk",
	"liquidity":     "liquidity",
	"open_interest": "openInterest",
	"newest":        "createdAt",
	"starting":      "startDate",
	"ending":        "endDate",
	"competitive":   "competitive",
	"featured":      "featuredOrder",
}

// SortKeys devuelve las claves de orden válidas, ordenadas.
func SortKeys() []string {
	keys := make([]string, 0, len(sortFields))
	for k := range sortFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Filters son los criterios de browse del catálogo.
// El zero value significa "sin filtros" (modo browse inactivo).
type Filters struct {
	MinVolume    float64
	MinLiquidity float64
	Category     string // tag slug, p.ej. "politics"
	SortBy       string // key de sortFields; vacío = "volume"
	Ascending    bool
	FeaturedOnly bool
	ShowClosed   bool
	Limit        int // máximo de eventos a devolver; 0 = default
}

// Active devuelve true si algún criterio de browse está definido.
func (f Filters) Active() bool {
	return f.MinVolume > 0 || f.MinLiquidity > 0 || f.Category != "" ||
		f.SortBy != "" || f.FeaturedOnly || f.ShowClosed || f.Limit > 0
}

// validate comprueba los filtros y devuelve la query mapeada a la API.
func (f Filters) validate() (ports.CatalogQuery, error) {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "volume"
	}
	field, ok := sortFields[strings.ToLower(sortBy)]
	if !ok {
		return ports.CatalogQuery{}, domain.Ef(domain.KindValidation, "discovery.Search",
			"unknown sort key %q (valid: %s)", f.SortBy, strings.Join(SortKeys(), ", "))
	}
	if f.MinVolume < 0 || f.MinLiquidity < 0 {
		return ports.CatalogQuery{}, domain.Ef(domain.KindValidation, "discovery.Search",
			"volume/liquidity filters must be >= 0")
	}
	if f.Limit < 0 {
		return ports.CatalogQuery{}, domain.Ef(domain.KindValidation, "discovery.Search",
			"limit must be >= 0")
	}

	return ports.CatalogQuery{
		OrderField:   field,
		Ascending:    f.Ascending,
		TagSlug:      strings.ToLower(f.Category),
		LiquidityMin: f.MinLiquidity,
		VolumeMin:    f.MinVolume,
		FeaturedOnly: f.FeaturedOnly,
		ShowClosed:   f.ShowClosed,
	}, nil
}

// Catalog es el adaptador de consulta del catálogo de mercados.
type Catalog struct {
	provider ports.CatalogProvider
	pageSize int
}

// NewCatalog crea un Catalog. pageSize <= 0 usa el default.
func NewCatalog(provider ports.CatalogProvider, pageSize int) *Catalog {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Catalog{provider: provider, pageSize: pageSize}
}

// Search construye un pager para el keyword y/o filtros dados.
// Exige al menos un modo de descubrimiento activo.
func (c *Catalog) Search(keyword string, f Filters) (*EventPager, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" && !f.Active() {
		return nil, domain.Ef(domain.KindValidation, "discovery.Search",
			"need a keyword or at least one filter")
	}

	query, err := f.validate()
	if err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	return &EventPager{
		provider: c.provider,
		keyword:  keyword,
		query:    query,
		pageSize: c.pageSize,
		limit:    limit,
	}, nil
}

// EventPager produce eventos del catálogo página a página.
// Reiniciable con Reset; un Next fallido no avanza el offset, así que
// reintentarlo repite exactamente el mismo fetch.
type EventPager struct {
	provider ports.CatalogProvider
	keyword  string
	query    ports.CatalogQuery
	pageSize int
	limit    int

	offset  int
	fetched int
	done    bool
}

// Done devuelve true cuando no quedan más páginas.
func (p *EventPager) Done() bool { return p.done }

// Reset reinicia el pager a la primera página.
func (p *EventPager) Reset() {
	p.offset = 0
	p.fetched = 0
	p.done = false
}

// Next devuelve la siguiente página de eventos. Devuelve nil cuando el
// pager está agotado.
func (p *EventPager) Next(ctx context.Context) ([]domain.Event, error) {
	if p.done {
		return nil, nil
	}

	// Keyword search no pagina upstream: una sola página y listo.
	if p.keyword != "" {
		limit := p.limit
		if limit > keywordSearchMax {
			limit = keywordSearchMax
		}
		events, err := p.provider.SearchEvents(ctx, p.keyword, limit)
		if err != nil {
			return nil, fmt.Errorf("discovery: keyword page: %w", err)
		}
		p.done = true
		p.fetched = len(events)
		return events, nil
	}

	remaining := p.limit - p.fetched
	if remaining <= 0 {
		p.done = true
		return nil, nil
	}
	size := p.pageSize
	if size > remaining {
		size = remaining
	}

	events, err := p.provider.ListEvents(ctx, p.query, size, p.offset)
	if err != nil {
		return nil, fmt.Errorf("discovery: catalog page offset=%d: %w", p.offset, err)
	}

	p.offset += len(events)
	p.fetched += len(events)
	if len(events) < size || p.fetched >= p.limit {
		p.done = true
	}

	slog.Debug("catalog page",
		"count", len(events),
		"fetched", p.fetched,
		"done", p.done,
	)
	return events, nil
}

// All drena el pager hasta agotarlo y devuelve todos los eventos.
func (p *EventPager) All(ctx context.Context) ([]domain.Event, error) {
	var all []domain.Event
	for !p.Done() {
		page, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
	}
	return all, nil
}
