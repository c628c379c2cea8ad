package ports

import (
	"context"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// CatalogQuery son los parámetros de una página del catálogo de eventos.
// Los nombres de campo ya vienen validados y mapeados al vocabulario de la
// API por la capa de discovery.
type CatalogQuery struct {
	OrderField   string // campo de orden de la API (volume, liquidity...)
	Ascending    bool
	TagSlug      string
	LiquidityMin float64
	VolumeMin    float64
	FeaturedOnly bool
	ShowClosed   bool
}

// CatalogProvider consulta el catálogo remoto de eventos.
type CatalogProvider interface {
	// SearchEvents hace keyword search y devuelve resúmenes de eventos
	// abiertos (sin detalle de mercados completo).
	SearchEvents(ctx context.Context, keyword string, limit int) ([]domain.Event, error)

	// ListEvents devuelve una página del catálogo según la query.
	// Cada llamada con el mismo offset es idempotente y reintentable.
	ListEvents(ctx context.Context, q CatalogQuery, limit, offset int) ([]domain.Event, error)
}

// EventDetailProvider obtiene el detalle completo de un evento.
type EventDetailProvider interface {
	// EventBySlug devuelve el evento con todos sus mercados poblados.
	EventBySlug(ctx context.Context, slug string) (domain.Event, error)
}
