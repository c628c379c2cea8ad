package discovery

// enrich.go — worker pool para el enriquecimiento concurrente de eventos.
//
// Cada resumen de búsqueda se completa con un fetch de detalle por slug.
// Pool de tamaño fijo consumiendo una cola de tareas, con los slots de
// resultado preasignados por índice: el reensamblado no necesita sort y
// el orden de salida es siempre el orden de entrada, termine quien
// termine primero.

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

// DefaultEnrichWorkers limita los fetches de detalle en vuelo para
// respetar los rate limits de Gamma.
const DefaultEnrichWorkers = 8

// Enricher completa resúmenes de eventos con su detalle completo.
type Enricher struct {
	detail  ports.EventDetailProvider
	workers int
}

// NewEnricher crea un Enricher. workers <= 0 usa DefaultEnrichWorkers.
func NewEnricher(detail ports.EventDetailProvider, workers int) *Enricher {
	if workers <= 0 {
		workers = DefaultEnrichWorkers
	}
	return &Enricher{detail: detail, workers: workers}
}

// Enrich obtiene el detalle de cada evento concurrentemente.
//
// Semántica de fallo parcial: un fetch fallido produce un evento degradado
// (campos de resumen intactos, EnrichmentFailed=true) en lugar de abortar
// el batch. La llamada entera solo falla si cero eventos enriquecen.
// IDs duplicados en la entrada: gana la primera aparición, el resto se
// descarta con un log.
func (e *Enricher) Enrich(ctx context.Context, summaries []domain.Event) ([]domain.Event, error) {
	if len(summaries) == 0 {
		return nil, nil
	}

	// Dedup preservando el orden de la primera aparición.
	seen := make(map[string]bool, len(summaries))
	uniq := make([]domain.Event, 0, len(summaries))
	for _, s := range summaries {
		if seen[s.ID] {
			slog.Debug("dropping duplicate event in enrich input", "id", s.ID, "slug", s.Slug)
			continue
		}
		seen[s.ID] = true
		uniq = append(uniq, s)
	}

	// Slots de resultado preasignados por índice de entrada.
	results := make([]domain.Event, len(uniq))
	taskCh := make(chan int, len(uniq))

	workers := e.workers
	if workers > len(uniq) {
		workers = len(uniq)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				results[idx] = e.enrichOne(ctx, uniq[idx])
			}
		}()
	}

	for i := range uniq {
		taskCh <- i
	}
	close(taskCh)
	wg.Wait()

	// Abort del usuario: los fetches ya emitidos pudieron completar,
	// pero sus resultados se descartan.
	if err := ctx.Err(); err != nil {
		return nil, domain.E(domain.KindRetrievalFailed, "discovery.Enrich", err)
	}

	failed := 0
	for _, r := range results {
		if r.EnrichmentFailed {
			failed++
		}
	}
	if failed == len(results) {
		return nil, domain.Ef(domain.KindRetrievalFailed, "discovery.Enrich",
			"all %d detail fetches failed", len(results))
	}

	slog.Debug("enrichment complete",
		"events", len(results),
		"failed", failed,
		"workers", workers,
	)
	return results, nil
}

// enrichOne obtiene el detalle de un evento. Nunca devuelve error: un
// fallo aislado produce el resumen degradado con el flag activo.
func (e *Enricher) enrichOne(ctx context.Context, summary domain.Event) domain.Event {
	if summary.Slug == "" {
		slog.Debug("event without slug, cannot enrich", "id", summary.ID)
		summary.EnrichmentFailed = true
		return summary
	}

	full, err := e.detail.EventBySlug(ctx, summary.Slug)
	if err != nil {
		slog.Debug("detail fetch failed",
			"slug", summary.Slug,
			"kind", domain.KindOf(err),
			"err", err,
		)
		summary.EnrichmentFailed = true
		summary.Markets = nil
		return summary
	}
	return full
}
