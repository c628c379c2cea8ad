package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// JournalEntry es el registro local de un intento de colocación de orden.
type JournalEntry struct {
	LocalID     string // UUID local, asignado antes de enviar
	CLOBOrderID string // vacío si el envío quedó ambiguo
	ConditionID string
	TokenID     string
	Side        domain.OrderSide
	Type        domain.OrderType
	Price       float64
	Size        float64
	Status      string // "submitted" | "live" | "matched" | "cancelled" | "ambiguous"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Journal persiste los intentos de orden de la sesión. Es el registro que
// permite reconciliar un envío con resultado ambiguo antes de reintentar.
type Journal interface {
	RecordSubmission(ctx context.Context, e JournalEntry) error
	UpdateStatus(ctx context.Context, localID, clobOrderID, status string) error
	AmbiguousEntries(ctx context.Context) ([]JournalEntry, error)
	SessionEntries(ctx context.Context) ([]JournalEntry, error)
	Close() error
}
