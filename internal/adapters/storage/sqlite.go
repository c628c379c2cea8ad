package storage

// sqlite.go — journal local de órdenes.
//
// Cada intento de colocación se registra ANTES de tocar la red. Si el POST
// queda en resultado ambiguo (timeout tras enviar), la fila con estado
// "ambiguous" es la única evidencia local de que la orden pudo entrar:
// el journal es lo que permite reconciliar antes de reintentar.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
-- Un intento de orden por fila. local_id se asigna antes del envío.
CREATE TABLE IF NOT EXISTS orders (
    local_id      TEXT PRIMARY KEY,
    session_id    TEXT NOT NULL,
    clob_order_id TEXT NOT NULL DEFAULT '',
    condition_id  TEXT NOT NULL,
    token_id      TEXT NOT NULL,
    side          TEXT NOT NULL,
    order_type    TEXT NOT NULL,
    price         REAL NOT NULL,
    size          REAL NOT NULL,
    status        TEXT NOT NULL,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id, created_at);
CREATE INDEX IF NOT EXISTS idx_orders_status  ON orders(status);
`

// retentionOrders limpia intentos viejos al arrancar. Las filas "ambiguous"
// no se purgan nunca de forma automática: son deuda de reconciliación.
const retentionOrders = 30 * 24 * time.Hour

// SQLiteJournal implementa ports.Journal sobre SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db        *sql.DB
	sessionID string
}

// NewSQLiteJournal abre (o crea) el journal en la ruta dada, aplica el
// schema, purga filas antiguas y arranca una sesión nueva.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db, sessionID: uuid.NewString()}
	j.pruneOld(context.Background())
	return j, nil
}

// RecordSubmission inserta el intento con su estado inicial.
func (j *SQLiteJournal) RecordSubmission(ctx context.Context, e ports.JournalEntry) error {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO orders
		    (local_id, session_id, clob_order_id, condition_id, token_id,
		     side, order_type, price, size, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.LocalID, j.sessionID, e.CLOBOrderID, e.ConditionID, e.TokenID,
		string(e.Side), string(e.Type), e.Price, e.Size, e.Status,
		e.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("storage.RecordSubmission: %w", err)
	}
	return nil
}

// UpdateStatus actualiza el resultado de un intento. El clob_order_id solo
// se escribe si viene no vacío: un update a "ambiguous" no debe borrar un
// id conocido de un update anterior.
func (j *SQLiteJournal) UpdateStatus(ctx context.Context, localID, clobOrderID, status string) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE orders
		SET status = ?,
		    clob_order_id = CASE WHEN ? != '' THEN ? ELSE clob_order_id END,
		    updated_at = ?
		WHERE local_id = ?`,
		status, clobOrderID, clobOrderID, time.Now().UTC(), localID,
	)
	if err != nil {
		return fmt.Errorf("storage.UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.UpdateStatus: unknown local id %s", localID)
	}
	return nil
}

// AmbiguousEntries devuelve todos los intentos con resultado ambiguo,
// de cualquier sesión: la deuda de reconciliación sobrevive al proceso.
func (j *SQLiteJournal) AmbiguousEntries(ctx context.Context) ([]ports.JournalEntry, error) {
	return j.query(ctx, `
		SELECT local_id, clob_order_id, condition_id, token_id,
		       side, order_type, price, size, status, created_at, updated_at
		FROM orders WHERE status = 'ambiguous' ORDER BY created_at`)
}

// SessionEntries devuelve los intentos de la sesión actual en orden de envío.
func (j *SQLiteJournal) SessionEntries(ctx context.Context) ([]ports.JournalEntry, error) {
	return j.query(ctx, `
		SELECT local_id, clob_order_id, condition_id, token_id,
		       side, order_type, price, size, status, created_at, updated_at
		FROM orders WHERE session_id = ? ORDER BY created_at`, j.sessionID)
}

func (j *SQLiteJournal) query(ctx context.Context, q string, args ...any) ([]ports.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.query: %w", err)
	}
	defer rows.Close()

	var entries []ports.JournalEntry
	for rows.Next() {
		var e ports.JournalEntry
		var side, typ string
		if err := rows.Scan(&e.LocalID, &e.CLOBOrderID, &e.ConditionID, &e.TokenID,
			&side, &typ, &e.Price, &e.Size, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage.query: scan: %w", err)
		}
		e.Side = domain.OrderSide(side)
		e.Type = domain.OrderType(typ)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// pruneOld borra intentos resueltos con más de 30 días. Best-effort.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionOrders)
	j.db.ExecContext(ctx,
		`DELETE FROM orders WHERE created_at < ? AND status != 'ambiguous'`, cutoff)
}

// Close cierra la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
