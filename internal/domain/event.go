package domain

import "time"

// MarketStatus es el estado de resolución de un mercado.
type MarketStatus string

const (
	MarketOpen     MarketStatus = "OPEN"
	MarketClosed   MarketStatus = "CLOSED"
	MarketResolved MarketStatus = "RESOLVED"
)

// Event representa un evento de Polymarket: un tema que agrupa
// uno o más mercados binarios (p.ej. una elección con varios candidatos).
type Event struct {
	ID          string
	Slug        string
	Title       string
	Description string
	CreatedAt   time.Time
	EndDate     time.Time
	Volume      float64
	Volume24h   float64
	Liquidity   float64

	// Markets en el orden en que la API los lista. El Event es el único
	// dueño de este slice; Market referencia a su Event solo por EventID.
	Markets []Market

	// EnrichmentFailed marca un evento cuyo fetch de detalle falló.
	// Los campos de resumen siguen siendo válidos; Markets puede estar vacío.
	EnrichmentFailed bool
}

// Market representa un mercado binario dentro de un Event.
type Market struct {
	ID          string
	EventID     string // backref al Event dueño, solo como clave de lookup
	ConditionID string
	Question    string

	// Outcomes y sus datos asociados van en paralelo por índice:
	// Outcomes[i] ↔ OutcomePrices[i] ↔ ClobTokenIDs[i].
	Outcomes      []string
	OutcomePrices []float64
	ClobTokenIDs  []string

	BestBid   float64
	BestAsk   float64
	Volume    float64
	Volume24h float64
	Liquidity float64
	EndDate   time.Time
	Status    MarketStatus
}

// TokenFor devuelve el token_id del outcome dado.
// Devuelve false si el índice no tiene token asociado.
func (m Market) TokenFor(outcome int) (string, bool) {
	if outcome < 0 || outcome >= len(m.ClobTokenIDs) || m.ClobTokenIDs[outcome] == "" {
		return "", false
	}
	return m.ClobTokenIDs[outcome], true
}

// PriceFor devuelve el último precio conocido del outcome dado, o 0.
func (m Market) PriceFor(outcome int) float64 {
	if outcome < 0 || outcome >= len(m.OutcomePrices) {
		return 0
	}
	return m.OutcomePrices[outcome]
}

// OutcomeLabel devuelve el label del outcome, con fallback YES/NO.
func (m Market) OutcomeLabel(outcome int) string {
	if outcome >= 0 && outcome < len(m.Outcomes) && m.Outcomes[outcome] != "" {
		return m.Outcomes[outcome]
	}
	if outcome == 0 {
		return "Yes"
	}
	return "No"
}

// Tradable devuelve true si el mercado está abierto y tiene tokens CLOB.
func (m Market) Tradable() bool {
	return m.Status == MarketOpen && len(m.ClobTokenIDs) > 0
}

// HoursToResolution devuelve las horas hasta que el mercado se resuelve.
// Devuelve 0 si EndDate no está definido o ya pasó.
func (m Market) HoursToResolution() float64 {
	if m.EndDate.IsZero() {
		return 0
	}
	h := time.Until(m.EndDate).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// MaxMarketLiquidity devuelve la liquidez del mercado más líquido del evento.
func (e Event) MaxMarketLiquidity() float64 {
	var max float64
	for _, m := range e.Markets {
		if m.Liquidity > max {
			max = m.Liquidity
		}
	}
	return max
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si la pregunta está vacía usa los primeros caracteres del id como fallback.
func TruncateQuestion(question, id string, maxLen int) string {
	q := question
	if q == "" {
		if len(id) > 20 {
			q = id[:20] + "..."
		} else {
			q = id
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}
