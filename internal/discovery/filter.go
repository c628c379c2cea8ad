package discovery

// filter.go — refinado en memoria de una lista de eventos ya descargada.
//
// Opera sobre la vista actual sin tocar la red; el usuario puede filtrar
// y resetear cuantas veces quiera sin repetir fetches.

import (
	"strings"
	"time"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// expiringWindow: un evento "expira pronto" si algún mercado resuelve
// dentro de esta ventana.
const expiringWindow = 48 * time.Hour

// matchThreshold es el ratio mínimo de similitud para el fuzzy match.
const matchThreshold = 0.4

// Refine son los criterios de filtrado en memoria.
type Refine struct {
	Query        string // fuzzy match contra título del evento o question del mercado
	MinVolume    float64
	MinVolume24h float64
	MinLiquidity float64 // contra el mercado más líquido del evento
	ExpiringSoon bool
}

// Apply devuelve los eventos que pasan todos los criterios, preservando
// el orden de entrada.
func (r Refine) Apply(events []domain.Event) []domain.Event {
	now := time.Now().UTC()
	out := make([]domain.Event, 0, len(events))

	for _, e := range events {
		if r.Query != "" && !r.matchesQuery(e) {
			continue
		}
		if r.MinVolume > 0 && e.Volume < r.MinVolume {
			continue
		}
		if r.MinVolume24h > 0 && e.Volume24h < r.MinVolume24h {
			continue
		}
		if r.MinLiquidity > 0 && e.MaxMarketLiquidity() < r.MinLiquidity {
			continue
		}
		if r.ExpiringSoon && !expiresSoon(e, now) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r Refine) matchesQuery(e domain.Event) bool {
	if isMatch(r.Query, e.Title) {
		return true
	}
	for _, m := range e.Markets {
		if isMatch(r.Query, m.Question) {
			return true
		}
	}
	return false
}

func expiresSoon(e domain.Event, now time.Time) bool {
	for _, m := range e.Markets {
		if m.EndDate.IsZero() {
			continue
		}
		left := m.EndDate.Sub(now)
		if left > 0 && left < expiringWindow {
			return true
		}
	}
	return false
}

// isMatch devuelve true si query matchea text: substring directo o
// similitud suficiente para tolerar typos.
func isMatch(query, text string) bool {
	if query == "" || text == "" {
		return false
	}
	query = strings.ToLower(query)
	text = strings.ToLower(text)

	if strings.Contains(text, query) {
		return true
	}
	return similarity(query, text) > matchThreshold
}

// similarity devuelve un ratio en [0,1] basado en distancia de edición.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}

	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(prev[lb])/float64(longest)
}
