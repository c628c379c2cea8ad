package polymarket

import "encoding/json"

// DTOs raw de las APIs de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaEvent es un evento del catálogo. Gamma devuelve muchos campos
// numéricos como strings JSON, usamos json.Number.
type gammaEvent struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CreatedAt   string        `json:"createdAt"`
	EndDate     string        `json:"endDate"`
	Volume      json.Number   `json:"volume"`
	Volume24h   json.Number   `json:"volume24hr"`
	Liquidity   json.Number   `json:"liquidity"`
	Active      bool          `json:"active"`
	Closed      bool          `json:"closed"`
	Markets     []gammaMarket `json:"markets"`
}

// gammaMarket es un mercado dentro de un evento.
// clobTokenIds, outcomes y outcomePrices llegan como JSON *stringificado*
// ("[\"Yes\",\"No\"]") — el mapping los decodifica con strictStringList.
type gammaMarket struct {
	ID            string      `json:"id"`
	ConditionID   string      `json:"conditionId"`
	Question      string      `json:"question"`
	Outcomes      string      `json:"outcomes"`
	OutcomePrices string      `json:"outcomePrices"`
	ClobTokenIDs  string      `json:"clobTokenIds"`
	BestBid       json.Number `json:"bestBid"`
	BestAsk       json.Number `json:"bestAsk"`
	Volume        json.Number `json:"volume"`
	Volume24h     json.Number `json:"volume24hr"`
	Liquidity     json.Number `json:"liquidity"`
	EndDate       string      `json:"endDate"`
	Active        bool        `json:"active"`
	Closed        bool        `json:"closed"`
	UmaResolved   bool        `json:"umaResolutionStatus,omitempty"`
}

// searchResponse es la respuesta de GET /public-search.
type searchResponse struct {
	Events []gammaEvent `json:"events"`
}

// --- CLOB API ---

// bookResponse es la respuesta de GET /book.
type bookResponse struct {
	Market  string         `json:"market"`
	AssetID string         `json:"asset_id"`
	Bids    []bookEntryRaw `json:"bids"`
	Asks    []bookEntryRaw `json:"asks"`
}

// bookEntryRaw es un nivel de precio raw de la API (strings para precisión).
type bookEntryRaw struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// clobOpenOrder es una orden abierta devuelta por GET /orders.
type clobOpenOrder struct {
	ID           string `json:"id"`
	AssetID      string `json:"asset_id"`
	Market       string `json:"market"`
	Side         string `json:"side"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Price        string `json:"price"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	Outcome      string `json:"outcome"`
}

type clobOrdersResponse struct {
	Data       []clobOpenOrder `json:"data"`
	NextCursor string          `json:"next_cursor"`
}

type clobNegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

// --- Data API ---

// dataPosition es una posición de GET /positions.
type dataPosition struct {
	ConditionID string      `json:"conditionId"`
	Asset       string      `json:"asset"`
	Outcome     string      `json:"outcome"`
	Title       string      `json:"title"`
	Size        json.Number `json:"size"`
	AvgPrice    json.Number `json:"avgPrice"`
	CurPrice    json.Number `json:"curPrice"`
}

// dataTrade es un fill de GET /trades.
type dataTrade struct {
	ID          string      `json:"id"`
	ConditionID string      `json:"conditionId"`
	Asset       string      `json:"asset"`
	Outcome     string      `json:"outcome"`
	Title       string      `json:"title"`
	Side        string      `json:"side"`
	Price       json.Number `json:"price"`
	Size        json.Number `json:"size"`
	Timestamp   json.Number `json:"timestamp"`
}

// leaderboardEntry es una fila de GET /v1/leaderboard.
type leaderboardEntry struct {
	User          string      `json:"user"`
	WalletAddress string      `json:"walletAddress"`
	UserName      string      `json:"userName"`
	PnL           json.Number `json:"pnl"`
	Vol           json.Number `json:"vol"`
	Rank          json.Number `json:"rank"`
}
