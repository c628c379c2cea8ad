package domain

import "time"

// Fill es un trade histórico ejecutado de la wallet.
type Fill struct {
	ID        string
	MarketID  string // condition id
	TokenID   string
	Outcome   string
	Side      OrderSide
	Price     float64
	Size      float64 // shares
	Timestamp time.Time
	Title     string // question del mercado, si la API lo devuelve
}

// Position es el estado actual de una posición en un (mercado, outcome).
// Solo el reconciler la construye y la muta; el código de display la trata
// como vista de solo lectura.
type Position struct {
	MarketID      string
	TokenID       string
	Outcome       string
	Title         string
	Quantity      float64 // shares actualmente en cartera
	AvgEntryPrice float64 // cost basis promedio ponderado de las compras
	MarkPrice     float64 // precio de referencia actual (midpoint del book)
	RealizedPnL   float64 // acumulado de los cierres parciales
}

// Open reporta si la posición mantiene shares en cartera. Una posición
// cerrada conserva su RealizedPnL acumulado con Quantity 0.
func (p Position) Open() bool { return p.Quantity > 0 }

// UnrealizedPnL devuelve (mark - entry) × quantity.
func (p Position) UnrealizedPnL() float64 {
	return (p.MarkPrice - p.AvgEntryPrice) * p.Quantity
}

// TotalPnL devuelve realized + unrealized.
func (p Position) TotalPnL() float64 {
	return p.RealizedPnL + p.UnrealizedPnL()
}

// MarketValue devuelve el valor actual de la posición a mark price.
func (p Position) MarketValue() float64 {
	return p.MarkPrice * p.Quantity
}

// CostBasis devuelve el coste total de la cantidad en cartera.
func (p Position) CostBasis() float64 {
	return p.AvgEntryPrice * p.Quantity
}
