package domain

import "time"

// OrderBookSnapshot es el libro de órdenes de un token en un instante dado.
// Inmutable una vez construido: un fetch posterior lo reemplaza, nunca lo muta.
type OrderBookSnapshot struct {
	MarketID  string
	TokenID   string
	FetchedAt time.Time
	Bids      []BookEntry // ordenados mayor a menor precio
	Asks      []BookEntry // ordenados menor a mayor precio
}

// BookEntry es un nivel de precio en el orderbook.
type BookEntry struct {
	Price float64
	Size  float64
}

// Empty devuelve true si el book no tiene ni bids ni asks.
func (ob OrderBookSnapshot) Empty() bool {
	return len(ob.Bids) == 0 && len(ob.Asks) == 0
}

// BestBid devuelve el mejor precio de compra (mayor bid).
// Devuelve 0 si no hay bids.
func (ob OrderBookSnapshot) BestBid() float64 {
	if len(ob.Bids) == 0 {
		return 0
	}
	return ob.Bids[0].Price
}

// BestAsk devuelve el mejor precio de venta (menor ask).
// Devuelve 0 si no hay asks.
func (ob OrderBookSnapshot) BestAsk() float64 {
	if len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price
}

// Midpoint devuelve el punto medio entre best bid y best ask.
// Si falta un lado devuelve el lado disponible; 0 si el book está vacío.
func (ob OrderBookSnapshot) Midpoint() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	switch {
	case bid == 0:
		return ask
	case ask == 0:
		return bid
	}
	return (bid + ask) / 2
}

// Spread devuelve el spread del book (ask - bid).
func (ob OrderBookSnapshot) Spread() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return ask - bid
}

// BidDepthUSDC devuelve el valor total (size × price) del lado bid.
func (ob OrderBookSnapshot) BidDepthUSDC() float64 {
	var total float64
	for _, b := range ob.Bids {
		total += b.Size * b.Price
	}
	return total
}

// AskDepthUSDC devuelve el valor total (size × price) del lado ask.
func (ob OrderBookSnapshot) AskDepthUSDC() float64 {
	var total float64
	for _, a := range ob.Asks {
		total += a.Size * a.Price
	}
	return total
}
