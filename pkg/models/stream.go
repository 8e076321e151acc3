package models

// Trade is one trade print from the streaming provider. Field names follow
// the provider's compact wire format.
type Trade struct {
	Symbol    string  `json:"s"`
	Price     float64 `json:"p"`
	Timestamp int64   `json:"t"` // unix millis
	Volume    float64 `json:"v"`
}

// TradeFrame is an inbound frame from the streaming feed. Type is "trade"
// for price data; "ping" and "error" frames also arrive on the same socket.
type TradeFrame struct {
	Type string  `json:"type"`
	Data []Trade `json:"data"`
	Msg  string  `json:"msg,omitempty"`
}

// SubscribeFrame is the per-symbol subscription message sent upstream after
// the connection is established.
type SubscribeFrame struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// PriceDelta is the per-symbol payload of a push update.
type PriceDelta struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// PriceUpdateEvent is the broadcast unit handed to the fan-out hub: one
// event per inbound trade frame, covering every symbol that ticked in it.
type PriceUpdateEvent struct {
	Type string                `json:"type"`
	Data map[string]PriceDelta `json:"data"`
}
