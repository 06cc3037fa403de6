// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package benchmark holds the synthetic records the codec benchmarks
// encode and decode.
package benchmark

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Venue is a nested struct column.
type Venue struct {
	Code    string `arrow:"code"`
	Country string `arrow:"country"`
}

// Trade is the benchmark row: scalars, an enum, a timestamp, a nullable
// string, a list and a map.
type Trade struct {
	ID       uint64            `arrow:"id"`
	Symbol   string            `arrow:"symbol,enum"`
	Side     Side              `arrow:"side,enum"`
	Price    float64           `arrow:"price"`
	Quantity int32             `arrow:"quantity"`
	At       time.Time         `arrow:"at"`
	Note     *string           `arrow:"note"`
	Venue    Venue             `arrow:"venue"`
	Fills    []float64         `arrow:"fills"`
	Tags     map[string]string `arrow:"tags"`
}

// TradeFields are the traced fields of Trade.
var TradeFields = schema.MustFieldsFor[Trade]()

var (
	symbols = []string{"AAPL", "MSFT", "GOOG", "AMZN", "NVDA", "META", "TSLA", "ORCL"}
	venues  = []Venue{{Code: "XNAS", Country: "US"}, {Code: "XNYS", Country: "US"}, {Code: "XLON", Country: "GB"}}
	epoch   = time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)
)

// Trades returns n deterministic trades for seed.
func Trades(n int, seed uint64) []Trade {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Trade, n)
	for i := range out {
		t := Trade{
			ID:       uint64(i),
			Symbol:   symbols[r.IntN(len(symbols))],
			Side:     SideBuy,
			Price:    float64(r.IntN(100_000)) / 100,
			Quantity: int32(1 + r.IntN(1000)),
			At:       epoch.Add(time.Duration(i) * time.Millisecond),
			Venue:    venues[r.IntN(len(venues))],
			Fills:    make([]float64, r.IntN(4)),
		}
		if r.IntN(2) == 1 {
			t.Side = SideSell
		}
		if r.IntN(10) == 0 {
			note := fmt.Sprintf("manual %d", i)
			t.Note = &note
		}
		for j := range t.Fills {
			t.Fills[j] = t.Price + float64(j)/100
		}
		if r.IntN(4) == 0 {
			t.Tags = map[string]string{"desk": "d" + fmt.Sprint(r.IntN(5))}
		}
		out[i] = t
	}
	return out
}

// Record returns t as a dynamic record.
func (t Trade) Record() serde.Record {
	var note any
	if t.Note != nil {
		note = *t.Note
	}
	fills := make([]any, len(t.Fills))
	for i, f := range t.Fills {
		fills[i] = f
	}
	tags := make(serde.Map, 0, len(t.Tags))
	for k, v := range t.Tags {
		tags = append(tags, serde.Entry{Key: k, Value: v})
	}
	return serde.Record{
		{Name: "id", Value: t.ID},
		{Name: "symbol", Value: t.Symbol},
		{Name: "side", Value: string(t.Side)},
		{Name: "price", Value: t.Price},
		{Name: "quantity", Value: t.Quantity},
		{Name: "at", Value: t.At.UTC().Format(serde.UTCLayout)},
		{Name: "note", Value: note},
		{Name: "venue", Value: serde.Record{{Name: "code", Value: t.Venue.Code}, {Name: "country", Value: t.Venue.Country}}},
		{Name: "fills", Value: fills},
		{Name: "tags", Value: tags},
	}
}

// Records returns the trades as dynamic records.
func Records(trades []Trade) []any {
	out := make([]any, len(trades))
	for i, t := range trades {
		out[i] = t.Record()
	}
	return out
}
