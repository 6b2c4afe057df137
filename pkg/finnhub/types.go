package finnhub

// Quote is the response of /quote. Finnhub reports an unknown symbol as an
// all-zero quote rather than an error status.
type Quote struct {
	Current       float64 `json:"c"`  // Current price
	Change        float64 `json:"d"`  // Change since previous close
	PercentChange float64 `json:"dp"` // Percent change since previous close
	High          float64 `json:"h"`  // High price of the day
	Low           float64 `json:"l"`  // Low price of the day
	Open          float64 `json:"o"`  // Open price of the day
	PreviousClose float64 `json:"pc"` // Previous close price
	Time          int64   `json:"t"`  // Quote time (seconds since epoch)
}

// CandleResponse is the column-oriented response of /stock/candle.
type CandleResponse struct {
	Status string    `json:"s"` // "ok" or "no_data"
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"`
	Time   []int64   `json:"t"` // Bar open time (seconds since epoch)
}

// errorResponse is the body Finnhub sends with non-200 statuses.
type errorResponse struct {
	Error string `json:"error"`
}
