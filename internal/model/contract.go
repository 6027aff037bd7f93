package model

// VATBreakdown is the price calculation for a single contract line.
type VATBreakdown struct {
	Quantity         float64 `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	Rate             float64 `json:"vat_rate"`
	UnitPriceWithVAT float64 `json:"unit_price_with_vat"`
	TotalWithoutVAT  float64 `json:"total_without_vat"`
	VATAmount        float64 `json:"vat_amount"`
	TotalWithVAT     float64 `json:"total_with_vat"`
}

// ContractRow is one line of a contract pricing table.
type ContractRow struct {
	Name      string       `json:"name"`
	Quantity  float64      `json:"quantity"`
	UnitPrice float64      `json:"unit_price"`
	Result    VATBreakdown `json:"result"`
}
