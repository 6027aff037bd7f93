package calculator

import (
	"errors"

	"TankSentinel/internal/model"
)

// DefaultVATRate is the VAT rate applied to contract prices.
const DefaultVATRate = 0.22

// CalculateVAT computes the contract price breakdown for quantity units at
// unitPrice before VAT. Both inputs must be positive.
func CalculateVAT(quantity, unitPrice, rate float64) (model.VATBreakdown, error) {
	if !(quantity > 0) || !(unitPrice > 0) {
		return model.VATBreakdown{}, errors.New("quantity and unit price must be positive")
	}
	if rate < 0 {
		return model.VATBreakdown{}, errors.New("vat rate must not be negative")
	}
	totalWithout := quantity * unitPrice
	vat := totalWithout * rate
	return model.VATBreakdown{
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		Rate:             rate,
		UnitPriceWithVAT: unitPrice * (1 + rate),
		TotalWithoutVAT:  totalWithout,
		VATAmount:        vat,
		TotalWithVAT:     totalWithout + vat,
	}, nil
}
