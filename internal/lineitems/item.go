package lineitems

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names an editable line item field.
type Field string

const (
	FieldProduct   Field = "product"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unitPrice"
	FieldDiscount  Field = "discount"
	FieldNote      Field = "note"
)

// Item is one editable row. Total is derived and never set directly.
type Item struct {
	LocalID     string  `json:"localId"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
	Note        string  `json:"note"`
}

func (it *Item) recompute(pricing Pricing) {
	switch pricing {
	case PricingDiscounted:
		it.Total = lineTotal(it.Quantity, it.UnitPrice, it.Discount)
	case PricingExtended:
		it.Total = lineTotal(it.Quantity, it.UnitPrice, 0)
	}
}

// lineTotal computes quantity * unitPrice - discount without float drift.
func lineTotal(quantity, unitPrice, discount float64) float64 {
	gross := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	return gross.Sub(decimal.NewFromFloat(discount)).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sumTotals(items []Item) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Total))
	}
	return sum.InexactFloat64()
}

// parseAmount reads a numeric form value; blank input counts as zero.
func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return v, nil
}
