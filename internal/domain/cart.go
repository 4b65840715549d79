package domain

import "github.com/shopspring/decimal"

// RestaurantRef is the restaurant that currently owns a cart.
type RestaurantRef struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Logo         string  `json:"logo"`
	DeliveryFee  float64 `json:"deliveryFee"`
	DeliveryTime string  `json:"deliveryTime"`
}

type LineItem struct {
	ItemID    string  `json:"_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	ImageRef  string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// CartState is a point-in-time copy of a cart. Restaurant is nil iff Lines is empty.
type CartState struct {
	Restaurant *RestaurantRef `json:"restaurant"`
	Lines      []LineItem     `json:"lines"`
}

func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// PricedLine is anything that contributes price * quantity to a subtotal.
type PricedLine interface {
	LinePrice() float64
	LineQuantity() int
}

func (l LineItem) LinePrice() float64 { return l.UnitPrice }
func (l LineItem) LineQuantity() int  { return l.Quantity }

// ComputeTotals sums lines in decimal arithmetic and rounds every figure to two places.
func ComputeTotals[L PricedLine](lines []L, deliveryFee, discount float64) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.LinePrice()).Mul(decimal.NewFromInt(int64(l.LineQuantity()))))
	}
	fee := decimal.NewFromFloat(deliveryFee)
	disc := decimal.NewFromFloat(discount)
	total := subtotal.Add(fee).Sub(disc)

	return Totals{
		Subtotal:    subtotal.Round(2).InexactFloat64(),
		DeliveryFee: fee.Round(2).InexactFloat64(),
		Discount:    disc.Round(2).InexactFloat64(),
		Total:       total.Round(2).InexactFloat64(),
	}
}

// SameAmount reports whether two money amounts are equal to the cent.
func SameAmount(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
