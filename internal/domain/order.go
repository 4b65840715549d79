package domain

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusOnTheWay  OrderStatus = "On the way"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOnTheWay, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCash || p == PaymentCard || p == PaymentOnline
}

type DeliveryAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderItem struct {
	MenuItem string  `json:"menuItem"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// UnmarshalJSON accepts menuItem either as an id or as a populated object.
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	type plain OrderItem
	var raw struct {
		plain
		MenuItem json.RawMessage `json:"menuItem"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = OrderItem(raw.plain)
	id, err := referenceID(raw.MenuItem)
	if err != nil {
		return err
	}
	i.MenuItem = id
	return nil
}

func (i OrderItem) LinePrice() float64 { return i.Price }
func (i OrderItem) LineQuantity() int  { return i.Quantity }

// OrderRequest is the body of an order-create call. It is built once per checkout
// attempt and not modified afterwards. A nil DeliveryFee lets the server pick the
// restaurant's fee; zero means free delivery.
type OrderRequest struct {
	Restaurant      string          `json:"restaurant"`
	Items           []OrderItem     `json:"items"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Subtotal        float64         `json:"subtotal"`
	DeliveryFee     *float64        `json:"deliveryFee,omitempty"`
	Discount        float64         `json:"discount"`
	TotalAmount     float64         `json:"totalAmount"`
	Notes           string          `json:"notes"`
}

type Order struct {
	ID                    string          `json:"_id"`
	UserID                string          `json:"user"`
	RestaurantID          string          `json:"restaurant"`
	RestaurantName        string          `json:"restaurantName,omitempty"`
	Items                 []OrderItem     `json:"items"`
	DeliveryAddress       DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod         PaymentMethod   `json:"paymentMethod"`
	Subtotal              float64         `json:"subtotal"`
	DeliveryFee           float64         `json:"deliveryFee"`
	Discount              float64         `json:"discount"`
	TotalAmount           float64         `json:"totalAmount"`
	Status                OrderStatus     `json:"status"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime"`
	Notes                 string          `json:"notes"`
	IdempotencyKey        string          `json:"-"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// UnmarshalJSON accepts user and restaurant either as ids or as populated objects.
// A populated restaurant also fills RestaurantName.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var raw struct {
		plain
		UserID       json.RawMessage `json:"user"`
		RestaurantID json.RawMessage `json:"restaurant"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Order(raw.plain)

	var err error
	if o.UserID, err = referenceID(raw.UserID); err != nil {
		return err
	}
	if o.RestaurantID, err = referenceID(raw.RestaurantID); err != nil {
		return err
	}
	var populated struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw.RestaurantID, &populated) == nil && populated.Name != "" {
		o.RestaurantName = populated.Name
	}
	return nil
}
