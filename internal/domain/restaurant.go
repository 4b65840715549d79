package domain

import (
	"encoding/json"
	"errors"
	"time"
)

type Address struct {
	Street    string   `json:"street,omitempty"`
	City      string   `json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Restaurant struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	Logo         string    `json:"logo"`
	Rating       float64   `json:"rating"`
	DeliveryTime string    `json:"deliveryTime"`
	DeliveryFee  float64   `json:"deliveryFee"`
	MinimumOrder float64   `json:"minimumOrder"`
	Category     string    `json:"category"`
	CuisineType  []string  `json:"cuisineType"`
	IsOpen       bool      `json:"isOpen"`
	Address      Address   `json:"address"`
	OpeningHours string    `json:"openingHours"`
	IsPopular    bool      `json:"isPopular"`
	Discount     float64   `json:"discount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Ref returns the display fields a cart keeps for its owning restaurant.
func (r Restaurant) Ref() RestaurantRef {
	return RestaurantRef{
		ID:           r.ID,
		Name:         r.Name,
		Logo:         r.Logo,
		DeliveryFee:  r.DeliveryFee,
		DeliveryTime: r.DeliveryTime,
	}
}

// RestaurantDetail is a restaurant together with its menu.
type RestaurantDetail struct {
	Restaurant
	MenuItems []MenuItem `json:"menuItems"`
}

type MenuItem struct {
	ID           string    `json:"_id"`
	RestaurantID string    `json:"restaurant"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Image        string    `json:"image"`
	Category     string    `json:"category"`
	IsVegetarian bool      `json:"isVegetarian"`
	IsAvailable  bool      `json:"isAvailable"`
	Discount     float64   `json:"discount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts the restaurant either as an id string or as a populated object.
func (m *MenuItem) UnmarshalJSON(data []byte) error {
	type plain MenuItem
	var raw struct {
		plain
		RestaurantID json.RawMessage `json:"restaurant"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MenuItem(raw.plain)
	id, err := referenceID(raw.RestaurantID)
	if err != nil {
		return err
	}
	m.RestaurantID = id
	return nil
}

// Category is a restaurant category. The API serves it either as a bare name or as
// {name, icon}; both forms decode into this one type.
type Category struct {
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

var ErrInvalidCategory = errors.New("category must be a string or an object with a name")

func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Category{Name: name}
		return nil
	}

	var obj struct {
		Name string  `json:"name"`
		Icon *string `json:"icon"`
	}
	if err := json.Unmarshal(data, &obj); err != nil || obj.Name == "" {
		return ErrInvalidCategory
	}
	*c = Category{Name: obj.Name, Icon: obj.Icon}
	return nil
}

// referenceID reads a reference that is either an id string or an object carrying _id.
func referenceID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	return obj.ID, nil
}
