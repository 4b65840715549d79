package repository

import (
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type restaurantDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description"`
	Image        string             `bson:"image"`
	Logo         string             `bson:"logo"`
	Rating       float64            `bson:"rating"`
	DeliveryTime string             `bson:"deliveryTime"`
	DeliveryFee  float64            `bson:"deliveryFee"`
	MinimumOrder float64            `bson:"minimumOrder"`
	Category     string             `bson:"category"`
	CuisineType  []string           `bson:"cuisineType,omitempty"`
	IsOpen       bool               `bson:"isOpen"`
	Address      domain.Address     `bson:"address"`
	OpeningHours string             `bson:"openingHours"`
	IsPopular    bool               `bson:"isPopular"`
	Discount     float64            `bson:"discount"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d restaurantDoc) toDomain() domain.Restaurant {
	return domain.Restaurant{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Description:  d.Description,
		Image:        d.Image,
		Logo:         d.Logo,
		Rating:       d.Rating,
		DeliveryTime: d.DeliveryTime,
		DeliveryFee:  d.DeliveryFee,
		MinimumOrder: d.MinimumOrder,
		Category:     d.Category,
		CuisineType:  d.CuisineType,
		IsOpen:       d.IsOpen,
		Address:      d.Address,
		OpeningHours: d.OpeningHours,
		IsPopular:    d.IsPopular,
		Discount:     d.Discount,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func restaurantFromDomain(r domain.Restaurant) restaurantDoc {
	return restaurantDoc{
		Name:         r.Name,
		Description:  r.Description,
		Image:        r.Image,
		Logo:         r.Logo,
		Rating:       r.Rating,
		DeliveryTime: r.DeliveryTime,
		DeliveryFee:  r.DeliveryFee,
		MinimumOrder: r.MinimumOrder,
		Category:     r.Category,
		CuisineType:  r.CuisineType,
		IsOpen:       r.IsOpen,
		Address:      r.Address,
		OpeningHours: r.OpeningHours,
		IsPopular:    r.IsPopular,
		Discount:     r.Discount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type menuItemDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Restaurant   primitive.ObjectID `bson:"restaurant"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description"`
	Price        float64            `bson:"price"`
	Image        string             `bson:"image"`
	Category     string             `bson:"category"`
	IsVegetarian bool               `bson:"isVegetarian"`
	IsAvailable  bool               `bson:"isAvailable"`
	Discount     float64            `bson:"discount"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d menuItemDoc) toDomain() domain.MenuItem {
	return domain.MenuItem{
		ID:           d.ID.Hex(),
		RestaurantID: d.Restaurant.Hex(),
		Name:         d.Name,
		Description:  d.Description,
		Price:        d.Price,
		Image:        d.Image,
		Category:     d.Category,
		IsVegetarian: d.IsVegetarian,
		IsAvailable:  d.IsAvailable,
		Discount:     d.Discount,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type deliveryAddressDoc struct {
	Street     string `bson:"street"`
	City       string `bson:"city"`
	PostalCode string `bson:"postalCode,omitempty"`
	Country    string `bson:"country"`
}

type orderItemDoc struct {
	MenuItem string  `bson:"menuItem"`
	Name     string  `bson:"name"`
	Quantity int     `bson:"quantity"`
	Price    float64 `bson:"price"`
}

type orderDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	User                  string             `bson:"user"`
	Restaurant            primitive.ObjectID `bson:"restaurant"`
	RestaurantName        string             `bson:"restaurantName,omitempty"`
	Items                 []orderItemDoc     `bson:"items"`
	DeliveryAddress       deliveryAddressDoc `bson:"deliveryAddress"`
	PaymentMethod         string             `bson:"paymentMethod"`
	Subtotal              float64            `bson:"subtotal"`
	DeliveryFee           float64            `bson:"deliveryFee"`
	Discount              float64            `bson:"discount"`
	TotalAmount           float64            `bson:"totalAmount"`
	Status                string             `bson:"status"`
	EstimatedDeliveryTime string             `bson:"estimatedDeliveryTime"`
	Notes                 string             `bson:"notes"`
	IdempotencyKey        string             `bson:"idempotencyKey,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt"`
}

func (d orderDoc) toDomain() domain.Order {
	items := make([]domain.OrderItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = domain.OrderItem{MenuItem: it.MenuItem, Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return domain.Order{
		ID:             d.ID.Hex(),
		UserID:         d.User,
		RestaurantID:   d.Restaurant.Hex(),
		RestaurantName: d.RestaurantName,
		Items:          items,
		DeliveryAddress: domain.DeliveryAddress{
			Street:     d.DeliveryAddress.Street,
			City:       d.DeliveryAddress.City,
			PostalCode: d.DeliveryAddress.PostalCode,
			Country:    d.DeliveryAddress.Country,
		},
		PaymentMethod:         domain.PaymentMethod(d.PaymentMethod),
		Subtotal:              d.Subtotal,
		DeliveryFee:           d.DeliveryFee,
		Discount:              d.Discount,
		TotalAmount:           d.TotalAmount,
		Status:                domain.OrderStatus(d.Status),
		EstimatedDeliveryTime: d.EstimatedDeliveryTime,
		Notes:                 d.Notes,
		IdempotencyKey:        d.IdempotencyKey,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func orderFromDomain(o domain.Order, restaurant primitive.ObjectID) orderDoc {
	items := make([]orderItemDoc, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemDoc{MenuItem: it.MenuItem, Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return orderDoc{
		User:       o.UserID,
		Restaurant: restaurant,
		Items:      items,
		DeliveryAddress: deliveryAddressDoc{
			Street:     o.DeliveryAddress.Street,
			City:       o.DeliveryAddress.City,
			PostalCode: o.DeliveryAddress.PostalCode,
			Country:    o.DeliveryAddress.Country,
		},
		PaymentMethod:         string(o.PaymentMethod),
		Subtotal:              o.Subtotal,
		DeliveryFee:           o.DeliveryFee,
		Discount:              o.Discount,
		TotalAmount:           o.TotalAmount,
		Status:                string(o.Status),
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
		Notes:                 o.Notes,
		IdempotencyKey:        o.IdempotencyKey,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}
