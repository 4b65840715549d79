package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoMenu struct {
	collection *mongo.Collection
}

func NewMenuRepository(db *mongo.Database) MenuRepository {
	return &mongoMenu{collection: db.Collection(menuItemsCollection)}
}

func (m *mongoMenu) ListByRestaurant(ctx context.Context, restaurantID, category string) ([]domain.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return []domain.MenuItem{}, nil
	}

	filter := bson.M{"restaurant": oid}
	if category != "" {
		filter["category"] = category
	}
	cur, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	var docs []menuItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}
	out := make([]domain.MenuItem, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (m *mongoMenu) Create(ctx context.Context, item *domain.MenuItem) error {
	restaurant, err := primitive.ObjectIDFromHex(item.RestaurantID)
	if err != nil {
		return ErrRestaurantNotFound
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now

	doc := menuItemDoc{
		Restaurant:   restaurant,
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price,
		Image:        item.Image,
		Category:     item.Category,
		IsVegetarian: item.IsVegetarian,
		IsAvailable:  item.IsAvailable,
		Discount:     item.Discount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}
