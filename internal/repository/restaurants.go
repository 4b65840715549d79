package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRestaurants struct {
	collection *mongo.Collection
}

func NewRestaurantRepository(db *mongo.Database) RestaurantRepository {
	return &mongoRestaurants{collection: db.Collection(restaurantsCollection)}
}

// List returns matching restaurants, newest first. Search is a case-insensitive
// substring match on the name.
func (m *mongoRestaurants) List(ctx context.Context, f RestaurantFilter) ([]domain.Restaurant, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	if f.Popular {
		filter["isPopular"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	var docs []restaurantDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode restaurants: %w", err)
	}
	out := make([]domain.Restaurant, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (m *mongoRestaurants) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRestaurantNotFound
	}

	var doc restaurantDoc
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	r := doc.toDomain()
	return &r, nil
}

// Create inserts r and fills in its id and timestamps.
func (m *mongoRestaurants) Create(ctx context.Context, r *domain.Restaurant) error {
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	res, err := m.collection.InsertOne(ctx, restaurantFromDomain(*r))
	if err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	r.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}
