package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrders struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrders{collection: db.Collection(ordersCollection)}
}

func (m *mongoOrders) Create(ctx context.Context, order *domain.Order) error {
	restaurant, err := primitive.ObjectIDFromHex(order.RestaurantID)
	if err != nil {
		return ErrRestaurantNotFound
	}
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now

	res, err := m.collection.InsertOne(ctx, orderFromDomain(*order, restaurant))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (m *mongoOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *mongoOrders) GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	return m.findOne(ctx, bson.M{"user": userID, "idempotencyKey": key})
}

func (m *mongoOrders) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return m.list(ctx, bson.M{"user": userID})
}

func (m *mongoOrders) ListAll(ctx context.Context) ([]domain.Order, error) {
	return m.list(ctx, bson.M{})
}

func (m *mongoOrders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now().UTC()}}
	res, err := m.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrOrderNotFound
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *mongoOrders) findOne(ctx context.Context, match bson.M) (*domain.Order, error) {
	orders, err := m.aggregate(ctx, match, 1)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[0], nil
}

func (m *mongoOrders) list(ctx context.Context, match bson.M) ([]domain.Order, error) {
	return m.aggregate(ctx, match, 0)
}

// aggregate reads orders newest first with the restaurant name joined in.
func (m *mongoOrders) aggregate(ctx context.Context, match bson.M, limit int64) ([]domain.Order, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         restaurantsCollection,
			"localField":   "restaurant",
			"foreignField": "_id",
			"as":           "restaurantDoc",
		}}},
		bson.D{{Key: "$set", Value: bson.M{
			"restaurantName": bson.M{"$ifNull": bson.A{bson.M{"$first": "$restaurantDoc.name"}, ""}},
		}}},
		bson.D{{Key: "$unset", Value: "restaurantDoc"}},
	)

	cur, err := m.collection.Aggregate(ctx, pipeline, options.Aggregate())
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	out := make([]domain.Order, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}
