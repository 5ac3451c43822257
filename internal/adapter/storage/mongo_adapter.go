package storage

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rl1809/product-inventory/internal/core/domain"
)

const colorsCollection = "colors"

type colorDocument struct {
	ID          string `bson:"_id"`
	Description string `bson:"description"`
	Price       int64  `bson:"price"`
	Quantity    int64  `bson:"quantity"`
	PictureURL  string `bson:"picture_url"`
}

func (d colorDocument) toDomain() domain.Item {
	return domain.Item{
		ID:          d.ID,
		Description: d.Description,
		Price:       d.Price,
		Quantity:    d.Quantity,
		PictureURL:  d.PictureURL,
	}
}

// MongoAdapter stores one document per item. Single-document updates are
// atomic in MongoDB, so a filter carrying the quantity guard plus $inc gives
// the conditional decrement without a transaction.
type MongoAdapter struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongoAdapter(client *mongo.Client, dbName string) *MongoAdapter {
	return &MongoAdapter{
		client: client,
		col:    client.Database(dbName).Collection(colorsCollection),
	}
}

func (m *MongoAdapter) Get(ctx context.Context, id string) (domain.Item, error) {
	var doc colorDocument
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Item{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("find color: %w", err)
	}
	return doc.toDomain(), nil
}

func (m *MongoAdapter) List(ctx context.Context) ([]domain.Item, error) {
	cursor, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find colors: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]domain.Item, 0)
	for cursor.Next(ctx) {
		var doc colorDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode color: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate colors: %w", err)
	}
	return items, nil
}

func (m *MongoAdapter) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	if err := in.Validate(); err != nil {
		return domain.Item{}, err
	}

	item := in.WithID(domain.NewItemID())
	_, err := m.col.InsertOne(ctx, colorDocument{
		ID:          item.ID,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
		PictureURL:  item.PictureURL,
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("insert color: %w", err)
	}
	return item, nil
}

func (m *MongoAdapter) ConditionalDecrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReserveAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	filter := bson.M{
		"_id":      id,
		"quantity": bson.M{"$gte": amount},
	}
	update := bson.M{"$inc": bson.M{"quantity": -amount}}

	result, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return domain.NotApplied, fmt.Errorf("decrement quantity: %w", err)
	}
	return domain.OutcomeOf(result.MatchedCount), nil
}

func (m *MongoAdapter) UnconditionalIncrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReleaseAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	filter := bson.M{
		"_id":      id,
		"quantity": bson.M{"$lte": math.MaxInt64 - amount},
	}
	result, err := m.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": amount}})
	if err != nil {
		return domain.NotApplied, fmt.Errorf("increment quantity: %w", err)
	}
	if result.MatchedCount > 0 {
		return domain.Applied, nil
	}

	// Items are never deleted, so an existing id here means the bound failed.
	n, err := m.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return domain.NotApplied, fmt.Errorf("count color: %w", err)
	}
	if n > 0 {
		return domain.NotApplied, domain.QuantityOverflow(amount)
	}
	return domain.NotApplied, nil
}

func (m *MongoAdapter) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}
