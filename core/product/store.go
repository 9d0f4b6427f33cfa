package product

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrConflict = errors.New("product was modified concurrently")
)

// Storer is the narrow catalog interface the handlers (and the cart store)
// depend on, so they can run against an in-memory fake in tests.
type Storer interface {
	Create(ctx context.Context, p Product) error
	Fetch(ctx context.Context, id string) (Product, error)
	FetchAll(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("products")}
}

func (s *Store) Create(ctx context.Context, p Product) error {
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (s *Store) Fetch(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("fetching product[%s]: %w", id, err)
	}
	return p, nil
}

func (s *Store) FetchAll(ctx context.Context) ([]Product, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}
	return products, nil
}

// Update persists p only if nobody changed the document since it was read:
// the filter pins the version seen by the caller.
func (s *Store) Update(ctx context.Context, p Product) error {
	filter := bson.M{"_id": p.ID, "version": p.Version}
	update := bson.M{"$set": bson.M{
		"name":        p.Name,
		"price":       p.Price,
		"photo_url":   p.PhotoURL,
		"description": p.Description,
		"updated_at":  p.UpdatedAt,
		"version":     p.Version + 1,
	}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("updating product[%s]: %w", p.ID, err)
	}

	if res.MatchedCount == 0 {
		if _, err := s.Fetch(ctx, p.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting product[%s]: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
