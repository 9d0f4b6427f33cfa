package cart

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
	ErrConflict     = errors.New("cart was modified concurrently")
)

// Repository is the narrow document-collection interface of the cart store.
// Update and Delete are conditional on the version last read; they return
// ErrConflict when another writer got there first.
type Repository interface {
	Fetch(ctx context.Context, userID string) (Cart, error)
	FetchByID(ctx context.Context, id string) (Cart, error)
	FetchAll(ctx context.Context) ([]Cart, error)
	Insert(ctx context.Context, crt Cart) error
	Update(ctx context.Context, crt Cart) error
	Delete(ctx context.Context, userID string, version int) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByID(ctx context.Context, id string) error
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection("carts")}
}

func (m *MongoRepository) Fetch(ctx context.Context, userID string) (Cart, error) {
	var crt Cart
	err := m.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&crt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("fetching cart of user[%s]: %w", userID, err)
	}
	return crt, nil
}

func (m *MongoRepository) FetchByID(ctx context.Context, id string) (Cart, error) {
	var crt Cart
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&crt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("fetching cart[%s]: %w", id, err)
	}
	return crt, nil
}

// FetchAll drains the whole collection through one cursor so the aggregation
// works on a single logical read.
func (m *MongoRepository) FetchAll(ctx context.Context) ([]Cart, error) {
	cur, err := m.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing carts: %w", err)
	}

	var carts []Cart
	if err := cur.All(ctx, &carts); err != nil {
		return nil, fmt.Errorf("decoding carts: %w", err)
	}
	return carts, nil
}

// Insert creates the cart of a user that has none. The unique index on
// user_id turns a concurrent first-add into ErrConflict so the caller can
// re-read and merge.
func (m *MongoRepository) Insert(ctx context.Context, crt Cart) error {
	if _, err := m.coll.InsertOne(ctx, crt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting cart of user[%s]: %w", crt.UserID, err)
	}
	return nil
}

func (m *MongoRepository) Update(ctx context.Context, crt Cart) error {
	filter := bson.M{"user_id": crt.UserID, "version": crt.Version}
	update := bson.M{"$set": bson.M{
		"items":      crt.Items,
		"total":      crt.Total,
		"updated_at": crt.UpdatedAt,
		"version":    crt.Version + 1,
	}}

	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("updating cart of user[%s]: %w", crt.UserID, err)
	}

	if res.MatchedCount == 0 {
		if _, err := m.Fetch(ctx, crt.UserID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Delete removes the cart only if it is still at the given version. Used
// when the last item is removed: the cart must not survive empty, but a
// concurrent add must not be wiped either.
func (m *MongoRepository) Delete(ctx context.Context, userID string, version int) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"user_id": userID, "version": version})
	if err != nil {
		return fmt.Errorf("deleting cart of user[%s]: %w", userID, err)
	}

	if res.DeletedCount == 0 {
		if _, err := m.Fetch(ctx, userID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func (m *MongoRepository) DeleteByUser(ctx context.Context, userID string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("deleting cart of user[%s]: %w", userID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting cart[%s]: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
