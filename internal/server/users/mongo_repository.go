package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// MongoRepository persists users in a MongoDB collection, one document per
// user, keyed by the unique email field.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRepository connects to the document store and ensures the unique
// index on email that backs the duplicate-registration check.
func NewMongoRepository(ctx context.Context, uri, database, collection string) (*MongoRepository, error) {

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo index error: %w", err)
	}

	return &MongoRepository{client: client, collection: coll}, nil
}

// Close disconnects the underlying client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Create(ctx context.Context, user *User) (*User, error) {

	// _id is stored as an ObjectID hex string so the model round-trips
	// through both store backends with a plain string id.
	user.ID = primitive.NewObjectID().Hex()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	return user, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {

	user := &User{}
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return user, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]User, error) {

	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	var list []User
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding users: %w", err)
	}

	return list, nil
}

func (r *MongoRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {

	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error counting users: %w", err)
	}

	return count > 0, nil
}
