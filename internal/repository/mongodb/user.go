package mongodb

import (
	"context"
	"errors"
	"fmt"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles the users collection
type UserRepository struct {
	coll *mongo.Collection
}

// Create inserts a user and assigns a new ObjectID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	posts, err := parseIDs(user.Posts)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	oid := primitive.NewObjectID()
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: user.Name},
		{Key: "email", Value: user.Email},
		{Key: "age", Value: user.Age},
		{Key: "image", Value: encodeImage(user.Image)},
		{Key: "posts", Value: posts},
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = oid.Hex()
	user.Posts = hexIDs(posts)
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toModel()
}

// GetByIDs retrieves every user whose id is in ids. Unknown and malformed
// ids are skipped.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := parseID(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// List retrieves all users in natural order
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.find(ctx, bson.M{})
}

// Update overwrites name, email and age, and the image when one is given
func (r *UserRepository) Update(ctx context.Context, id string, fields models.UserFields, image *models.Image) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{
		{Key: "name", Value: fields.Name},
		{Key: "email", Value: fields.Email},
		{Key: "age", Value: fields.Age},
	}
	if image != nil {
		set = append(set, bson.E{Key: "image", Value: encodeImage(*image)})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return doc.toModel()
}

// Delete deletes a user by ID and returns the removed document
func (r *UserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return doc.toModel()
}

func (r *UserRepository) find(ctx context.Context, filter any) ([]*models.User, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*models.User, 0, len(docs))
	for i := range docs {
		user, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
