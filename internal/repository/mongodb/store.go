// Package mongodb stores users and events in MongoDB, using the collection
// and field names already in use so existing databases can be served as
// they are.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	usersCollection  = "users"
	eventsCollection = "events"

	// defaultDatabase is used when neither the config nor the URI names one.
	defaultDatabase = "test"
)

// Store is a connected MongoDB database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri and verifies it with a ping. When database
// is empty the database named in the URI path is used.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = databaseFromURI(uri)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

func databaseFromURI(uri string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return defaultDatabase
	}
	return cs.Database
}

// Users returns the user collection
func (s *Store) Users() *UserRepository {
	return &UserRepository{coll: s.db.Collection(usersCollection)}
}

// Events returns the event collection
func (s *Store) Events() *EventRepository {
	return &EventRepository{coll: s.db.Collection(eventsCollection)}
}

// Ping checks the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
