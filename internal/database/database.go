package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoDB = "emotions"

// ConnectMongo connects to MongoDB and returns the database named in the URI
// path, or "emotions" when the URI has none.
func ConnectMongo(ctx context.Context, mongoURI string) (*mongo.Client, *mongo.Database, error) {
	// Use longer timeout for Atlas connections
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}

	return client, client.Database(mongoDatabaseName(mongoURI)), nil
}

// mongoDatabaseName extracts the database from mongodb://host/db?opts.
func mongoDatabaseName(mongoURI string) string {
	rest := mongoURI
	if i := strings.Index(rest, "://"); i != -1 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i == -1 {
		return defaultMongoDB
	}
	name := strings.SplitN(rest[i+1:], "?", 2)[0]
	if name == "" {
		return defaultMongoDB
	}
	return name
}

// DisconnectMongo closes the MongoDB client.
func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
