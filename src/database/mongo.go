package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB represents a MongoDB client bound to one database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	logger   *logrus.Logger
}

// NewMongoDB connects to MongoDB and pings the primary
func NewMongoDB(ctx context.Context, uri, dbName string, logger *logrus.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.WithField("database", dbName).Info("MongoDBに接続しました")

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
		logger:   logger,
	}, nil
}

// Close disconnects the client
func (m *MongoDB) Close(ctx context.Context) error {
	m.logger.Info("MongoDB接続を閉じています")
	return m.Client.Disconnect(ctx)
}

// Health checks mongo health
func (m *MongoDB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return m.Client.Ping(ctx, readpref.Primary())
}
