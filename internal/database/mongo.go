package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/socialpulse/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo dials, pings and returns the named database.
func ConnectMongo(uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	slog.Info("mongo connected", "db", database)
	return client, client.Database(database), nil
}
