package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userAnalyticsCollection = "user_analytics"

type AnalyticsRepository interface {
	GetAll(ctx context.Context, userID int64) (*models.UserAnalytics, error)
	GetSnapshot(ctx context.Context, userID int64, platform string) (*models.AnalyticsSnapshot, error)
	SaveSnapshot(ctx context.Context, userID int64, platform string, snap *models.AnalyticsSnapshot) error
}

type analyticsRepository struct {
	col *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) AnalyticsRepository {
	return &analyticsRepository{col: db.Collection(userAnalyticsCollection)}
}

func (r *analyticsRepository) GetAll(ctx context.Context, userID int64) (*models.UserAnalytics, error) {
	var ua models.UserAnalytics
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&ua)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &ua, nil
}

func (r *analyticsRepository) GetSnapshot(ctx context.Context, userID int64, platform string) (*models.AnalyticsSnapshot, error) {
	ua, err := r.GetAll(ctx, userID)
	if err != nil || ua == nil {
		return nil, err
	}
	return ua.Platforms[platform], nil
}

func snapshotUpdate(platform string, snap *models.AnalyticsSnapshot, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"platforms." + platform: snap,
			"updated_at":            now,
		},
	}
}

// SaveSnapshot replaces the platform's snapshot in a single write so data and
// timestamp never diverge.
func (r *analyticsRepository) SaveSnapshot(ctx context.Context, userID int64, platform string, snap *models.AnalyticsSnapshot) error {
	now := time.Now().UTC()
	if snap.LastAnalyticsUpdate != nil {
		now = *snap.LastAnalyticsUpdate
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, snapshotUpdate(platform, snap, now), opts)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
