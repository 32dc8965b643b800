package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scheduledPostsCollection = "scheduled_posts"

type ScheduledPostFilter struct {
	UserID   int64
	Status   string
	Platform string
	Page     int64
	Limit    int64
}

type ScheduledPostRepository interface {
	Create(ctx context.Context, post *models.ScheduledPost) (string, error)
	GetByID(ctx context.Context, id string) (*models.ScheduledPost, error)
	List(ctx context.Context, f ScheduledPostFilter) ([]*models.ScheduledPost, int64, error)
	UpdateScheduled(ctx context.Context, id string, userID int64, u *models.ScheduledPostUpdate, now time.Time) (*models.ScheduledPost, error)
	Cancel(ctx context.Context, id string, userID int64, now time.Time) (bool, error)
	FindDue(ctx context.Context, now time.Time, limit int64) ([]*models.ScheduledPost, error)
	Claim(ctx context.Context, id string, now time.Time) (*models.ScheduledPost, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time, postID, postURL string) error
	MarkFailed(ctx context.Context, id string, status string, retryCount int, errMsg string, now time.Time) error
}

type scheduledPostRepository struct {
	col *mongo.Collection
}

func NewScheduledPostRepository(db *mongo.Database) ScheduledPostRepository {
	return &scheduledPostRepository{col: db.Collection(scheduledPostsCollection)}
}

// EnsureScheduledPostIndexes creates the indexes the due selector and listing rely on.
func EnsureScheduledPostIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(scheduledPostsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *scheduledPostRepository) Create(ctx context.Context, post *models.ScheduledPost) (string, error) {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, post); err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return post.ID.Hex(), nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var post models.ScheduledPost
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

func listFilter(f ScheduledPostFilter) bson.M {
	filter := bson.M{"user_id": f.UserID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Platform != "" {
		filter["platform"] = f.Platform
	}
	return filter
}

func (r *scheduledPostRepository) List(ctx context.Context, f ScheduledPostFilter) ([]*models.ScheduledPost, int64, error) {
	filter := listFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_time", Value: -1}}).
		SetSkip((f.Page - 1) * f.Limit).
		SetLimit(f.Limit)

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	posts := []*models.ScheduledPost{}
	if err = cursor.All(ctx, &posts); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	return posts, total, nil
}

func updateSet(u *models.ScheduledPostUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Message != nil {
		set["content.message"] = *u.Message
	}
	if u.Link != nil {
		set["content.link"] = *u.Link
	}
	if u.MediaURLs != nil {
		set["content.media_urls"] = u.MediaURLs
	}
	if u.MediaType != nil {
		set["content.media_type"] = *u.MediaType
	}
	if u.ScheduledTime != nil {
		set["scheduled_time"] = *u.ScheduledTime
	}
	if u.Timezone != nil {
		set["timezone"] = *u.Timezone
	}
	return set
}

// UpdateScheduled applies u only while the post is still scheduled. A nil post means nothing matched.
func (r *scheduledPostRepository) UpdateScheduled(ctx context.Context, id string, userID int64, u *models.ScheduledPostUpdate, now time.Time) (*models.ScheduledPost, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	filter := bson.M{"_id": oid, "user_id": userID, "status": models.PostStatusScheduled}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.ScheduledPost
	err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": updateSet(u, now)}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

func (r *scheduledPostRepository) Cancel(ctx context.Context, id string, userID int64, now time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	filter := bson.M{"_id": oid, "user_id": userID, "status": models.PostStatusScheduled}
	update := bson.M{"$set": bson.M{"status": models.PostStatusCancelled, "updated_at": now}}

	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func dueFilter(now time.Time) bson.M {
	return bson.M{
		"status":         models.PostStatusScheduled,
		"scheduled_time": bson.M{"$lte": now},
	}
}

func dueFindOptions(limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "scheduled_time", Value: 1}}).
		SetLimit(limit)
}

func (r *scheduledPostRepository) FindDue(ctx context.Context, now time.Time, limit int64) ([]*models.ScheduledPost, error) {
	cursor, err := r.col.Find(ctx, dueFilter(now), dueFindOptions(limit))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var posts []*models.ScheduledPost
	if err = cursor.All(ctx, &posts); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

// Claim flips scheduled -> publishing in one conditional update. It returns nil when
// another caller got there first or the post is no longer scheduled.
func (r *scheduledPostRepository) Claim(ctx context.Context, id string, now time.Time) (*models.ScheduledPost, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	filter := bson.M{"_id": oid, "status": models.PostStatusScheduled}
	update := bson.M{"$set": bson.M{"status": models.PostStatusPublishing, "updated_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.ScheduledPost
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

func (r *scheduledPostRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time, postID, postURL string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": models.PostStatusPublishing}
	update := bson.M{
		"$set": bson.M{
			"status":             models.PostStatusPublished,
			"published_at":       publishedAt,
			"published_post_id":  postID,
			"published_post_url": postURL,
			"error_message":      "",
			"updated_at":         publishedAt,
		},
	}
	return r.updateOne(ctx, filter, update)
}

func (r *scheduledPostRepository) MarkFailed(ctx context.Context, id string, status string, retryCount int, errMsg string, now time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": models.PostStatusPublishing}
	update := bson.M{
		"$set": bson.M{
			"status":        status,
			"retry_count":   retryCount,
			"error_message": errMsg,
			"updated_at":    now,
		},
	}
	return r.updateOne(ctx, filter, update)
}

func (r *scheduledPostRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
