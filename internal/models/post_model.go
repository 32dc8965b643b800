package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
	PostStatusCancelled  = "cancelled"
)

const (
	MediaTypeNone  = "none"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeLink  = "link"
)

const DefaultMaxRetries = 3

type PostContent struct {
	Message   string   `bson:"message" json:"message"`
	Link      string   `bson:"link,omitempty" json:"link,omitempty"`
	MediaURLs []string `bson:"media_urls" json:"media_urls"`
	MediaType string   `bson:"media_type" json:"media_type"`
}

type ScheduledPost struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           int64              `bson:"user_id" json:"user_id"`
	Platform         string             `bson:"platform" json:"platform"`
	Content          PostContent        `bson:"content" json:"content"`
	ScheduledTime    time.Time          `bson:"scheduled_time" json:"scheduled_time"`
	Timezone         string             `bson:"timezone" json:"timezone"`
	Status           string             `bson:"status" json:"status"`
	PublishedAt      *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
	PublishedPostID  string             `bson:"published_post_id,omitempty" json:"published_post_id,omitempty"`
	PublishedPostURL string             `bson:"published_post_url,omitempty" json:"published_post_url,omitempty"`
	ErrorMessage     string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	RetryCount       int                `bson:"retry_count" json:"retry_count"`
	MaxRetries       int                `bson:"max_retries" json:"max_retries"`
	AIGenerated      bool               `bson:"ai_generated" json:"ai_generated"`
	AIPrompt         string             `bson:"ai_prompt,omitempty" json:"ai_prompt,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// ScheduledPostUpdate carries a partial edit; nil fields are left untouched.
type ScheduledPostUpdate struct {
	Message       *string
	Link          *string
	MediaURLs     []string
	MediaType     *string
	ScheduledTime *time.Time
	Timezone      *string
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
