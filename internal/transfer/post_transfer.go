package transfer

import "time"

type CreateScheduledPost struct {
	Platform      string   `json:"platform" validate:"required,oneof=facebook instagram youtube tiktok"`
	Message       string   `json:"message" validate:"required,max=5000"`
	Link          string   `json:"link" validate:"omitempty,url"`
	MediaURLs     []string `json:"media_urls" validate:"max=10"`
	MediaType     string   `json:"media_type" validate:"omitempty,oneof=none image video link"`
	ScheduledTime string   `json:"scheduled_time" validate:"required"`
	Timezone      string   `json:"timezone"`
	AIGenerated   bool     `json:"ai_generated"`
	AIPrompt      string   `json:"ai_prompt" validate:"max=2000"`
}

// UpdateScheduledPost is a partial edit; absent fields stay as they are.
type UpdateScheduledPost struct {
	Message       *string  `json:"message" validate:"omitempty,max=5000"`
	Link          *string  `json:"link" validate:"omitempty,url"`
	MediaURLs     []string `json:"media_urls" validate:"max=10"`
	MediaType     *string  `json:"media_type" validate:"omitempty,oneof=none image video link"`
	ScheduledTime *string  `json:"scheduled_time"`
	Timezone      *string  `json:"timezone"`
}

type ListScheduledPosts struct {
	Status   string `query:"status" validate:"omitempty,oneof=scheduled publishing published failed cancelled"`
	Platform string `query:"platform" validate:"omitempty,oneof=facebook instagram youtube tiktok"`
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit"`
}

// PublishOnce publishes content immediately without storing a scheduled post.
type PublishOnce struct {
	Platform  string   `json:"platform" validate:"required,oneof=facebook instagram youtube tiktok"`
	Message   string   `json:"message" validate:"required,max=5000"`
	Link      string   `json:"link" validate:"omitempty,url"`
	MediaURLs []string `json:"media_urls" validate:"max=10"`
	MediaType string   `json:"media_type" validate:"omitempty,oneof=none image video link"`
}

type PublishResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ScheduledPostPage struct {
	Posts any   `json:"posts"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

type BatchResult struct {
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	RanAt     time.Time `json:"ran_at"`
}
