package transfer

type CaptionRequest struct {
	Platform string `json:"platform" validate:"required,oneof=facebook instagram youtube tiktok"`
	Topic    string `json:"topic" validate:"required,max=1000"`
	Tone     string `json:"tone" validate:"max=50"`
}

type CaptionResponse struct {
	Caption string `json:"caption"`
	Prompt  string `json:"prompt"`
}

type RecommendationRequest struct {
	Platform string `json:"platform" validate:"required,oneof=facebook instagram youtube tiktok"`
}

type RecommendationResponse struct {
	Platform        string   `json:"platform"`
	Recommendations []string `json:"recommendations"`
}
