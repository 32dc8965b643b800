package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
)

const (
	maxRecommendations = 5

	captionSystemPrompt = "You write social media captions for small businesses. " +
		"Reply with the caption text only, no preamble and no surrounding quotes."

	recommendationSystemPrompt = "You are a social media analyst. " +
		"Reply with short, actionable recommendations, one per line."
)

var captionTemplate = prompts.NewPromptTemplate(
	"Write a {{.platform}} post caption about: {{.topic}}\n"+
		"Tone: {{.tone}}\n"+
		"{{if .category}}Business category: {{.category}}\n{{end}}"+
		"Keep it under {{.limit}} characters and add at most three relevant hashtags.",
	[]string{"platform", "topic", "tone", "category", "limit"},
)

var recommendationTemplate = prompts.NewPromptTemplate(
	"Platform: {{.platform}}\n"+
		"Followers: {{.followers}}\nViews: {{.views}}\nEngagement: {{.engagement}}\nPosts: {{.posts}}\n"+
		"{{if .category}}Business category: {{.category}}\n{{end}}"+
		"Give up to {{.count}} recommendations to grow reach and engagement.",
	[]string{"platform", "followers", "views", "engagement", "posts", "category", "count"},
)

var ErrAINotConfigured = fmt.Errorf("%w: AI generation is not configured", ErrUpstream)

// NewLLM connects to Gemini through its OpenAI-compatible endpoint. It returns nil without an API key.
func NewLLM(cfg config.Config) (llms.Model, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, nil
	}

	return openai.New(
		openai.WithModel(cfg.Gemini.Model),
		openai.WithToken(cfg.Gemini.APIKey),
		openai.WithBaseURL(cfg.Gemini.BaseURL),
	)
}

type AIService interface {
	GenerateCaption(ctx context.Context, userID int64, in *transfer.CaptionRequest) (*transfer.CaptionResponse, error)
	Recommendations(ctx context.Context, userID int64, in *transfer.RecommendationRequest) (*transfer.RecommendationResponse, error)
}

type aiService struct {
	llm       llms.Model
	settings  repository.SettingsRepository
	snapshots repository.AnalyticsRepository
}

func NewAIService(llm llms.Model, settings repository.SettingsRepository, snapshots repository.AnalyticsRepository) AIService {
	return &aiService{
		llm:       llm,
		settings:  settings,
		snapshots: snapshots,
	}
}

func (s *aiService) generate(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	if s.llm == nil {
		return "", ErrAINotConfigured
	}

	resp, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithTemperature(temperature))
	if err != nil {
		slog.Error("llm request failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (s *aiService) GenerateCaption(ctx context.Context, userID int64, in *transfer.CaptionRequest) (*transfer.CaptionResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError("%s", err.Error())
	}

	tone, category := in.Tone, ""
	if settings, ok, err := s.settings.GetByUserID(ctx, userID); err == nil && ok {
		category = settings.Category
		if tone == "" {
			tone = settings.Tone
		}
	}
	if tone == "" {
		tone = "friendly"
	}

	prompt, err := captionTemplate.Format(map[string]any{
		"platform": in.Platform,
		"topic":    in.Topic,
		"tone":     tone,
		"category": category,
		"limit":    maxMessageLength,
	})
	if err != nil {
		return nil, err
	}

	caption, err := s.generate(ctx, captionSystemPrompt, prompt, 0.8)
	if err != nil {
		return nil, err
	}

	return &transfer.CaptionResponse{Caption: strings.Trim(caption, "\"'"), Prompt: in.Topic}, nil
}

func (s *aiService) Recommendations(ctx context.Context, userID int64, in *transfer.RecommendationRequest) (*transfer.RecommendationResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError("%s", err.Error())
	}

	snap, err := s.snapshots.GetSnapshot(ctx, userID, in.Platform)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: no analytics cached for %s yet", ErrNotFound, in.Platform)
	}

	category := ""
	if settings, ok, err := s.settings.GetByUserID(ctx, userID); err == nil && ok {
		category = settings.Category
	}

	prompt, err := recommendationTemplate.Format(map[string]any{
		"platform":   in.Platform,
		"followers":  snap.Summary.Followers,
		"views":      snap.Summary.Views,
		"engagement": snap.Summary.Engagement,
		"posts":      snap.Summary.PostCount,
		"category":   category,
		"count":      maxRecommendations,
	})
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, recommendationSystemPrompt, prompt, 0.4)
	if err != nil {
		return nil, err
	}

	recs := parseRecommendations(text)
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no recommendations returned", ErrUpstream)
	}
	return &transfer.RecommendationResponse{Platform: in.Platform, Recommendations: recs}, nil
}

// parseRecommendations splits a model reply into list items, dropping bullets and numbering.
func parseRecommendations(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}
