package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

type YoutubeService interface {
	AccountConnector
	TokenRefresher
	AnalyticsFetcher
}

type youtubeService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewYoutubeService(cfg config.Config, sa repository.SocialAccountRepository) YoutubeService {
	return &youtubeService{
		cfg: cfg,
		sa:  sa,
	}
}

func youtubeOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			youtube.YoutubeReadonlyScope,
		},
		Endpoint: google.Endpoint,
	}
}

func (s *youtubeService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		return validationError("code is empty")
	}

	oauth2Config := youtubeOAuthConfig(s.cfg)
	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" || oauth2Config.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if token.RefreshToken == "" {
		err = errors.New("refresh token is empty")
		slog.Info(err.Error())
		return err
	}

	svc, err := youtube.NewService(ctx, option.WithTokenSource(oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return err
	}

	channels, err := svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if len(channels.Items) == 0 {
		return validationError("no youtube channel found for this account")
	}
	channel := channels.Items[0]

	encrypted, err := utils.EncryptTokens(s.cfg.SecretKey, token.AccessToken, token.RefreshToken)
	if err != nil {
		return err
	}

	acc := &models.SocialAccount{
		UserID:         userID,
		Platform:       models.PlatformYoutube,
		AccountID:      channel.Id,
		AccessToken:    encrypted[0],
		RefreshToken:   encrypted[1],
		TokenExpiresAt: token.Expiry,
	}
	if channel.Snippet != nil {
		acc.AccountName = channel.Snippet.Title
		acc.AccountUsername = channel.Snippet.CustomUrl
		if channel.Snippet.Thumbnails != nil && channel.Snippet.Thumbnails.Default != nil {
			acc.ProfilePicture = channel.Snippet.Thumbnails.Default.Url
		}
	}

	_, err = s.sa.Upsert(ctx, nil, acc)
	return err
}

func (s *youtubeService) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	token, err := youtubeOAuthConfig(s.cfg).TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.sa.SetToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		TokenExpiresAt: token.Expiry,
	})
}

func (s *youtubeService) RevokeAccess(ctx context.Context, acc *models.SocialAccount) error {
	token, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	resp, err := newRestClient("", s.cfg.HTTPTimeout).R().
		SetContext(ctx).
		SetFormData(map[string]string{"token": token}).
		Post(googleRevokeURL)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to revoke token, status code: %d", resp.StatusCode())
	}
	return nil
}

func (s *youtubeService) service(ctx context.Context, acc *models.SocialAccount) (*youtube.Service, error) {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return youtube.NewService(ctx, option.WithTokenSource(ts))
}

func (s *youtubeService) FetchAnalytics(ctx context.Context, acc *models.SocialAccount, dr *transfer.DateRange) (*transfer.PlatformAnalytics, error) {
	svc, err := s.service(ctx, acc)
	if err != nil {
		return nil, err
	}

	channels, err := svc.Channels.List([]string{"snippet", "statistics", "contentDetails"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube: %w", err)
	}
	if len(channels.Items) == 0 || channels.Items[0].Statistics == nil {
		return nil, errors.New("youtube: channel statistics unavailable")
	}
	channel := channels.Items[0]

	videos, err := s.recentVideos(ctx, svc, channel, dr)
	if err != nil {
		return nil, err
	}

	stats := channel.Statistics
	summary := models.AnalyticsSummary{
		Followers: int64(stats.SubscriberCount),
		Views:     int64(stats.ViewCount),
		PostCount: int64(stats.VideoCount),
	}
	if !dr.IsZero() {
		summary.Views = 0
	}
	for _, v := range videos {
		if v.Statistics == nil {
			continue
		}
		if !dr.IsZero() {
			summary.Views += int64(v.Statistics.ViewCount)
		}
		summary.Engagement += int64(v.Statistics.LikeCount + v.Statistics.CommentCount)
	}

	data, err := toMap(map[string]any{"channel": channel, "videos": videos})
	if err != nil {
		return nil, err
	}
	return &transfer.PlatformAnalytics{Summary: summary, Data: data}, nil
}

func (s *youtubeService) recentVideos(ctx context.Context, svc *youtube.Service, channel *youtube.Channel, dr *transfer.DateRange) ([]*youtube.Video, error) {
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil {
		return nil, nil
	}

	items, err := svc.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(channel.ContentDetails.RelatedPlaylists.Uploads).
		MaxResults(25).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube: %w", err)
	}

	var ids []string
	for _, item := range items.Items {
		if item.ContentDetails == nil {
			continue
		}
		if !inRange(item.ContentDetails.VideoPublishedAt, dr) {
			continue
		}
		ids = append(ids, item.ContentDetails.VideoId)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	videos, err := svc.Videos.List([]string{"snippet", "statistics"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube: %w", err)
	}
	return videos.Items, nil
}

func inRange(published string, dr *transfer.DateRange) bool {
	if dr.IsZero() {
		return true
	}

	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return false
	}
	if !dr.Since.IsZero() && t.Before(dr.Since) {
		return false
	}
	if !dr.Until.IsZero() && t.After(dr.Until) {
		return false
	}
	return true
}

func GetUserInfo(client *http.Client) (*transfer.GoogleUserInfo, error) {
	response, err := client.Get(googleUserInfoURL)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error fetching user info: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		slog.Info("Unexpected response status")
		return nil, fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	var userInfo transfer.GoogleUserInfo
	if err := json.NewDecoder(response.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error decoding user info: %w", err)
	}

	return &userInfo, nil
}
