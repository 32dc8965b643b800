package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
)

const (
	tiktokAPIURL = "https://open.tiktokapis.com"
	tiktokScopes = "user.info.basic,user.info.profile,user.info.stats,video.list"
)

type TiktokService interface {
	AccountConnector
	TokenRefresher
	AnalyticsFetcher
}

type tiktokService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	client *resty.Client
}

func NewTiktokService(cfg config.Config, sa repository.SocialAccountRepository) TiktokService {
	return &tiktokService{
		cfg:    cfg,
		sa:     sa,
		client: newRestClient(tiktokAPIURL, cfg.HTTPTimeout),
	}
}

func tiktokError(resp *resty.Response, e transfer.TiktokError) error {
	if e.Code != "" && e.Code != "ok" {
		return fmt.Errorf("tiktok: %s (%s)", e.Message, e.Code)
	}
	if resp.IsError() {
		return fmt.Errorf("tiktok: unexpected status %d", resp.StatusCode())
	}
	return nil
}

func (s *tiktokService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		return validationError("code is empty")
	}

	if userID == 0 {
		err := errors.New("User not found")
		slog.Info(err.Error())
		return err
	}

	token, err := s.requestToken(ctx, map[string]string{
		"code":         code,
		"grant_type":   "authorization_code",
		"redirect_uri": s.cfg.TiktokRedirectURI,
	})
	if err != nil {
		return err
	}

	user, err := s.userInfo(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encrypted, err := utils.EncryptTokens(s.cfg.SecretKey, token.AccessToken, token.RefreshToken)
	if err != nil {
		return err
	}

	_, err = s.sa.Upsert(ctx, nil, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformTiktok,
		AccountID:       user.OpenID,
		AccountName:     user.DisplayName,
		AccountUsername: user.Username,
		ProfilePicture:  user.AvatarURL,
		AccessToken:     encrypted[0],
		RefreshToken:    encrypted[1],
		TokenExpiresAt:  GetExpiresAt(token.ExpiresIn),
	})
	return err
}

func (s *tiktokService) requestToken(ctx context.Context, form map[string]string) (*transfer.TiktokTokenResponse, error) {
	form["client_key"] = s.cfg.TiktokClientKey
	form["client_secret"] = s.cfg.TiktokClientSecret

	var token transfer.TiktokTokenResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&token).
		Post("/v2/oauth/token/")
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.IsError() || token.AccessToken == "" {
		return nil, fmt.Errorf("tiktok token endpoint returned status %d", resp.StatusCode())
	}
	return &token, nil
}

func (s *tiktokService) userInfo(ctx context.Context, accessToken string) (*transfer.TiktokUser, error) {
	var result transfer.TikTokResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("fields", "open_id,avatar_url,display_name,username,follower_count,following_count,likes_count,video_count").
		SetResult(&result).
		SetError(&result).
		Get("/v2/user/info/")
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if err := tiktokError(resp, result.Error); err != nil {
		return nil, err
	}
	return &result.Data.User, nil
}

func (s *tiktokService) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	token, err := s.requestToken(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return err
	}

	encrypted, err := utils.EncryptTokens(s.cfg.SecretKey, token.AccessToken, token.RefreshToken)
	if err != nil {
		return err
	}

	return s.sa.SetToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    encrypted[0],
		RefreshToken:   encrypted[1],
		TokenExpiresAt: GetExpiresAt(token.ExpiresIn),
	})
}

func (s *tiktokService) RevokeAccess(ctx context.Context, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	var result transfer.TiktokRevokeData
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_key":    s.cfg.TiktokClientKey,
			"client_secret": s.cfg.TiktokClientSecret,
			"token":         accessToken,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v2/oauth/revoke/")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("failed to revoke token: %s", result.Description)
	}
	return nil
}

func (s *tiktokService) FetchAnalytics(ctx context.Context, acc *models.SocialAccount, dr *transfer.DateRange) (*transfer.PlatformAnalytics, error) {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	user, err := s.userInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var list transfer.TiktokVideoListResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("fields", "id,title,create_time,share_url,view_count,like_count,comment_count,share_count").
		SetBody(map[string]int{"max_count": 20}).
		SetResult(&list).
		SetError(&list).
		Post("/v2/video/list/")
	if err != nil {
		return nil, err
	}
	if err := tiktokError(resp, list.Error); err != nil {
		return nil, err
	}

	videos := filterTiktokVideos(list.Data.Videos, dr)

	summary := models.AnalyticsSummary{
		Followers: user.FollowerCount,
		PostCount: user.VideoCount,
	}
	for _, v := range videos {
		summary.Views += v.ViewCount
		summary.Engagement += v.LikeCount + v.CommentCount + v.ShareCount
	}

	data, err := toMap(map[string]any{"user": user, "videos": videos})
	if err != nil {
		return nil, err
	}
	return &transfer.PlatformAnalytics{Summary: summary, Data: data}, nil
}

// filterTiktokVideos applies dr locally; the video list endpoint only pages by cursor.
func filterTiktokVideos(videos []transfer.TiktokVideo, dr *transfer.DateRange) []transfer.TiktokVideo {
	if dr.IsZero() {
		return videos
	}

	out := make([]transfer.TiktokVideo, 0, len(videos))
	for _, v := range videos {
		created := time.Unix(v.CreateTime, 0)
		if !dr.Since.IsZero() && created.Before(dr.Since) {
			continue
		}
		if !dr.Until.IsZero() && created.After(dr.Until) {
			continue
		}
		out = append(out, v)
	}
	return out
}
