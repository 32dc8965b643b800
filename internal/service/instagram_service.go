package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
)

const (
	instagramTokenURL = "https://api.instagram.com/oauth/access_token"
	instagramGraphURL = "https://graph.instagram.com"
)

type InstagramService interface {
	AccountConnector
	TokenRefresher
	AnalyticsFetcher
}

type instagramService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	client *resty.Client
}

func NewInstagramService(cfg config.Config, sa repository.SocialAccountRepository) InstagramService {
	return &instagramService{
		cfg:    cfg,
		sa:     sa,
		client: newRestClient(instagramGraphURL, cfg.HTTPTimeout),
	}
}

func instagramError(resp *resty.Response, body *transfer.InstagramErrorResponse) error {
	if body.Error.Message != "" {
		return fmt.Errorf("instagram: %s (code %d)", body.Error.Message, body.Error.Code)
	}
	return fmt.Errorf("instagram: unexpected status %d", resp.StatusCode())
}

func (ig *instagramService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		return validationError("code is empty")
	}

	if userID == 0 {
		err := errors.New("User not found")
		slog.Info(err.Error())
		return err
	}

	token, err := ig.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := ig.userInfo(ctx, token.LongLivedToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.LongLivedToken), []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	_, err = ig.sa.Upsert(ctx, nil, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformInstagram,
		AccountID:       userInfo.UserID,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Username,
		ProfilePicture:  userInfo.ProfilePicture,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedAccessToken,
		TokenExpiresAt:  token.ExpiresAt,
	})
	return err
}

// exchangeCodeForToken trades the code for a short-lived token, then upgrades it to a long-lived one.
func (ig *instagramService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.InstagramToken, error) {
	var short struct {
		AccessToken string `json:"access_token"`
		UserID      int    `json:"user_id"`
	}
	var igErr transfer.InstagramErrorResponse

	resp, err := ig.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     ig.cfg.InstagramClientID,
			"client_secret": ig.cfg.InstagramClientSecret,
			"grant_type":    "authorization_code",
			"redirect_uri":  ig.cfg.InstagramRedirectURI,
			"code":          code,
		}).
		SetResult(&short).
		SetError(&igErr).
		Post(instagramTokenURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get short-lived token: %w", err)
	}
	if resp.IsError() {
		return nil, instagramError(resp, &igErr)
	}

	var long struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err = ig.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":    "ig_exchange_token",
			"client_secret": ig.cfg.InstagramClientSecret,
			"access_token":  short.AccessToken,
		}).
		SetResult(&long).
		SetError(&igErr).
		Get("/access_token")
	if err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}
	if resp.IsError() {
		return nil, instagramError(resp, &igErr)
	}

	return &transfer.InstagramToken{
		UserID:         short.UserID,
		AccessToken:    short.AccessToken,
		LongLivedToken: long.AccessToken,
		ExpiresAt:      GetExpiresAt(long.ExpiresIn),
	}, nil
}

func (ig *instagramService) userInfo(ctx context.Context, accessToken string) (*transfer.InstagramUserInfo, error) {
	var info transfer.InstagramUserInfo
	var igErr transfer.InstagramErrorResponse

	resp, err := ig.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "user_id,username,name,profile_picture_url,followers_count,follows_count,media_count",
			"access_token": accessToken,
		}).
		SetResult(&info).
		SetError(&igErr).
		Get("/me")
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if resp.IsError() {
		return nil, instagramError(resp, &igErr)
	}
	return &info, nil
}

func (ig *instagramService) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	token, err := utils.Decrypt(acc.RefreshToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	var igErr transfer.InstagramErrorResponse

	resp, err := ig.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":   "ig_refresh_token",
			"access_token": token,
		}).
		SetResult(&result).
		SetError(&igErr).
		Get("/refresh_access_token")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return instagramError(resp, &igErr)
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	return ig.sa.SetToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedAccessToken,
		TokenExpiresAt: GetExpiresAt(result.ExpiresIn),
	})
}

func (ig *instagramService) RevokeAccess(ctx context.Context, acc *models.SocialAccount) error {
	// Instagram Login has no token revocation endpoint; the grant lapses with the token.
	return nil
}

func (ig *instagramService) FetchAnalytics(ctx context.Context, acc *models.SocialAccount, dr *transfer.DateRange) (*transfer.PlatformAnalytics, error) {
	token, err := utils.Decrypt(acc.AccessToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	info, err := ig.userInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"fields":       "id,caption,media_type,permalink,timestamp,like_count,comments_count",
		"limit":        "25",
		"access_token": token,
	}
	if !dr.IsZero() {
		if !dr.Since.IsZero() {
			params["since"] = strconv.FormatInt(dr.Since.Unix(), 10)
		}
		if !dr.Until.IsZero() {
			params["until"] = strconv.FormatInt(dr.Until.Unix(), 10)
		}
	}

	var media transfer.InstagramMediaList
	var igErr transfer.InstagramErrorResponse
	resp, err := ig.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&media).
		SetError(&igErr).
		Get("/me/media")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, instagramError(resp, &igErr)
	}

	summary := models.AnalyticsSummary{
		Followers: info.FollowersCount,
		PostCount: info.MediaCount,
	}
	for _, m := range media.Data {
		summary.Engagement += m.LikeCount + m.CommentsCount
	}

	data, err := toMap(map[string]any{"profile": info, "media": media.Data})
	if err != nil {
		return nil, err
	}
	return &transfer.PlatformAnalytics{Summary: summary, Data: data}, nil
}
