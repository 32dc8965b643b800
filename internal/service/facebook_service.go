package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookWebURL = "https://www.facebook.com"

var facebookScopes = []string{
	"pages_show_list",
	"pages_read_engagement",
	"pages_manage_posts",
	"read_insights",
}

// GraphError is a non-2xx answer from the Graph API.
type GraphError struct {
	Status  int
	Code    int
	Message string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("facebook: %s (code %d, status %d)", e.Message, e.Code, e.Status)
}

func newGraphError(status int, body *transfer.FacebookErrorResponse) *GraphError {
	ge := &GraphError{Status: status, Message: http.StatusText(status)}
	if body != nil && body.Error.Message != "" {
		ge.Code = body.Error.Code
		ge.Message = body.Error.Message
	}
	return ge
}

type FacebookService interface {
	AccountConnector
	PlatformPublisher
	AnalyticsFetcher
}

type facebookService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*transfer.PublishResult]
}

func NewFacebookService(cfg config.Config, sa repository.SocialAccountRepository) FacebookService {
	return &facebookService{
		cfg:    cfg,
		sa:     sa,
		client: newRestClient(cfg.FacebookGraphURL, cfg.HTTPTimeout),
		cb: gobreaker.NewCircuitBreaker[*transfer.PublishResult](gobreaker.Settings{
			Name:        "facebook-publish",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// Rejected content is the caller's problem, not an outage.
			IsSuccessful: func(err error) bool {
				var ge *GraphError
				return err == nil || (errors.As(err, &ge) && ge.Status < http.StatusInternalServerError)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func facebookOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.FacebookAppID,
		ClientSecret: cfg.FacebookAppSecret,
		RedirectURL:  cfg.FacebookRedirectURI,
		Scopes:       facebookScopes,
		Endpoint:     facebook.Endpoint,
	}
}

// Callback exchanges the OAuth code for a long-lived user token and stores the
// first managed page as the user's facebook connection.
func (s *facebookService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		return validationError("code is empty")
	}

	if userID == 0 {
		err := errors.New("User not found")
		slog.Info(err.Error())
		return err
	}

	token, err := facebookOAuthConfig(s.cfg).Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	var longLived transfer.FacebookTokenResponse
	err = s.graphGet(ctx, "/oauth/access_token", map[string]string{
		"grant_type":        "fb_exchange_token",
		"client_id":         s.cfg.FacebookAppID,
		"client_secret":     s.cfg.FacebookAppSecret,
		"fb_exchange_token": token.AccessToken,
	}, &longLived)
	if err != nil {
		return fmt.Errorf("failed to get long-lived token: %w", err)
	}

	var pages transfer.FacebookPages
	err = s.graphGet(ctx, "/me/accounts", map[string]string{
		"fields":       "id,name,access_token,category,picture{url}",
		"access_token": longLived.AccessToken,
	}, &pages)
	if err != nil {
		return fmt.Errorf("failed to list facebook pages: %w", err)
	}

	if len(pages.Data) == 0 {
		return validationError("no facebook page is managed by this account")
	}
	page := pages.Data[0]

	encrypted, err := utils.EncryptTokens(s.cfg.SecretKey, page.AccessToken, longLived.AccessToken)
	if err != nil {
		return err
	}

	_, err = s.sa.Upsert(ctx, nil, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformFacebook,
		AccountID:       page.ID,
		AccountName:     page.Name,
		AccountUsername: page.Category,
		ProfilePicture:  page.Picture.Data.URL,
		AccessToken:     encrypted[0],
		RefreshToken:    encrypted[1],
	})
	return err
}

func (s *facebookService) RevokeAccess(ctx context.Context, acc *models.SocialAccount) error {
	if acc.RefreshToken == "" {
		return nil
	}

	userToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	var fbErr transfer.FacebookErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", userToken).
		SetError(&fbErr).
		Delete("/me/permissions")
	if err != nil {
		return fmt.Errorf("facebook request failed: %w", err)
	}
	if resp.IsError() {
		return newGraphError(resp.StatusCode(), &fbErr)
	}
	return nil
}

func (s *facebookService) Publish(ctx context.Context, acc *models.SocialAccount, content models.PostContent) (*transfer.PublishResult, error) {
	if !acc.IsActive() || acc.AccountID == "" {
		return nil, ErrPlatformNotConnected
	}

	pageToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("unable to read facebook credentials: %w", err)
	}

	result, err := s.cb.Execute(func() (*transfer.PublishResult, error) {
		return s.publish(ctx, acc.AccountID, pageToken, content)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("facebook publishing is temporarily unavailable: %w", err)
	}
	return result, err
}

func (s *facebookService) publish(ctx context.Context, pageID, token string, content models.PostContent) (*transfer.PublishResult, error) {
	message := utils.HTMLToPlainText(content.Message)
	media := utils.FilterHTTPURLs(content.MediaURLs)

	switch {
	case content.MediaType == models.MediaTypeVideo && len(media) > 0:
		return s.publishVideo(ctx, pageID, token, message, media[0])
	case content.MediaType == models.MediaTypeLink || len(media) == 0:
		return s.publishFeed(ctx, pageID, token, message, content.Link, nil)
	case len(media) == 1:
		return s.publishPhoto(ctx, pageID, token, message, media[0])
	default:
		return s.publishPhotos(ctx, pageID, token, message, media)
	}
}

func (s *facebookService) publishPhoto(ctx context.Context, pageID, token, caption, imageURL string) (*transfer.PublishResult, error) {
	var out transfer.FacebookPublishResponse
	err := s.graphPost(ctx, "/"+pageID+"/photos", map[string]string{
		"url":          imageURL,
		"caption":      caption,
		"access_token": token,
	}, &out)
	if err != nil {
		return nil, err
	}

	id := out.PostID
	if id == "" {
		id = out.ID
	}
	return postResult(id)
}

// publishPhotos uploads every image unpublished and attaches them to one feed post.
func (s *facebookService) publishPhotos(ctx context.Context, pageID, token, message string, imageURLs []string) (*transfer.PublishResult, error) {
	attached := make([]string, 0, len(imageURLs))

	for _, imageURL := range imageURLs {
		var out transfer.FacebookPublishResponse
		err := s.graphPost(ctx, "/"+pageID+"/photos", map[string]string{
			"url":          imageURL,
			"published":    "false",
			"access_token": token,
		}, &out)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo %s: %w", imageURL, err)
		}
		if out.ID == "" {
			return nil, fmt.Errorf("facebook returned no media id for %s", imageURL)
		}

		b, err := json.Marshal(transfer.FacebookAttachedMedia{MediaFBID: out.ID})
		if err != nil {
			return nil, err
		}
		attached = append(attached, string(b))
	}

	return s.publishFeed(ctx, pageID, token, message, "", attached)
}

func (s *facebookService) publishVideo(ctx context.Context, pageID, token, description, videoURL string) (*transfer.PublishResult, error) {
	var out transfer.FacebookPublishResponse
	err := s.graphPost(ctx, "/"+pageID+"/videos", map[string]string{
		"file_url":     videoURL,
		"description":  description,
		"access_token": token,
	}, &out)
	if err != nil {
		return nil, err
	}

	if out.ID == "" {
		return nil, errors.New("facebook returned no video id")
	}
	return &transfer.PublishResult{
		ID:  out.ID,
		URL: fmt.Sprintf("%s/%s/videos/%s", facebookWebURL, pageID, out.ID),
	}, nil
}

func (s *facebookService) publishFeed(ctx context.Context, pageID, token, message, link string, attached []string) (*transfer.PublishResult, error) {
	form := map[string]string{
		"message":      message,
		"access_token": token,
	}
	if link != "" {
		form["link"] = link
	}
	for i, media := range attached {
		form[fmt.Sprintf("attached_media[%d]", i)] = media
	}

	var out transfer.FacebookPublishResponse
	if err := s.graphPost(ctx, "/"+pageID+"/feed", form, &out); err != nil {
		return nil, err
	}
	return postResult(out.ID)
}

func postResult(id string) (*transfer.PublishResult, error) {
	if id == "" {
		return nil, errors.New("facebook returned no post id")
	}
	return &transfer.PublishResult{ID: id, URL: facebookWebURL + "/" + id}, nil
}

func (s *facebookService) FetchAnalytics(ctx context.Context, acc *models.SocialAccount, dr *transfer.DateRange) (*transfer.PlatformAnalytics, error) {
	token, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("unable to read facebook credentials: %w", err)
	}

	var page transfer.FacebookPageInfo
	err = s.graphGet(ctx, "/"+acc.AccountID, map[string]string{
		"fields":       "id,name,followers_count,fan_count",
		"access_token": token,
	}, &page)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"fields":       "id,message,created_time,permalink_url,likes.summary(true).limit(0),comments.summary(true).limit(0),shares",
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

	var posts transfer.FacebookPostList
	if err := s.graphGet(ctx, "/"+acc.AccountID+"/posts", params, &posts); err != nil {
		return nil, err
	}

	summary := models.AnalyticsSummary{
		Followers: page.FollowersCount,
		PostCount: int64(len(posts.Data)),
	}
	if summary.Followers == 0 {
		summary.Followers = page.FanCount
	}
	for _, p := range posts.Data {
		summary.Engagement += p.Likes.Summary.TotalCount + p.Comments.Summary.TotalCount + p.Shares.Count
	}

	data, err := toMap(map[string]any{"page": page, "posts": posts.Data})
	if err != nil {
		return nil, err
	}
	return &transfer.PlatformAnalytics{Summary: summary, Data: data}, nil
}

func (s *facebookService) graphGet(ctx context.Context, path string, params map[string]string, out any) error {
	var fbErr transfer.FacebookErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		SetError(&fbErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("facebook request failed: %w", err)
	}
	if resp.IsError() {
		return newGraphError(resp.StatusCode(), &fbErr)
	}
	return nil
}

func (s *facebookService) graphPost(ctx context.Context, path string, form map[string]string, out any) error {
	var fbErr transfer.FacebookErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(out).
		SetError(&fbErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("facebook request failed: %w", err)
	}
	if resp.IsError() {
		return newGraphError(resp.StatusCode(), &fbErr)
	}
	return nil
}
