package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"golang.org/x/oauth2"
)

const (
	TIKTOK_AUTH_URL    = "https://www.tiktok.com/v2/auth/authorize"
	INSTAGRAM_AUTH_URL = "https://www.instagram.com/oauth/authorize"
)

// AccountConnector links and unlinks a platform account through OAuth.
type AccountConnector interface {
	Callback(ctx context.Context, code string, userID int64) error
	RevokeAccess(ctx context.Context, acc *models.SocialAccount) error
}

// PlatformPublisher sends post content to a platform on behalf of acc.
type PlatformPublisher interface {
	Publish(ctx context.Context, acc *models.SocialAccount, content models.PostContent) (*transfer.PublishResult, error)
}

// AnalyticsFetcher pulls live analytics for acc. A zero dr means the platform default window.
type AnalyticsFetcher interface {
	FetchAnalytics(ctx context.Context, acc *models.SocialAccount, dr *transfer.DateRange) (*transfer.PlatformAnalytics, error)
}

type TokenRefresher interface {
	RefreshToken(ctx context.Context, acc *models.SocialAccount) error
}

type PlatformService interface {
	GetAuthURL(platform, state string) (string, error)
	Connect(ctx context.Context, platform, code string, userID int64) error
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Disconnect(ctx context.Context, userID, accountID int64) error
}

type platformService struct {
	cfg        config.Config
	sa         repository.SocialAccountRepository
	connectors map[string]AccountConnector
}

func NewPlatformService(cfg config.Config, sa repository.SocialAccountRepository, connectors map[string]AccountConnector) PlatformService {
	return &platformService{
		cfg:        cfg,
		sa:         sa,
		connectors: connectors,
	}
}

func (s *platformService) GetAuthURL(platform, state string) (string, error) {
	switch platform {
	case models.PlatformFacebook:
		return facebookOAuthConfig(s.cfg).AuthCodeURL(state), nil

	case models.PlatformInstagram:
		params := url.Values{}
		params.Add("client_id", s.cfg.InstagramClientID)
		params.Add("scope", "instagram_business_basic,instagram_business_manage_insights")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.InstagramRedirectURI)
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", INSTAGRAM_AUTH_URL, params.Encode()), nil

	case models.PlatformTiktok:
		params := url.Values{}
		params.Add("client_key", s.cfg.TiktokClientKey)
		params.Add("scope", tiktokScopes)
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.TiktokRedirectURI)
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", TIKTOK_AUTH_URL, params.Encode()), nil

	case models.PlatformYoutube:
		return youtubeOAuthConfig(s.cfg).AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil

	default:
		return "", validationError("unknown platform %q", platform)
	}
}

func (s *platformService) Connect(ctx context.Context, platform, code string, userID int64) error {
	connector, ok := s.connectors[platform]
	if !ok {
		return validationError("unknown platform %q", platform)
	}
	return connector.Callback(ctx, code, userID)
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting social accounts: %w", err)
	}

	if accounts == nil {
		accounts = []*models.SocialAccount{}
	}
	return accounts, nil
}

// Disconnect revokes the platform grant where supported and marks the account revoked.
func (s *platformService) Disconnect(ctx context.Context, userID, accountID int64) error {
	if userID == 0 || accountID == 0 {
		return validationError("account id is required")
	}

	isValid, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		return fmt.Errorf("%w: social account", ErrNotFound)
	}

	acc, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("Unable to get social account info: %w", err)
	}
	if acc == nil {
		return fmt.Errorf("%w: social account", ErrNotFound)
	}

	if connector, ok := s.connectors[acc.Platform]; ok && acc.IsActive() {
		if err := connector.RevokeAccess(ctx, acc); err != nil {
			slog.Warn("unable to revoke platform access", "platform", acc.Platform, "account_id", acc.ID, "error", err)
		}
	}

	return s.sa.SetStatus(ctx, accountID, models.AccountStatusRevoked)
}
