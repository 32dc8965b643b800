package service

import (
	"context"
	"fmt"

	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
)

type UserService interface {
	GetUserInfo(ctx context.Context, userID int64) (*transfer.UserProfile, error)
	RemoveUser(ctx context.Context, userID int64) error
}

type userService struct {
	users    repository.UserRepository
	accounts repository.SocialAccountRepository
}

func NewUserService(users repository.UserRepository, accounts repository.SocialAccountRepository) UserService {
	return &userService{
		users:    users,
		accounts: accounts,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, userID int64) (*transfer.UserProfile, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: no user", ErrUnauthorized)
	}

	user, isExist, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to load user: %w", err)
	}
	if !isExist {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	accounts, err := s.accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to load connections: %w", err)
	}

	profile := &transfer.UserProfile{User: user, Connections: []transfer.ConnectionSummary{}}
	for _, acc := range accounts {
		profile.Connections = append(profile.Connections, transfer.ConnectionSummary{
			Platform:    acc.Platform,
			AccountName: acc.AccountName,
			Status:      acc.AccountStatus,
		})
	}
	return profile, nil
}

// RemoveUser deletes the user; connections, keys, settings and history cascade.
func (s *userService) RemoveUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: no user", ErrUnauthorized)
	}

	removed, err := s.users.Remove(ctx, userID)
	if err != nil {
		return fmt.Errorf("unable to remove user: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return nil
}
