package transfer

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/socialpulse/internal/models"
)

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type ConnectionSummary struct {
	Platform    string `json:"platform"`
	AccountName string `json:"account_name"`
	Status      string `json:"status"`
}

// UserProfile is the signed-in user plus the state of each platform connection.
type UserProfile struct {
	*models.User
	Connections []ConnectionSummary `json:"connections"`
}
