package transfer

import "github.com/maheshrc27/socialpulse/internal/models"

type CreateApiKey struct {
	Name string `json:"name" validate:"max=64"`
}

// CreatedApiKey carries the plaintext key. It is returned once and never stored.
type CreatedApiKey struct {
	*models.ApiKey
	Key string `json:"key"`
}
