package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
)

// Profile is the public shape of a user account.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	IsAdmin   bool       `json:"is_admin,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// ProfileFromModel maps the stored user onto its public shape.
func ProfileFromModel(user *models.User) Profile {
	return Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLoginAt,
	}
}
