package cart

import (
	"strings"

	"github.com/google/uuid"
)

// Identity names the owner of a cart: a logged-in user or an anonymous
// session token carried in a cookie. At most one side is set.
type Identity struct {
	UserID       *uuid.UUID
	SessionToken *string
}

// ForUser builds an identity for a logged-in shopper.
func ForUser(userID uuid.UUID) Identity {
	return Identity{UserID: &userID}
}

// ForSession builds an identity for an anonymous shopper.
func ForSession(token string) Identity {
	return Identity{SessionToken: &token}
}

// IsZero reports whether the identity carries neither owner.
func (id Identity) IsZero() bool {
	if id.UserID != nil && *id.UserID != uuid.Nil {
		return false
	}
	if id.SessionToken != nil && strings.TrimSpace(*id.SessionToken) != "" {
		return false
	}
	return true
}

// IsUser reports whether the identity belongs to a logged-in user.
func (id Identity) IsUser() bool {
	return id.UserID != nil && *id.UserID != uuid.Nil
}
