package auth

import (
	"github.com/flowmazonhq/flowmazon-backend/internal/users"
)

// RegisterRequest contains the payload required to create a new account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`

	// CartToken carries the anonymous cart cookie so the new account
	// inherits whatever the visitor already put in their cart.
	CartToken string `json:"-"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`

	// CartToken carries the anonymous cart cookie, if present, so the
	// merge routine can fold it into the account cart before responding.
	CartToken string `json:"-"`
}

// AuthResponse contains the access token and user produced by a successful
// login or registration.
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	User        users.Profile `json:"user"`

	// CartMerged reports whether the anonymous cart was folded into the
	// account (or there was nothing to fold). When false the cart cookie
	// must survive so the merge can run again on the next login.
	CartMerged bool `json:"-"`
}
