package controllers

import (
	"net/http"

	"github.com/flowmazonhq/flowmazon-backend/api/middleware"
	"github.com/flowmazonhq/flowmazon-backend/api/responses"
	"github.com/flowmazonhq/flowmazon-backend/api/validators"
	"github.com/flowmazonhq/flowmazon-backend/internal/auth"
	"github.com/flowmazonhq/flowmazon-backend/pkg/config"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
	"github.com/flowmazonhq/flowmazon-backend/pkg/logger"
)

// AuthRegister wires the signup endpoint into the HTTP layer. The anonymous
// cart cookie rides along so the new account inherits the visitor's cart.
func AuthRegister(svc auth.Service, cartCfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.CartToken = middleware.CartTokenFromContext(r.Context())

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.CartMerged {
			middleware.ClearCartCookie(w, cartCfg)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer. The cart merge runs
// inside the service before the response is written.
func AuthLogin(svc auth.Service, cartCfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.CartToken = middleware.CartTokenFromContext(r.Context())

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// A failed merge keeps the cookie so the anonymous cart can fold
		// in on the next login.
		if result.CartMerged {
			middleware.ClearCartCookie(w, cartCfg)
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session behind the presented token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		if err := svc.Logout(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
