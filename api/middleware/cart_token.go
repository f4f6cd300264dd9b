package middleware

import (
	"net/http"

	"github.com/flowmazonhq/flowmazon-backend/pkg/config"
	"github.com/flowmazonhq/flowmazon-backend/pkg/security"
)

// CartToken reads the anonymous cart cookie and seeds the request context
// with its value. When the cookie is missing, a fresh token is minted and set
// so the visitor's next write lands on a stable cart.
func CartToken(cfg config.CartConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				token = cookie.Value
			}
			if token == "" {
				minted, err := security.NewCartToken()
				if err == nil {
					token = minted
					http.SetCookie(w, &http.Cookie{
						Name:     cfg.CookieName,
						Value:    token,
						Path:     "/",
						MaxAge:   int(cfg.CookieMaxAge.Seconds()),
						HttpOnly: true,
						Secure:   cfg.CookieSecure,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}
			if token != "" {
				r = r.WithContext(WithCartToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClearCartCookie expires the anonymous cart cookie, used after login once
// the merge routine has folded the cart into the account.
func ClearCartCookie(w http.ResponseWriter, cfg config.CartConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
