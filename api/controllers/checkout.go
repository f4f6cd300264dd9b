package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/flowmazonhq/flowmazon-backend/api/middleware"
	"github.com/flowmazonhq/flowmazon-backend/api/responses"
	"github.com/flowmazonhq/flowmazon-backend/api/validators"
	checkoutsvc "github.com/flowmazonhq/flowmazon-backend/internal/checkout"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
	"github.com/flowmazonhq/flowmazon-backend/pkg/logger"
	"github.com/flowmazonhq/flowmazon-backend/pkg/types"
)

// StartCheckoutSession opens a hosted Stripe Checkout session for the
// caller's cart.
func StartCheckoutSession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.StartSession(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CreatePaymentIntent returns a client secret for an embedded payment form.
func CreatePaymentIntent(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateIntent(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type directChargeRequest struct {
	PaymentMethodID string         `json:"payment_method_id" validate:"required"`
	ShippingAddress *types.Address `json:"shipping_address,omitempty"`
	BillingAddress  *types.Address `json:"billing_address,omitempty"`
}

// DirectCharge confirms a payment method against the cart total and creates
// the order in the same request when the charge settles.
func DirectCharge(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body directChargeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DirectCharge(r.Context(), checkoutsvc.ChargeInput{
			UserID:          userID,
			PaymentMethodID: body.PaymentMethodID,
			ShippingAddress: body.ShippingAddress,
			BillingAddress:  body.BillingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.RequiresAction {
			responses.WriteSuccessStatus(w, http.StatusAccepted, result)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// requesterID resolves the authenticated user from the request context.
func requesterID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, nil
}
