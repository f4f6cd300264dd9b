package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
	"github.com/flowmazonhq/flowmazon-backend/pkg/enums"
	"github.com/flowmazonhq/flowmazon-backend/pkg/types"
)

// PaymentConfirmedInput is the normalized payload both payment boundaries
// (direct charge and Stripe webhook) hand to the order creation routine.
type PaymentConfirmedInput struct {
	UserID          uuid.UUID
	CartID          uuid.UUID
	PaymentRef      string
	Currency        enums.Currency
	ShippingAddress *types.Address
	BillingAddress  *types.Address
}

// ItemView is one immutable order line.
type ItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is the order shape returned to clients.
type View struct {
	ID              uuid.UUID         `json:"id"`
	Status          enums.OrderStatus `json:"status"`
	Total           decimal.Decimal   `json:"total"`
	Currency        enums.Currency    `json:"currency"`
	PaymentRef      string            `json:"payment_ref,omitempty"`
	Items           []ItemView        `json:"items"`
	ShippingAddress *types.Address    `json:"shipping_address,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Page wraps a user's paginated order history.
type Page struct {
	Orders []View `json:"orders"`
	Page   int    `json:"page"`
	Total  int64  `json:"total"`
}

func viewFromModel(order *models.Order) *View {
	view := &View{
		ID:              order.ID,
		Status:          order.Status,
		Total:           order.Total,
		Currency:        order.Currency,
		Items:           make([]ItemView, 0, len(order.Items)),
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt,
	}
	if order.PaymentRef != nil {
		view.PaymentRef = *order.PaymentRef
	}
	for i := range order.Items {
		item := &order.Items[i]
		line := ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
		}
		view.Items = append(view.Items, line)
	}
	return view
}
