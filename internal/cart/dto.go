package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
)

// ItemView is one cart line as returned to clients.
type ItemView struct {
	ProductID uuid.UUID        `json:"product_id"`
	Name      string           `json:"name"`
	ImageURL  string           `json:"image_url"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Quantity  int              `json:"quantity"`
	LineTotal decimal.Decimal  `json:"line_total"`
}

// View is the cart summary returned to clients. Size counts units, not lines.
type View struct {
	ID       uuid.UUID  `json:"id"`
	Items    []ItemView `json:"items"`
	Size     int        `json:"size"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// EmptyView is what anonymous shoppers without a cart see.
func EmptyView() *View {
	return &View{
		Items:    []ItemView{},
		Subtotal: decimal.Zero,
	}
}

func viewFromModel(cart *models.Cart) *View {
	view := &View{
		ID:       cart.ID,
		Items:    make([]ItemView, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		line := ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.ImageURL = item.Product.ImageURL
			line.UnitPrice = item.Product.Price
			line.LineTotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		view.Items = append(view.Items, line)
		view.Size += item.Quantity
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
	}
	return view
}
