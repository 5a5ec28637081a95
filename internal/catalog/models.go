package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductDraft     ProductStatus = "draft"
	ProductPending   ProductStatus = "pending"
	ProductPublished ProductStatus = "published"
	ProductHidden    ProductStatus = "hidden"
)

type Product struct {
	ID          string
	SKU         string
	Name        string
	Price       decimal.Decimal
	Status      ProductStatus
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant is the sellable unit; it carries the stock counter the
// deduction engine decrements. SKU, Name and Price are overrides:
// empty/nil means inherit from the parent product.
type Variant struct {
	ID        string
	ProductID string
	SKU       string
	Name      string
	Price     *decimal.Decimal
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectivePrice resolves the price a buyer pays for this variant.
func (v Variant) EffectivePrice(parent Product) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return parent.Price
}
