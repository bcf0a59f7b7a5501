package commerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor payloads carry several optional or alternate field names. The
// accessor methods below resolve each precedence order exactly once;
// downstream code never re-interprets raw fields.

// Address is a billing or shipping address attached to an order or cart
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Street1   string `json:"street_1"`
	Street2   string `json:"street_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// Customer is a commerce platform customer record
type Customer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

// CustomerPatch is a partial customer update pushed back to the commerce
// platform. Nil fields are left untouched.
type CustomerPatch struct {
	Email            *string `json:"email,omitempty"`
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Company          *string `json:"company,omitempty"`
	AcceptsMarketing *bool   `json:"accepts_product_review_abandoned_cart_emails,omitempty"`
	AcceptsSMS       *bool   `json:"accepts_sms_marketing,omitempty"`
}

// Order is a commerce platform order header
type Order struct {
	ID             int64   `json:"id"`
	CustomerID     int64   `json:"customer_id"`
	Status         string  `json:"status"`
	TotalIncTax    string  `json:"total_inc_tax"`
	Total          string  `json:"total"`
	PaymentMethod  string  `json:"payment_method"`
	DateCreated    string  `json:"date_created"`
	DateModified   string  `json:"date_modified"`
	BillingAddress Address `json:"billing_address"`
}

// Amount resolves the order total: total_inc_tax, then total, then zero.
// Unparseable values coerce to zero rather than failing.
func (o *Order) Amount() decimal.Decimal {
	return parseAmountString(o.TotalIncTax, o.Total)
}

// CreatedAt resolves the order creation instant, nil if absent or malformed
func (o *Order) CreatedAt() *time.Time {
	return parseVendorTime(o.DateCreated)
}

// ModifiedAt resolves the last-modified instant, falling back to creation
func (o *Order) ModifiedAt() *time.Time {
	if t := parseVendorTime(o.DateModified); t != nil {
		return t
	}
	return o.CreatedAt()
}

// OrderProduct is one order line item
type OrderProduct struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PriceIncTax string `json:"price_inc_tax"`
	Price       string `json:"price"`
}

// DisplayName resolves the item name: name, then product_name, then a
// placeholder
func (p *OrderProduct) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.ProductName != "" {
		return p.ProductName
	}
	return "Unknown"
}

// UnitPriceDisplay resolves the display price: price_inc_tax, then price,
// then "0". The raw vendor string is kept for description rendering.
func (p *OrderProduct) UnitPriceDisplay() string {
	if p.PriceIncTax != "" {
		return p.PriceIncTax
	}
	if p.Price != "" {
		return p.Price
	}
	return "0"
}

// CartItem is one line item inside a cart
type CartItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	SalePrice *float64 `json:"sale_price"`
	ListPrice *float64 `json:"list_price"`
}

// UnitPrice resolves the item price: sale_price, then list_price, then zero
func (i *CartItem) UnitPrice() decimal.Decimal {
	if i.SalePrice != nil {
		return decimal.NewFromFloat(*i.SalePrice)
	}
	if i.ListPrice != nil {
		return decimal.NewFromFloat(*i.ListPrice)
	}
	return decimal.Zero
}

// CartLineItems groups cart items by fulfillment kind
type CartLineItems struct {
	PhysicalItems []CartItem `json:"physical_items"`
	DigitalItems  []CartItem `json:"digital_items"`
}

// Cart is a commerce platform cart, usually observed after abandonment
type Cart struct {
	ID             string        `json:"id"`
	CustomerID     int64         `json:"customer_id"`
	Email          string        `json:"email"`
	Customer       *Customer     `json:"customer"`
	BillingAddress *Address      `json:"billing_address"`
	CartAmount     *float64      `json:"cart_amount"`
	BaseAmount     *float64      `json:"base_amount"`
	CreatedTime    string        `json:"created_time"`
	UpdatedTime    string        `json:"updated_time"`
	LineItems      CartLineItems `json:"line_items"`
}

// Amount resolves the cart total: cart_amount, then base_amount, then zero
func (c *Cart) Amount() decimal.Decimal {
	if c.CartAmount != nil {
		return decimal.NewFromFloat(*c.CartAmount)
	}
	if c.BaseAmount != nil {
		return decimal.NewFromFloat(*c.BaseAmount)
	}
	return decimal.Zero
}

// AbandonedAt resolves the cart's last activity instant: updated_time,
// then created_time, nil when neither parses
func (c *Cart) AbandonedAt() *time.Time {
	if t := parseVendorTime(c.UpdatedTime); t != nil {
		return t
	}
	return parseVendorTime(c.CreatedTime)
}

// parseAmountString returns the first candidate that parses as a decimal,
// or zero. Monetary parsing is total: bad input never propagates an error.
func parseAmountString(candidates ...string) decimal.Decimal {
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if amount, err := decimal.NewFromString(raw); err == nil {
			return amount
		}
	}
	return decimal.Zero
}

// vendorTimeLayouts covers the formats observed in vendor payloads:
// RFC 3339 for carts, RFC 2822 variants for the legacy order API.
var vendorTimeLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

func parseVendorTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range vendorTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
