package commerce

import (
	"context"
	"errors"
)

var (
	// ErrPlatformNotConfigured indicates missing credentials for the platform
	ErrPlatformNotConfigured = errors.New("commerce: platform not configured")
	// ErrRequestFailed indicates the platform rejected or failed a request
	ErrRequestFailed = errors.New("commerce: platform request failed")
	// ErrInvalidResponse indicates an unparseable platform response
	ErrInvalidResponse = errors.New("commerce: invalid platform response")
	// ErrOrderNotFound indicates the order does not exist on the platform
	ErrOrderNotFound = errors.New("commerce: order not found")
	// ErrCartNotFound indicates the cart does not exist on the platform
	ErrCartNotFound = errors.New("commerce: cart not found")
	// ErrCustomerNotFound indicates the customer does not exist on the platform
	ErrCustomerNotFound = errors.New("commerce: customer not found")
	// ErrUnknownOrderStatus indicates a status string with no platform status id
	ErrUnknownOrderStatus = errors.New("commerce: unknown order status")
)

// Platform is the capability interface of the source commerce system.
// Implementations own transport concerns (auth headers, retries); callers
// see domain entities and sentinel errors only.
type Platform interface {
	// GetOrder fetches an order header by id
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	// GetOrderProducts fetches the line items of an order
	GetOrderProducts(ctx context.Context, orderID int64) ([]OrderProduct, error)

	// GetCustomer fetches a customer by id
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)

	// GetCart fetches a cart by id
	GetCart(ctx context.Context, cartID string) (*Cart, error)

	// SearchCustomersByEmail finds customers whose email matches exactly
	SearchCustomersByEmail(ctx context.Context, email string) ([]Customer, error)

	// UpdateCustomer applies a partial update to a customer
	UpdateCustomer(ctx context.Context, customerID int64, patch CustomerPatch) (*Customer, error)

	// UpdateOrderStatus sets an order's status by status name
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error

	// VerifyWebhookSignature checks the HMAC-SHA256 signature of a raw
	// webhook payload. Implementations return true with a logged warning
	// when no shared secret is configured.
	VerifyWebhookSignature(payload []byte, signature string) bool
}
