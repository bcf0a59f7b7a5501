// Package bigcommerce implements the commerce.Platform interface against
// the BigCommerce REST API. Orders and customers use the legacy v2 API;
// carts use v3. All outbound calls run under the shared retry policy.
package bigcommerce

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/infrastructure/retry"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Adapter implements commerce.Platform for the BigCommerce platform
type Adapter struct {
	config     *Config
	httpClient *http.Client
	executor   *retry.Executor
	logger     *zap.Logger
}

// NewAdapter creates a new BigCommerce adapter with the given configuration
func NewAdapter(config *Config, executor *retry.Executor, logger *zap.Logger) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		executor: executor,
		logger:   logger,
	}, nil
}

// GetOrder fetches an order header by id
func (a *Adapter) GetOrder(ctx context.Context, orderID int64) (*commerce.Order, error) {
	return retry.Do(ctx, a.executor, "bigcommerce.get_order", func(ctx context.Context) (*commerce.Order, error) {
		path := fmt.Sprintf("%s/orders/%d", a.config.StoreURL("v2"), orderID)
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, commerce.ErrOrderNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrRequestFailed, status)
		}

		var order commerce.Order
		if err := json.Unmarshal(body, &order); err != nil {
			return nil, fmt.Errorf("%w: %v", commerce.ErrInvalidResponse, err)
		}
		return &order, nil
	})
}

// GetOrderProducts fetches the line items of an order
func (a *Adapter) GetOrderProducts(ctx context.Context, orderID int64) ([]commerce.OrderProduct, error) {
	return retry.Do(ctx, a.executor, "bigcommerce.get_order_products", func(ctx context.Context) ([]commerce.OrderProduct, error) {
		path := fmt.Sprintf("%s/orders/%d/products", a.config.StoreURL("v2"), orderID)
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		// v2 returns 204 when an order has no products
		if status == http.StatusNoContent {
			return []commerce.OrderProduct{}, nil
		}
		if status == http.StatusNotFound {
			return nil, commerce.ErrOrderNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrRequestFailed, status)
		}

		var products []commerce.OrderProduct
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, fmt.Errorf("%w: %v", commerce.ErrInvalidResponse, err)
		}
		return products, nil
	})
}

// GetCustomer fetches a customer by id
func (a *Adapter) GetCustomer(ctx context.Context, customerID int64) (*commerce.Customer, error) {
	return retry.Do(ctx, a.executor, "bigcommerce.get_customer", func(ctx context.Context) (*commerce.Customer, error) {
		path := fmt.Sprintf("%s/customers/%d", a.config.StoreURL("v2"), customerID)
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, commerce.ErrCustomerNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrRequestFailed, status)
		}

		var customer commerce.Customer
		if err := json.Unmarshal(body, &customer); err != nil {
			return nil, fmt.Errorf("%w: %v", commerce.ErrInvalidResponse, err)
		}
		return &customer, nil
	})
}

// GetCart fetches a cart by id
func (a *Adapter) GetCart(ctx context.Context, cartID string) (*commerce.Cart, error) {
	return retry.Do(ctx, a.executor, "bigcommerce.get_cart", func(ctx context.Context) (*commerce.Cart, error) {
		path := fmt.Sprintf("%s/carts/%s", a.config.StoreURL("v3"), url.PathEscape(cartID))
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, commerce.ErrCartNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrRequestFailed, status)
		}

		var resp cartResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", commerce.ErrInvalidResponse, err)
		}
		if resp.Data == nil {
			return nil, commerce.ErrCartNotFound
		}
		return resp.Data, nil
	})
}

// SearchCustomersByEmail finds customers whose email matches exactly
func (a *Adapter) SearchCustomersByEmail(ctx context.Context, email string) ([]commerce.Customer, error) {
	return retry.Do(ctx, a.executor, "bigcommerce.search_customers", func(ctx context.Context) ([]commerce.Customer, error) {
		path := fmt.Sprintf("%s/customers?email=%s", a.config.StoreURL("v2"), url.QueryEscape(email))
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		// v2 returns 204 when the search matches nothing
		if status == http.StatusNoContent {
			return []commerce.Customer{}, nil
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrRequestFailed, status)
		}

		var customers []commerce.Customer
		if err := json.Unmarshal(body, &customers); err != nil {
			return nil, fmt.Errorf("%w: %v", commerce.ErrInvalidResponse, err)
		}
		return customers, nil
	})
}

// UpdateCustomer applies a partial update to a customer
func (a *Adapter) UpdateCustomer(ctx context.Context, customerID int64, patch commerce.CustomerPatch) (*commerce.Customer, error) {
	return retry.Do(ctx, a.executor, "bigcommerce.update_customer", func(ctx context.Context) (*commerce.Customer, error) {
		path := fmt.Sprintf("%s/customers/%d", a.config.StoreURL("v2"), customerID)
		body, status, err := a.doRequest(ctx, http.MethodPut, path, patch)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, commerce.ErrCustomerNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrRequestFailed, status)
		}

		var customer commerce.Customer
		if err := json.Unmarshal(body, &customer); err != nil {
			return nil, fmt.Errorf("%w: %v", commerce.ErrInvalidResponse, err)
		}
		return &customer, nil
	})
}

// UpdateOrderStatus sets an order's status by status name
func (a *Adapter) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	statusID, ok := orderStatusIDs[status]
	if !ok {
		return fmt.Errorf("%w: %q", commerce.ErrUnknownOrderStatus, status)
	}

	_, err := retry.Do(ctx, a.executor, "bigcommerce.update_order_status", func(ctx context.Context) (struct{}, error) {
		path := fmt.Sprintf("%s/orders/%d", a.config.StoreURL("v2"), orderID)
		_, httpStatus, err := a.doRequest(ctx, http.MethodPut, path, orderStatusUpdateRequest{StatusID: statusID})
		if err != nil {
			return struct{}{}, err
		}
		if httpStatus == http.StatusNotFound {
			return struct{}{}, commerce.ErrOrderNotFound
		}
		if httpStatus >= 400 {
			return struct{}{}, fmt.Errorf("%w: HTTP %d", commerce.ErrRequestFailed, httpStatus)
		}
		return struct{}{}, nil
	})
	return err
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 signature of a raw
// webhook payload. An unconfigured secret accepts everything with a warning
// so development setups keep working.
func (a *Adapter) VerifyWebhookSignature(payload []byte, signature string) bool {
	if a.config.WebhookSecret == "" {
		a.logger.Warn("webhook secret not configured, accepting unverified webhook")
		return true
	}
	expected := a.config.Sign(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// doRequest performs an HTTP request to the BigCommerce API and returns
// the body and status code. Transport failures map to ErrRequestFailed.
func (a *Adapter) doRequest(ctx context.Context, method, rawURL string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("bigcommerce: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("bigcommerce: failed to create request: %w", err)
	}

	req.Header.Set("X-Auth-Token", a.config.AccessToken)
	if a.config.ClientID != "" {
		req.Header.Set("X-Auth-Client", a.config.ClientID)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", commerce.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("bigcommerce: failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// OrderStatusName reverse-maps a numeric status id to its name, empty when unknown
func OrderStatusName(statusID int) string {
	for name, id := range orderStatusIDs {
		if id == statusID {
			return name
		}
	}
	return ""
}

// Ensure Adapter implements commerce.Platform
var _ commerce.Platform = (*Adapter)(nil)
