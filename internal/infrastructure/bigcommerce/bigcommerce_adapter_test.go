package bigcommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/infrastructure/retry"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name: "valid config",
			config: &Config{
				StoreHash:   "abc123",
				AccessToken: "test_token",
			},
			wantErr: nil,
		},
		{
			name: "missing store hash",
			config: &Config{
				AccessToken: "test_token",
			},
			wantErr: ErrConfigMissingStoreHash,
		},
		{
			name: "missing access token",
			config: &Config{
				StoreHash: "abc123",
			},
			wantErr: ErrConfigMissingAccessToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, tt.config.APIBaseURL)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func TestConfig_StoreURL(t *testing.T) {
	config := NewConfig("abc123", "token")
	assert.Equal(t, "https://api.bigcommerce.com/stores/abc123/v2", config.StoreURL("v2"))
	assert.Equal(t, "https://api.bigcommerce.com/stores/abc123/v3", config.StoreURL("v3"))
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	config := &Config{
		StoreHash:      "testhash",
		AccessToken:    "test_token",
		APIBaseURL:     serverURL,
		TimeoutSeconds: 5,
	}
	executor := retry.NewExecutor(retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond}, zap.NewNop())
	adapter, err := NewAdapter(config, executor, zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func TestAdapter_GetOrder(t *testing.T) {
	t.Run("fetches order with auth headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/stores/testhash/v2/orders/12345", r.URL.Path)
			assert.Equal(t, "test_token", r.Header.Get("X-Auth-Token"))

			json.NewEncoder(w).Encode(map[string]any{
				"id":            12345,
				"status":        "Completed",
				"total_inc_tax": "99.99",
				"customer_id":   7,
			})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		order, err := adapter.GetOrder(context.Background(), 12345)

		require.NoError(t, err)
		assert.Equal(t, int64(12345), order.ID)
		assert.Equal(t, "Completed", order.Status)
		assert.Equal(t, "99.99", order.TotalIncTax)
	})

	t.Run("maps 404 to sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		_, err := adapter.GetOrder(context.Background(), 999)

		assert.ErrorIs(t, err, commerce.ErrOrderNotFound)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"id": 1})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		order, err := adapter.GetOrder(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), order.ID)
		assert.Equal(t, 2, calls)
	})
}

func TestAdapter_GetOrderProducts(t *testing.T) {
	t.Run("fetches line items", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/stores/testhash/v2/orders/12345/products", r.URL.Path)
			json.NewEncoder(w).Encode([]map[string]any{
				{"name": "Widget", "quantity": 2, "price_inc_tax": "9.99"},
			})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		products, err := adapter.GetOrderProducts(context.Background(), 12345)

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Widget", products[0].Name)
		assert.Equal(t, 2, products[0].Quantity)
	})

	t.Run("204 yields empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		products, err := adapter.GetOrderProducts(context.Background(), 12345)

		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestAdapter_GetCart(t *testing.T) {
	t.Run("unwraps v3 data envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/stores/testhash/v3/carts/abc-123", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"id":          "abc-123",
					"email":       "cart@example.com",
					"cart_amount": 150.0,
				},
			})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		cart, err := adapter.GetCart(context.Background(), "abc-123")

		require.NoError(t, err)
		assert.Equal(t, "abc-123", cart.ID)
		assert.Equal(t, "cart@example.com", cart.Email)
		assert.Equal(t, "150", cart.Amount().String())
	})

	t.Run("maps 404 to sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		_, err := adapter.GetCart(context.Background(), "missing")

		assert.ErrorIs(t, err, commerce.ErrCartNotFound)
	})
}

func TestAdapter_SearchCustomersByEmail(t *testing.T) {
	t.Run("finds matching customers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test@example.com", r.URL.Query().Get("email"))
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": 42, "email": "test@example.com", "first_name": "Jane"},
			})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		customers, err := adapter.SearchCustomersByEmail(context.Background(), "test@example.com")

		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, int64(42), customers[0].ID)
	})

	t.Run("no match yields empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		customers, err := adapter.SearchCustomersByEmail(context.Background(), "none@example.com")

		require.NoError(t, err)
		assert.Empty(t, customers)
	})
}

func TestAdapter_UpdateCustomer(t *testing.T) {
	t.Run("sends only present fields", func(t *testing.T) {
		var received map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/stores/testhash/v2/customers/42", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(map[string]any{"id": 42, "first_name": "Carla"})
		}))
		defer server.Close()

		firstName := "Carla"
		adapter := newTestAdapter(t, server.URL)
		customer, err := adapter.UpdateCustomer(context.Background(), 42, commerce.CustomerPatch{FirstName: &firstName})

		require.NoError(t, err)
		assert.Equal(t, "Carla", customer.FirstName)
		assert.Equal(t, "Carla", received["first_name"])
		assert.NotContains(t, received, "last_name")
		assert.NotContains(t, received, "email")
	})
}

func TestAdapter_UpdateOrderStatus(t *testing.T) {
	t.Run("translates status name to id", func(t *testing.T) {
		var received map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(map[string]any{"id": 12345})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		err := adapter.UpdateOrderStatus(context.Background(), 12345, "Shipped")

		require.NoError(t, err)
		assert.Equal(t, float64(2), received["status_id"])
	})

	t.Run("rejects unknown status name without calling the API", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("unexpected request")
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		err := adapter.UpdateOrderStatus(context.Background(), 12345, "Teleported")

		assert.ErrorIs(t, err, commerce.ErrUnknownOrderStatus)
	})
}

func TestAdapter_VerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"scope":"store/order/created"}`)

	t.Run("accepts valid signature", func(t *testing.T) {
		adapter := newTestAdapter(t, "http://localhost")
		adapter.config.WebhookSecret = "shhh"

		signature := adapter.config.Sign(payload)
		assert.True(t, adapter.VerifyWebhookSignature(payload, signature))
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		adapter := newTestAdapter(t, "http://localhost")
		adapter.config.WebhookSecret = "shhh"

		signature := adapter.config.Sign(payload)
		assert.False(t, adapter.VerifyWebhookSignature([]byte(`{"scope":"evil"}`), signature))
	})

	t.Run("accepts anything when secret unset", func(t *testing.T) {
		adapter := newTestAdapter(t, "http://localhost")
		assert.True(t, adapter.VerifyWebhookSignature(payload, "whatever"))
	})
}

func TestOrderStatusName(t *testing.T) {
	assert.Equal(t, "Shipped", OrderStatusName(2))
	assert.Equal(t, "", OrderStatusName(99))
}
