package bigcommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Config holds configuration for the BigCommerce API integration
type Config struct {
	// StoreHash identifies the store, e.g. "abc123" in api.bigcommerce.com/stores/abc123
	StoreHash string
	// AccessToken is the API account token sent as X-Auth-Token
	AccessToken string
	// ClientID is the API account client id
	ClientID string
	// APIBaseURL is the base URL for the BigCommerce API
	APIBaseURL string
	// WebhookSecret is the shared secret for webhook signature verification.
	// Empty means signatures are accepted with a logged warning.
	WebhookSecret string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// ProductionAPIURL is the production API endpoint
const ProductionAPIURL = "https://api.bigcommerce.com"

// Errors for BigCommerce configuration
var (
	ErrConfigMissingStoreHash   = errors.New("bigcommerce: store hash is required")
	ErrConfigMissingAccessToken = errors.New("bigcommerce: access token is required")
)

// NewConfig creates a new BigCommerce configuration with defaults
func NewConfig(storeHash, accessToken string) *Config {
	return &Config{
		StoreHash:      storeHash,
		AccessToken:    accessToken,
		APIBaseURL:     ProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the BigCommerce configuration
func (c *Config) Validate() error {
	if c.StoreHash == "" {
		return ErrConfigMissingStoreHash
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = ProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// StoreURL returns the store-scoped API root for the given version ("v2" or "v3")
func (c *Config) StoreURL(version string) string {
	return fmt.Sprintf("%s/stores/%s/%s", c.APIBaseURL, c.StoreHash, version)
}

// Sign computes the hex HMAC-SHA256 of a webhook payload with the shared secret
func (c *Config) Sign(payload []byte) string {
	h := hmac.New(sha256.New, []byte(c.WebhookSecret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
