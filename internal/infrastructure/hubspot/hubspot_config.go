package hubspot

import "errors"

// Config holds configuration for the HubSpot API integration
type Config struct {
	// AccessToken is the private-app token sent as a bearer credential
	AccessToken string
	// APIBaseURL is the base URL for the HubSpot API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// ProductionAPIURL is the production API endpoint
const ProductionAPIURL = "https://api.hubapi.com"

// ErrConfigMissingAccessToken indicates a missing API token
var ErrConfigMissingAccessToken = errors.New("hubspot: access token is required")

// NewConfig creates a new HubSpot configuration with defaults
func NewConfig(accessToken string) *Config {
	return &Config{
		AccessToken:    accessToken,
		APIBaseURL:     ProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the HubSpot configuration
func (c *Config) Validate() error {
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
