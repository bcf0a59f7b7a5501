// Package hubspot implements the crm.Platform interface against the
// HubSpot contacts and deals APIs. All outbound calls run under the
// shared retry policy.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/crm"
	"github.com/syncbridge/backend/internal/infrastructure/retry"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Adapter implements crm.Platform for the HubSpot platform
type Adapter struct {
	config     *Config
	httpClient *http.Client
	executor   *retry.Executor
	logger     *zap.Logger
}

// NewAdapter creates a new HubSpot adapter with the given configuration
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

// FindContactByEmail looks up a contact by email address. A 404 is a
// definitive answer, not a transient fault, so it resolves on the first
// request instead of running through the backoff schedule.
func (a *Adapter) FindContactByEmail(ctx context.Context, email string) (*crm.ContactRecord, error) {
	record, err := retry.Do(ctx, a.executor, "hubspot.find_contact", func(ctx context.Context) (*crm.ContactRecord, error) {
		path := fmt.Sprintf("%s/contacts/v1/contact/email/%s/profile", a.config.APIBaseURL, url.PathEscape(email))
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, nil
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}

		var profile contactProfile
		if err := json.Unmarshal(body, &profile); err != nil {
			return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return profile.toRecord(), nil
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, crm.ErrContactNotFound
	}
	return record, nil
}

// CreateContact creates a new contact
func (a *Adapter) CreateContact(ctx context.Context, contact crm.Contact) (*crm.ContactRecord, error) {
	return retry.Do(ctx, a.executor, "hubspot.create_contact", func(ctx context.Context) (*crm.ContactRecord, error) {
		path := a.config.APIBaseURL + "/contacts/v1/contact"
		body, status, err := a.doRequest(ctx, http.MethodPost, path, contactRequest{Properties: contactProperties(contact)})
		if err != nil {
			return nil, err
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}

		var profile contactProfile
		if err := json.Unmarshal(body, &profile); err != nil {
			return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return profile.toRecord(), nil
	})
}

// UpdateContact updates an existing contact by id. The update endpoint
// returns no body, so the contact is re-fetched for the updated record.
func (a *Adapter) UpdateContact(ctx context.Context, contactID string, contact crm.Contact) (*crm.ContactRecord, error) {
	_, err := retry.Do(ctx, a.executor, "hubspot.update_contact", func(ctx context.Context) (struct{}, error) {
		path := fmt.Sprintf("%s/contacts/v1/contact/vid/%s/profile", a.config.APIBaseURL, url.PathEscape(contactID))
		_, status, err := a.doRequest(ctx, http.MethodPost, path, contactRequest{Properties: contactProperties(contact)})
		if err != nil {
			return struct{}{}, err
		}
		if status == http.StatusNotFound {
			return struct{}{}, crm.ErrContactNotFound
		}
		if status >= 400 {
			return struct{}{}, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}
	return a.GetContact(ctx, contactID)
}

// GetContact fetches a contact by id
func (a *Adapter) GetContact(ctx context.Context, contactID string) (*crm.ContactRecord, error) {
	return retry.Do(ctx, a.executor, "hubspot.get_contact", func(ctx context.Context) (*crm.ContactRecord, error) {
		path := fmt.Sprintf("%s/contacts/v1/contact/vid/%s/profile", a.config.APIBaseURL, url.PathEscape(contactID))
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, crm.ErrContactNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}

		var profile contactProfile
		if err := json.Unmarshal(body, &profile); err != nil {
			return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return profile.toRecord(), nil
	})
}

// CreateDeal creates a new deal
func (a *Adapter) CreateDeal(ctx context.Context, deal crm.Deal) (*crm.DealRecord, error) {
	return retry.Do(ctx, a.executor, "hubspot.create_deal", func(ctx context.Context) (*crm.DealRecord, error) {
		path := a.config.APIBaseURL + "/deals/v1/deal"
		body, status, err := a.doRequest(ctx, http.MethodPost, path, dealRequest{Properties: dealProperties(deal)})
		if err != nil {
			return nil, err
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}

		var resp dealResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return resp.toRecord(), nil
	})
}

// GetDeal fetches a deal by id
func (a *Adapter) GetDeal(ctx context.Context, dealID string) (*crm.DealRecord, error) {
	return retry.Do(ctx, a.executor, "hubspot.get_deal", func(ctx context.Context) (*crm.DealRecord, error) {
		path := fmt.Sprintf("%s/deals/v1/deal/%s", a.config.APIBaseURL, url.PathEscape(dealID))
		body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, crm.ErrDealNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}

		var resp dealResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return resp.toRecord(), nil
	})
}

// UpdateDeal updates an existing deal by id
func (a *Adapter) UpdateDeal(ctx context.Context, dealID string, deal crm.Deal) (*crm.DealRecord, error) {
	return retry.Do(ctx, a.executor, "hubspot.update_deal", func(ctx context.Context) (*crm.DealRecord, error) {
		path := fmt.Sprintf("%s/deals/v1/deal/%s", a.config.APIBaseURL, url.PathEscape(dealID))
		body, status, err := a.doRequest(ctx, http.MethodPut, path, dealRequest{Properties: dealProperties(deal)})
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, crm.ErrDealNotFound
		}
		if status >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}

		var resp dealResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return resp.toRecord(), nil
	})
}

// AssociateDealWithContact links a deal to a contact
func (a *Adapter) AssociateDealWithContact(ctx context.Context, dealID, contactID string) error {
	dealNum, err := strconv.ParseInt(dealID, 10, 64)
	if err != nil {
		return fmt.Errorf("hubspot: invalid deal id: %w", err)
	}
	contactNum, err := strconv.ParseInt(contactID, 10, 64)
	if err != nil {
		return fmt.Errorf("hubspot: invalid contact id: %w", err)
	}

	_, err = retry.Do(ctx, a.executor, "hubspot.associate_deal", func(ctx context.Context) (struct{}, error) {
		path := a.config.APIBaseURL + "/crm-associations/v1/associations"
		request := associationRequest{
			FromObjectID: dealNum,
			ToObjectID:   contactNum,
			Category:     "HUBSPOT_DEFINED",
			DefinitionID: dealToContactDefinitionID,
		}
		_, status, err := a.doRequest(ctx, http.MethodPut, path, request)
		if err != nil {
			return struct{}{}, err
		}
		if status >= 400 {
			return struct{}{}, fmt.Errorf("%w: HTTP %d", crm.ErrRequestFailed, status)
		}
		return struct{}{}, nil
	})
	return err
}

// doRequest performs an HTTP request to the HubSpot API and returns the
// body and status code. Transport failures map to ErrRequestFailed.
func (a *Adapter) doRequest(ctx context.Context, method, rawURL string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("hubspot: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("hubspot: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", crm.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("hubspot: failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// Ensure Adapter implements crm.Platform
var _ crm.Platform = (*Adapter)(nil)
