package crm

import (
	"context"
	"errors"
)

var (
	// ErrPlatformNotConfigured indicates missing credentials for the CRM
	ErrPlatformNotConfigured = errors.New("crm: platform not configured")
	// ErrRequestFailed indicates the CRM rejected or failed a request
	ErrRequestFailed = errors.New("crm: platform request failed")
	// ErrInvalidResponse indicates an unparseable CRM response
	ErrInvalidResponse = errors.New("crm: invalid platform response")
	// ErrContactNotFound indicates no contact exists for the lookup
	ErrContactNotFound = errors.New("crm: contact not found")
	// ErrDealNotFound indicates the deal does not exist
	ErrDealNotFound = errors.New("crm: deal not found")
)

// Platform is the capability interface of the target CRM system
type Platform interface {
	// FindContactByEmail looks up a contact by email address, returning
	// ErrContactNotFound when no contact exists
	FindContactByEmail(ctx context.Context, email string) (*ContactRecord, error)

	// CreateContact creates a new contact
	CreateContact(ctx context.Context, contact Contact) (*ContactRecord, error)

	// UpdateContact updates an existing contact by id
	UpdateContact(ctx context.Context, contactID string, contact Contact) (*ContactRecord, error)

	// GetContact fetches a contact by id
	GetContact(ctx context.Context, contactID string) (*ContactRecord, error)

	// CreateDeal creates a new deal
	CreateDeal(ctx context.Context, deal Deal) (*DealRecord, error)

	// GetDeal fetches a deal by id
	GetDeal(ctx context.Context, dealID string) (*DealRecord, error)

	// UpdateDeal updates an existing deal by id
	UpdateDeal(ctx context.Context, dealID string, deal Deal) (*DealRecord, error)

	// AssociateDealWithContact links a deal to a contact
	AssociateDealWithContact(ctx context.Context, dealID, contactID string) error
}
