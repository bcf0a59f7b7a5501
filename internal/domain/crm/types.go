package crm

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Contact is the mapped contact pushed to the CRM. Email is the only
// mandatory field; everything else fills in when the source has it.
type Contact struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Company   string
	Address   string
	City      string
	State     string
	Zip       string
	Country   string
}

// Deal is the mapped deal pushed to the CRM. Exactly one of OrderID or
// CartID is set, tying the deal back to its commerce entity.
type Deal struct {
	Name        string
	Amount      decimal.Decimal
	Stage       string
	Pipeline    string
	CloseDate   *time.Time
	Description string
	Source      string
	OrderID     string
	CartID      string
}

// ContactRecord is a contact as returned by the CRM: an id plus a flat
// property bag
type ContactRecord struct {
	ID         string
	Properties map[string]string
}

// Property returns a property value, empty string when absent
func (r *ContactRecord) Property(name string) string {
	if r == nil || r.Properties == nil {
		return ""
	}
	return r.Properties[name]
}

// Email returns the contact's email property
func (r *ContactRecord) Email() string {
	return r.Property("email")
}

// BoolProperty interprets a property as a boolean flag ("true"/"false")
func (r *ContactRecord) BoolProperty(name string) bool {
	return r.Property(name) == "true"
}

// LastModifiedAt parses the CRM last-modified property (epoch millis),
// nil when absent or malformed
func (r *ContactRecord) LastModifiedAt() *time.Time {
	return parseEpochMillis(r.Property("lastmodifieddate"))
}

// DealRecord is a deal as returned by the CRM
type DealRecord struct {
	ID         string
	Properties map[string]string
}

// Property returns a property value, empty string when absent
func (r *DealRecord) Property(name string) string {
	if r == nil || r.Properties == nil {
		return ""
	}
	return r.Properties[name]
}

// Stage returns the deal's pipeline stage property
func (r *DealRecord) Stage() string {
	return r.Property("dealstage")
}

// OrderID returns the commerce order id custom property, empty when the
// deal did not originate from an order sync
func (r *DealRecord) OrderID() string {
	return r.Property("order_id")
}

// LastModifiedAt parses the CRM last-modified property (epoch millis),
// nil when absent or malformed
func (r *DealRecord) LastModifiedAt() *time.Time {
	return parseEpochMillis(r.Property("hs_lastmodifieddate"))
}

func parseEpochMillis(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(millis).UTC()
	return &t
}
