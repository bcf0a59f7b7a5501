package bigcommerce

import "github.com/syncbridge/backend/internal/domain/commerce"

// cartResponse wraps the v3 cart payload
type cartResponse struct {
	Data *commerce.Cart `json:"data"`
}

// orderStatusIDs maps order status names to the platform's numeric status ids.
// The v2 order update API accepts ids only.
var orderStatusIDs = map[string]int{
	"Incomplete":                   0,
	"Pending":                      1,
	"Shipped":                      2,
	"Partially Shipped":            3,
	"Refunded":                     4,
	"Cancelled":                    5,
	"Declined":                     6,
	"Awaiting Payment":             7,
	"Awaiting Pickup":              8,
	"Awaiting Shipment":            9,
	"Completed":                    10,
	"Awaiting Fulfillment":         11,
	"Manual Verification Required": 12,
	"Disputed":                     13,
	"Partially Refunded":           14,
}

// orderStatusUpdateRequest is the v2 order status update body
type orderStatusUpdateRequest struct {
	StatusID int `json:"status_id"`
}
