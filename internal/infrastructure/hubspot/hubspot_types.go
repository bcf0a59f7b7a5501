package hubspot

import (
	"strconv"

	"github.com/syncbridge/backend/internal/domain/crm"
)

// propertyValue is the {"value": "..."} wrapper HubSpot uses in responses
type propertyValue struct {
	Value string `json:"value"`
}

// contactProfile is a contact as returned by the contacts API
type contactProfile struct {
	Vid        int64                    `json:"vid"`
	Properties map[string]propertyValue `json:"properties"`
}

// toRecord flattens the property bag into a domain contact record
func (p *contactProfile) toRecord() *crm.ContactRecord {
	properties := make(map[string]string, len(p.Properties))
	for name, prop := range p.Properties {
		properties[name] = prop.Value
	}
	return &crm.ContactRecord{
		ID:         strconv.FormatInt(p.Vid, 10),
		Properties: properties,
	}
}

// contactProperty is one property in a contact create/update request
type contactProperty struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// contactRequest is the contacts API write body
type contactRequest struct {
	Properties []contactProperty `json:"properties"`
}

// contactProperties builds the write property list, skipping empty fields
func contactProperties(contact crm.Contact) []contactProperty {
	pairs := []struct {
		name  string
		value string
	}{
		{"email", contact.Email},
		{"firstname", contact.FirstName},
		{"lastname", contact.LastName},
		{"phone", contact.Phone},
		{"company", contact.Company},
		{"address", contact.Address},
		{"city", contact.City},
		{"state", contact.State},
		{"zip", contact.Zip},
		{"country", contact.Country},
	}

	properties := make([]contactProperty, 0, len(pairs))
	for _, pair := range pairs {
		if pair.value != "" {
			properties = append(properties, contactProperty{Property: pair.name, Value: pair.value})
		}
	}
	return properties
}

// dealProperty is one property in a deal create/update request
type dealProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// dealAssociations links a new deal to existing contacts
type dealAssociations struct {
	AssociatedVids []int64 `json:"associatedVids"`
}

// dealRequest is the deals API write body
type dealRequest struct {
	Properties   []dealProperty    `json:"properties"`
	Associations *dealAssociations `json:"associations,omitempty"`
}

// dealProperties builds the write property list for a deal
func dealProperties(deal crm.Deal) []dealProperty {
	properties := []dealProperty{
		{Name: "dealname", Value: deal.Name},
		{Name: "amount", Value: deal.Amount.String()},
		{Name: "dealstage", Value: deal.Stage},
	}
	if deal.Pipeline != "" {
		properties = append(properties, dealProperty{Name: "pipeline", Value: deal.Pipeline})
	}
	if deal.CloseDate != nil {
		properties = append(properties, dealProperty{
			Name:  "closedate",
			Value: strconv.FormatInt(deal.CloseDate.UnixMilli(), 10),
		})
	}
	if deal.Description != "" {
		properties = append(properties, dealProperty{Name: "description", Value: deal.Description})
	}
	if deal.Source != "" {
		properties = append(properties, dealProperty{Name: "source", Value: deal.Source})
	}
	if deal.OrderID != "" {
		properties = append(properties, dealProperty{Name: "order_id", Value: deal.OrderID})
	}
	if deal.CartID != "" {
		properties = append(properties, dealProperty{Name: "cart_id", Value: deal.CartID})
	}
	return properties
}

// dealResponse is a deal as returned by the deals API
type dealResponse struct {
	DealID     int64                    `json:"dealId"`
	Properties map[string]propertyValue `json:"properties"`
}

// toRecord flattens the property bag into a domain deal record
func (d *dealResponse) toRecord() *crm.DealRecord {
	properties := make(map[string]string, len(d.Properties))
	for name, prop := range d.Properties {
		properties[name] = prop.Value
	}
	return &crm.DealRecord{
		ID:         strconv.FormatInt(d.DealID, 10),
		Properties: properties,
	}
}

// associationRequest is the crm-associations API body
type associationRequest struct {
	FromObjectID int64  `json:"fromObjectId"`
	ToObjectID   int64  `json:"toObjectId"`
	Category     string `json:"category"`
	DefinitionID int    `json:"definitionId"`
}

// dealToContactDefinitionID is the platform-defined association type for
// linking a deal to a contact
const dealToContactDefinitionID = 3
