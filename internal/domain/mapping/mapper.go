// Package mapping translates entities between the commerce platform and
// the CRM. All functions are pure and total: missing fields degrade to
// zero values, never to errors. Validating the result (e.g. requiring an
// email) is the orchestrator's job.
package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/domain/crm"
)

const (
	// OrderDealSource tags deals created from completed orders
	OrderDealSource = "BigCommerce"
	// CartDealSource tags deals created from abandoned carts
	CartDealSource = "BigCommerce - Abandoned Cart"
)

// CustomerToContact merges a customer with an address fallback into a CRM
// contact. The customer wins field-by-field; the address fills gaps only.
// Location fields always come from the address since customers carry none.
func CustomerToContact(customer *commerce.Customer, fallback *commerce.Address) crm.Contact {
	if customer == nil {
		customer = &commerce.Customer{}
	}
	if fallback == nil {
		fallback = &commerce.Address{}
	}

	contact := crm.Contact{
		Email:     firstNonEmpty(customer.Email, fallback.Email),
		FirstName: firstNonEmpty(customer.FirstName, fallback.FirstName),
		LastName:  firstNonEmpty(customer.LastName, fallback.LastName),
		Phone:     firstNonEmpty(customer.Phone, fallback.Phone),
		Company:   firstNonEmpty(customer.Company, fallback.Company),
		City:      fallback.City,
		State:     fallback.State,
		Zip:       fallback.Zip,
		Country:   fallback.Country,
	}

	if fallback.Street1 != "" {
		contact.Address = fallback.Street1
		if fallback.Street2 != "" {
			contact.Address += ", " + fallback.Street2
		}
	}

	return contact
}

// OrderToDeal maps an order and its line items to a CRM deal. The deal
// stage is supplied by the caller (configured, defaulting to closed-won).
func OrderToDeal(order *commerce.Order, products []commerce.OrderProduct, stage string) crm.Deal {
	amount := order.Amount()

	deal := crm.Deal{
		Name:      fmt.Sprintf("Order #%d", order.ID),
		Amount:    amount,
		Stage:     stage,
		Source:    OrderDealSource,
		OrderID:   strconv.FormatInt(order.ID, 10),
		CloseDate: order.CreatedAt(),
	}

	parts := []string{
		fmt.Sprintf("Order ID: %d", order.ID),
		"Status: " + firstNonEmpty(order.Status, "Unknown"),
		"Total: $" + amount.StringFixed(2),
	}
	if order.PaymentMethod != "" {
		parts = append(parts, "Payment Method: "+order.PaymentMethod)
	}
	if len(products) > 0 {
		parts = append(parts, "\nProducts:")
		for _, product := range products {
			parts = append(parts, fmt.Sprintf("- %s (Qty: %d) - $%s",
				product.DisplayName(), product.Quantity, product.UnitPriceDisplay()))
		}
	}
	deal.Description = strings.Join(parts, "\n")

	return deal
}

// CartToDeal maps an abandoned cart to a CRM deal. Both physical and
// digital line items are enumerated in the description.
func CartToDeal(cart *commerce.Cart, stage string) crm.Deal {
	amount := cart.Amount()

	deal := crm.Deal{
		Name:      fmt.Sprintf("Abandoned Cart #%s", cart.ID),
		Amount:    amount,
		Stage:     stage,
		Source:    CartDealSource,
		CartID:    cart.ID,
		CloseDate: cart.AbandonedAt(),
	}

	parts := []string{
		"Cart ID: " + cart.ID,
		"Status: Abandoned",
		"Total: $" + amount.StringFixed(2),
	}
	if len(cart.LineItems.PhysicalItems) > 0 {
		parts = append(parts, "\nProducts:")
		for _, item := range cart.LineItems.PhysicalItems {
			parts = append(parts, cartItemLine(item))
		}
	}
	for _, item := range cart.LineItems.DigitalItems {
		parts = append(parts, cartItemLine(item))
	}
	deal.Description = strings.Join(parts, "\n")

	return deal
}

// ContactToCustomer maps a CRM contact record to a partial commerce
// customer update. Only properties present on the contact are included.
func ContactToCustomer(contact *crm.ContactRecord) commerce.CustomerPatch {
	patch := commerce.CustomerPatch{}
	setIfPresent(&patch.Email, contact.Property("email"))
	setIfPresent(&patch.FirstName, contact.Property("firstname"))
	setIfPresent(&patch.LastName, contact.Property("lastname"))
	setIfPresent(&patch.Phone, contact.Property("phone"))
	setIfPresent(&patch.Company, contact.Property("company"))
	return patch
}

func cartItemLine(item commerce.CartItem) string {
	return fmt.Sprintf("- %s (Qty: %d) - $%s", item.Name, item.Quantity, item.UnitPrice().String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func setIfPresent(dst **string, value string) {
	if value != "" {
		v := value
		*dst = &v
	}
}
