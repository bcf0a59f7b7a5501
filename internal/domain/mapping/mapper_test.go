package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/domain/crm"
)

func floatPtr(f float64) *float64 { return &f }

func contactRecord(props map[string]string) *crm.ContactRecord {
	return &crm.ContactRecord{ID: "1", Properties: props}
}

func TestCustomerToContact(t *testing.T) {
	t.Run("maps customer fields", func(t *testing.T) {
		customer := &commerce.Customer{
			Email:     "test@example.com",
			FirstName: "John",
			LastName:  "Doe",
			Phone:     "555-1234",
			Company:   "Test Co",
		}

		contact := CustomerToContact(customer, nil)

		assert.Equal(t, "test@example.com", contact.Email)
		assert.Equal(t, "John", contact.FirstName)
		assert.Equal(t, "Doe", contact.LastName)
		assert.Equal(t, "555-1234", contact.Phone)
		assert.Equal(t, "Test Co", contact.Company)
	})

	t.Run("falls back to billing address for missing fields", func(t *testing.T) {
		billing := &commerce.Address{
			Email:     "billing@example.com",
			FirstName: "Jane",
			LastName:  "Smith",
			Street1:   "123 Main St",
			City:      "Boston",
			State:     "MA",
			Zip:       "02101",
			Country:   "US",
		}

		contact := CustomerToContact(&commerce.Customer{}, billing)

		assert.Equal(t, "billing@example.com", contact.Email)
		assert.Equal(t, "Jane", contact.FirstName)
		assert.Equal(t, "Smith", contact.LastName)
		assert.Equal(t, "123 Main St", contact.Address)
		assert.Equal(t, "Boston", contact.City)
		assert.Equal(t, "MA", contact.State)
		assert.Equal(t, "02101", contact.Zip)
		assert.Equal(t, "US", contact.Country)
	})

	t.Run("primary wins field by field without cross contamination", func(t *testing.T) {
		customer := &commerce.Customer{
			Email: "primary@example.com",
			Phone: "111-1111",
		}
		billing := &commerce.Address{
			Email:     "billing@example.com",
			Phone:     "222-2222",
			FirstName: "Fallback",
		}

		contact := CustomerToContact(customer, billing)

		// primary has phone, fallback phone must never be used
		assert.Equal(t, "primary@example.com", contact.Email)
		assert.Equal(t, "111-1111", contact.Phone)
		// primary has no first name, fallback fills the gap
		assert.Equal(t, "Fallback", contact.FirstName)
	})

	t.Run("concatenates street lines", func(t *testing.T) {
		billing := &commerce.Address{Street1: "1 Elm St", Street2: "Suite 4"}

		contact := CustomerToContact(nil, billing)

		assert.Equal(t, "1 Elm St, Suite 4", contact.Address)
	})

	t.Run("tolerates nil inputs", func(t *testing.T) {
		contact := CustomerToContact(nil, nil)
		assert.Empty(t, contact.Email)
	})
}

func TestOrderToDeal(t *testing.T) {
	order := &commerce.Order{
		ID:            12345,
		TotalIncTax:   "99.99",
		Status:        "Completed",
		DateCreated:   "2023-11-01T10:00:00Z",
		PaymentMethod: "Credit Card",
	}
	products := []commerce.OrderProduct{
		{Name: "Product 1", Quantity: 2, PriceIncTax: "29.99"},
		{Name: "Product 2", Quantity: 1, PriceIncTax: "39.99"},
	}

	t.Run("maps order header and line items", func(t *testing.T) {
		deal := OrderToDeal(order, products, "closedwon")

		assert.Equal(t, "Order #12345", deal.Name)
		assert.Equal(t, "99.99", deal.Amount.String())
		assert.Equal(t, "closedwon", deal.Stage)
		assert.Equal(t, "BigCommerce", deal.Source)
		assert.Equal(t, "12345", deal.OrderID)
		assert.Empty(t, deal.CartID)
		assert.Contains(t, deal.Description, "Order ID: 12345")
		assert.Contains(t, deal.Description, "Product 1")
		assert.Contains(t, deal.Description, "Product 2")
		if assert.NotNil(t, deal.CloseDate) {
			assert.Equal(t, time.Date(2023, 11, 1, 10, 0, 0, 0, time.UTC), deal.CloseDate.UTC())
		}
	})

	t.Run("description is deterministic and ordered", func(t *testing.T) {
		first := OrderToDeal(order, products, "closedwon")
		second := OrderToDeal(order, products, "closedwon")

		assert.Equal(t, first.Description, second.Description)
		expected := "Order ID: 12345\n" +
			"Status: Completed\n" +
			"Total: $99.99\n" +
			"Payment Method: Credit Card\n" +
			"\nProducts:\n" +
			"- Product 1 (Qty: 2) - $29.99\n" +
			"- Product 2 (Qty: 1) - $39.99"
		assert.Equal(t, expected, first.Description)
	})

	t.Run("falls back through total and defaults amount to zero", func(t *testing.T) {
		deal := OrderToDeal(&commerce.Order{ID: 1, Total: "10.50"}, nil, "closedwon")
		assert.Equal(t, "10.5", deal.Amount.String())

		deal = OrderToDeal(&commerce.Order{ID: 2}, nil, "closedwon")
		assert.True(t, deal.Amount.IsZero())

		deal = OrderToDeal(&commerce.Order{ID: 3, TotalIncTax: "not-a-number"}, nil, "closedwon")
		assert.True(t, deal.Amount.IsZero())
	})

	t.Run("omits product section when no line items", func(t *testing.T) {
		deal := OrderToDeal(&commerce.Order{ID: 7, Status: "Pending"}, nil, "closedwon")

		assert.NotContains(t, deal.Description, "Products:")
		assert.Contains(t, deal.Description, "Status: Pending")
	})

	t.Run("unknown status placeholder", func(t *testing.T) {
		deal := OrderToDeal(&commerce.Order{ID: 8}, nil, "closedwon")
		assert.Contains(t, deal.Description, "Status: Unknown")
	})
}

func TestCartToDeal(t *testing.T) {
	cart := &commerce.Cart{
		ID:          "abc123",
		CartAmount:  floatPtr(150.00),
		UpdatedTime: "2023-11-01T10:00:00Z",
		LineItems: commerce.CartLineItems{
			PhysicalItems: []commerce.CartItem{
				{Name: "Product A", Quantity: 1, SalePrice: floatPtr(75.00)},
				{Name: "Product B", Quantity: 1, SalePrice: floatPtr(75.00)},
			},
		},
	}

	t.Run("maps cart to deal", func(t *testing.T) {
		deal := CartToDeal(cart, "appointmentscheduled")

		assert.Equal(t, "Abandoned Cart #abc123", deal.Name)
		assert.Equal(t, "150", deal.Amount.String())
		assert.Equal(t, "appointmentscheduled", deal.Stage)
		assert.Equal(t, "BigCommerce - Abandoned Cart", deal.Source)
		assert.Equal(t, "abc123", deal.CartID)
		assert.Empty(t, deal.OrderID)
		assert.Contains(t, deal.Description, "Cart ID: abc123")
		assert.Contains(t, deal.Description, "Product A")
		assert.Contains(t, deal.Description, "Product B")
	})

	t.Run("enumerates digital items", func(t *testing.T) {
		cart := &commerce.Cart{
			ID:         "dig1",
			BaseAmount: floatPtr(20),
			LineItems: commerce.CartLineItems{
				PhysicalItems: []commerce.CartItem{{Name: "Mug", Quantity: 1, ListPrice: floatPtr(12.5)}},
				DigitalItems:  []commerce.CartItem{{Name: "Ebook", Quantity: 2, SalePrice: floatPtr(3.75)}},
			},
		}

		deal := CartToDeal(cart, "appointmentscheduled")

		assert.Contains(t, deal.Description, "- Mug (Qty: 1) - $12.5")
		assert.Contains(t, deal.Description, "- Ebook (Qty: 2) - $3.75")
	})

	t.Run("close date falls back to creation time", func(t *testing.T) {
		cart := &commerce.Cart{ID: "c2", CreatedTime: "2023-10-01T08:00:00Z"}

		deal := CartToDeal(cart, "appointmentscheduled")

		if assert.NotNil(t, deal.CloseDate) {
			assert.Equal(t, time.Date(2023, 10, 1, 8, 0, 0, 0, time.UTC), deal.CloseDate.UTC())
		}
	})

	t.Run("empty cart defaults amount to zero", func(t *testing.T) {
		deal := CartToDeal(&commerce.Cart{ID: "empty"}, "appointmentscheduled")

		assert.True(t, deal.Amount.IsZero())
		assert.NotContains(t, deal.Description, "Products:")
	})
}

func TestContactToCustomer(t *testing.T) {
	t.Run("maps present properties only", func(t *testing.T) {
		record := contactRecord(map[string]string{
			"email":     "crm@example.com",
			"firstname": "Carla",
			"phone":     "999-0000",
		})

		patch := ContactToCustomer(record)

		if assert.NotNil(t, patch.Email) {
			assert.Equal(t, "crm@example.com", *patch.Email)
		}
		if assert.NotNil(t, patch.FirstName) {
			assert.Equal(t, "Carla", *patch.FirstName)
		}
		if assert.NotNil(t, patch.Phone) {
			assert.Equal(t, "999-0000", *patch.Phone)
		}
		assert.Nil(t, patch.LastName)
		assert.Nil(t, patch.Company)
	})
}
