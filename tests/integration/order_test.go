//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestPlaceOrder(t *testing.T) {
	customerID := registerCustomer(t, "order-happy")
	before := getProduct(t, keyboardID)

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: keyboardID, Quantity: 3}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	o := decodeJSON[orderResponse](t, resp)
	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order ID %q is not a valid UUID", o.ID)
	}
	if o.CustomerID != customerID {
		t.Errorf("customer_id: got %q, want %q", o.CustomerID, customerID)
	}
	if len(o.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(o.Items))
	}
	if o.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", o.Items[0].Quantity)
	}
	if o.Items[0].Price != 129.99 {
		t.Errorf("price: got %v, want 129.99", o.Items[0].Price)
	}

	after := getProduct(t, keyboardID)
	if after.Quantity != before.Quantity-3 {
		t.Errorf("stock: got %d, want %d", after.Quantity, before.Quantity-3)
	}
}

func TestPlaceOrder_UnknownCustomer(t *testing.T) {
	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: "00000000-0000-4000-8000-000000000000",
		Items:      []orderLineRequest{{ProductID: keyboardID, Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	customerID := registerCustomer(t, "order-empty")

	resp := doPost(t, "/api/orders", orderRequest{CustomerID: customerID})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	customerID := registerCustomer(t, "order-missing-product")
	before := getProduct(t, mouseID)

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: customerID,
		Items: []orderLineRequest{
			{ProductID: mouseID, Quantity: 1},
			{ProductID: "00000000-0000-4000-8000-000000000001", Quantity: 1},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	// The known product's stock must not change when the order is rejected.
	after := getProduct(t, mouseID)
	if after.Quantity != before.Quantity {
		t.Errorf("stock changed on rejected order: got %d, want %d", after.Quantity, before.Quantity)
	}
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	customerID := registerCustomer(t, "order-zero-qty")

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: mouseID, Quantity: 0}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	customerID := registerCustomer(t, "order-too-many")
	before := getProduct(t, monitorID)

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: monitorID, Quantity: before.Quantity + 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	after := getProduct(t, monitorID)
	if after.Quantity != before.Quantity {
		t.Errorf("stock changed on rejected order: got %d, want %d", after.Quantity, before.Quantity)
	}
}

func TestPlaceOrder_ExactStock(t *testing.T) {
	customerID := registerCustomer(t, "order-last-one")
	before := getProduct(t, cableID)
	if before.Quantity != 1 {
		t.Skipf("cable already ordered, quantity %d", before.Quantity)
	}

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: cableID, Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	after := getProduct(t, cableID)
	if after.Quantity != 0 {
		t.Errorf("stock: got %d, want 0", after.Quantity)
	}
}

func TestGetOrder(t *testing.T) {
	customerID := registerCustomer(t, "order-fetch")

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: mouseID, Quantity: 2}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = doGet(t, "/api/orders/"+created.ID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	fetched := decodeJSON[orderResponse](t, resp)
	if fetched.ID != created.ID {
		t.Errorf("id: got %q, want %q", fetched.ID, created.ID)
	}
	if len(fetched.Items) != 1 || fetched.Items[0].ProductID != mouseID {
		t.Errorf("unexpected lines: %+v", fetched.Items)
	}
	if fetched.Items[0].Price != 49.5 {
		t.Errorf("price: got %v, want 49.5", fetched.Items[0].Price)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/00000000-0000-4000-8000-00000000dead")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
