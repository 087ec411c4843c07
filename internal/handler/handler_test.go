package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-api/internal/domain/customer"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// --- Mock repositories ---

type mockCustomerRepo struct {
	byEmail map[string]*customer.Customer
	byID    map[string]*customer.Customer
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{
		byEmail: make(map[string]*customer.Customer),
		byID:    make(map[string]*customer.Customer),
	}
}

func (m *mockCustomerRepo) add(c *customer.Customer) {
	m.byEmail[c.Email] = c
	m.byID[c.ID] = c
}

func (m *mockCustomerRepo) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	c, ok := m.byEmail[email]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) Create(_ context.Context, c *customer.Customer) error {
	m.add(c)
	return nil
}

func (m *mockCustomerRepo) ListEmails(_ context.Context) ([]string, error) { return nil, nil }

type mockProductRepo struct {
	byID map[string]*product.Product
}

func newMockProductRepo(products ...*product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{byID: byID}
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) UpdateQuantities(_ context.Context, updates []product.QuantityUpdate) error {
	for _, u := range updates {
		if p, ok := m.byID[u.ID]; ok {
			p.Quantity = u.Quantity
		}
	}
	return nil
}

type mockOrderRepo struct {
	byID map[string]*order.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byID: make(map[string]*order.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) (*order.Order, error) {
	m.byID[o.ID] = o
	return o, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

// --- Test fixture ---

type fixture struct {
	router    http.Handler
	customers *mockCustomerRepo
	products  *mockProductRepo
	orders    *mockOrderRepo
}

func newFixture(products ...*product.Product) *fixture {
	customerRepo := newMockCustomerRepo()
	productRepo := newMockProductRepo(products...)
	orderRepo := newMockOrderRepo()

	customerService := customer.NewService(customerRepo)
	orderService := order.NewService(customerRepo, productRepo, orderRepo)

	h := NewHandler(customerService, orderService, orderRepo, productRepo)
	return &fixture{
		router:    NewRouter(h),
		customers: customerRepo,
		products:  productRepo,
		orders:    orderRepo,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func testProduct(id, price string, quantity int) *product.Product {
	return &product.Product{
		ID:       id,
		Name:     "product " + id,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
}

// --- Customer endpoint ---

func TestCreateCustomer(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/customers", createCustomerRequest{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[customerResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Ada Lovelace", resp.Name)
	assert.Equal(t, "ada@example.com", resp.Email)
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/customers", createCustomerRequest{
		Name: "Ada", Email: "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/customers", createCustomerRequest{
		Name: "Ada Again", Email: "ada@example.com",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateCustomer_EmptyEmail(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/customers", createCustomerRequest{Name: "Ada"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCustomer_InvalidBody(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Order endpoints ---

func registerCustomer(t *testing.T, f *fixture) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/customers", createCustomerRequest{
		Name: "Ada", Email: "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[customerResponse](t, rec).ID
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(testProduct("p1", "5.00", 10))
	customerID := registerCustomer(t, f)

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: "p1", Quantity: 3}},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[orderResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, customerID, resp.CustomerID)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p1", resp.Items[0].ProductID)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.InDelta(t, 5.00, resp.Items[0].Price, 0.001)

	assert.Equal(t, 7, f.products.byID["p1"].Quantity)
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	f := newFixture(testProduct("p1", "5.00", 10))

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{
		CustomerID: "ghost",
		Items:      []orderLineRequest{{ProductID: "p1", Quantity: 1}},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	f := newFixture()
	customerID := registerCustomer(t, f)

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{CustomerID: customerID})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	f := newFixture(testProduct("p1", "5.00", 10))
	customerID := registerCustomer(t, f)

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{
		CustomerID: customerID,
		Items: []orderLineRequest{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "missing", Quantity: 1},
		},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 10, f.products.byID["p1"].Quantity)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(testProduct("p1", "5.00", 5))
	customerID := registerCustomer(t, f)

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: "p1", Quantity: 6}},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Contains(t, resp.Message, "insufficient stock")
	assert.Equal(t, 5, f.products.byID["p1"].Quantity)
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	f := newFixture(testProduct("p1", "5.00", 5))
	customerID := registerCustomer(t, f)

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: "p1", Quantity: 0}},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetOrderByID(t *testing.T) {
	f := newFixture(testProduct("p1", "5.00", 10))
	customerID := registerCustomer(t, f)

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{
		CustomerID: customerID,
		Items:      []orderLineRequest{{ProductID: "p1", Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[orderResponse](t, rec)

	rec = f.do(t, http.MethodGet, "/api/orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[orderResponse](t, rec)
	assert.Equal(t, created.ID, fetched.ID)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, 2, fetched.Items[0].Quantity)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/orders/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Product endpoint ---

func TestListProducts(t *testing.T) {
	f := newFixture(testProduct("p1", "5.00", 10), testProduct("p2", "20.00", 4))

	rec := f.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[[]productResponse](t, rec)
	assert.Len(t, resp, 2)
}
