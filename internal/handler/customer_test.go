package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
)

// fakeCustomerStore backs the customer, service, and rent-due handler tests.
type fakeCustomerStore struct {
	nextID    int64
	customers map[int64]model.Customer
	listCalls int
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{nextID: 1, customers: map[int64]model.Customer{}}
}

func (f *fakeCustomerStore) add(c model.Customer) model.Customer {
	c.ID = f.nextID
	f.nextID++
	f.customers[c.ID] = c
	return c
}

func (f *fakeCustomerStore) Create(_ context.Context, c *model.Customer) error {
	*c = f.add(*c)
	return nil
}

func (f *fakeCustomerStore) GetByID(_ context.Context, id int64) (*model.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := c
	return &out, nil
}

func (f *fakeCustomerStore) List(_ context.Context, status, _ string) ([]*model.Customer, error) {
	f.listCalls++
	out := make([]*model.Customer, 0)
	for _, c := range f.customers {
		if status != "" && c.Status != status {
			continue
		}
		cc := c
		out = append(out, &cc)
	}
	return out, nil
}

func (f *fakeCustomerStore) Update(_ context.Context, c *model.Customer) error {
	if _, ok := f.customers[c.ID]; !ok {
		return repository.ErrNotFound
	}
	f.customers[c.ID] = *c
	return nil
}

func (f *fakeCustomerStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.customers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.customers, id)
	return nil
}

func newHandlerEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestCustomerListRejectsUnknownStatus(t *testing.T) {
	store := newFakeCustomerStore()
	h := NewCustomerHandler(store)
	e := newHandlerEcho()
	e.GET("/api/customers", h.List)

	req := httptest.NewRequest(http.MethodGet, "/api/customers?status=archived", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid status")
	assert.Zero(t, store.listCalls, "storage must not be queried for an invalid filter")
}

func TestCustomerListFiltersByStatus(t *testing.T) {
	store := newFakeCustomerStore()
	store.add(model.Customer{Name: "Asha", Mobile: "9000000001", Status: model.CustomerActive})
	store.add(model.Customer{Name: "Binu", Mobile: "9000000002", Status: model.CustomerInactive})
	h := NewCustomerHandler(store)
	e := newHandlerEcho()
	e.GET("/api/customers", h.List)

	req := httptest.NewRequest(http.MethodGet, "/api/customers?status=inactive", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Binu")
	assert.NotContains(t, rec.Body.String(), "Asha")
}

func TestCustomerCreateAndGet(t *testing.T) {
	store := newFakeCustomerStore()
	h := NewCustomerHandler(store)
	e := newHandlerEcho()
	e.POST("/api/customers", h.Create)
	e.GET("/api/customers/:id", h.Get)

	body := `{"name":"Asha","mobile":"9000000001","monthlyRent":500}`
	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"active"`)

	get := httptest.NewRequest(http.MethodGet, "/api/customers/1", nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, get)
	assert.Equal(t, http.StatusOK, getRec.Code)

	miss := httptest.NewRequest(http.MethodGet, "/api/customers/99", nil)
	missRec := httptest.NewRecorder()
	e.ServeHTTP(missRec, miss)
	assert.Equal(t, http.StatusNotFound, missRec.Code)
}
