package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
)

type fakeServiceStore struct {
	nextID      int64
	services    map[int64]model.Service
	updateCalls int
}

func newFakeServiceStore() *fakeServiceStore {
	return &fakeServiceStore{nextID: 1, services: map[int64]model.Service{}}
}

func (f *fakeServiceStore) add(s model.Service) model.Service {
	s.ID = f.nextID
	f.nextID++
	f.services[s.ID] = s
	return s
}

func (f *fakeServiceStore) Create(_ context.Context, s *model.Service) error {
	*s = f.add(*s)
	return nil
}

func (f *fakeServiceStore) GetByID(_ context.Context, id int64) (*model.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (f *fakeServiceStore) List(_ context.Context, fl repository.ListFilter) ([]*model.Service, error) {
	out := make([]*model.Service, 0)
	for _, s := range f.services {
		if fl.Status != "" && s.Status != fl.Status {
			continue
		}
		if fl.ServiceType != "" && s.ServiceType != fl.ServiceType {
			continue
		}
		ss := s
		out = append(out, &ss)
	}
	return out, nil
}

func (f *fakeServiceStore) Update(_ context.Context, s *model.Service) error {
	f.updateCalls++
	if _, ok := f.services[s.ID]; !ok {
		return repository.ErrNotFound
	}
	f.services[s.ID] = *s
	return nil
}

func (f *fakeServiceStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.services, id)
	return nil
}

type serviceFixture struct {
	e         *echo.Echo
	services  *fakeServiceStore
	customers *fakeCustomerStore
}

func newServiceFixture() *serviceFixture {
	services := newFakeServiceStore()
	customers := newFakeCustomerStore()
	h := NewServiceHandler(services, customers)
	e := newHandlerEcho()
	e.GET("/api/services", h.List)
	e.POST("/api/services", h.Create)
	e.PUT("/api/services/:id", h.Update)
	return &serviceFixture{e: e, services: services, customers: customers}
}

func (f *serviceFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestServiceCreateRequiresExistingCustomer(t *testing.T) {
	f := newServiceFixture()

	rec := f.do(http.MethodPost, "/api/services",
		`{"customerId":42,"serviceType":"repair","scheduledDate":"2026-09-01"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer not found")
	assert.Empty(t, f.services.services)
}

func TestServiceUpdateRejectsUnknownCustomer(t *testing.T) {
	f := newServiceFixture()
	cust := f.customers.add(model.Customer{Name: "Asha", Mobile: "9000000001", Status: model.CustomerActive})
	f.services.add(model.Service{
		CustomerID:    cust.ID,
		ServiceType:   model.ServiceRepair,
		ScheduledDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:        model.ServicePending,
	})

	// Reassigning to a customer that does not exist is a 404, not a
	// constraint violation surfaced as a 500.
	rec := f.do(http.MethodPut, "/api/services/1",
		`{"customerId":99,"serviceType":"repair","scheduledDate":"2026-09-02"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer not found")
	assert.Zero(t, f.services.updateCalls)

	// Keeping the same customer still updates fine.
	rec = f.do(http.MethodPut, "/api/services/1",
		`{"customerId":1,"serviceType":"maintenance","scheduledDate":"2026-09-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"serviceType":"maintenance"`)
}

func TestServiceListRejectsUnknownFilters(t *testing.T) {
	f := newServiceFixture()

	rec := f.do(http.MethodGet, "/api/services?status=paused", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid status")

	rec = f.do(http.MethodGet, "/api/services?type=descaling", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid type")
}
