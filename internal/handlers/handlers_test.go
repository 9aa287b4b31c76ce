package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/detailing-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	ucOrder "github.com/BruksfildServices01/detailing-scheduler/internal/usecase/order"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	store.AddService(models.Service{ID: "wash", Name: "Wash", DurationMin: 30, Price: decimal.NewFromInt(500), Active: true})
	store.AddService(models.Service{ID: "wax", Name: "Wax", DurationMin: 45, Price: decimal.NewFromInt(750), Active: true})
	store.AddClient(models.Client{ID: "c1", FullName: "Ivan Petrov", Phone: "+79000000001"})
	store.AddCar(models.Car{ID: "car1", ClientID: "c1", Make: "Toyota", Model: "Camry"})

	log := zap.NewNop().Sugar()
	repos := store.Repositories()

	create := ucOrder.NewCreateOrder(repos, store, nil, nil, log)
	orders := NewOrderHandler(
		create,
		ucOrder.NewUpdateOrder(repos, store, nil, nil, log),
		ucOrder.NewDeleteOrder(store, nil, log),
		ucOrder.NewListOrders(store, repos.Services),
		log,
	)
	public := NewPublicHandler(
		nil,
		ucOrder.NewGetAvailableSlots(store, domain.DefaultBusinessHours),
		ucOrder.NewCreatePublicBooking(create, cache.NewMemoryIdempotencyStore(), cache.DefaultTTL, log),
		log,
	)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/public/available-slots/", public.AvailableSlots)
	api.POST("/public/booking/", public.Booking)
	api.GET("/orders/", orders.List)
	api.POST("/orders/create/", orders.Create)
	api.PUT("/orders/update/:id", orders.Update)
	api.DELETE("/orders/delete/:id", orders.Delete)
	api.POST("/clients/create/", NewClientHandler(nil, log).Create)
	api.POST("/employees/create/", NewAuthHandler(nil, nil, log).CreateEmployee)
	api.POST("/media/upload/", NewMediaHandler(nil, log).Upload)

	return &testServer{router: r, store: store}
}

func (s *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func adminOrder(start string, services ...string) gin.H {
	return gin.H{"client_id": "c1", "car_id": "car1", "service_ids": services, "start_time": start}
}

func booking(phone, serviceID, start string) gin.H {
	return gin.H{
		"client":     gin.H{"name": "Oleg", "phone": phone},
		"car":        gin.H{"make": "Lada", "model": "Vesta"},
		"service_id": serviceID,
		"start_time": start,
	}
}

// --------------------------------------------------
// Orders
// --------------------------------------------------

func TestCreateOrderEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/orders/create/", adminOrder("2025-10-20T10:00:00Z", "wash", "wax"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]string](t, rec)
	assert.NotEmpty(t, body["_id"])

	rec = s.do(http.MethodPost, "/api/orders/create/", adminOrder("2025-10-20T11:00:00Z", "wash"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	errBody := decode[map[string]string](t, rec)
	assert.Equal(t, domain.CodeTimeConflict, errBody["error_code"])
	assert.Contains(t, errBody["message"], "Ivan Petrov")
}

func TestCreateOrderEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		body any
		code string
	}{
		{gin.H{"client_id": "c1"}, domain.CodeMissingFields},
		{adminOrder("2025-10-20T10:00:00Z", "nope"), domain.CodeServicesNotFound},
		{adminOrder("yesterday", "wash"), domain.CodeInvalidStartTime},
		{"{not json", "invalid_request"},
	}

	for _, tc := range cases {
		rec := s.do(http.MethodPost, "/api/orders/create/", tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, tc.code, decode[map[string]string](t, rec)["error_code"])
	}
	assert.Empty(t, s.store.Orders())
}

func TestUpdateAndDeleteOrderEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/orders/create/", adminOrder("2025-10-20T10:00:00Z", "wash"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]string](t, rec)["_id"]

	rec = s.do(http.MethodPut, "/api/orders/update/"+id, `{"client_id":"other"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")

	rec = s.do(http.MethodPut, "/api/orders/update/"+id, gin.H{"service_ids": []string{"wash", "wax"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Order](t, rec)
	assert.Equal(t, "2025-10-20T11:15:00Z", updated.EndTime)

	rec = s.do(http.MethodPut, "/api/orders/update/missing", gin.H{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/orders/delete/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/orders/delete/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(http.MethodPost, "/api/orders/create/", adminOrder("2025-10-20T10:00:00Z", "wash"))
	s.do(http.MethodPost, "/api/orders/create/", adminOrder("2025-10-22T10:00:00Z", "wax"))

	rec := s.do(http.MethodGet, "/api/orders/?from=2025-10-20&to=2025-10-21", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			ClientName   string   `json:"client_name"`
			ServiceNames []string `json:"service_names"`
		} `json:"data"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "Ivan Petrov", body.Data[0].ClientName)
	assert.Equal(t, []string{"Wash"}, body.Data[0].ServiceNames)
}

// --------------------------------------------------
// Public
// --------------------------------------------------

func TestAvailableSlotsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/public/available-slots/?date=2025-10-20&duration=90", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	slots := decode[[]string](t, rec)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "18:30", slots[len(slots)-1])

	rec = s.do(http.MethodGet, "/api/public/available-slots/?date=2025-10-20&duration=1440", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, q := range []string{"", "?date=2025-10-20", "?date=tomorrow&duration=30", "?date=2025-10-20&duration=0"} {
		rec = s.do(http.MethodGet, "/api/public/available-slots/"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestPublicBookingEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/public/booking/", booking("+7 900 111 22 33", "wash", "2025-10-20T10:00:00Z"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[map[string]string](t, rec)["order_id"])

	orders := s.store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, string(domain.StatusPendingConfirmation), orders[0].Status)

	rec = s.do(http.MethodPost, "/api/public/booking/", booking("+7 900 111 22 33", "ghost", "2025-10-20T12:00:00Z"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/public/booking/", booking("+7 900 111 22 44", "wash", "2025-10-20T10:15:00Z"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/public/booking/", gin.H{"service_id": "wash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicBookingIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	body := booking("+7 900 111 22 33", "wash", "2025-10-20T10:00:00Z")

	first := s.do(http.MethodPost, "/api/public/booking/", body, IdempotencyHeader, "abc")
	require.Equal(t, http.StatusCreated, first.Code)

	second := s.do(http.MethodPost, "/api/public/booking/", body, IdempotencyHeader, "abc")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Len(t, s.store.Orders(), 1)
}

// --------------------------------------------------
// Catalogue validation paths
// --------------------------------------------------

func TestClientCreateRejectsBadPhone(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/clients/create/", gin.H{"full_name": "X", "phone_number": "12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_phone", decode[map[string]string](t, rec)["error_code"])
}

func TestEmployeeCreateRejectsUnknownRole(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/employees/create/", gin.H{
		"username": "kate", "password": "secret1", "full_name": "Kate", "role": "Janitor",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_role", decode[map[string]string](t, rec)["error_code"])
}

func TestMediaUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", "a.png")
	_, _ = part.Write([]byte("x"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/media/upload/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewEmployeeHashesPassword(t *testing.T) {
	emp, err := NewEmployee("  Kate ", "secret1", " Kate Ivanova ", models.RoleMaster)
	require.NoError(t, err)

	assert.Equal(t, "kate", emp.Username)
	assert.Equal(t, "Kate Ivanova", emp.FullName)
	assert.NotEqual(t, "secret1", emp.PasswordHash)
}
