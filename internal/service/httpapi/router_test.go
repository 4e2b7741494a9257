package httpapi_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/health"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/metrics"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/customer"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/httpapi"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/item"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/order"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/storage/memory"
)

type captureNotifier struct {
	mu       sync.Mutex
	statuses []domain.OrderStatus
}

func (n *captureNotifier) NotifyStatus(_ context.Context, notification domain.StatusNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, notification.Status)
	return nil
}

type testServer struct {
	t        *testing.T
	handler  http.Handler
	notifier *captureNotifier
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	entry := logger.WithField("component", "test")

	store := memory.NewStore()
	items := item.NewUseCase(store.Items(), entry)
	notifier := &captureNotifier{}
	registry := prometheus.NewRegistry()

	handler := httpapi.NewRouter(httpapi.Config{
		Customers: customer.NewUseCase(store.Customers(), entry),
		Items:     items,
		Orders:    order.NewUseCase(store.Orders(), items, notifier, entry),
		Health:    health.NewHandler("test"),
		Logger:    entry,
		Metrics:   metrics.NewHTTPMetricsWithRegisterer(registry),
	})
	return &testServer{t: t, handler: handler, notifier: notifier, registry: registry}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorResponse struct {
	Message string         `json:"message"`
	Issues  []domain.Issue `json:"issues"`
}

func (s *testServer) createItem(name string, value float64) int64 {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/items", map[string]any{
		"name":        name,
		"description": name + " description",
		"category":    "Snack",
		"value":       value,
		"image":       base64.StdEncoding.EncodeToString([]byte("png:" + name)),
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Message string `json:"message"`
		ItemID  int64  `json:"itemId"`
	}](s.t, rec)
	assert.Equal(s.t, "Item successfully registered!", body.Message)
	return body.ItemID
}

func TestCustomers_CreateAndRemove(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]any{
		"cpf": "12345678900", "name": "Ana", "email": "ana@example.com",
		"phone": "+55 11 99999-0000", "address": "Rua A, 1",
	}

	rec := s.do(http.MethodPost, "/api/v1/customers", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Message    string `json:"message"`
		CustomerID int64  `json:"customerId"`
	}](t, rec)
	assert.Equal(t, "Customer successfully registered!", created.Message)
	assert.NotZero(t, created.CustomerID)

	rec = s.do(http.MethodPost, "/api/v1/customers", payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.ErrCustomerEmailTaken.Error(), decode[errorResponse](t, rec).Message)

	path := "/api/v1/customers/" + strconv.FormatInt(created.CustomerID, 10)
	rec = s.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Customer successfully deleted!", decode[errorResponse](t, rec).Message)

	rec = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomers_ValidationIssues(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/customers", map[string]any{"name": "Ana"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorResponse](t, rec)
	assert.Equal(t, "Validation error!", body.Message)
	fields := make([]string, 0, len(body.Issues))
	for _, issue := range body.Issues {
		fields = append(fields, issue.Field)
	}
	assert.ElementsMatch(t, []string{"cpf", "email", "phone", "address"}, fields)

	rec = s.do(http.MethodDelete, "/api/v1/customers/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decode[errorResponse](t, rec).Issues[0].Field)
}

func TestItems_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createItem("Burger", 19)
	path := "/api/v1/items/" + strconv.FormatInt(id, 10)

	rec := s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": `+strconv.FormatInt(id, 10)+`,
		"name": "Burger",
		"description": "Burger description",
		"category": "Snack",
		"value": 19.00,
		"quantity": 0,
		"image": "`+base64.StdEncoding.EncodeToString([]byte("png:Burger"))+`"
	}`, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"value":19.00`)

	rec = s.do(http.MethodPatch, path, map[string]any{"value": 21.5, "category": "Combo"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Item updated successfully!", decode[errorResponse](t, rec).Message)

	updated := decode[httpapi.ItemDTO](t, s.do(http.MethodGet, path, nil))
	assert.Equal(t, "21.50", updated.Value.String())
	assert.Equal(t, "Combo", updated.Category)
	assert.Equal(t, "Burger", updated.Name, "fields not supplied stay unchanged")

	rec = s.do(http.MethodPatch, path, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "At least one is required", decode[errorResponse](t, rec).Issues[0].Message)

	rec = s.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item successfully deleted!", decode[errorResponse](t, rec).Message)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, nil).Code)
}

func TestItems_CreateRejectsDuplicatesAndBadInput(t *testing.T) {
	s := newTestServer(t)
	s.createItem("Burger", 19)

	rec := s.do(http.MethodPost, "/api/v1/items", map[string]any{
		"name": "Burger", "description": "again", "category": "Snack", "value": 10, "image": "",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.ErrItemNameTaken.Error(), decode[errorResponse](t, rec).Message)

	rec = s.do(http.MethodPost, "/api/v1/items", map[string]any{
		"name": "Pizza", "description": "x", "category": "Pasta", "value": -1, "image": "%%%",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	require.Len(t, body.Issues, 3)
	assert.Equal(t, "category", body.Issues[0].Field)
	assert.Equal(t, "value", body.Issues[1].Field)
	assert.Equal(t, "Invalid base64 format", body.Issues[2].Message)

	rec = s.do(http.MethodPost, "/api/v1/items", `{"name": "Pizza", "value": "abc"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItems_RejectsValuesOutsideColumnRange(t *testing.T) {
	s := newTestServer(t)
	burger := s.createItem("Burger", 19)

	cases := []struct {
		value   string
		message string
	}{
		{value: "0.005", message: "Must have at most 2 decimal places"},
		{value: "19.999", message: "Must have at most 2 decimal places"},
		{value: "100000000", message: "Must be less than or equal to 99999999.99"},
	}
	for _, tc := range cases {
		rec := s.do(http.MethodPost, "/api/v1/items",
			`{"name": "Pizza", "description": "x", "category": "Snack", "image": "", "value": `+tc.value+`}`)
		require.Equal(t, http.StatusBadRequest, rec.Code, tc.value)
		body := decode[errorResponse](t, rec)
		require.Len(t, body.Issues, 1, tc.value)
		assert.Equal(t, domain.Issue{Field: "value", Message: tc.message}, body.Issues[0])

		rec = s.do(http.MethodPatch, "/api/v1/items/"+strconv.FormatInt(burger, 10), `{"value": `+tc.value+`}`)
		require.Equal(t, http.StatusBadRequest, rec.Code, tc.value)
		assert.Equal(t, "value", decode[errorResponse](t, rec).Issues[0].Field)
	}

	rec := s.do(http.MethodPost, "/api/v1/items",
		`{"name": "Pizza", "description": "x", "category": "Snack", "image": "", "value": 99999999.990}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	found := decode[httpapi.ItemDTO](t, s.do(http.MethodGet, "/api/v1/items/"+strconv.FormatInt(burger, 10), nil))
	assert.Equal(t, "19.00", found.Value.String())
}

func TestItems_FindByParams(t *testing.T) {
	s := newTestServer(t)
	s.createItem("Burger", 19)
	s.createItem("Fries", 25)

	all := decode[[]httpapi.ItemDTO](t, s.do(http.MethodGet, "/api/v1/items", nil))
	assert.Len(t, all, 2)

	byName := decode[[]httpapi.ItemDTO](t, s.do(http.MethodGet, "/api/v1/items?name=Fries", nil))
	require.Len(t, byName, 1)
	assert.Equal(t, "Fries", byName[0].Name)

	rec := s.do(http.MethodGet, "/api/v1/items?category=Drink", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/items?category=Pasta", nil).Code)
}

func TestOrders_CreateAndTransition(t *testing.T) {
	s := newTestServer(t)
	burger := s.createItem("Burger", 19)
	fries := s.createItem("Fries", 25)

	rec := s.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"clientId": 3,
		"items": []map[string]any{
			{"itemId": burger, "quantity": 2},
			{"itemId": fries, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[httpapi.OrderDTO](t, rec)
	assert.Equal(t, "Created", created.Status)
	assert.Equal(t, "63.00", created.Total.String())
	require.NotNil(t, created.ClientID)
	assert.Equal(t, int64(3), *created.ClientID)
	require.Len(t, created.Items, 2)
	assert.Equal(t, int32(2), created.Items[0].Quantity)

	path := "/api/v1/orders/" + strconv.FormatInt(created.ID, 10)
	rec = s.do(http.MethodPatch, path, map[string]any{"status": "Finished"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPatch, path, map[string]any{"status": "Created"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode[errorResponse](t, rec).Issues[0].Field)

	rec = s.do(http.MethodPatch, path, map[string]any{"status": "InPreparation"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order updated successfully!", decode[errorResponse](t, rec).Message)

	found := decode[httpapi.OrderDTO](t, s.do(http.MethodGet, path, nil))
	assert.Equal(t, "InPreparation", found.Status)

	inPrep := decode[[]httpapi.OrderDTO](t, s.do(http.MethodGet, "/api/v1/orders?status=InPreparation", nil))
	require.Len(t, inPrep, 1)
	assert.Equal(t, created.ID, inPrep[0].ID)

	byClient := decode[[]httpapi.OrderDTO](t, s.do(http.MethodGet, "/api/v1/orders?clientId=4", nil))
	assert.Empty(t, byClient)

	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusCreated, domain.OrderStatusInPreparation}, s.notifier.statuses)
}

func TestOrders_CreateFailures(t *testing.T) {
	s := newTestServer(t)
	burger := s.createItem("Burger", 19)

	rec := s.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"itemId": burger, "quantity": 1}, {"itemId": 999, "quantity": 1}},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.ErrItemNotFound.Error(), decode[errorResponse](t, rec).Message)
	assert.JSONEq(t, `[]`, s.do(http.MethodGet, "/api/v1/orders", nil).Body.String())

	rec = s.do(http.MethodPost, "/api/v1/orders", map[string]any{"items": []any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "items", decode[errorResponse](t, rec).Issues[0].Field)

	rec = s.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"itemId": burger, "quantity": 0}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "items.0.quantity", decode[errorResponse](t, rec).Issues[0].Field)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/orders?clientId=x", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/orders/77", nil).Code)
}

func TestOrders_CreateRejectsTotalAboveColumnRange(t *testing.T) {
	s := newTestServer(t)
	platter := s.createItem("Platter", 99999999.99)

	rec := s.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"itemId": platter, "quantity": 101}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ErrTotalTooLarge.Error(), decode[errorResponse](t, rec).Message)
	assert.JSONEq(t, `[]`, s.do(http.MethodGet, "/api/v1/orders", nil).Body.String())
	assert.Empty(t, s.notifier.statuses)

	rec = s.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"itemId": platter, "quantity": 100}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "9999999999.00", decode[httpapi.OrderDTO](t, rec).Total.String())
}

func TestItems_DeleteReferencedItemConflicts(t *testing.T) {
	s := newTestServer(t)
	burger := s.createItem("Burger", 19)

	rec := s.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"itemId": burger, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodDelete, "/api/v1/items/"+strconv.FormatInt(burger, 10), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealthCheckAndRequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health-check", nil)
	req.Header.Set(httpapi.HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(httpapi.HeaderRequestID))
	assert.Equal(t, health.StatusHealthy, decode[health.Response](t, rec).Status)

	rec = s.do(http.MethodGet, "/api/v1/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httpapi.HeaderRequestID))
}

func TestHTTPMetricsUseRoutePattern(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/v1/items/1", nil)
	s.do(http.MethodGet, "/api/v1/items/2", nil)

	count, err := testutil.GatherAndCount(s.registry, "restaurant_orders_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both requests share one route series")
}

type failingItems struct {
	httpapi.ItemService
}

func (failingItems) GetByID(context.Context, int64) (domain.Item, error) {
	return domain.Item{}, errors.New("pq: connection reset by peer")
}

func (failingItems) Create(context.Context, domain.Item) (domain.Item, error) {
	panic("boom")
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	handler := httpapi.NewRouter(httpapi.Config{Items: failingItems{}, Logger: logger.WithField("component", "test")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	body := `{"name":"x","description":"y","category":"Snack","value":1,"image":""}`
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/items", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
