// Package httpapi реализует REST-интерфейс сервиса заказов: валидация, DTO, маршруты и отображение ошибок.
package httpapi

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/health"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/metrics"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/order"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/version"
)

const (
	apiPrefix             = "/api/v1"
	defaultRequestTimeout = 30 * time.Second
)

// CustomerService: сценарии клиентов, нужные контроллеру.
type CustomerService interface {
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	Remove(ctx context.Context, id int64) error
}

// ItemService: сценарии позиций меню, нужные контроллеру.
type ItemService interface {
	Create(ctx context.Context, item domain.Item) (domain.Item, error)
	GetByID(ctx context.Context, id int64) (domain.Item, error)
	FindByParams(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.Item, error)
	Delete(ctx context.Context, id int64) error
}

// OrderService: сценарии заказов, нужные контроллеру.
type OrderService interface {
	Create(ctx context.Context, input order.CreateOrderInput) (domain.Order, error)
	FindByParams(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	GetByID(ctx context.Context, id int64) (domain.Order, error)
	Update(ctx context.Context, current domain.Order, next domain.OrderStatus) (domain.Order, error)
}

// Config связывает REST-интерфейс с use case'ами и инфраструктурой.
type Config struct {
	Customers CustomerService
	Items     ItemService
	Orders    OrderService
	// Health отдаёт отчёт на /api/v1/health-check; nil заменяется пустым handler.
	Health  *health.Handler
	Logger  *log.Entry
	Metrics *metrics.HTTPMetrics
	// RequestTimeout ограничивает обработку одного запроса.
	RequestTimeout time.Duration
}

type api struct {
	customers CustomerService
	items     ItemService
	orders    OrderService
	logger    *log.Entry
}

// NewRouter собирает http.Handler со всеми маршрутами и middleware.
func NewRouter(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = log.WithField("component", "http-api")
	}
	if cfg.Health == nil {
		cfg.Health = health.NewHandler(version.GetVersion())
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	a := &api{
		customers: cfg.Customers,
		items:     cfg.Items,
		orders:    cfg.Orders,
		logger:    cfg.Logger,
	}

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, withRoute(pattern, h))
	}

	handle("POST "+apiPrefix+"/customers", a.createCustomer)
	handle("DELETE "+apiPrefix+"/customers/{id}", a.removeCustomer)

	handle("POST "+apiPrefix+"/items", a.createItem)
	handle("GET "+apiPrefix+"/items", a.findItems)
	handle("GET "+apiPrefix+"/items/{id}", a.getItem)
	handle("PATCH "+apiPrefix+"/items/{id}", a.updateItem)
	handle("DELETE "+apiPrefix+"/items/{id}", a.deleteItem)

	handle("POST "+apiPrefix+"/orders", a.createOrder)
	handle("GET "+apiPrefix+"/orders", a.findOrders)
	handle("GET "+apiPrefix+"/orders/{id}", a.getOrder)
	handle("PATCH "+apiPrefix+"/orders/{id}", a.updateOrder)

	handle("GET "+apiPrefix+"/health-check", cfg.Health.ServeHTTP)

	var h http.Handler = mux
	h = timeoutMiddleware(cfg.RequestTimeout)(h)
	h = recoverMiddleware(cfg.Logger)(h)
	h = observeMiddleware(cfg.Logger, cfg.Metrics)(h)
	h = requestIDMiddleware(h)
	return h
}
