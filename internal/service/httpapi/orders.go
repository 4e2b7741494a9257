package httpapi

import (
	"fmt"
	"net/http"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/order"
)

const msgOrderUpdated = "Order updated successfully!"

type orderLineRequest struct {
	ItemID   *int64 `json:"itemId"`
	Quantity *int32 `json:"quantity"`
}

type createOrderRequest struct {
	Items    []orderLineRequest `json:"items"`
	ClientID *int64             `json:"clientId"`
}

func (req createOrderRequest) toInput() (order.CreateOrderInput, error) {
	var is issues
	if len(req.Items) == 0 {
		is.add("items", msgNonEmptyArray)
	}

	lines := make([]domain.OrderLine, 0, len(req.Items))
	for i, line := range req.Items {
		prefix := fmt.Sprintf("items.%d.", i)
		switch {
		case line.ItemID == nil:
			is.add(prefix+"itemId", msgRequired)
		case *line.ItemID <= 0:
			is.add(prefix+"itemId", msgPositive)
		}
		switch {
		case line.Quantity == nil:
			is.add(prefix+"quantity", msgRequired)
		case *line.Quantity <= 0:
			is.add(prefix+"quantity", msgPositive)
		}
		if line.ItemID != nil && line.Quantity != nil {
			lines = append(lines, domain.OrderLine{ItemID: *line.ItemID, Quantity: *line.Quantity})
		}
	}

	return order.CreateOrderInput{ClientID: req.ClientID, Lines: lines}, is.err()
}

type updateOrderRequest struct {
	Status *string `json:"status"`
}

func (req updateOrderRequest) toStatus() (domain.OrderStatus, error) {
	var is issues
	if req.Status == nil {
		is.add("status", msgRequired)
		return "", is.err()
	}
	status := domain.OrderStatus(*req.Status)
	if !status.Updatable() {
		is.add("status", "Invalid enum value. Expected "+
			joinQuoted([]domain.OrderStatus{domain.OrderStatusInPreparation, domain.OrderStatusFinished}))
	}
	return status, is.err()
}

func (a *api) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	created, err := a.orders.Create(r.Context(), input)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, OrderToDTO(created))
}

func (a *api) findOrders(w http.ResponseWriter, r *http.Request) {
	var (
		is     issues
		filter domain.OrderFilter
		query  = r.URL.Query()
	)
	if raw := query.Get("clientId"); raw != "" {
		if id, ok := parsePositiveInt(raw); ok {
			filter.ClientID = &id
		} else {
			is.add("clientId", msgInvalidNumber)
		}
	}
	if raw := query.Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if status.Valid() {
			filter.Status = &status
		} else {
			is.add("status", "Invalid enum value. Expected "+joinQuoted(domain.OrderStatuses()))
		}
	}
	if err := is.err(); err != nil {
		a.writeError(w, r, err)
		return
	}

	orders, err := a.orders.FindByParams(r.Context(), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrdersToDTO(orders))
}

func (a *api) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	found, err := a.orders.GetByID(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderToDTO(found))
}

func (a *api) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req updateOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	next, err := req.toStatus()
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	current, err := a.orders.GetByID(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if _, err := a.orders.Update(r.Context(), current, next); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msgOrderUpdated)
}
