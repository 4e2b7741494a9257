package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

const (
	msgCustomerRegistered = "Customer successfully registered!"
	msgCustomerDeleted    = "Customer successfully deleted!"
)

type createCustomerRequest struct {
	CPF     *string `json:"cpf"`
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (req createCustomerRequest) toEntity() (domain.Customer, error) {
	var is issues
	customer := domain.Customer{
		CPF:     requireString(&is, "cpf", req.CPF),
		Name:    requireString(&is, "name", req.Name),
		Email:   requireString(&is, "email", req.Email),
		Phone:   requireString(&is, "phone", req.Phone),
		Address: requireString(&is, "address", req.Address),
	}
	return customer, is.err()
}

type createCustomerResponse struct {
	Message    string `json:"message"`
	CustomerID int64  `json:"customerId"`
}

func (a *api) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	customer, err := req.toEntity()
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	created, err := a.customers.Create(r.Context(), customer)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createCustomerResponse{Message: msgCustomerRegistered, CustomerID: created.ID})
}

func (a *api) removeCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.customers.Remove(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msgCustomerDeleted)
}
