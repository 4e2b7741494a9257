package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

const (
	msgItemRegistered = "Item successfully registered!"
	msgItemUpdated    = "Item updated successfully!"
	msgItemDeleted    = "Item successfully deleted!"
)

type itemRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Value       *json.Number `json:"value"`
	Image       *string      `json:"image"`
}

func (req itemRequest) toEntity() (domain.Item, error) {
	var is issues
	item := domain.Item{
		Name:        requireString(&is, "name", req.Name),
		Description: requireString(&is, "description", req.Description),
	}
	if req.Category == nil {
		is.add("category", msgRequired)
	} else {
		item.Category = parseCategory(&is, "category", *req.Category)
	}
	if req.Value == nil {
		is.add("value", msgRequired)
	} else {
		item.Value = parseValue(&is, "value", *req.Value)
	}
	if req.Image == nil {
		is.add("image", msgRequired)
	} else {
		item.Image = parseImage(&is, "image", *req.Image)
	}
	return item, is.err()
}

func (req itemRequest) toPatch() (domain.ItemPatch, error) {
	var (
		is    issues
		patch = domain.ItemPatch{Name: req.Name, Description: req.Description}
	)
	if req.Category != nil {
		category := parseCategory(&is, "category", *req.Category)
		patch.Category = &category
	}
	if req.Value != nil {
		value := parseValue(&is, "value", *req.Value)
		patch.Value = &value
	}
	if req.Image != nil {
		image := parseImage(&is, "image", *req.Image)
		if image == nil {
			image = []byte{}
		}
		patch.Image = image
	}
	if len(is) == 0 && patch.Empty() {
		is.add(fieldBody, msgAtLeastOne)
	}
	return patch, is.err()
}

type createItemResponse struct {
	Message string `json:"message"`
	ItemID  int64  `json:"itemId"`
}

func (a *api) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	item, err := req.toEntity()
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	created, err := a.items.Create(r.Context(), item)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createItemResponse{Message: msgItemRegistered, ItemID: created.ID})
}

func (a *api) findItems(w http.ResponseWriter, r *http.Request) {
	var (
		is     issues
		filter domain.ItemFilter
		query  = r.URL.Query()
	)
	if raw := query.Get("category"); raw != "" {
		category := parseCategory(&is, "category", raw)
		filter.Category = &category
	}
	filter.Name = query.Get("name")
	if err := is.err(); err != nil {
		a.writeError(w, r, err)
		return
	}

	items, err := a.items.FindByParams(r.Context(), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemsToDTO(items))
}

func (a *api) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	item, err := a.items.GetByID(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemToDTO(item))
}

func (a *api) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req itemRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if _, err := a.items.Update(r.Context(), id, patch); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msgItemUpdated)
}

func (a *api) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.items.Delete(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msgItemDeleted)
}
