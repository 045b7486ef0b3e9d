package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"arvel.dev/salesline/internal/platform/web"
)

type Storer interface {
	ListEmployees(ctx context.Context) ([]*Employee, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	ListSales(ctx context.Context) ([]*Sale, error)
}

// Handler serves the role-gated business resources. The identity attached
// by the auth pipeline is read-only here; routing decides which roles may
// reach which list.
type Handler struct {
	store Storer
}

func NewHandler(store Storer) *Handler {
	return &Handler{store: store}
}

func (h *Handler) HandleEmployees(w http.ResponseWriter, r *http.Request) *web.Error {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to list employees", Err: err}
	}
	return writeJSON(w, employees)
}

func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) *web.Error {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to list products", Err: err}
	}
	return writeJSON(w, products)
}

func (h *Handler) HandleSales(w http.ResponseWriter, r *http.Request) *web.Error {
	sales, err := h.store.ListSales(r.Context())
	if err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to list sales", Err: err}
	}
	return writeJSON(w, sales)
}

func writeJSON(w http.ResponseWriter, v any) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to encode response", Err: err}
	}
	return nil
}
