package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"arvel.dev/salesline/internal/platform/web"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux, gate func(http.Handler) http.Handler) {
	mux.Handle("GET /api/users", gate(web.Handler(h.handleList)))
	mux.Handle("POST /api/users", gate(web.Handler(h.handleCreate)))
	mux.Handle("PUT /api/users/{id}", gate(web.Handler(h.handleUpdate)))
	mux.Handle("DELETE /api/users/{id}", gate(web.Handler(h.handleDelete)))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) *web.Error {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to list users", Err: err}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(users)
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) *web.Error {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: err.Error(), Err: err}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(user)
	return nil
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) *web.Error {
	id, werr := pathID(r)
	if werr != nil {
		return werr
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &web.Error{Code: http.StatusNotFound, Message: "User not found", Err: err}
		}
		return &web.Error{Code: http.StatusBadRequest, Message: err.Error(), Err: err}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
	return nil
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) *web.Error {
	id, werr := pathID(r)
	if werr != nil {
		return werr
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &web.Error{Code: http.StatusNotFound, Message: "User not found", Err: err}
		}
		return &web.Error{Code: http.StatusBadRequest, Message: err.Error(), Err: err}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func pathID(r *http.Request) (int64, *web.Error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &web.Error{Code: http.StatusBadRequest, Message: "Invalid user id", Err: err}
	}
	return id, nil
}
