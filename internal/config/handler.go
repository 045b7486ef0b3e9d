package config

import (
	"encoding/json"
	"net/http"

	"arvel.dev/salesline/internal/platform/web"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type PublicConfigResponse struct {
	Server Server `json:"server"`
}

type UpdateConfigRequest struct {
	Server Server `json:"server"`
}

// GetConfig returns the current server configuration. The datasource and
// auth sections carry secrets and are never exposed here.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	response := PublicConfigResponse{
		Server: Conf.Server,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to encode config"}
	}
	return nil
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) *web.Error {
	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Err: err, Code: http.StatusBadRequest, Message: "Invalid config format"}
	}

	if req.Server.Port == "" {
		return &web.Error{Code: http.StatusBadRequest, Message: "server.port is required"}
	}

	Conf.Server = req.Server

	if err := SaveConfig(); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to save config"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "Configuration updated successfully",
	})
	return nil
}
