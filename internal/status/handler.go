package status

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"arvel.dev/salesline/internal/platform/web"
)

type DiskStatus struct {
	Path        string  `json:"path"`
	TotalBytes  uint64  `json:"totalBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	UsedPercent float64 `json:"usedPercent"`
}

type StatusResponse struct {
	Database      string      `json:"database"`
	UptimeSeconds uint64      `json:"uptimeSeconds"`
	Disk          *DiskStatus `json:"disk,omitempty"`
	Hosts         []string    `json:"hosts"`
}

type Handler struct {
	db   *sql.DB
	port string
}

func NewHandler(db *sql.DB, port string) *Handler {
	return &Handler{
		db:   db,
		port: port,
	}
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) *web.Error {
	response := StatusResponse{
		Database: h.checkDatabase(),
		Hosts:    h.accessibleHosts(),
	}

	if uptime, err := host.Uptime(); err == nil {
		response.UptimeSeconds = uptime
	}
	if usage, err := disk.Usage("/"); err == nil {
		response.Disk = &DiskStatus{
			Path:        usage.Path,
			TotalBytes:  usage.Total,
			FreeBytes:   usage.Free,
			UsedPercent: usage.UsedPercent,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to encode status", Err: err}
	}
	return nil
}

func (h *Handler) checkDatabase() string {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

func (h *Handler) accessibleHosts() []string {
	hosts := []string{fmt.Sprintf("localhost:%s", h.port)}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return hosts
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() || ipNet.IP.To4() == nil {
			continue
		}
		hosts = append(hosts, fmt.Sprintf("%s:%s", ipNet.IP.String(), h.port))
	}

	return hosts
}
