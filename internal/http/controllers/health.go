package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

type HealthController struct {
	repo core.Repository
}

func NewHealthController(repo core.Repository) *HealthController {
	return &HealthController{repo: repo}
}

func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := c.repo.Ping(r.Context()); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
