package controllers

import (
	"net/http"

	"github.com/lexiconhq/tenant-auth/internal/http/services"
)

type LoginContextController struct {
	svc *services.LoginContextService
}

func NewLoginContextController(svc *services.LoginContextService) *LoginContextController {
	return &LoginContextController{svc: svc}
}

// Get handles GET /login/context. Never fails: lookups degrade to defaults
// inside the service.
func (c *LoginContextController) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, c.svc.Build(r.Context()))
}
