package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexiconhq/tenant-auth/internal/http/httperrors"
	"github.com/lexiconhq/tenant-auth/internal/http/middlewares"
	"github.com/lexiconhq/tenant-auth/internal/http/services"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
)

type VendorController struct {
	vendors *services.VendorService
}

func NewVendorController(v *services.VendorService) *VendorController {
	return &VendorController{vendors: v}
}

// List handles GET /vendors: the privileged vendor projection.
func (c *VendorController) List(w http.ResponseWriter, r *http.Request) {
	vendors, err := c.vendors.ListVendors(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("vendor list failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}
	writeJSON(w, vendors)
}

// ListRecords handles GET /records/{doctype}: direct record access gated
// by the stored permission rules.
func (c *VendorController) ListRecords(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "doctype")
	sess := middlewares.GetSession(r.Context())

	var roles []string
	if sess != nil {
		roles = sess.Roles
	}

	records, err := c.vendors.ListRecords(r.Context(), docType, roles)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocTypeUnknown):
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown doctype"))
		case errors.Is(err, services.ErrPermissionDenied):
			httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("no read permission on "+docType))
		default:
			logger.From(r.Context()).Error("record list failed", logger.DocType(docType), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal)
		}
		return
	}
	writeJSON(w, records)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
