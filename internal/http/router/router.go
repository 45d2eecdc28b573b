// Package router wires controllers and middlewares onto the chi mux.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexiconhq/tenant-auth/internal/http/controllers"
	mw "github.com/lexiconhq/tenant-auth/internal/http/middlewares"
	"github.com/lexiconhq/tenant-auth/internal/session"
)

type Deps struct {
	Auth         *controllers.AuthController
	Vendors      *controllers.VendorController
	LoginContext *controllers.LoginContextController
	Health       *controllers.HealthController
	Sessions     *session.Manager
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRecover)
	r.Use(mw.WithRequestID)
	r.Use(mw.WithLogging)
	r.Use(mw.WithSession(d.Sessions))

	// Unauthenticated surface.
	r.Get("/healthz", d.Health.Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/login/context", d.LoginContext.Get)
	r.Get("/auth/{app}/login", d.Auth.Login)
	r.Get("/auth/{app}/callback", d.Auth.Callback)
	r.Post("/auth/logout", d.Auth.Logout)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession)
		r.Get("/vendors", d.Vendors.List)
		r.Get("/records/{doctype}", d.Vendors.ListRecords)
	})

	return r
}
