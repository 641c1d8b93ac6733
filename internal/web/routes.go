package web

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/clinic-kiosk/internal/metrics"
	"github.com/kozaktomas/clinic-kiosk/internal/web/handlers"
	"github.com/kozaktomas/clinic-kiosk/internal/web/middleware"
	"github.com/kozaktomas/clinic-kiosk/internal/web/static"
)

func (s *Server) setupRoutes(kioskCtrl handlers.KioskController, adminCtrl handlers.AdminController) {
	kioskHandler := handlers.NewKioskHandler(kioskCtrl, s.log)
	adminHandler := handlers.NewAdminHandler(adminCtrl, s.log)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		// Kiosk
		r.Get("/kiosk/state", kioskHandler.State)
		r.Post("/kiosk/actions/{action}", kioskHandler.Action)
		r.Get("/kiosk/events", kioskHandler.Events)

		// Admin table
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(s.config.Web.AdminUsername, s.config.Web.AdminPassword))

			r.Get("/admin/table", adminHandler.Table)
			r.Get("/admin/events", adminHandler.Events)
			r.Post("/admin/reload", adminHandler.Reload)
			r.Post("/admin/sort/{key}", adminHandler.Sort)
			r.Post("/admin/page/{page}", adminHandler.Page)
			r.Post("/admin/rows/{size}", adminHandler.Rows)
			r.Post("/admin/edit/{nik}", adminHandler.OpenEdit)
			r.Post("/admin/edit", adminHandler.SubmitEdit)
			r.Delete("/admin/edit", adminHandler.CancelEdit)
			r.Post("/admin/delete/{nik}", adminHandler.Delete)
		})
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves the embedded kiosk screen.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := static.GetFileSystem().Open("/index.html")
	if err != nil {
		http.Error(w, "kiosk screen not available", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
