package web

import (
	"net/http"

	"blockdocs/internal/web/controller"
	"blockdocs/internal/web/middleware"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", StaticFileServer()))
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))

	publicController := controller.Public{Catalog: s.catalog, Templates: s.templates, Logger: s.logger}
	publicController.Register(mux)

	authController := controller.Auth{AuthService: s.authService, Templates: s.templates, Logger: s.logger}
	authController.Register(mux)

	authenticatedMux := http.NewServeMux()
	adminController := controller.Admin{Pages: s.pageService, Equipments: s.equipmentRepo, Templates: s.templates, Logger: s.logger}
	adminController.Register(authenticatedMux)

	pageEditor := controller.PageEditor{Pages: s.pageService, Equipments: s.equipmentRepo, Templates: s.templates, Logger: s.logger}
	pageEditor.Register(authenticatedMux)

	equipmentEditor := controller.EquipmentEditor{Repo: s.equipmentRepo, Templates: s.templates, Logger: s.logger}
	equipmentEditor.Register(authenticatedMux)

	pagesController := controller.Pages{Service: s.pageService, Logger: s.logger}
	pagesController.Register(authenticatedMux)

	blocksController := controller.Blocks{Service: s.pageService, Logger: s.logger}
	blocksController.Register(authenticatedMux)

	equipmentsController := controller.Equipments{Repo: s.equipmentRepo, Logger: s.logger}
	equipmentsController.Register(authenticatedMux)

	uploadController := controller.Upload{Store: s.uploads, Logger: s.logger}
	uploadController.Register(authenticatedMux)

	pasteController := controller.Paste{Logger: s.logger}
	pasteController.Register(authenticatedMux)

	requireAdmin := middleware.Auth(s.authService)(authenticatedMux)
	mux.Handle("/api/", requireAdmin)
	mux.Handle("/admin", requireAdmin)
	mux.Handle("/admin/", requireAdmin)

	var h http.Handler = mux
	h = middleware.WithAdmin(s.authService)(h)
	h = middleware.Logging(s.logger)(h)
	h = middleware.Recover(s.logger)(h)
	return h
}
