package web

import (
	"database/sql"
	"html/template"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"blockdocs/internal/auth"
	"blockdocs/internal/catalog"
	"blockdocs/internal/equipment"
	"blockdocs/internal/page"
	"blockdocs/internal/upload"
	"blockdocs/internal/web/renderer"
)

// Options configures a Server.
type Options struct {
	UploadDir    string
	SessionStore sessions.Store
	Logger       zerolog.Logger
}

// Server holds the dependencies for the web server.
type Server struct {
	logger        zerolog.Logger
	templates     map[string]*template.Template
	uploadDir     string
	authService   *auth.Service
	pageService   *page.Service
	equipmentRepo *equipment.Repository
	catalog       *catalog.Service
	uploads       *upload.Store
	handler       http.Handler
}

// NewServer creates a new server with the given dependencies.
func NewServer(db *sql.DB, opts Options) (*Server, error) {
	templates, err := ParseTemplates()
	if err != nil {
		return nil, err
	}

	pageRepo := page.NewRepository(db)
	equipmentRepo := equipment.NewRepository(db)

	s := &Server{
		logger:        opts.Logger,
		templates:     templates,
		uploadDir:     opts.UploadDir,
		authService:   auth.NewService(auth.NewRepository(db), opts.SessionStore, opts.Logger),
		pageService:   page.NewService(pageRepo, renderer.OrgToHTML),
		equipmentRepo: equipmentRepo,
		catalog:       catalog.NewService(pageRepo, equipmentRepo),
		uploads:       upload.NewStore(opts.UploadDir, "/uploads", upload.NewRepository(db)),
	}
	s.handler = s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
