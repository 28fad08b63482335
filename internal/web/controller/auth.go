package controller

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/auth"
	"blockdocs/internal/web/viewmodels"
)

// Auth provides the admin login handlers
type Auth struct {
	AuthService *auth.Service
	Templates   map[string]*template.Template
	Logger      zerolog.Logger
}

// Register registers the auth routes
func (a *Auth) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/login", a.loginGet)
	mux.HandleFunc("POST /admin/login", a.loginPost)
	mux.HandleFunc("POST /admin/logout", a.logout)
}

func (a *Auth) loginGet(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()) != nil {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	render(w, a.Logger, a.Templates["login.html"], http.StatusOK, viewmodels.New(nil))
}

func (a *Auth) loginPost(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	admin, err := a.AuthService.Login(w, r, username, password)
	if err != nil {
		if !errors.Is(err, apperr.ErrUnauthorized) {
			a.Logger.Error().Err(err).Msg("login failed")
		}
		data := viewmodels.New(nil)
		data.Error = "Invalid credentials"
		render(w, a.Logger, a.Templates["login.html"], http.StatusUnauthorized, data)
		return
	}
	a.Logger.Info().Str("username", admin.Username).Msg("admin signed in")
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (a *Auth) logout(w http.ResponseWriter, r *http.Request) {
	a.AuthService.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}
