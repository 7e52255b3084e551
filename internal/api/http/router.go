package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"clearance-backend/internal/security"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Application   *ApplicationHandler
	Authority     *AuthorityHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
}

// NewRouter wires the full API surface. Everything under /api/v1 except
// login and registration requires a bearer token; role gates are applied
// per subrouter.
func NewRouter(h Handlers, auth *Authenticator) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")
	api.HandleFunc("/auth/register", h.Auth.Register).Methods("POST")

	student := api.NewRoute().Subrouter()
	student.Use(auth.Middleware, RequireKind(security.KindStudent))
	student.HandleFunc("/applications", h.Application.Create).Methods("POST")
	student.HandleFunc("/applications/mine", h.Application.GetMine).Methods("GET")
	student.HandleFunc("/applications/mine/certificate", h.Application.DownloadCertificate).Methods("GET")
	student.HandleFunc("/applications/mine/attachment", h.Application.DownloadAttachment).Methods("GET")

	authority := api.NewRoute().Subrouter()
	authority.Use(auth.Middleware, RequireKind(security.KindAuthority))
	authority.HandleFunc("/worklist", h.Authority.Worklist).Methods("GET")
	authority.HandleFunc("/applications/{id:[0-9]+}/decision", h.Authority.Decide).Methods("POST")
	authority.HandleFunc("/stats/me", h.Authority.MyStats).Methods("GET")

	shared := api.NewRoute().Subrouter()
	shared.Use(auth.Middleware, RequireKind(security.KindStudent, security.KindAuthority))
	shared.HandleFunc("/notifications", h.Notifications.List).Methods("GET")
	shared.HandleFunc("/notifications/{id:[0-9]+}/read", h.Notifications.MarkAsRead).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware, RequireKind(security.KindAdmin))
	admin.HandleFunc("/authorities", h.Admin.ListPendingAuthorities).Methods("GET")
	admin.HandleFunc("/authorities/review", h.Admin.BulkReviewAuthorities).Methods("POST")
	admin.HandleFunc("/authorities/{id:[0-9]+}/review", h.Admin.ReviewAuthority).Methods("POST")
	admin.HandleFunc("/authorities/{id:[0-9]+}/active", h.Admin.SetAuthorityActive).Methods("PUT")
	admin.HandleFunc("/stages", h.Admin.ListStages).Methods("GET")
	admin.HandleFunc("/stages", h.Admin.CreateStage).Methods("POST")
	admin.HandleFunc("/stages/{id:[0-9]+}", h.Admin.DeactivateStage).Methods("DELETE")
	admin.HandleFunc("/applications/{id:[0-9]+}/revert", h.Admin.RevertApplication).Methods("POST")
	admin.HandleFunc("/stats", h.Admin.Stats).Methods("GET")

	adminView := api.NewRoute().Subrouter()
	adminView.Use(auth.Middleware, RequireKind(security.KindAdmin))
	adminView.HandleFunc("/applications/{id:[0-9]+}", h.Application.GetByID).Methods("GET")

	return router
}
