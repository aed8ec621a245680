package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"clinichat/pkg/api/handlers"
	"clinichat/pkg/session"
)

// Handler returns the JSON API for the messaging screen. All domain
// endpoints live under /v1; health endpoints are registered by the app.
func Handler(s *session.Session) http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterContacts(v1, s)
	handlers.RegisterSession(v1, s)
	handlers.RegisterRecords(v1)
	return r
}
