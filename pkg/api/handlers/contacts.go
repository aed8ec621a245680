package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"clinichat/pkg/session"
	"clinichat/pkg/utils"
)

// RegisterContacts registers the directory and conversation read endpoints.
func RegisterContacts(r *mux.Router, s *session.Session) {
	r.HandleFunc("/contacts", listContacts(s)).Methods(http.MethodGet)
	r.HandleFunc("/contacts/{id}/messages", listContactMessages(s)).Methods(http.MethodGet)
}

func listContacts(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		filter := r.URL.Query().Get("filter")
		contacts := s.Contacts(query, filter)
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Contacts interface{} `json:"contacts"`
			Count    int         `json:"count"`
		}{Contacts: contacts, Count: len(contacts)})
	}
}

func listContactMessages(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		msgs := s.Messages(id)
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Contact  string      `json:"contact"`
			Messages interface{} `json:"messages"`
		}{Contact: id, Messages: msgs})
	}
}
