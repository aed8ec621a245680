package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"clinichat/pkg/session"
	"clinichat/pkg/utils"
)

// RegisterSession registers the UI action endpoints. Each endpoint maps to
// one session transition; invalid transitions answer 200 with the
// unchanged snapshot because the core treats them as silent no-ops.
func RegisterSession(r *mux.Router, s *session.Session) {
	r.HandleFunc("/session", getSession(s)).Methods(http.MethodGet)

	r.HandleFunc("/session/select", selectContact(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/confirm", confirmSelection(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/cancel", cancelSelection(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/close", closeConversation(s)).Methods(http.MethodPost)

	r.HandleFunc("/session/composer", setComposer(s)).Methods(http.MethodPut)
	r.HandleFunc("/session/composer", send(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/attachment", stageAttachment(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/attachment", clearAttachment(s)).Methods(http.MethodDelete)

	r.HandleFunc("/session/edit/cancel", cancelEdit(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/edit/{id}", startEdit(s)).Methods(http.MethodPost)

	r.HandleFunc("/messages/{id}", requestDeleteMessage(s)).Methods(http.MethodDelete)
	r.HandleFunc("/conversation", requestClearConversation(s)).Methods(http.MethodDelete)
	r.HandleFunc("/session/confirm-action", confirmPending(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/cancel-action", cancelPending(s)).Methods(http.MethodPost)

	r.HandleFunc("/session/panels/{panel}", togglePanel(s)).Methods(http.MethodPost)
	r.HandleFunc("/session/pointer", pointerDown(s)).Methods(http.MethodPost)
}

func writeSnapshot(w http.ResponseWriter, s *session.Session) {
	_ = utils.JSONWrite(w, http.StatusOK, s.Snapshot())
}

func getSession(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, s)
	}
}

func selectContact(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Contact string `json:"contact"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Contact == "" {
			utils.JSONError(w, http.StatusBadRequest, "contact is required")
			return
		}
		if err := s.Select(body.Contact); err != nil {
			utils.JSONError(w, http.StatusNotFound, err.Error())
			return
		}
		writeSnapshot(w, s)
	}
}

func confirmSelection(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ConfirmSelection()
		writeSnapshot(w, s)
	}
}

func cancelSelection(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.CancelSelection()
		writeSnapshot(w, s)
	}
}

func closeConversation(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Close()
		writeSnapshot(w, s)
	}
}

func setComposer(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		s.SetComposer(body.Text)
		writeSnapshot(w, s)
	}
}

func send(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Send()
		writeSnapshot(w, s)
	}
}

func stageAttachment(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a session.StagedAttachment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil || a.Name == "" {
			utils.JSONError(w, http.StatusBadRequest, "attachment name is required")
			return
		}
		if err := s.StageAttachment(a); err != nil {
			utils.JSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeSnapshot(w, s)
	}
}

func clearAttachment(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearAttachment()
		writeSnapshot(w, s)
	}
}

func startEdit(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := s.StartEdit(id); err != nil {
			utils.JSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeSnapshot(w, s)
	}
}

func cancelEdit(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.CancelEdit()
		writeSnapshot(w, s)
	}
}

func requestDeleteMessage(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.RequestDeleteMessage(mux.Vars(r)["id"])
		writeSnapshot(w, s)
	}
}

func requestClearConversation(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.RequestClearConversation()
		writeSnapshot(w, s)
	}
}

func confirmPending(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ConfirmPending()
		writeSnapshot(w, s)
	}
}

func cancelPending(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.CancelPending()
		writeSnapshot(w, s)
	}
}

func togglePanel(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["panel"] {
		case "emoji":
			s.ToggleEmoji()
		case "header-menu":
			s.ToggleHeaderMenu()
		case "message-menu":
			var body struct {
				Message string `json:"message"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
				utils.JSONError(w, http.StatusBadRequest, "message is required")
				return
			}
			s.ToggleMessageMenu(body.Message)
		default:
			utils.JSONError(w, http.StatusNotFound, "unknown panel")
			return
		}
		writeSnapshot(w, s)
	}
}

func pointerDown(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Regions []string `json:"regions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		s.PointerDown(body.Regions)
		writeSnapshot(w, s)
	}
}
