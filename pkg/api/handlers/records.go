package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"clinichat/pkg/models"
	"clinichat/pkg/store"
	"clinichat/pkg/utils"
	"clinichat/pkg/validation"
)

// RegisterRecords registers the external record collection endpoints. PUTs
// notify the change hub, which is how collaborating processes (and our own
// session) learn that the directory inputs changed.
func RegisterRecords(r *mux.Router) {
	r.HandleFunc("/records/staff", getStaff).Methods(http.MethodGet)
	r.HandleFunc("/records/staff", putStaff).Methods(http.MethodPut)
	r.HandleFunc("/records/reception", getReception).Methods(http.MethodGet)
	r.HandleFunc("/records/reception", putReception).Methods(http.MethodPut)
}

func getStaff(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Records []models.StaffRecord `json:"records"`
	}{Records: store.LoadStaff()})
}

func putStaff(w http.ResponseWriter, r *http.Request) {
	var recs []models.StaffRecord
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateStaffRecords(recs); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.SaveStaff(recs); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func getReception(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Records []models.ReceptionRecord `json:"records"`
	}{Records: store.LoadReception()})
}

func putReception(w http.ResponseWriter, r *http.Request) {
	var recs []models.ReceptionRecord
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateReceptionRecords(recs); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.SaveReception(recs); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
