package handler

import (
	"net/http"

	"github.com/phonefeed-api/internal/application/profile"
	"github.com/phonefeed-api/internal/domain"
)

var (
	addProfileErrors   = routeErrors{validation: "All fields are required", internal: "Failed to save data"}
	listProfilesErrors = routeErrors{internal: "Internal Server Error"}
)

// ProfileHandler handles the user-data endpoints.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler { return &ProfileHandler{svc: svc} }

// Add handles POST /api/add-data.
func (h *ProfileHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, addProfileErrors.validation)
		return
	}
	p, err := h.svc.Add(r.Context(), req)
	if err != nil {
		httpError(w, r, err, addProfileErrors)
		return
	}
	writeJSON(w, http.StatusOK, CreatedEnvelope{Message: "Data saved successfully", ID: p.ProfileID})
}

// List handles GET /api/user-data[?phoneNumber=].
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.List(r.Context(), r.URL.Query().Get("phoneNumber"))
	if err != nil {
		httpError(w, r, err, listProfilesErrors)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
