package handler

import (
	"net/http"

	"github.com/phonefeed-api/internal/application/media"
)

var uploadURLErrors = routeErrors{
	validation: "Phone number, file name, and image content type are required",
	internal:   "Failed to create upload URL",
}

// UploadHandler issues presigned image upload URLs.
type UploadHandler struct {
	svc media.Service
}

func NewUploadHandler(svc media.Service) *UploadHandler { return &UploadHandler{svc: svc} }

// UploadURL handles POST /api/upload-url.
func (h *UploadHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req media.UploadURLRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, uploadURLErrors.validation)
		return
	}
	res, err := h.svc.UploadURL(r.Context(), req)
	if err != nil {
		httpError(w, r, err, uploadURLErrors)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
