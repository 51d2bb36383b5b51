package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phonefeed-api/internal/application/post"
	"github.com/phonefeed-api/internal/domain"
	"github.com/phonefeed-api/internal/transport/http/middleware"
)

var (
	addPostErrors   = routeErrors{validation: "Phone number, caption, and image URL are required", internal: "Failed to save post"}
	listPostsErrors = routeErrors{internal: "Internal Server Error"}
	editPostErrors  = routeErrors{
		validation:     "All fields are required",
		notFound:       "Post not found",
		notFoundStatus: http.StatusNotFound,
		forbidden:      "You are not authorized to edit this post",
		internal:       "Failed to edit post",
	}
	deletePostErrors = routeErrors{
		notFound:       "Post not found",
		notFoundStatus: http.StatusNotFound,
		forbidden:      "You are not authorized to delete this post",
		internal:       "Failed to delete post",
	}
)

// PostHandler handles the feed endpoints.
type PostHandler struct {
	svc post.Service
}

func NewPostHandler(svc post.Service) *PostHandler { return &PostHandler{svc: svc} }

// Add handles POST /api/add-post.
func (h *PostHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, addPostErrors.validation)
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err, addPostErrors)
		return
	}
	writeJSON(w, http.StatusOK, CreatedEnvelope{Message: "Post added successfully", ID: p.PostID, ImageURL: p.ImageURL})
}

// List handles GET /api/posts[?phoneNumber=].
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context(), r.URL.Query().Get("phoneNumber"))
	if err != nil {
		httpError(w, r, err, listPostsErrors)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Edit handles PUT /api/edit-post/{id}. A verified identity token takes
// precedence over the body's userId.
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req domain.EditPostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, editPostErrors.validation)
		return
	}
	if phone, ok := middleware.PhoneFromContext(r.Context()); ok {
		req.UserID = phone
	}
	if err := h.svc.Edit(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		httpError(w, r, err, editPostErrors)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Post updated successfully"})
}

// Delete handles DELETE /api/delete-post/{id}. The body is optional; without a
// userId (or identity token) the ownership check fails.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req domain.DeletePostRequest
	if err := decodeBody(r, &req); err != nil {
		req = domain.DeletePostRequest{}
	}
	if phone, ok := middleware.PhoneFromContext(r.Context()); ok {
		req.UserID = phone
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		httpError(w, r, err, deletePostErrors)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Post deleted successfully"})
}
