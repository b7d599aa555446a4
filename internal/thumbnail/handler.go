package thumbnail

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/drivenest/service/internal/response"
	"github.com/drivenest/service/internal/textutil"
)

// Handler holds HTTP handlers for the image endpoints and the small
// utility routes.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new thumbnail Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Root greets API callers.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"message": "Welcome to DriveNest API"})
}

// Reverse reverses the alphanumeric characters of the "text" form field.
func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form body")
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		response.BadRequest(w, "text form field is required")
		return
	}

	response.OK(w, map[string]string{"reversed": textutil.Reverse(text)})
}

// Upload accepts a multipart "file" field, stores it, and returns the new
// record with its public URL.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "uploaded file is too large")
			return
		}
		response.BadRequest(w, "file form field is required")
		return
	}
	defer file.Close()

	view, err := h.svc.Upload(r.Context(), file, header.Filename)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, map[string]interface{}{
		"url":      view.URL,
		"id":       view.ID,
		"filename": view.Filename,
	})
}

// List returns every stored image. An empty store reports not-found.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "no images found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"images": views})
}

// Delete removes one image and its metadata record.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid image id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "image not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "deleted"})
}
