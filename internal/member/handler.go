// internal/member/handler.go
package member

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sibbap/internal/uploads"
)

// maxFormMemory caps how much of a multipart member form is held in
// memory before spilling to temp files.
const maxFormMemory = 32 << 20

type Handler struct {
	service Service
	store   *uploads.DiskStore
}

func NewHandler(service Service, store *uploads.DiskStore) *Handler {
	return &Handler{service: service, store: store}
}

// Routes mounts the member endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/members", h.handleList)
	r.Post("/members", h.handleCreate)
	r.Get("/members/{id}", h.handleGet)
	r.Put("/members/{id}", h.handleUpdate)
	r.Delete("/members/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondError(w, err)
		return
	}
	if len(members) == 0 {
		respondMessage(w, http.StatusNotFound, "No members found")
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	docs, err := h.store.Collect(r.MultipartForm, uploads.MemberDocumentFields)
	if err != nil {
		respondError(w, err)
		return
	}

	in := CreateInput{
		FullName:      r.FormValue("fullName"),
		ContactNumber: r.FormValue("contactNumber"),
		Gender:        r.FormValue("gender"),
		Address:       r.FormValue("address"),
		Email:         r.FormValue("email"),
		Password:      r.FormValue("password"),
		Documents:     docs,
	}
	if in.Age, err = formInt(r, "age"); err != nil {
		respondError(w, err)
		return
	}
	if in.SharedCapital, err = formFloat(r, "sharedCapital"); err != nil {
		respondError(w, err)
		return
	}
	if in.MemberSince, err = formDate(r, "memberSince"); err != nil {
		respondError(w, err)
		return
	}

	code, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":    "Member added successfully",
		"memberCode": code,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	docs, err := h.store.Collect(r.MultipartForm, uploads.MemberDocumentFields)
	if err != nil {
		respondError(w, err)
		return
	}

	in := UpdateInput{
		FullName:      r.FormValue("fullName"),
		ContactNumber: r.FormValue("contactNumber"),
		Gender:        r.FormValue("gender"),
		Address:       r.FormValue("address"),
		Email:         r.FormValue("email"),
		Password:      r.FormValue("password"),
		Documents:     docs,
	}
	if in.Age, err = formInt(r, "age"); err != nil {
		respondError(w, err)
		return
	}
	if in.SharedCapital, err = formFloat(r, "sharedCapital"); err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.Update(r.Context(), id, in); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Member updated successfully")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := memberID(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Member deleted successfully")
}

func memberID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func formInt(r *http.Request, field string) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrValidation, field)
	}
	return n, nil
}

func formFloat(r *http.Request, field string) (float64, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrValidation, field)
	}
	return f, nil
}

func formDate(r *http.Request, field string) (time.Time, error) {
	v := r.FormValue(field)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, field)
	}
	return t, nil
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondError maps service errors onto the API's status contract.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Member not found")
	case errors.Is(err, ErrValidation):
		respondMessage(w, http.StatusBadRequest, err.Error())
	default:
		respondMessage(w, http.StatusInternalServerError, err.Error())
	}
}
