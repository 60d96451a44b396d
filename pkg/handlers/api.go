package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cheatsheets/pkg/catalog"
	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/middleware"
	"cheatsheets/pkg/models"
)

// APIHandlers serves the cheat sheet and category endpoints of the
// signed-in user
type APIHandlers struct {
	catalogs  *Catalogs
	validator *errors.Validator
	logger    zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(catalogs *Catalogs, logger zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		catalogs:  catalogs,
		validator: errors.NewValidator(),
		logger:    logger,
	}
}

func (h *APIHandlers) engine(r *http.Request) (*catalog.Engine, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return h.catalogs.For(uid), true
}

// pathParam returns a URL parameter with percent-escapes such as %2F decoded
func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

// ListRecordsHandler returns all cheat sheets, newest first
func (h *APIHandlers) ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, e.Records())
}

// GetRecordHandler returns one cheat sheet
func (h *APIHandlers) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}

	id := chi.URLParam(r, "id")
	record, found := e.GetByID(id)
	if !found {
		writeError(w, h.logger, errors.ErrRecordNotFound.WithContext("id", id))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// CreateRecordHandler creates a cheat sheet
func (h *APIHandlers) CreateRecordHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}

	var in models.RecordInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if result := h.validator.ValidateRecordInput(in); !result.IsValid {
		writeError(w, h.logger, result.Err())
		return
	}

	record, err := e.AddRecord(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// UpdateRecordHandler applies a partial update to a cheat sheet
func (h *APIHandlers) UpdateRecordHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}

	id := chi.URLParam(r, "id")
	var upd models.RecordUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if result := h.validator.ValidateRecordUpdate(upd); !result.IsValid {
		writeError(w, h.logger, result.Err())
		return
	}

	record, err := e.UpdateRecord(r.Context(), id, upd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if record == nil {
		writeError(w, h.logger, errors.ErrRecordNotFound.WithContext("id", id))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteRecordHandler deletes a cheat sheet
func (h *APIHandlers) DeleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}

	id := chi.URLParam(r, "id")
	if _, found := e.GetByID(id); !found {
		writeError(w, h.logger, errors.ErrRecordNotFound.WithContext("id", id))
		return
	}
	if err := e.DeleteRecord(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategoriesHandler returns the registered categories
func (h *APIHandlers) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, e.CustomCategories())
}

// CreateCategoryHandler registers a category
func (h *APIHandlers) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if result := h.validator.ValidateCategoryName(req.Name); !result.IsValid {
		writeError(w, h.logger, result.Err())
		return
	}

	name := strings.TrimSpace(req.Name)
	for _, c := range e.CustomCategories() {
		if c == name {
			writeError(w, h.logger, errors.ErrCategoryExists.WithContext("category", name))
			return
		}
	}

	if err := e.AddCategory(r.Context(), name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// DeleteCategoryHandler removes a category. It answers 409 while cheat
// sheets use it unless ?force=true, which deletes them as well.
func (h *APIHandlers) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(r)
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}

	name := pathParam(r, "name")
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	result, err := e.RemoveCategory(r.Context(), name, force)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	switch {
	case result.InUse:
		writeError(w, h.logger, errors.ErrCategoryInUse.WithContext("category", name))
		return
	case !result.Deleted:
		writeError(w, h.logger, errors.ErrCategoryNotFound.WithContext("category", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
