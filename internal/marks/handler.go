package marks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/auditmarks/pkg/handlers"
	"github.com/JaimeStill/auditmarks/pkg/pagination"
	"github.com/JaimeStill/auditmarks/pkg/routes"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler provides HTTP endpoints for mark operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// ActiveRequest is the body of the activation toggle endpoint.
type ActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "marks"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route groups for mark administration and the
// audit-scoped import and match endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/marks",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List},
					{Method: "GET", Pattern: "/template", Handler: h.Template},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find},
					{Method: "POST", Pattern: "/search", Handler: h.Search},
					{Method: "PATCH", Pattern: "/{id}/active", Handler: h.SetActive},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
				},
			},
			{
				Prefix: "/audits/{auditId}/marks",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/import", Handler: h.Import},
					{Method: "GET", Pattern: "/match", Handler: h.Match},
				},
			},
		},
	}
}

// List returns a paginated list of marks with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single mark by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	m, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching marks.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// SetActive toggles whether a mark participates in matching.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var req ActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest,
			&ValidationError{Reason: ErrInvalidCommand, Detail: "is_active is required"},
		)
		return
	}

	m, err := h.sys.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

// Delete removes a mark by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Template streams the example workbook as a file download.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	data, err := h.sys.Template()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondFile(w, xlsxContentType, TemplateFilename, data)
}

// Import processes a multipart upload with an excel_file field and an
// optional replace_existing flag, and returns the import result with its
// human-readable summary.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	auditID, err := strconv.Atoi(r.PathValue("auditId"))
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest,
			&ValidationError{Reason: ErrInvalidCommand, Detail: "invalid audit id"},
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		} else {
			handlers.RespondError(
				w, h.logger,
				http.StatusBadRequest,
				&ValidationError{Reason: ErrInvalidCommand, Detail: err.Error()},
			)
		}
		return
	}

	_, header, err := r.FormFile("excel_file")
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest,
			&ValidationError{Reason: ErrInvalidCommand, Detail: "excel_file is required"},
		)
		return
	}

	cmd := ImportCommand{
		AuditID:         auditID,
		File:            FromMultipart(header),
		ReplaceExisting: parseFlag(r.FormValue("replace_existing")),
	}

	result, err := h.sys.Import(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, newResponse(result))
}

// Match previews the marks that would be stamped on a document with the
// given filename.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	auditID, err := strconv.Atoi(r.PathValue("auditId"))
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest,
			&ValidationError{Reason: ErrInvalidCommand, Detail: "invalid audit id"},
		)
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest,
			&ValidationError{Reason: ErrInvalidCommand, Detail: "filename is required"},
		)
		return
	}

	matched, err := h.sys.MatchesFor(r.Context(), auditID, filename)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matched)
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
