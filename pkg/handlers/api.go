package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"markan/pkg/errors"
	"markan/pkg/logging"
	"markan/pkg/services"
	"markan/pkg/storage"
	"markan/pkg/types"
)

// APIHandlers exposes the file access surface over HTTP. File operations
// always answer 200 with a sentinel body; only malformed requests get 400.
// Clients cannot admit external files; only the host process does that.
type APIHandlers struct {
	gateway   *storage.Gateway
	workspace *services.WorkspaceService
	appPaths  *services.AppPaths
	logger    *logging.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(gateway *storage.Gateway, workspace *services.WorkspaceService, appPaths *services.AppPaths, logger *logging.Logger) *APIHandlers {
	if logger == nil {
		logger = logging.Nop()
	}
	return &APIHandlers{
		gateway:   gateway,
		workspace: workspace,
		appPaths:  appPaths,
		logger:    logger.Named("api"),
	}
}

// Routes mounts the API on r.
func (h *APIHandlers) Routes(r chi.Router) {
	r.Route("/fs", func(r chi.Router) {
		r.Post("/list", h.ListNotesHandler)
		r.Post("/read", h.ReadFileHandler)
		r.Post("/write", h.WriteFileHandler)
		r.Post("/delete", h.DeleteFileHandler)
		r.Post("/exists", h.ExistsHandler)
	})
	r.Post("/workspace", h.SetWorkspaceHandler)
	r.Get("/app-path/{name}", h.AppPathHandler)
	r.Post("/notes/save", h.SaveNoteHandler)
}

type pathRequest struct {
	Path string `json:"path"`
}

type writeRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type saveRequest struct {
	FilePath string `json:"filePath"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type readResponse struct {
	Content *string `json:"content"`
}

// ListNotesHandler returns the notes in a directory, newest first
func (h *APIHandlers) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !h.decode(w, r, &req) {
		return
	}
	notes := h.gateway.ListNotes(r.Context(), req.Path)
	writeJSON(w, http.StatusOK, types.ConvertToFileDetails(notes))
}

// ReadFileHandler returns file content, or null when it cannot be read
func (h *APIHandlers) ReadFileHandler(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !h.decode(w, r, &req) {
		return
	}
	var resp readResponse
	if content, ok := h.gateway.ReadFile(r.Context(), req.Path); ok {
		resp.Content = &content
	}
	writeJSON(w, http.StatusOK, resp)
}

// WriteFileHandler writes file content
func (h *APIHandlers) WriteFileHandler(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: h.gateway.WriteFile(r.Context(), req.Path, req.Content)})
}

// DeleteFileHandler deletes a file
func (h *APIHandlers) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: h.gateway.DeleteFile(r.Context(), req.Path)})
}

// ExistsHandler reports whether an authorized path exists
func (h *APIHandlers) ExistsHandler(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: h.gateway.Exists(r.Context(), req.Path)})
}

// SetWorkspaceHandler switches the workspace; an empty path closes it
func (h *APIHandlers) SetWorkspaceHandler(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: h.workspace.SetWorkspacePath(req.Path)})
}

// AppPathHandler returns a well-known directory by name
func (h *APIHandlers) AppPathHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	writeJSON(w, http.StatusOK, map[string]string{"path": h.appPaths.Get(name)})
}

// SaveNoteHandler saves a note, creating a new file in the workspace when no
// path is given
func (h *APIHandlers) SaveNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !h.decode(w, r, &req) {
		return
	}

	path, err := h.workspace.SaveNote(r.Context(), req.FilePath, req.Title, req.Content)
	if err != nil {
		writeJSON(w, statusFor(err), errors.ToFrontendError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filePath": path})
}

func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		appErr := errors.Wrap(err, errors.ErrTypeValidation, "INVALID_JSON", "request body is not valid JSON").
			WithUserMessage("Invalid request")
		h.logger.Debug("bad request", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errors.ToFrontendError(appErr))
		return false
	}
	return true
}

func statusFor(err error) int {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrTypeValidation:
		return http.StatusBadRequest
	case errors.ErrTypeAccess:
		return http.StatusForbidden
	case errors.ErrTypeWorkspace:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
