package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-fragments/pkg/fragments"
)

// DefaultMaxBodyBytes caps POST and PUT bodies when no limit is configured
const DefaultMaxBodyBytes int64 = 5 << 20

// Version is reported by the health check; set at build time
var Version = "dev"

// FragmentHandler serves the /v1/fragments routes
type FragmentHandler struct {
	service      fragments.Service
	apiURL       string
	maxBodyBytes int64
}

// HandlerOption configures a FragmentHandler
type HandlerOption func(*FragmentHandler)

// WithAPIURL sets the public base URL used in Location headers
func WithAPIURL(apiURL string) HandlerOption {
	return func(h *FragmentHandler) {
		h.apiURL = strings.TrimRight(apiURL, "/")
	}
}

// WithMaxBodyBytes caps request bodies; non-positive values keep the default
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *FragmentHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// NewFragmentHandler creates a new fragment handler
func NewFragmentHandler(service fragments.Service, opts ...HandlerOption) *FragmentHandler {
	h := &FragmentHandler{
		service:      service,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the fragment routes. Every route expects an owner in the
// request context, see HeaderAuth, BasicAuth and JWTAuth.
func (h *FragmentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requireOwner)

	r.Post("/", h.CreateFragment)
	r.Get("/", h.ListFragments)
	r.Get("/{id}", h.GetFragment)
	r.Get("/{id}/info", h.GetFragmentInfo)
	r.Put("/{id}", h.UpdateFragment)
	r.Delete("/{id}", h.DeleteFragment)

	return r
}

// FragmentResponse wraps a single fragment record
type FragmentResponse struct {
	Status   string              `json:"status"`
	Fragment *fragments.Fragment `json:"fragment"`
	Commit   string              `json:"commit,omitempty"`
}

// ListResponse holds either ids or full records
type ListResponse struct {
	Status    string `json:"status"`
	Fragments any    `json:"fragments"`
}

// StatusResponse is the bare success envelope
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	render.JSON(w, r, HealthResponse{Status: "ok", Version: Version})
}

// CreateFragment stores the request body as a new fragment of the declared type
func (h *FragmentHandler) CreateFragment(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	contentType := r.Header.Get("Content-Type")
	if !fragments.IsSupportedType(contentType) {
		writeErrorMessage(w, r, http.StatusUnsupportedMediaType,
			"Content-Type is not supported, expected one of: "+strings.Join(fragments.SupportedTypes(), ", "))
		return
	}

	data, ok := h.readBody(w, r)
	if !ok {
		return
	}

	result, err := h.service.CreateFragment(r.Context(), fragments.CreateFragmentRequest{
		OwnerID: ownerID,
		Type:    contentType,
		Data:    data,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", h.apiURL+"/v1/fragments/"+result.Fragment.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, FragmentResponse{Status: "ok", Fragment: result.Fragment})
}

// ListFragments lists the caller's fragments; expand=1 returns full records
func (h *FragmentHandler) ListFragments(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	expand, _ := strconv.ParseBool(r.URL.Query().Get("expand"))
	list, err := h.service.ListFragments(r.Context(), fragments.ListFragmentsRequest{
		OwnerID: ownerID,
		Expand:  expand,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ListResponse{Status: "ok", Fragments: list.IDs}
	if expand {
		resp.Fragments = list.Fragments
	}
	render.JSON(w, r, resp)
}

// GetFragment writes the fragment's bytes. A trailing extension on the id
// ("{id}.html") requests a conversion.
func (h *FragmentHandler) GetFragment(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	id, ext := splitExtension(chi.URLParam(r, "id"))
	data, err := h.service.ReadFragment(r.Context(), fragments.ReadFragmentRequest{
		OwnerID:   ownerID,
		ID:        id,
		Extension: ext,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", data.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data.Data); err != nil {
		slog.Warn("Failed to write fragment body", "fragment_id", id, "error", err)
	}
}

// GetFragmentInfo returns the metadata record
func (h *FragmentHandler) GetFragmentInfo(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	id := chi.URLParam(r, "id")
	fragment, err := h.service.GetFragment(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, FragmentResponse{Status: "ok", Fragment: fragment})
}

// UpdateFragment replaces a fragment's data; the base type must not change
func (h *FragmentHandler) UpdateFragment(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	data, ok := h.readBody(w, r)
	if !ok {
		return
	}

	result, err := h.service.UpdateFragment(r.Context(), fragments.UpdateFragmentRequest{
		OwnerID: ownerID,
		ID:      id,
		Type:    r.Header.Get("Content-Type"),
		Data:    data,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, FragmentResponse{Status: "ok", Fragment: result.Fragment})
}

// DeleteFragment removes a fragment's metadata and data
func (h *FragmentHandler) DeleteFragment(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteFragment(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, StatusResponse{Status: "ok"})
}

func (h *FragmentHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorMessage(w, r, http.StatusRequestEntityTooLarge, "fragment exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return nil, false
		}
		writeErrorMessage(w, r, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return data, true
}

// splitExtension turns "abc.html" into ("abc", "html")
func splitExtension(param string) (string, string) {
	ext := path.Ext(param)
	if ext == "" {
		return param, ""
	}
	return strings.TrimSuffix(param, ext), strings.TrimPrefix(ext, ".")
}

func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := OwnerFromContext(r.Context()); !ok {
			writeErrorMessage(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, fragments.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fragments.ErrUnsupportedMediaType),
		errors.Is(err, fragments.ErrUnsupportedConversion):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, fragments.ErrConversionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fragments.ErrValidation),
		errors.Is(err, fragments.ErrEmptyData),
		errors.Is(err, fragments.ErrTypeMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the envelope. Caller mistakes log at warn;
// only failures on our side log at error and hide their detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	message := err.Error()
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "status", code, "error", err)
		message = http.StatusText(code)
	} else {
		slog.WarnContext(r.Context(), "Request rejected",
			"method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	}
	writeErrorMessage(w, r, code, message)
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, code int, message string) {
	render.Status(r, code)
	render.JSON(w, r, ErrorResponse{
		Status: "error",
		Error:  ErrorDetail{Code: code, Message: message},
	})
}
