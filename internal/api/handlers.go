// Package api exposes HTTP handlers for the activity directory.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"example.com/activitydirectory/internal/domain"
	"example.com/activitydirectory/internal/observability"
)

// IndexPath is where the root path redirects to.
const IndexPath = "/static/index.html"

// Option configures optional behaviour for the Handler.
type Option func(*Handler)

// WithAssets serves fsys under /static/.
func WithAssets(fsys fs.FS) Option {
	return func(h *Handler) {
		h.assets = fsys
	}
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service  *domain.Service
	validate *validator.Validate
	assets   fs.FS
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, opts ...Option) *Handler {
	h := &Handler{service: service, validate: validator.New(validator.WithRequiredStructEnabled())}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/{$}", h.root)
	mux.HandleFunc("/activities", h.activities)
	mux.HandleFunc("/activities/{name}", h.activityByName)
	mux.HandleFunc("/activities/{name}/signup", h.signup)
	mux.HandleFunc("/activities/{name}/unregister", h.unregister)
	mux.HandleFunc("/healthz", healthz)
	if h.assets != nil {
		mux.HandleFunc(IndexPath, h.index)
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(h.assets)))
	}
}

// index serves the front-end page directly; the file server would redirect
// any path ending in /index.html back to the directory.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.assets, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(data))
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ActivityDirectory(activities))
}

func (h *Handler) activityByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	activity, err := h.service.GetActivity(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(activity))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.rosterRequest(w, r)
	if !ok {
		return
	}

	message, err := h.service.SignUp(r.Context(), req.Activity, *req.Email)
	if err != nil {
		observability.RecordRejected("signup", rejectionReason(err))
		writeDomainError(w, err)
		return
	}

	observability.RecordSignup(req.Activity)
	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	req, ok := h.rosterRequest(w, r)
	if !ok {
		return
	}

	message, err := h.service.Unregister(r.Context(), req.Activity, *req.Email)
	if err != nil {
		observability.RecordRejected("unregister", rejectionReason(err))
		writeDomainError(w, err)
		return
	}

	observability.RecordUnregister(req.Activity)
	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// rosterRequest extracts and validates the activity name and email; it writes
// the error response itself when the request is unusable.
func (h *Handler) rosterRequest(w http.ResponseWriter, r *http.Request) (RosterRequest, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return RosterRequest{}, false
	}

	req := RosterRequest{Activity: r.PathValue("name")}
	if query := r.URL.Query(); query.Has("email") {
		email := query.Get("email")
		req.Email = &email
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", validationDetail(err))
		return RosterRequest{}, false
	}
	return req, true
}

// RosterRequest is the input for signup and unregister. Email must be present
// as a query value; its content is not checked.
type RosterRequest struct {
	Activity string  `validate:"required"`
	Email    *string `validate:"required"`
}

// MessageResponse is the success body for roster changes.
type MessageResponse struct {
	Message string `json:"message"`
}

// ActivityView exposes the public record of one activity.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ActivityDirectory encodes as a JSON object keyed by activity name, in
// directory order.
type ActivityDirectory []domain.Activity

// MarshalJSON implements json.Marshaler.
func (d ActivityDirectory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, activity := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(activity.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(toActivityView(activity))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func toActivityView(activity domain.Activity) ActivityView {
	participants := activity.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     activity.Description,
		Schedule:        activity.Schedule,
		MaxParticipants: activity.MaxParticipants,
		Participants:    participants,
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, domain.ErrNotRegistered):
		return "not_registered"
	default:
		return "error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrAlreadySignedUp), errors.Is(err, domain.ErrNotRegistered):
		writeError(w, http.StatusBadRequest, rejectionReason(err), err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" is required")
	}
	return strings.Join(fields, "; ")
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
