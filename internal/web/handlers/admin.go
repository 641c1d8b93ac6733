package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/clinic-kiosk/internal/admin"
	"github.com/kozaktomas/clinic-kiosk/internal/metrics"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/rs/zerolog"
)

// AdminController is the patient table driven over HTTP.
type AdminController interface {
	View() admin.View
	Subscribe(fn func(admin.View))
	Load(ctx context.Context) error
	Loaded() bool
	ToggleSort(key admin.SortKey) admin.View
	SetPageSize(size int) error
	GoToPage(p int) admin.View
	OpenEdit(nik string) (*patient.EditForm, error)
	CancelEdit()
	SubmitEdit(ctx context.Context, form patient.EditForm) error
	DeleteWith(ctx context.Context, nik string, confirm admin.Confirmer) (bool, error)
}

// AdminHandler serves the admin patient table.
type AdminHandler struct {
	ctrl   AdminController
	events *EventBroadcaster
	log    zerolog.Logger
}

// NewAdminHandler creates an admin handler and starts forwarding every
// re-rendered table to the SSE listeners.
func NewAdminHandler(ctrl AdminController, log zerolog.Logger) *AdminHandler {
	h := &AdminHandler{
		ctrl:   ctrl,
		events: &EventBroadcaster{},
		log:    log,
	}
	ctrl.Subscribe(func(v admin.View) {
		h.events.SendEvent(Event{Type: "table", Data: v})
	})
	return h
}

// DeleteRequest confirms a delete. Without confirm=true nothing is deleted.
type DeleteRequest struct {
	Confirm bool `json:"confirm"`
}

// DeleteResponse reports the delete outcome together with the new table.
type DeleteResponse struct {
	Deleted bool       `json:"deleted"`
	Table   admin.View `json:"table"`
}

// statusFor maps a controller error to the HTTP status of the response.
// The user-facing message is always in the view's alert.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, patient.ErrInvalidNIK), errors.Is(err, patient.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, admin.ErrNotInTable):
		return http.StatusNotFound
	case errors.Is(err, admin.ErrNoEditForm):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *AdminHandler) respond(w http.ResponseWriter, action string, err error) {
	metrics.ObserveAction("admin-"+action, err)
	if err != nil {
		h.log.Warn().Err(err).Str("action", action).Msg("admin action failed")
	}
	respondJSON(w, statusFor(err), h.ctrl.View())
}

// ensureLoaded fetches the collection if no load has succeeded yet. A
// failure is left in the view's alert.
func (h *AdminHandler) ensureLoaded(r *http.Request) {
	if h.ctrl.Loaded() {
		return
	}
	err := h.ctrl.Load(actionContext(r))
	metrics.ObserveAction("admin-reload", err)
	if err != nil {
		h.log.Warn().Err(err).Msg("could not load patient table")
	}
}

// Table returns the current table view, loading it first if needed.
func (h *AdminHandler) Table(w http.ResponseWriter, r *http.Request) {
	h.ensureLoaded(r)
	respondJSON(w, http.StatusOK, h.ctrl.View())
}

// Reload fetches the full patient collection again.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "reload", h.ctrl.Load(actionContext(r)))
}

// Sort toggles the sort column named in the URL.
func (h *AdminHandler) Sort(w http.ResponseWriter, r *http.Request) {
	key, err := admin.ParseSortKey(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.ctrl.ToggleSort(key)
	h.respond(w, "sort", nil)
}

// Page jumps to a page number.
func (h *AdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	p, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid page")
		return
	}
	h.ctrl.GoToPage(p)
	h.respond(w, "page", nil)
}

// Rows changes the page size.
func (h *AdminHandler) Rows(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil || size <= 0 {
		respondError(w, http.StatusBadRequest, "invalid page size")
		return
	}
	h.respond(w, "rows", h.ctrl.SetPageSize(size))
}

// OpenEdit opens the edit form for the NIK in the URL.
func (h *AdminHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	_, err := h.ctrl.OpenEdit(chi.URLParam(r, "nik"))
	h.respond(w, "edit-open", err)
}

// SubmitEdit submits the open edit form.
func (h *AdminHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	var form patient.EditForm
	if err := decodeOptionalJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	h.respond(w, "edit-submit", h.ctrl.SubmitEdit(actionContext(r), form))
}

// CancelEdit closes the edit form.
func (h *AdminHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.ctrl.CancelEdit()
	h.respond(w, "edit-cancel", nil)
}

// Delete removes the patient in the URL when the body confirms it.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	nik := chi.URLParam(r, "nik")
	deleted, err := h.ctrl.DeleteWith(actionContext(r), nik, func(string) bool { return req.Confirm })
	metrics.ObserveAction("admin-delete", err)
	if err != nil {
		h.log.Warn().Err(err).Str("nik", sanitizeForLog(nik)).Msg("admin delete failed")
	}
	respondJSON(w, statusFor(err), DeleteResponse{Deleted: deleted, Table: h.ctrl.View()})
}

// Events streams table views via SSE.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	h.ensureLoaded(r)
	streamSSEEvents(w, r, h.events, Event{Type: "table", Data: h.ctrl.View()})
}
