package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/clinic-kiosk/internal/kiosk"
	"github.com/rs/zerolog"
)

// KioskController is the kiosk session driven over HTTP.
type KioskController interface {
	View() kiosk.View
	Dispatch(ctx context.Context, a kiosk.Action) (kiosk.View, error)
	Subscribe(fn func(kiosk.View)) func()
}

// KioskHandler serves the kiosk state, actions and state events.
type KioskHandler struct {
	ctrl   KioskController
	events *EventBroadcaster
	log    zerolog.Logger
}

// NewKioskHandler creates a kiosk handler and starts forwarding every
// published view to the SSE listeners.
func NewKioskHandler(ctrl KioskController, log zerolog.Logger) *KioskHandler {
	h := &KioskHandler{
		ctrl:   ctrl,
		events: &EventBroadcaster{},
		log:    log,
	}
	ctrl.Subscribe(func(v kiosk.View) {
		h.events.SendEvent(Event{Type: "state", Data: v})
	})
	return h
}

// State returns the current kiosk view.
func (h *KioskHandler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ctrl.View())
}

// Action runs the action named in the URL. The body carries its inputs.
func (h *KioskHandler) Action(w http.ResponseWriter, r *http.Request) {
	var a kiosk.Action
	if err := decodeOptionalJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	a.Name = chi.URLParam(r, "action")

	v, err := h.ctrl.Dispatch(actionContext(r), a)
	if errors.Is(err, kiosk.ErrUnknownAction) {
		h.log.Debug().Str("action", sanitizeForLog(a.Name)).Msg("unknown kiosk action")
		respondError(w, http.StatusNotFound, "unknown action")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// Events streams kiosk views via SSE.
func (h *KioskHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r, h.events, Event{Type: "state", Data: h.ctrl.View()})
}
