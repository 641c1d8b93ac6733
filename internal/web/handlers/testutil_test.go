package handlers

import (
	"context"
	"image"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/clinic-kiosk/internal/capture"
	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/kiosk"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// fakeKiosk records dispatched actions and publishes a view per action.
type fakeKiosk struct {
	mu        sync.Mutex
	view      kiosk.View
	actions   []kiosk.Action
	listeners []func(kiosk.View)
}

func (f *fakeKiosk) View() kiosk.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *fakeKiosk) Dispatch(ctx context.Context, a kiosk.Action) (kiosk.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.Name == "dance" {
		return f.view, kiosk.ErrUnknownAction
	}
	f.actions = append(f.actions, a)
	if a.Page != "" {
		f.view.Page = a.Page
	}
	for _, fn := range f.listeners {
		fn(f.view)
	}
	return f.view, nil
}

func (f *fakeKiosk) Subscribe(fn func(kiosk.View)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
	return func() {}
}

// fakePatients is an in-memory patient service.
type fakePatients struct {
	records   []patient.Record
	lists     int
	listErr   error
	updateErr error
	updates   []clinic.UpdateRequest
	deletes   []string
}

func (f *fakePatients) ListPatients(ctx context.Context) ([]patient.Record, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]patient.Record(nil), f.records...), nil
}

func (f *fakePatients) UpdatePatient(ctx context.Context, req clinic.UpdateRequest) (string, error) {
	f.updates = append(f.updates, req)
	if f.updateErr != nil {
		return "", f.updateErr
	}
	return "Data pasien diupdate.", nil
}

func (f *fakePatients) DeletePatient(ctx context.Context, nik string) error {
	f.deletes = append(f.deletes, nik)
	out := f.records[:0]
	for _, r := range f.records {
		if string(r.NIK) != nik {
			out = append(out, r)
		}
	}
	f.records = out
	return nil
}

// hookCamera opens streams that call onGrab before every frame.
type hookCamera struct {
	onGrab func()
}

func (c hookCamera) Open(ctx context.Context) (capture.Stream, error) {
	return hookStream(c), nil
}

type hookStream struct {
	onGrab func()
}

func (s hookStream) Size() image.Point { return image.Pt(8, 8) }

func (s hookStream) Grab(ctx context.Context) (image.Image, error) {
	if s.onGrab != nil {
		s.onGrab()
	}
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

func (s hookStream) Close() error { return nil }

// recordingClinic accepts every registration and remembers the context
// state seen by the upload.
type recordingClinic struct {
	mu          sync.Mutex
	registered  []clinic.RegisterRequest
	uploadCtxOK []bool
}

func (f *recordingClinic) Register(ctx context.Context, req clinic.RegisterRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, req)
	f.uploadCtxOK = append(f.uploadCtxOK, ctx.Err() == nil)
	return "Registrasi berhasil", nil
}

func (f *recordingClinic) Recognize(ctx context.Context, frames [][]byte) (*clinic.Recognition, error) {
	return &clinic.Recognition{}, nil
}

func (f *recordingClinic) GetPatient(ctx context.Context, nik string) (*clinic.PatientDetail, error) {
	return nil, &clinic.APIError{Status: http.StatusNotFound}
}

func (f *recordingClinic) AssignQueue(ctx context.Context, poli string) (*clinic.QueueTicket, error) {
	return &clinic.QueueTicket{Poli: poli, Nomor: 1}, nil
}
