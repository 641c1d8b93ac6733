// Package kiosk drives the patient-facing kiosk: page navigation, face
// registration, face verification with a manual NIK fallback, and queue
// number assignment.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/clinic-kiosk/internal/capture"
	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/metrics"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/rs/zerolog"
)

// Service is the part of the clinic API the kiosk calls.
type Service interface {
	Register(ctx context.Context, req clinic.RegisterRequest) (string, error)
	Recognize(ctx context.Context, frames [][]byte) (*clinic.Recognition, error)
	GetPatient(ctx context.Context, nik string) (*clinic.PatientDetail, error)
	AssignQueue(ctx context.Context, poli string) (*clinic.QueueTicket, error)
}

// Options configures a Controller.
type Options struct {
	Departments  []string
	Registration capture.Profile
	Verification capture.Profile
	Sequencer    *capture.Sequencer
	Now          func() time.Time
}

// Action names.
const (
	ActionShow                 = "show"
	ActionRegister             = "register"
	ActionRegistrationClose    = "registration-close"
	ActionRegistrationContinue = "registration-continue"
	ActionScan                 = "scan"
	ActionDetail               = "detail"
	ActionDetailClose          = "detail-close"
	ActionDetailContinue       = "detail-continue"
	ActionNIKFallback          = "nik-fallback"
	ActionLookup               = "lookup"
	ActionQueue                = "queue"
	ActionAlertOK              = "alert-ok"
	ActionTicketClose          = "ticket-close"
)

// ErrUnknownAction is returned by Dispatch for an unregistered action name.
var ErrUnknownAction = errors.New("unknown action")

// Action is one user interaction. Only the fields the named action reads
// need to be set.
type Action struct {
	Name string                   `json:"-"`
	Page Page                     `json:"page,omitempty"`
	Form patient.RegistrationForm `json:"form"`
	NIK  string                   `json:"nik,omitempty"`
	Poli string                   `json:"poli,omitempty"`
}

type handlerFunc func(ctx context.Context, a Action) error

// Controller owns one kiosk session. Dispatch runs one action at a time;
// every state change publishes a fresh View to subscribers.
type Controller struct {
	api      Service
	nav      *Navigator
	seq      *capture.Sequencer
	opts     Options
	session  string
	log      zerolog.Logger
	handlers map[string]handlerFunc

	mu     sync.Mutex
	view   View
	active *ActivePatient

	snapMu    sync.RWMutex
	snapshot  View
	listeners map[int]func(View)
	nextID    int
}

// NewController starts a session on the home page.
func NewController(api Service, camera capture.Camera, opts Options, log zerolog.Logger) *Controller {
	if opts.Sequencer == nil {
		opts.Sequencer = capture.NewSequencer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	session := uuid.NewString()
	c := &Controller{
		api:       api,
		nav:       NewNavigator(camera),
		seq:       opts.Sequencer,
		opts:      opts,
		session:   session,
		log:       log.With().Str("component", "kiosk").Str("session", session).Logger(),
		listeners: make(map[int]func(View)),
	}
	c.view = View{
		Session:      session,
		Page:         PageHome,
		Registration: RegistrationView{Status: StatusWaiting},
		Verification: VerificationView{Status: StatusWaiting},
		Departments:  slices.Clone(opts.Departments),
	}
	c.snapshot = c.view.clone()

	c.handlers = map[string]handlerFunc{
		ActionShow:                 c.show,
		ActionRegister:             c.register,
		ActionRegistrationClose:    c.registrationClose,
		ActionRegistrationContinue: c.registrationContinue,
		ActionScan:                 c.scan,
		ActionDetail:               c.detail,
		ActionDetailClose:          c.detailClose,
		ActionDetailContinue:       c.detailContinue,
		ActionNIKFallback:          c.nikFallback,
		ActionLookup:               c.lookup,
		ActionQueue:                c.queue,
		ActionAlertOK:              c.alertOK,
		ActionTicketClose:          c.ticketClose,
	}
	return c
}

// Session returns the session id.
func (c *Controller) Session() string {
	return c.session
}

// Actions lists the registered action names.
func (c *Controller) Actions() []string {
	names := make([]string, 0, len(c.handlers))
	for name := range c.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch runs one action and returns the resulting view. Failures inside
// an action are shown to the user through the view; the only error returned
// is ErrUnknownAction.
func (c *Controller) Dispatch(ctx context.Context, a Action) (View, error) {
	h, ok := c.handlers[a.Name]
	if !ok {
		return c.View(), fmt.Errorf("%w: %q", ErrUnknownAction, a.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	err := h(ctx, a)
	metrics.ObserveAction(a.Name, err)

	ev := c.log.Debug()
	if err != nil && !errors.Is(err, metrics.ErrRejected) {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("action", a.Name).Str("page", string(c.view.Page)).Dur("took", time.Since(start)).Msg("action")

	return c.publish(), nil
}

// View returns the last published view.
func (c *Controller) View() View {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapshot.clone()
}

// Subscribe registers fn for every published view and returns a function
// that removes it.
func (c *Controller) Subscribe(fn func(View)) func() {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.snapMu.Lock()
		defer c.snapMu.Unlock()
		delete(c.listeners, id)
	}
}

// publish must be called by the dispatching goroutine.
func (c *Controller) publish() View {
	c.snapMu.Lock()
	c.snapshot = c.view.clone()
	fns := make([]func(View), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.snapMu.Unlock()

	for _, fn := range fns {
		fn(c.view.clone())
	}
	return c.view.clone()
}

// Close releases the camera streams.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav.Close()
}

// alert shows msg and hides the loading modal.
func (c *Controller) alert(msg string) {
	c.view.Loading = nil
	c.view.Alert = msg
}

// reject shows msg for an input problem found before any remote call.
func (c *Controller) reject(msg string) error {
	c.alert(msg)
	return fmt.Errorf("%w: %s", metrics.ErrRejected, msg)
}

// remoteFailure maps an API error to the alert text. Server-reported
// failures show the server message or fallback; anything else is shown
// with the transport prefix.
func (c *Controller) remoteFailure(err error, fallback, transportPrefix string) (server bool) {
	if msg, ok := clinic.ServerMessage(err, fallback); ok {
		c.alert(msg)
		return true
	}
	c.alert(transportPrefix + err.Error())
	return false
}

func (c *Controller) loading(text string) {
	c.view.Loading = &Loading{Text: text}
	c.publish()
}

func (c *Controller) progress(p capture.Progress) {
	c.view.Loading = &Loading{Text: p.String(), Percent: p.Percent}
}

func (c *Controller) ageOf(dob, serverAge string) string {
	if serverAge != "" {
		return serverAge
	}
	return patient.AgeLabel(dob, c.opts.Now())
}

func (c *Controller) showGateway() {
	c.view.Gateway = &Gateway{
		Name:    c.active.Name,
		Age:     c.active.Age,
		Address: c.active.Address,
	}
	c.view.Page = PageGateway
	c.nav.page = PageGateway
}

// goTo switches page and reports a camera failure through the alert.
func (c *Controller) goTo(ctx context.Context, p Page) error {
	err := c.nav.Show(ctx, p)
	c.view.Page = c.nav.Page()
	if p == PageVerification {
		c.view.Verification = VerificationView{Status: StatusWaiting}
	}
	if err != nil {
		c.alert(msgCamera + err.Error())
		return fmt.Errorf("could not open camera: %w", err)
	}
	return nil
}

// captureFrames runs a capture on the stream of mode, publishing progress.
func (c *Controller) captureFrames(ctx context.Context, mode Mode, profile capture.Profile, onFrame func(int)) ([][]byte, error) {
	stream, err := c.nav.Stream(ctx, mode)
	if err != nil {
		return nil, err
	}
	frames, err := c.seq.Capture(ctx, stream, profile, func(p capture.Progress) {
		c.progress(p)
		if onFrame != nil {
			onFrame(p.Taken)
		}
		c.publish()
	})
	if err != nil {
		if rerr := c.nav.Release(mode); rerr != nil {
			c.log.Warn().Err(rerr).Str("mode", string(mode)).Msg("could not release stream")
		}
		return nil, err
	}
	metrics.FramesCaptured.WithLabelValues(string(mode)).Add(float64(len(frames)))
	return frames, nil
}
