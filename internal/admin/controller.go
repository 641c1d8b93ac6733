package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/rs/zerolog"
)

// User-facing messages.
const (
	msgLoadFailed   = "Gagal memuat pasien"
	msgUpdateFailed = "Gagal update"
	msgDeleteFailed = "Gagal menghapus pasien"
	msgNotFound     = "Data tidak ditemukan"
	msgInvalidNIK   = "NIK harus 16 digit angka."
	msgMissing      = "Semua field wajib diisi."
	msgNetwork      = "Error jaringan: "
	msgNoEditForm   = "Tidak ada form edit yang terbuka."
	msgSession      = "Sesi admin berakhir, silakan login ulang."
)

var (
	// ErrNotInTable is returned when a NIK is not among the loaded rows.
	ErrNotInTable = errors.New("patient not in table")
	// ErrNoEditForm is returned when an edit is submitted without an open form.
	ErrNoEditForm = errors.New("no edit form open")
)

// PatientService is the part of the clinic API the table needs.
type PatientService interface {
	ListPatients(ctx context.Context) ([]patient.Record, error)
	UpdatePatient(ctx context.Context, req clinic.UpdateRequest) (string, error)
	DeletePatient(ctx context.Context, nik string) error
}

// Confirmer asks the operator a yes/no question.
type Confirmer func(prompt string) bool

// Controller owns the table state. Every operation mutates the state under a
// lock and publishes a fresh View to subscribers.
type Controller struct {
	api     PatientService
	confirm Confirmer
	log     zerolog.Logger

	mu        sync.Mutex
	state     State
	loaded    bool
	edit      *patient.EditForm
	alert     string
	listeners []func(View)
}

// NewController creates a table controller. A nil confirm declines every delete.
func NewController(api PatientService, confirm Confirmer, log zerolog.Logger) *Controller {
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	return &Controller{
		api:     api,
		confirm: confirm,
		log:     log.With().Str("component", "admin").Logger(),
		state:   NewState(),
	}
}

// Subscribe registers fn to receive every re-rendered view.
func (c *Controller) Subscribe(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// View returns the current rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return render(&c.state, c.edit, c.alert)
}

// publish must be called with mu held.
func (c *Controller) publish() View {
	v := render(&c.state, c.edit, c.alert)
	for _, fn := range c.listeners {
		fn(v)
	}
	return v
}

// fail records the user-facing message for err and returns err.
func (c *Controller) fail(err error, fallback string) error {
	msg, isServer := clinic.ServerMessage(err, fallback)
	switch {
	case isServer:
		c.alert = msg
	case errors.Is(err, clinic.ErrNotLoggedIn):
		c.alert = msgSession
	case errors.Is(err, patient.ErrInvalidNIK):
		c.alert = msgInvalidNIK
	default:
		c.alert = msgNetwork + err.Error()
	}
	c.publish()
	return err
}

// Loaded reports whether the collection has been fetched successfully at
// least once.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Load fetches the full collection. On failure the previous rows stay.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = ""
	return c.load(ctx)
}

func (c *Controller) load(ctx context.Context) error {
	records, err := c.api.ListPatients(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("could not load patients")
		return c.fail(err, msgLoadFailed)
	}
	c.state.Records = records
	c.loaded = true
	c.state.Sort()
	c.state.Clamp()
	c.log.Debug().Int("count", len(records)).Msg("patients loaded")
	c.publish()
	return nil
}

// ToggleSort activates a sort column.
func (c *Controller) ToggleSort(key SortKey) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = ""
	c.state.Toggle(key)
	return c.publish()
}

// SetPageSize changes the rows per page and returns to page 1.
func (c *Controller) SetPageSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("page size must be positive, got %d", size)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = ""
	c.state.PageSize = size
	c.state.Page = 1
	c.publish()
	return nil
}

// NextPage moves forward one page unless already on the last one.
func (c *Controller) NextPage() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Page < c.state.TotalPages() {
		c.state.Page++
	}
	return c.publish()
}

// PrevPage moves back one page unless already on the first one.
func (c *Controller) PrevPage() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Page > 1 {
		c.state.Page--
	}
	return c.publish()
}

// GoToPage jumps to page p, clamped to the valid range.
func (c *Controller) GoToPage(p int) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page = p
	c.state.Clamp()
	return c.publish()
}

// OpenEdit opens the edit form pre-filled from the record with the given NIK.
func (c *Controller) OpenEdit(nik string) (*patient.EditForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.state.Find(nik)
	if !ok {
		c.alert = msgNotFound
		c.publish()
		return nil, fmt.Errorf("%w: %s", ErrNotInTable, nik)
	}
	form := patient.NewEditForm(rec)
	c.edit = &form
	c.alert = ""
	c.publish()
	out := form
	return &out, nil
}

// CancelEdit closes the edit form without submitting.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
	c.publish()
}

// SubmitEdit sends the edited fields. Name is never submitted. On success
// the server message is shown, the form closes and the full collection is
// fetched again; on failure the form stays open.
func (c *Controller) SubmitEdit(ctx context.Context, form patient.EditForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = ""

	if c.edit == nil {
		c.alert = msgNoEditForm
		c.publish()
		return ErrNoEditForm
	}
	if form.OldNIK == "" {
		form.OldNIK = c.edit.OldNIK
	}
	form = form.Clean()
	form.Name = c.edit.Name

	if err := form.Validate(); err != nil {
		switch {
		case errors.Is(err, patient.ErrInvalidNIK):
			c.alert = msgInvalidNIK
		default:
			c.alert = msgMissing
		}
		c.publish()
		return err
	}

	msg, err := c.api.UpdatePatient(ctx, clinic.UpdateRequest{
		OldNIK:  form.OldNIK,
		NIK:     form.NIK,
		DOB:     form.DOB,
		Address: form.Address,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("nik", form.OldNIK).Msg("update failed")
		c.edit = &form
		return c.fail(err, msgUpdateFailed)
	}

	c.log.Info().Str("old_nik", form.OldNIK).Str("nik", form.NIK).Msg("patient updated")
	c.edit = nil
	c.reloadAfter(ctx, msg)
	return nil
}

// Delete asks for confirmation and submits the delete form. It reports
// whether the patient was deleted. A failed re-fetch afterwards is shown in
// the alert but is not an error, the patient is gone either way.
func (c *Controller) Delete(ctx context.Context, nik string) (bool, error) {
	return c.DeleteWith(ctx, nik, c.confirm)
}

// DeleteWith is Delete with a per-call confirmation.
func (c *Controller) DeleteWith(ctx context.Context, nik string, confirm Confirmer) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = ""

	if confirm == nil || !confirm(fmt.Sprintf("Hapus pasien NIK %s?", nik)) {
		return false, nil
	}
	if err := c.api.DeletePatient(ctx, nik); err != nil {
		c.log.Warn().Err(err).Str("nik", nik).Msg("delete failed")
		return false, c.fail(err, msgDeleteFailed)
	}
	c.log.Info().Str("nik", nik).Msg("patient deleted")
	c.reloadAfter(ctx, "")
	return true, nil
}

// reloadAfter fetches the collection after a remote change went through and
// shows success. If the fetch fails the old rows stay and the load message
// follows success in the alert. Must be called with mu held.
func (c *Controller) reloadAfter(ctx context.Context, success string) {
	if err := c.load(ctx); err != nil {
		c.alert = strings.TrimSpace(success + "\n" + c.alert)
		c.publish()
		return
	}
	c.alert = success
	c.publish()
}

// DismissAlert clears the current message.
func (c *Controller) DismissAlert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = ""
	c.publish()
}
