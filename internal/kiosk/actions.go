package kiosk

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kozaktomas/clinic-kiosk/internal/capture"
	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/metrics"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
)

// User-facing messages.
const (
	msgCamera           = "Gagal akses webcam: "
	msgCaptureFailed    = "Gagal mengambil foto: "
	msgNetwork          = "Error jaringan: "
	msgLookupError      = "Error: "
	msgInvalidNIK       = "NIK harus 16 digit angka."
	msgMissingField     = "Semua field wajib diisi."
	msgRegisterFailed   = "Registrasi gagal"
	msgVerifyFailed     = "Verifikasi gagal"
	msgNotRecognized    = "Wajah tidak dikenali."
	msgNoPatient        = "Data pasien tidak tersedia."
	msgNoPatientDetail  = "Tidak ada data pasien."
	msgEnterNIK         = "Masukkan NIK 16 digit."
	msgNIKNotFound      = "NIK tidak ditemukan."
	msgPatientFound     = "Data pasien ditemukan."
	msgChooseDepartment = "Pilih poli."
	msgQueueFailed      = "Gagal ambil nomor."

	loadingRegistration = "Registrasi: mengambil foto..."
	loadingVerification = "Verifikasi: mengambil foto..."
	loadingLookup       = "Cari pasien..."
	loadingQueue        = "Mengambil nomor antrian..."
	labelSending        = "Mengirim"
	labelProcessing     = "Memproses"
)

func (c *Controller) show(ctx context.Context, a Action) error {
	p, err := ParsePage(string(a.Page))
	if err != nil {
		return err
	}
	return c.goTo(ctx, p)
}

func (c *Controller) register(ctx context.Context, a Action) error {
	form := a.Form.Clean()
	if err := form.Validate(); err != nil {
		if errors.Is(err, patient.ErrInvalidNIK) {
			return c.reject(msgInvalidNIK)
		}
		return c.reject(msgMissingField)
	}

	if _, err := c.nav.Stream(ctx, ModeRegistration); err != nil {
		c.alert(msgCamera + err.Error())
		return fmt.Errorf("could not open camera: %w", err)
	}

	c.view.Registration = RegistrationView{Status: StatusCapturing}
	c.loading(loadingRegistration)

	frames, err := c.captureFrames(ctx, ModeRegistration, c.opts.Registration, func(taken int) {
		c.view.Registration.Count = taken
	})
	if err != nil {
		c.view.Registration.Status = StatusError
		c.alert(msgCaptureFailed + err.Error())
		return fmt.Errorf("could not capture registration frames: %w", err)
	}

	c.progress(capture.NewProgress(labelSending, len(frames), len(frames)))
	c.view.Registration.Status = StatusSending
	c.publish()

	record := form.Record()
	msg, err := c.api.Register(ctx, clinic.RegisterRequest{Patient: record, Frames: frames})
	if err != nil {
		if c.remoteFailure(err, msgRegisterFailed, msgNetwork) {
			c.view.Registration.Status = StatusFailed
		} else {
			c.view.Registration.Status = StatusError
		}
		return fmt.Errorf("could not register patient: %w", err)
	}

	c.log.Info().Str("nik", string(record.NIK)).Int("frames", len(frames)).Str("msg", msg).Msg("patient registered")
	c.view.Loading = nil
	c.view.Registration = RegistrationView{Status: StatusSuccess}
	c.active = &ActivePatient{Record: record, Age: c.ageOf(record.DOB, "")}
	c.view.Active = c.active
	c.view.RegistrationSuccess = true
	return nil
}

func (c *Controller) registrationClose(ctx context.Context, _ Action) error {
	c.view.RegistrationSuccess = false
	return c.goTo(ctx, PageHome)
}

func (c *Controller) registrationContinue(_ context.Context, _ Action) error {
	c.view.RegistrationSuccess = false
	if c.active == nil {
		return c.reject(msgNoPatient)
	}
	c.showGateway()
	return nil
}

func (c *Controller) scan(ctx context.Context, _ Action) error {
	if _, err := c.nav.Stream(ctx, ModeVerification); err != nil {
		c.alert(msgCamera + err.Error())
		return fmt.Errorf("could not open camera: %w", err)
	}

	c.view.Verification.Status = StatusVerifying
	c.loading(loadingVerification)

	frames, err := c.captureFrames(ctx, ModeVerification, c.opts.Verification, nil)
	if err != nil {
		c.view.Verification.Status = StatusError
		c.alert(msgCaptureFailed + err.Error())
		return fmt.Errorf("could not capture verification frames: %w", err)
	}

	c.progress(capture.NewProgress(labelProcessing, len(frames), len(frames)))
	c.publish()

	rec, err := c.api.Recognize(ctx, frames)
	if err != nil {
		metrics.Recognitions.WithLabelValues("error").Inc()
		if c.remoteFailure(err, msgVerifyFailed, msgNetwork) {
			c.view.Verification.Status = StatusFailed
		} else {
			c.view.Verification.Status = StatusError
		}
		return fmt.Errorf("could not recognize face: %w", err)
	}

	if !rec.Found {
		metrics.Recognitions.WithLabelValues("not_found").Inc()
		c.view.Verification.Status = StatusUnknown
		c.alert(cmp.Or(rec.Msg, msgNotRecognized))
		c.active = nil
		c.view.Active = nil
		c.view.Verification.ResultVisible = false
		return nil
	}

	metrics.Recognitions.WithLabelValues("found").Inc()
	p := rec.Patient
	c.active = &ActivePatient{
		Record:     p.Record,
		Age:        c.ageOf(p.DOB, p.Age),
		Confidence: rec.Confidence,
	}
	c.log.Info().Str("nik", string(p.NIK)).Str("confidence", formatConfidence(rec.Confidence)).Msg("face recognized")

	c.view.Loading = nil
	c.view.Active = c.active
	c.view.Verification.Status = StatusSuccess
	c.view.Verification.Result = resultLines(c.active)
	c.view.Verification.ResultVisible = true
	return nil
}

func (c *Controller) detail(_ context.Context, _ Action) error {
	if c.active == nil {
		return c.reject(msgNoPatientDetail)
	}
	c.view.Detail = detailLines(c.active)
	return nil
}

func (c *Controller) detailClose(_ context.Context, _ Action) error {
	c.view.Detail = nil
	return nil
}

func (c *Controller) detailContinue(_ context.Context, _ Action) error {
	c.view.Detail = nil
	if c.active == nil {
		return c.reject(msgNoPatient)
	}
	c.showGateway()
	return nil
}

func (c *Controller) nikFallback(_ context.Context, _ Action) error {
	c.view.Verification.NIKBoxVisible = true
	c.view.Verification.ResultVisible = false
	return nil
}

func (c *Controller) lookup(ctx context.Context, a Action) error {
	nik := strings.TrimSpace(a.NIK)
	if !patient.ValidNIK(nik) {
		return c.reject(msgEnterNIK)
	}

	c.loading(loadingLookup)
	p, err := c.api.GetPatient(ctx, nik)
	if err != nil {
		c.remoteFailure(err, msgNIKNotFound, msgLookupError)
		return fmt.Errorf("could not look up patient: %w", err)
	}

	c.active = &ActivePatient{Record: p.Record, Age: c.ageOf(p.DOB, p.Age)}
	c.view.Active = c.active
	c.view.Verification.Result = resultLines(c.active)
	c.view.Verification.ResultVisible = true
	c.alert(msgPatientFound)
	return nil
}

func (c *Controller) queue(ctx context.Context, a Action) error {
	if c.active == nil {
		return c.reject(msgNoPatient)
	}
	poli := strings.TrimSpace(a.Poli)
	if poli == "" || (len(c.opts.Departments) > 0 && !slices.Contains(c.opts.Departments, poli)) {
		return c.reject(msgChooseDepartment)
	}

	c.loading(loadingQueue)
	ticket, err := c.api.AssignQueue(ctx, poli)
	if err != nil {
		c.remoteFailure(err, msgQueueFailed, msgNetwork)
		return fmt.Errorf("could not assign queue number: %w", err)
	}

	metrics.QueueTickets.WithLabelValues(ticket.Poli).Inc()
	c.log.Info().Str("nik", string(c.active.NIK)).Str("poli", ticket.Poli).Int("nomor", ticket.Nomor).Msg("queue number assigned")
	c.view.Loading = nil
	c.view.Ticket = ticket
	c.active = nil
	c.view.Active = nil
	return nil
}

func (c *Controller) alertOK(_ context.Context, _ Action) error {
	c.view.Alert = ""
	c.view.Loading = nil
	return nil
}

func (c *Controller) ticketClose(ctx context.Context, _ Action) error {
	c.view.Ticket = nil
	return c.goTo(ctx, PageHome)
}
