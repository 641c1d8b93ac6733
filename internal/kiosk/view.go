package kiosk

import (
	"slices"
	"strconv"

	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
)

// Status texts.
const (
	StatusWaiting   = "Menunggu..."
	StatusCapturing = "Mengambil foto..."
	StatusSending   = "Mengirim..."
	StatusVerifying = "Memverifikasi..."
	StatusSuccess   = "Berhasil"
	StatusFailed    = "Gagal"
	StatusError     = "Error"
	StatusUnknown   = "Tidak dikenali"
)

// ActivePatient is the patient the current kiosk session is serving.
type ActivePatient struct {
	patient.Record
	Age        string   `json:"age,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Line is one label/value row of a result panel.
type Line struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Loading is the progress modal.
type Loading struct {
	Text    string `json:"text"`
	Percent int    `json:"percent"`
}

// Gateway is the identity shown on the queue gateway page.
type Gateway struct {
	Name    string `json:"name"`
	Age     string `json:"age"`
	Address string `json:"address"`
}

// RegistrationView is the registration page status.
type RegistrationView struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// VerificationView is the verification page status and result panel.
type VerificationView struct {
	Status        string `json:"status"`
	ResultVisible bool   `json:"result_visible"`
	Result        []Line `json:"result,omitempty"`
	NIKBoxVisible bool   `json:"nik_box_visible"`
}

// View is everything a kiosk front end needs to draw the current screen.
type View struct {
	Session      string           `json:"session"`
	Page         Page             `json:"page"`
	Registration RegistrationView `json:"registration"`
	Verification VerificationView `json:"verification"`
	Gateway      *Gateway         `json:"gateway,omitempty"`
	Departments  []string         `json:"departments"`
	Active       *ActivePatient   `json:"active,omitempty"`

	Alert               string              `json:"alert,omitempty"`
	Loading             *Loading            `json:"loading,omitempty"`
	RegistrationSuccess bool                `json:"registration_success"`
	Detail              []Line              `json:"detail,omitempty"`
	Ticket              *clinic.QueueTicket `json:"ticket,omitempty"`
}

func (v View) clone() View {
	out := v
	out.Verification.Result = slices.Clone(v.Verification.Result)
	out.Departments = slices.Clone(v.Departments)
	out.Detail = slices.Clone(v.Detail)
	if v.Gateway != nil {
		g := *v.Gateway
		out.Gateway = &g
	}
	if v.Active != nil {
		a := *v.Active
		out.Active = &a
	}
	if v.Loading != nil {
		l := *v.Loading
		out.Loading = &l
	}
	if v.Ticket != nil {
		t := *v.Ticket
		out.Ticket = &t
	}
	return out
}

func formatConfidence(c *float64) string {
	if c == nil {
		return "-"
	}
	return strconv.FormatFloat(*c, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// resultLines is the verification panel. Confidence is only shown for a
// face match.
func resultLines(p *ActivePatient) []Line {
	lines := []Line{
		{"NIK", string(p.NIK)},
		{"Nama", p.Name},
		{"Umur", p.Age},
		{"Alamat", p.Address},
	}
	if p.Confidence != nil {
		lines = append(lines, Line{"Tingkat Kecocokan", formatConfidence(p.Confidence) + "%"})
	}
	return lines
}

func detailLines(p *ActivePatient) []Line {
	return []Line{
		{"NIK", string(p.NIK)},
		{"Nama", p.Name},
		{"Tanggal Lahir", orDash(p.DOB)},
		{"Umur", p.Age},
		{"Alamat", p.Address},
		{"Tingkat Kecocokan", formatConfidence(p.Confidence) + "%"},
	}
}
