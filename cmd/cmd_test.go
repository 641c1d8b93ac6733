package cmd

import (
	"bytes"
	"testing"

	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/kiosk"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditFromArgs(t *testing.T) {
	base := patient.EditForm{OldNIK: "3201234567890123", NIK: "3201234567890123", Name: "Budi", DOB: "1990-01-01", Address: "Jl. A"}

	got, err := editFromArgs(base, []string{"address=Jl.", "Merdeka", "No.", "5", "dob=1991-02-03"})
	require.NoError(t, err)
	assert.Equal(t, "Jl. Merdeka No. 5", got.Address)
	assert.Equal(t, "1991-02-03", got.DOB)
	assert.Equal(t, "Budi", got.Name)

	_, err = editFromArgs(base, []string{"name=Other"})
	assert.Error(t, err)

	_, err = editFromArgs(base, []string{"dangling"})
	assert.Error(t, err)
}

func TestParseKioskLine(t *testing.T) {
	a, err := parseKioskLine("register 3201234567890123;Budi;1990-01-01;Jl. Merdeka 1")
	require.NoError(t, err)
	assert.Equal(t, kiosk.ActionRegister, a.Name)
	assert.Equal(t, "Jl. Merdeka 1", a.Form.Address)

	a, err = parseKioskLine("queue Poli Umum")
	require.NoError(t, err)
	assert.Equal(t, "Poli Umum", a.Poli)

	a, err = parseKioskLine("show verification")
	require.NoError(t, err)
	assert.Equal(t, kiosk.PageVerification, a.Page)

	_, err = parseKioskLine("register 123;Budi")
	assert.Error(t, err)
}

func TestPrintKioskView(t *testing.T) {
	var buf bytes.Buffer
	printKioskView(&buf, kiosk.View{
		Page:   kiosk.PageGateway,
		Ticket: &clinic.QueueTicket{Poli: "IGD", Nomor: 7},
		Alert:  "Pilih poli.",
	})
	out := buf.String()
	assert.Contains(t, out, "Poli: IGD")
	assert.Contains(t, out, "Nomor antrian: 7")
	assert.Contains(t, out, "! Pilih poli.")
}
