package clinic

import (
	"context"
	"fmt"

	"github.com/kozaktomas/clinic-kiosk/internal/patient"
)

// ListPatients returns the full patient collection.
func (c *Client) ListPatients(ctx context.Context) ([]patient.Record, error) {
	resp, err := doGetJSON[patientsResponse](ctx, c, "api/patients")
	if err != nil {
		return nil, err
	}
	records := make([]patient.Record, 0, len(resp.Patients))
	for _, p := range resp.Patients {
		records = append(records, p.Record)
	}
	return records, nil
}

// GetPatient looks a patient up by exact NIK.
func (c *Client) GetPatient(ctx context.Context, nik string) (*PatientDetail, error) {
	if !patient.ValidNIK(nik) {
		return nil, fmt.Errorf("get patient %q: %w", nik, patient.ErrInvalidNIK)
	}
	resp, err := doGetJSON[patientResponse](ctx, c, "api/patient/"+nik)
	if err != nil {
		return nil, err
	}
	return &resp.Patient, nil
}
