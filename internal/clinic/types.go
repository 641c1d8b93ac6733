package clinic

import "github.com/kozaktomas/clinic-kiosk/internal/patient"

// PatientDetail is a patient record with the age computed by the service.
type PatientDetail struct {
	patient.Record
	Age       string `json:"age,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Recognition is the outcome of a face recognition request.
// Found is false when the service answered but matched nobody.
type Recognition struct {
	Found      bool
	Patient    PatientDetail
	Confidence *float64
	Msg        string
}

// QueueTicket is a queue number issued for a department.
type QueueTicket struct {
	Poli  string `json:"poli"`
	Nomor int    `json:"nomor"`
}

// EngineStatus describes the face engine running behind the service.
type EngineStatus struct {
	Engine          string `json:"engine"`
	ModelLoaded     bool   `json:"model_loaded"`
	TotalEmbeddings int    `json:"total_embeddings,omitempty"`
	Error           string `json:"error,omitempty"`
}

// UpdateRequest carries the editable patient fields. Name is immutable and never sent.
type UpdateRequest struct {
	OldNIK  string
	NIK     string
	DOB     string
	Address string
}

// RegisterRequest is a new patient with the captured face frames.
type RegisterRequest struct {
	Patient patient.Record
	Frames  [][]byte
}

type patientsResponse struct {
	envelope
	Patients []PatientDetail `json:"patients"`
}

type patientResponse struct {
	envelope
	Patient PatientDetail `json:"patient"`
}

type recognizeResponse struct {
	envelope
	Found bool `json:"found"`
	PatientDetail
	Confidence *float64 `json:"confidence,omitempty"`
}

type queueResponse struct {
	envelope
	QueueTicket
}

type engineResponse struct {
	envelope
	Status EngineStatus `json:"status"`
}
