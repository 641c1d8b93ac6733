package kiosk

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/clinic-kiosk/internal/capture"
	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	closed bool
	grabs  int
}

func (s *fakeStream) Size() image.Point { return image.Pt(4, 4) }

func (s *fakeStream) Grab(ctx context.Context) (image.Image, error) {
	s.grabs++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeCamera struct {
	mu       sync.Mutex
	failures int
	opens    int
	streams  []*fakeStream
}

func (c *fakeCamera) Open(ctx context.Context) (capture.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return nil, errors.New("no device")
	}
	c.opens++
	s := &fakeStream{}
	c.streams = append(c.streams, s)
	return s, nil
}

type fakeService struct {
	registerMsg  string
	registerErr  error
	recognition  *clinic.Recognition
	recognizeErr error
	patients     map[string]clinic.PatientDetail
	lookupErr    error
	queueErr     error
	nomor        int

	registered []clinic.RegisterRequest
	scans      [][][]byte
	lookups    []string
	queued     []string
}

func (f *fakeService) Register(ctx context.Context, req clinic.RegisterRequest) (string, error) {
	f.registered = append(f.registered, req)
	return f.registerMsg, f.registerErr
}

func (f *fakeService) Recognize(ctx context.Context, frames [][]byte) (*clinic.Recognition, error) {
	f.scans = append(f.scans, frames)
	if f.recognizeErr != nil {
		return nil, f.recognizeErr
	}
	return f.recognition, nil
}

func (f *fakeService) GetPatient(ctx context.Context, nik string) (*clinic.PatientDetail, error) {
	f.lookups = append(f.lookups, nik)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	p, ok := f.patients[nik]
	if !ok {
		return nil, &clinic.APIError{Status: 404, Msg: "Pasien tidak ditemukan."}
	}
	return &p, nil
}

func (f *fakeService) AssignQueue(ctx context.Context, poli string) (*clinic.QueueTicket, error) {
	f.queued = append(f.queued, poli)
	if f.queueErr != nil {
		return nil, f.queueErr
	}
	f.nomor++
	return &clinic.QueueTicket{Poli: poli, Nomor: f.nomor}, nil
}

const testNIK = "3201234567890123"

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func testForm() patient.RegistrationForm {
	return patient.RegistrationForm{
		NIK:     testNIK,
		Name:    " Budi Santoso ",
		DOB:     "1990-10-17",
		Address: "Jl. Merdeka 1",
	}
}

func newTestController(t *testing.T, svc *fakeService, cam *fakeCamera) *Controller {
	t.Helper()
	c := NewController(svc, cam, Options{
		Departments:  []string{"Poli Umum", "Poli Gigi", "IGD"},
		Registration: capture.Profile{Total: 20, Quality: 85, Label: "Foto"},
		Verification: capture.Profile{Total: 5, Quality: 80, Label: "Verifikasi"},
		Sequencer:    &capture.Sequencer{PollInterval: time.Millisecond},
		Now:          func() time.Time { return testNow },
	}, zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func dispatch(t *testing.T, c *Controller, a Action) View {
	t.Helper()
	v, err := c.Dispatch(context.Background(), a)
	require.NoError(t, err)
	return v
}

func TestInitialView(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	v := c.View()
	assert.Equal(t, PageHome, v.Page)
	assert.Equal(t, StatusWaiting, v.Registration.Status)
	assert.Equal(t, StatusWaiting, v.Verification.Status)
	assert.Equal(t, []string{"Poli Umum", "Poli Gigi", "IGD"}, v.Departments)
	assert.Equal(t, c.Session(), v.Session)
	assert.NotEmpty(t, v.Session)
}

func TestDispatch_UnknownAction(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	_, err := c.Dispatch(context.Background(), Action{Name: "dance"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestShow_CameraAcquiredOncePerMode(t *testing.T) {
	cam := &fakeCamera{}
	c := newTestController(t, &fakeService{}, cam)

	dispatch(t, c, Action{Name: ActionShow, Page: PageRegistration})
	dispatch(t, c, Action{Name: ActionShow, Page: PageHome})
	dispatch(t, c, Action{Name: ActionShow, Page: PageRegistration})
	assert.Equal(t, 1, cam.opens)

	v := dispatch(t, c, Action{Name: ActionShow, Page: PageVerification})
	assert.Equal(t, PageVerification, v.Page)
	assert.Equal(t, 2, cam.opens)
	dispatch(t, c, Action{Name: ActionShow, Page: PageVerification})
	assert.Equal(t, 2, cam.opens)

	require.NoError(t, c.Close())
	for _, s := range cam.streams {
		assert.True(t, s.closed)
	}
}

func TestShow_CameraFailureRetried(t *testing.T) {
	cam := &fakeCamera{failures: 1}
	c := newTestController(t, &fakeService{}, cam)

	v := dispatch(t, c, Action{Name: ActionShow, Page: PageRegistration})
	assert.Equal(t, PageRegistration, v.Page)
	assert.Equal(t, "Gagal akses webcam: no device", v.Alert)
	assert.Equal(t, 0, cam.opens)

	v = dispatch(t, c, Action{Name: ActionAlertOK})
	assert.Empty(t, v.Alert)

	dispatch(t, c, Action{Name: ActionShow, Page: PageRegistration})
	assert.Equal(t, 1, cam.opens)
}

func TestShow_UnknownPage(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	v := dispatch(t, c, Action{Name: ActionShow, Page: "settings"})
	assert.Equal(t, PageHome, v.Page)
}

func TestShow_VerificationResets(t *testing.T) {
	svc := &fakeService{patients: map[string]clinic.PatientDetail{
		testNIK: {Record: testForm().Clean().Record(), Age: "36 Tahun"},
	}}
	c := newTestController(t, svc, &fakeCamera{})

	dispatch(t, c, Action{Name: ActionShow, Page: PageVerification})
	dispatch(t, c, Action{Name: ActionNIKFallback})
	v := dispatch(t, c, Action{Name: ActionLookup, NIK: testNIK})
	require.True(t, v.Verification.ResultVisible)
	require.True(t, v.Verification.NIKBoxVisible)

	v = dispatch(t, c, Action{Name: ActionShow, Page: PageVerification})
	assert.Equal(t, VerificationView{Status: StatusWaiting}, v.Verification)
}

func TestRegister_InvalidNIKBlocksCapture(t *testing.T) {
	svc := &fakeService{}
	cam := &fakeCamera{}
	c := newTestController(t, svc, cam)

	form := testForm()
	form.NIK = "12345"
	v := dispatch(t, c, Action{Name: ActionRegister, Form: form})

	assert.Equal(t, "NIK harus 16 digit angka.", v.Alert)
	assert.Equal(t, 0, cam.opens)
	assert.Empty(t, svc.registered)
	assert.Nil(t, v.Loading)

	form = testForm()
	form.Address = "   "
	v = dispatch(t, c, Action{Name: ActionRegister, Form: form})
	assert.Equal(t, "Semua field wajib diisi.", v.Alert)
	assert.Empty(t, svc.registered)
}

func TestRegister_Success(t *testing.T) {
	svc := &fakeService{registerMsg: "Registrasi berhasil"}
	cam := &fakeCamera{}
	c := newTestController(t, svc, cam)

	var percents []int
	var counts []int
	unsubscribe := c.Subscribe(func(v View) {
		if v.Loading != nil && strings.HasPrefix(v.Loading.Text, "Foto ") {
			percents = append(percents, v.Loading.Percent)
			counts = append(counts, v.Registration.Count)
		}
	})
	defer unsubscribe()

	dispatch(t, c, Action{Name: ActionShow, Page: PageRegistration})
	v := dispatch(t, c, Action{Name: ActionRegister, Form: testForm()})

	require.Len(t, percents, 20)
	for i := 1; i < len(percents); i++ {
		assert.Greater(t, percents[i], percents[i-1])
		assert.Equal(t, counts[i-1]+1, counts[i])
	}
	assert.Equal(t, 100, percents[19])
	assert.Equal(t, 20, counts[19])

	require.Len(t, svc.registered, 1)
	req := svc.registered[0]
	assert.Len(t, req.Frames, 20)
	assert.Equal(t, patient.Record{NIK: testNIK, Name: "Budi Santoso", DOB: "1990-10-17", Address: "Jl. Merdeka 1"}, req.Patient)
	assert.Equal(t, 1, cam.opens)

	assert.Equal(t, StatusSuccess, v.Registration.Status)
	assert.Equal(t, 0, v.Registration.Count)
	assert.True(t, v.RegistrationSuccess)
	assert.Nil(t, v.Loading)
	require.NotNil(t, v.Active)
	assert.Equal(t, "36 Tahun", v.Active.Age)
	assert.Nil(t, v.Active.Confidence)

	v = dispatch(t, c, Action{Name: ActionRegistrationContinue})
	assert.False(t, v.RegistrationSuccess)
	assert.Equal(t, PageGateway, v.Page)
	assert.Equal(t, &Gateway{Name: "Budi Santoso", Age: "36 Tahun", Address: "Jl. Merdeka 1"}, v.Gateway)
}

func TestRegister_CloseGoesHome(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	dispatch(t, c, Action{Name: ActionShow, Page: PageRegistration})
	dispatch(t, c, Action{Name: ActionRegister, Form: testForm()})

	v := dispatch(t, c, Action{Name: ActionRegistrationClose})
	assert.False(t, v.RegistrationSuccess)
	assert.Equal(t, PageHome, v.Page)
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		alert  string
		status string
	}{
		{"server message", &clinic.APIError{Status: 400, Msg: "NIK sudah terdaftar."}, "NIK sudah terdaftar.", StatusFailed},
		{"server default", &clinic.APIError{Status: 500}, "Registrasi gagal", StatusFailed},
		{"transport", errors.New("could not send request: connection refused"), "Error jaringan: could not send request: connection refused", StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{registerErr: tt.err}
			c := newTestController(t, svc, &fakeCamera{})

			v := dispatch(t, c, Action{Name: ActionRegister, Form: testForm()})
			assert.Len(t, svc.registered, 1, "no retry")
			assert.Equal(t, tt.alert, v.Alert)
			assert.Equal(t, tt.status, v.Registration.Status)
			assert.Nil(t, v.Loading)
			assert.Nil(t, v.Active)
			assert.False(t, v.RegistrationSuccess)
		})
	}
}

func TestRegistrationContinue_NoPatient(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	v := dispatch(t, c, Action{Name: ActionRegistrationContinue})
	assert.Equal(t, "Data pasien tidak tersedia.", v.Alert)
	assert.Equal(t, PageHome, v.Page)
}

func TestScan_NotRecognized(t *testing.T) {
	svc := &fakeService{
		recognition: &clinic.Recognition{Found: false},
		patients: map[string]clinic.PatientDetail{
			testNIK: {Record: testForm().Clean().Record()},
		},
	}
	c := newTestController(t, svc, &fakeCamera{})
	dispatch(t, c, Action{Name: ActionShow, Page: PageVerification})
	v := dispatch(t, c, Action{Name: ActionLookup, NIK: testNIK})
	require.NotNil(t, v.Active)

	v = dispatch(t, c, Action{Name: ActionScan})
	require.Len(t, svc.scans, 1)
	assert.Len(t, svc.scans[0], 5)
	assert.Equal(t, "Tidak dikenali", v.Verification.Status)
	assert.Equal(t, "Wajah tidak dikenali.", v.Alert)
	assert.Nil(t, v.Active)
	assert.False(t, v.Verification.ResultVisible)
	assert.Nil(t, v.Loading)

	svc.recognition = &clinic.Recognition{Found: false, Msg: "Tidak dikenali."}
	v = dispatch(t, c, Action{Name: ActionScan})
	assert.Equal(t, "Tidak dikenali.", v.Alert)
}

func TestScan_Found(t *testing.T) {
	conf := 87.0
	svc := &fakeService{recognition: &clinic.Recognition{
		Found: true,
		Patient: clinic.PatientDetail{
			Record: patient.Record{NIK: testNIK, Name: "Budi Santoso", DOB: "1990-10-17", Address: "Jl. Merdeka 1"},
			Age:    "36 Tahun",
		},
		Confidence: &conf,
	}}
	c := newTestController(t, svc, &fakeCamera{})
	dispatch(t, c, Action{Name: ActionShow, Page: PageVerification})

	v := dispatch(t, c, Action{Name: ActionScan})
	assert.Equal(t, StatusSuccess, v.Verification.Status)
	assert.True(t, v.Verification.ResultVisible)
	assert.Equal(t, []Line{
		{"NIK", testNIK},
		{"Nama", "Budi Santoso"},
		{"Umur", "36 Tahun"},
		{"Alamat", "Jl. Merdeka 1"},
		{"Tingkat Kecocokan", "87%"},
	}, v.Verification.Result)
	require.NotNil(t, v.Active)
	require.NotNil(t, v.Active.Confidence)
	assert.InDelta(t, 87.0, *v.Active.Confidence, 0.001)

	v = dispatch(t, c, Action{Name: ActionDetail})
	assert.Contains(t, v.Detail, Line{"Tanggal Lahir", "1990-10-17"})
	assert.Contains(t, v.Detail, Line{"Tingkat Kecocokan", "87%"})

	v = dispatch(t, c, Action{Name: ActionDetailClose})
	assert.Nil(t, v.Detail)

	dispatch(t, c, Action{Name: ActionDetail})
	v = dispatch(t, c, Action{Name: ActionDetailContinue})
	assert.Nil(t, v.Detail)
	assert.Equal(t, PageGateway, v.Page)
	assert.Equal(t, "36 Tahun", v.Gateway.Age)
}

func TestScan_Failures(t *testing.T) {
	svc := &fakeService{recognizeErr: &clinic.APIError{Status: 400}}
	c := newTestController(t, svc, &fakeCamera{})

	v := dispatch(t, c, Action{Name: ActionScan})
	assert.Equal(t, "Verifikasi gagal", v.Alert)
	assert.Equal(t, StatusFailed, v.Verification.Status)

	svc.recognizeErr = errors.New("timeout")
	v = dispatch(t, c, Action{Name: ActionScan})
	assert.Equal(t, "Error jaringan: timeout", v.Alert)
	assert.Equal(t, StatusError, v.Verification.Status)
}

func TestScan_NoCamera(t *testing.T) {
	svc := &fakeService{}
	c := newTestController(t, svc, &fakeCamera{failures: 1})
	v := dispatch(t, c, Action{Name: ActionScan})
	assert.Equal(t, "Gagal akses webcam: no device", v.Alert)
	assert.Empty(t, svc.scans)
}

func TestDetail_NoPatient(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	v := dispatch(t, c, Action{Name: ActionDetail})
	assert.Equal(t, "Tidak ada data pasien.", v.Alert)
	assert.Nil(t, v.Detail)

	v = dispatch(t, c, Action{Name: ActionDetailContinue})
	assert.Equal(t, "Data pasien tidak tersedia.", v.Alert)
}

func TestLookup(t *testing.T) {
	svc := &fakeService{patients: map[string]clinic.PatientDetail{
		testNIK: {Record: patient.Record{NIK: testNIK, Name: "Siti", DOB: "17/10/2000", Address: "Bandung"}},
	}}
	c := newTestController(t, svc, &fakeCamera{})

	v := dispatch(t, c, Action{Name: ActionLookup, NIK: "12ab"})
	assert.Equal(t, "Masukkan NIK 16 digit.", v.Alert)
	assert.Empty(t, svc.lookups)

	v = dispatch(t, c, Action{Name: ActionLookup, NIK: "9999999999999999"})
	assert.Equal(t, "Pasien tidak ditemukan.", v.Alert)
	assert.Nil(t, v.Active)

	v = dispatch(t, c, Action{Name: ActionLookup, NIK: " " + testNIK + " "})
	assert.Equal(t, "Data pasien ditemukan.", v.Alert)
	assert.True(t, v.Verification.ResultVisible)
	assert.Equal(t, []Line{
		{"NIK", testNIK},
		{"Nama", "Siti"},
		{"Umur", "26 Tahun"},
		{"Alamat", "Bandung"},
	}, v.Verification.Result)

	svc.lookupErr = &clinic.APIError{Status: 404}
	v = dispatch(t, c, Action{Name: ActionLookup, NIK: testNIK})
	assert.Equal(t, "NIK tidak ditemukan.", v.Alert)

	svc.lookupErr = errors.New("dial tcp: refused")
	v = dispatch(t, c, Action{Name: ActionLookup, NIK: testNIK})
	assert.Equal(t, "Error: dial tcp: refused", v.Alert)
}

func TestQueue(t *testing.T) {
	svc := &fakeService{patients: map[string]clinic.PatientDetail{
		testNIK: {Record: testForm().Clean().Record()},
	}}
	c := newTestController(t, svc, &fakeCamera{})

	v := dispatch(t, c, Action{Name: ActionQueue, Poli: "Poli Umum"})
	assert.Equal(t, "Data pasien tidak tersedia.", v.Alert)

	dispatch(t, c, Action{Name: ActionLookup, NIK: testNIK})
	v = dispatch(t, c, Action{Name: ActionDetailContinue})
	require.Equal(t, PageGateway, v.Page)

	v = dispatch(t, c, Action{Name: ActionQueue})
	assert.Equal(t, "Pilih poli.", v.Alert)
	v = dispatch(t, c, Action{Name: ActionQueue, Poli: "Poli Mata"})
	assert.Equal(t, "Pilih poli.", v.Alert)
	assert.Empty(t, svc.queued)

	svc.queueErr = &clinic.APIError{Status: 500}
	v = dispatch(t, c, Action{Name: ActionQueue, Poli: "Poli Gigi"})
	assert.Equal(t, "Gagal ambil nomor.", v.Alert)
	assert.NotNil(t, v.Active, "patient kept after a failed assignment")

	svc.queueErr = nil
	v = dispatch(t, c, Action{Name: ActionQueue, Poli: "Poli Gigi"})
	assert.Equal(t, &clinic.QueueTicket{Poli: "Poli Gigi", Nomor: 1}, v.Ticket)
	assert.Nil(t, v.Active)
	assert.Nil(t, v.Loading)

	v = dispatch(t, c, Action{Name: ActionQueue, Poli: "Poli Gigi"})
	assert.Equal(t, "Data pasien tidak tersedia.", v.Alert)
	assert.Len(t, svc.queued, 2)

	v = dispatch(t, c, Action{Name: ActionTicketClose})
	assert.Nil(t, v.Ticket)
	assert.Equal(t, PageHome, v.Page)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	calls := 0
	unsubscribe := c.Subscribe(func(View) { calls++ })

	dispatch(t, c, Action{Name: ActionAlertOK})
	unsubscribe()
	dispatch(t, c, Action{Name: ActionAlertOK})
	assert.Equal(t, 1, calls)
}

func TestViewIsACopy(t *testing.T) {
	c := newTestController(t, &fakeService{}, &fakeCamera{})
	v := c.View()
	v.Departments[0] = "changed"
	assert.Equal(t, "Poli Umum", c.View().Departments[0])
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage(" Queue-Gateway ")
	require.NoError(t, err)
	assert.Equal(t, PageGateway, p)
	_, err = ParsePage("admin")
	assert.Error(t, err)
}
