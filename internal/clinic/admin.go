package clinic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kozaktomas/clinic-kiosk/internal/patient"
)

// Login opens an admin session. The session cookie is kept by the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	resp, err := doPostForm(ctx, c, "admin/login", form)
	if err != nil {
		return fmt.Errorf("could not log in: %w", err)
	}
	if redirectsToLogin(resp) {
		return ErrInvalidCredentials
	}
	c.log.Info().Str("username", username).Msg("admin session opened")
	return nil
}

// Logout closes the admin session.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "admin/logout", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("logout failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// UpdatePatient submits the editable fields of a patient.
func (c *Client) UpdatePatient(ctx context.Context, req UpdateRequest) (string, error) {
	fields := [][2]string{
		{"old_nik", req.OldNIK},
		{"nik", req.NIK},
		{"dob", req.DOB},
		{"address", req.Address},
	}
	resp, err := doPostMultipart[envelope](ctx, c, "admin/patient/update", fields, nil)
	if err != nil {
		return "", err
	}
	return resp.Msg, nil
}

// DeletePatient submits the delete form for a patient. The service answers
// with a redirect back to the dashboard, there is no JSON body.
func (c *Client) DeletePatient(ctx context.Context, nik string) error {
	if !patient.ValidNIK(nik) {
		return fmt.Errorf("delete patient %q: %w", nik, patient.ErrInvalidNIK)
	}
	if _, err := doPostForm(ctx, c, "admin/patient/"+nik+"/delete", url.Values{}); err != nil {
		return err
	}
	c.log.Info().Str("nik", nik).Msg("patient deleted")
	return nil
}

// Retrain asks the service to rebuild its face model.
func (c *Client) Retrain(ctx context.Context) error {
	if _, err := doPostForm(ctx, c, "admin/retrain", url.Values{}); err != nil {
		return err
	}
	return nil
}
