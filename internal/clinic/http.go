package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// envelope is the {ok, msg} pair every JSON response of the service carries.
type envelope struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}

func (e envelope) result() envelope { return e }

type resultCarrier interface {
	result() envelope
}

// formFile is one file part of a multipart upload.
type formFile struct {
	field string
	name  string
	data  []byte
}

// doGetJSON performs a GET request and decodes the JSON response into T.
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	resp, err := c.send(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeJSON[T](c, endpoint, resp)
}

// doPostJSON performs a POST request with a JSON body and decodes the JSON response.
func doPostJSON[T any](ctx context.Context, c *Client, endpoint string, requestBody any) (*T, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeJSON[T](c, endpoint, resp)
}

// doPostMultipart posts fields and files as multipart/form-data and decodes the JSON response.
// Fields are written in the given order, files after them.
func doPostMultipart[T any](ctx context.Context, c *Client, endpoint string, fields [][2]string, files []formFile) (*T, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("could not write field %s: %w", f[0], err)
		}
	}
	for _, f := range files {
		if err := addFileToMultipart(writer, f); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, endpoint, &body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeJSON[T](c, endpoint, resp)
}

// addFileToMultipart writes one JPEG part to the multipart writer.
func addFileToMultipart(writer *multipart.Writer, f formFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	if err != nil {
		return fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(f.data); err != nil {
		return fmt.Errorf("could not copy file data: %w", err)
	}
	return nil
}

// doPostForm submits a classic HTML form. The service answers with a redirect
// rather than JSON, so only the status and Location are checked.
func doPostForm(ctx context.Context, c *Client, endpoint string, form url.Values) (*http.Response, error) {
	resp, err := c.send(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if redirectsToLogin(resp) && endpoint != "admin/login" {
		return nil, ErrNotLoggedIn
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Msg: readErrorBody(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp, nil
}

// send performs the request and logs it. Transport failures are wrapped
// with "could not send request" so callers can tell them from service errors.
func (c *Client) send(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Msg("clinic request failed")
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	c.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("clinic request")
	return resp, nil
}

// decodeJSON reads the response and decodes it into T. The service reports
// failures as {ok:false,msg} with a 4xx/5xx status, so the body is decoded
// before the status is judged.
func decodeJSON[T any](c *Client, endpoint string, resp *http.Response) (*T, error) {
	if redirectsToLogin(resp) {
		return nil, ErrNotLoggedIn
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	c.captureResponse(endpoint, body)

	success := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		if !success {
			return nil, &APIError{Status: resp.StatusCode, Msg: ""}
		}
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	if rc, ok := any(&result).(resultCarrier); ok {
		env := rc.result()
		if !env.OK || !success {
			return nil, &APIError{Status: resp.StatusCode, Msg: env.Msg}
		}
	} else if !success {
		return nil, &APIError{Status: resp.StatusCode, Msg: readErrorBody(bytes.NewReader(body))}
	}

	return &result, nil
}

// redirectsToLogin reports whether resp sends the browser to the admin login page.
func redirectsToLogin(resp *http.Response) bool {
	if resp.StatusCode < http.StatusMultipleChoices || resp.StatusCode >= http.StatusBadRequest {
		return false
	}
	loc, err := resp.Location()
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(loc.Path, "/"), "/admin/login")
}
