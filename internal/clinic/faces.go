package clinic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// framesField is the multipart field name the service reads frames from.
const framesField = "frames[]"

func frameFiles(prefix string, frames [][]byte) []formFile {
	files := make([]formFile, 0, len(frames))
	for i, data := range frames {
		files = append(files, formFile{
			field: framesField,
			name:  prefix + "_" + strconv.Itoa(i) + ".jpg",
			data:  data,
		})
	}
	return files
}

// Register uploads a new patient together with the captured frames.
// The returned string is the service's confirmation message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if len(req.Frames) == 0 {
		return "", errors.New("no frames to upload")
	}
	fields := [][2]string{
		{"nik", string(req.Patient.NIK)},
		{"name", req.Patient.Name},
		{"dob", req.Patient.DOB},
		{"address", req.Patient.Address},
	}
	resp, err := doPostMultipart[envelope](ctx, c, "api/register", fields, frameFiles("frame", req.Frames))
	if err != nil {
		return "", err
	}
	return resp.Msg, nil
}

// Recognize uploads verification frames and returns the match, if any.
func (c *Client) Recognize(ctx context.Context, frames [][]byte) (*Recognition, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to upload")
	}
	resp, err := doPostMultipart[recognizeResponse](ctx, c, "api/recognize", nil, frameFiles("scan", frames))
	if err != nil {
		return nil, err
	}
	rec := &Recognition{Found: resp.Found, Msg: resp.Msg}
	if resp.Found {
		if resp.NIK == "" {
			return nil, fmt.Errorf("could not read recognition: match without nik")
		}
		rec.Patient = resp.PatientDetail
		rec.Confidence = resp.Confidence
	}
	return rec, nil
}
