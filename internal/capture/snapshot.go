package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"
)

// SnapshotCamera reads frames from an IP camera that serves one still image
// per GET request (the usual /snapshot.jpg endpoint).
type SnapshotCamera struct {
	URL    string
	Client *http.Client
}

// Open probes the camera once so the stream knows its frame size.
func (c SnapshotCamera) Open(ctx context.Context) (Stream, error) {
	if c.URL == "" {
		return nil, errors.New("snapshot URL is required")
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	s := &snapshotStream{url: c.URL, client: client}
	if _, err := s.Grab(ctx); err != nil {
		return nil, fmt.Errorf("could not reach camera: %w", err)
	}
	return s, nil
}

type snapshotStream struct {
	url    string
	client *http.Client

	mu     sync.Mutex
	size   image.Point
	closed bool
}

func (s *snapshotStream) Size() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *snapshotStream) Grab(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, errors.New("stream closed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("snapshot failed with status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not decode snapshot: %w", err)
	}

	s.mu.Lock()
	s.size = img.Bounds().Size()
	s.mu.Unlock()
	return img, nil
}

func (s *snapshotStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}
