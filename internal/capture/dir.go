package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// isImageFile checks if a file has a decodable image extension.
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp":
		return true
	}
	return false
}

// DirCamera replays the still images of a directory in name order, looping
// when it runs out. Useful for kiosks fed by an external grabber and for demos.
type DirCamera struct {
	Dir string
}

// Open lists the directory and returns a stream over its images. Files
// that do not decode are skipped.
func (c DirCamera) Open(ctx context.Context) (Stream, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", c.Dir, err)
	}
	var paths []string
	var size image.Point
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(c.Dir, entry.Name())
		frameSize, err := probeSize(path)
		if err != nil {
			continue
		}
		if len(paths) == 0 {
			size = frameSize
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no decodable image files found in %s", c.Dir)
	}
	return &dirStream{paths: paths, size: size}, nil
}

// probeSize reads the dimensions of an image file without decoding it.
func probeSize(path string) (image.Point, error) {
	f, err := os.Open(path) //nolint:gosec // operator-configured camera directory
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return image.Point{}, errors.New("empty image")
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

type dirStream struct {
	mu     sync.Mutex
	paths  []string
	next   int
	size   image.Point
	closed bool
}

func (s *dirStream) Size() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *dirStream) Grab(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("stream closed")
	}
	path := s.paths[s.next%len(s.paths)]
	s.next++

	f, err := os.Open(path) //nolint:gosec // operator-configured camera directory
	if err != nil {
		return nil, fmt.Errorf("could not open frame %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode frame %s: %w", path, err)
	}
	s.size = img.Bounds().Size()
	return img, nil
}

func (s *dirStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
