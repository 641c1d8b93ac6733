// Package capture grabs a fixed number of frames from a camera stream and
// encodes them as JPEG blobs for upload.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"golang.org/x/image/draw"
)

// Camera acquires a live stream.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is a live video source. Size reports the current frame dimensions
// and is zero until the source has produced its first frame.
type Stream interface {
	Size() image.Point
	Grab(ctx context.Context) (image.Image, error)
	Close() error
}

// Profile describes one capture run.
type Profile struct {
	Total   int
	Gap     time.Duration
	Quality int // JPEG quality, 1-100
	Label   string
	MaxSize int // longest edge after downscaling, 0 keeps the native size
}

// Progress is reported after every captured frame.
type Progress struct {
	Taken   int    `json:"taken"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Label   string `json:"label"`
}

// NewProgress computes the rounded percentage for taken out of total.
func NewProgress(label string, taken, total int) Progress {
	pct := 0
	if total > 0 {
		pct = (taken*100 + total/2) / total
	}
	return Progress{Taken: taken, Total: total, Percent: pct, Label: label}
}

func (p Progress) String() string {
	return fmt.Sprintf("%s %d/%d (%d%%)", p.Label, p.Taken, p.Total, p.Percent)
}

// FrameInterval is the polling period while waiting for a stream to report
// its dimensions, one display frame at 60Hz.
const FrameInterval = 16 * time.Millisecond

// Sequencer captures frame sequences.
type Sequencer struct {
	PollInterval time.Duration
}

// NewSequencer returns a sequencer polling at FrameInterval.
func NewSequencer() *Sequencer {
	return &Sequencer{PollInterval: FrameInterval}
}

// Capture waits for the stream to report non-zero dimensions, then grabs
// profile.Total frames separated by profile.Gap. onProgress, if set, is
// called after every frame with strictly increasing counts.
func (s *Sequencer) Capture(ctx context.Context, stream Stream, profile Profile, onProgress func(Progress)) ([][]byte, error) {
	if profile.Total <= 0 {
		return nil, errors.New("capture total must be positive")
	}
	quality := profile.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	if err := s.waitReady(ctx, stream); err != nil {
		return nil, err
	}

	frames := make([][]byte, 0, profile.Total)
	for taken := 0; taken < profile.Total; {
		img, err := stream.Grab(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not grab frame %d: %w", taken+1, err)
		}
		data, err := encodeFrame(img, quality, profile.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("could not encode frame %d: %w", taken+1, err)
		}
		frames = append(frames, data)
		taken++

		if onProgress != nil {
			onProgress(NewProgress(profile.Label, taken, profile.Total))
		}
		if taken < profile.Total {
			if err := sleep(ctx, profile.Gap); err != nil {
				return nil, err
			}
		}
	}
	return frames, nil
}

// waitReady polls the stream until it reports a frame size.
func (s *Sequencer) waitReady(ctx context.Context, stream Stream) error {
	interval := s.PollInterval
	if interval <= 0 {
		interval = FrameInterval
	}
	for {
		if size := stream.Size(); size.X > 0 && size.Y > 0 {
			return nil
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// encodeFrame optionally downscales img to fit within maxSize and encodes it as JPEG.
func encodeFrame(img image.Image, quality, maxSize int) ([]byte, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if maxSize > 0 && (width > maxSize || height > maxSize) {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxSize
			newHeight = int(float64(height) * float64(maxSize) / float64(width))
		} else {
			newHeight = maxSize
			newWidth = int(float64(width) * float64(maxSize) / float64(height))
		}
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
