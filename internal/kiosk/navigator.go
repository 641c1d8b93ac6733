package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/clinic-kiosk/internal/capture"
)

// Page is one screen of the kiosk.
type Page string

const (
	PageHome         Page = "home"
	PageRegistration Page = "registration"
	PageVerification Page = "verification"
	PageGateway      Page = "queue-gateway"
)

// Pages lists every kiosk page.
var Pages = []Page{PageHome, PageRegistration, PageVerification, PageGateway}

// ParsePage resolves a page name.
func ParsePage(s string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Pages {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// Mode selects the camera stream a page uses.
type Mode string

const (
	ModeRegistration Mode = "registration"
	ModeVerification Mode = "verification"
)

func (p Page) mode() (Mode, bool) {
	switch p {
	case PageRegistration:
		return ModeRegistration, true
	case PageVerification:
		return ModeVerification, true
	}
	return "", false
}

// Navigator tracks the active page and the camera stream of each capture
// mode. A stream is opened the first time its mode is needed and kept until
// Close. A failed open is retried on the next request.
type Navigator struct {
	page    Page
	camera  capture.Camera
	streams map[Mode]capture.Stream
}

// NewNavigator starts on the home page.
func NewNavigator(camera capture.Camera) *Navigator {
	return &Navigator{
		page:    PageHome,
		camera:  camera,
		streams: make(map[Mode]capture.Stream),
	}
}

// Page returns the active page.
func (n *Navigator) Page() Page {
	return n.page
}

// Show activates p. Capture pages acquire their stream; the page switch
// happens even when the camera cannot be opened.
func (n *Navigator) Show(ctx context.Context, p Page) error {
	n.page = p
	if mode, ok := p.mode(); ok {
		_, err := n.Stream(ctx, mode)
		return err
	}
	return nil
}

// Stream returns the stream of mode, opening it if needed.
func (n *Navigator) Stream(ctx context.Context, mode Mode) (capture.Stream, error) {
	if s, ok := n.streams[mode]; ok {
		return s, nil
	}
	if n.camera == nil {
		return nil, errors.New("no camera configured")
	}
	s, err := n.camera.Open(ctx)
	if err != nil {
		return nil, err
	}
	n.streams[mode] = s
	return s, nil
}

// Release closes and forgets the stream of mode so the next request reopens it.
func (n *Navigator) Release(mode Mode) error {
	s, ok := n.streams[mode]
	if !ok {
		return nil
	}
	delete(n.streams, mode)
	return s.Close()
}

// Close releases every open stream.
func (n *Navigator) Close() error {
	var errs []error
	for mode := range n.streams {
		if err := n.Release(mode); err != nil {
			errs = append(errs, fmt.Errorf("could not close %s stream: %w", mode, err))
		}
	}
	return errors.Join(errs...)
}
