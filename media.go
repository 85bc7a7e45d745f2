package grandtree

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"sync/atomic"
	"time"
)

// Facing is the preferred camera direction.
type Facing uint8

const (
	FacingEnvironment Facing = iota // rear camera
	FacingUser                      // front camera
)

// String returns the facing's config name.
func (f Facing) String() string {
	if f == FacingUser {
		return "user"
	}
	return "environment"
}

// ParseFacing parses "environment" or "user".
func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(s) {
	case "environment", "":
		return FacingEnvironment, nil
	case "user":
		return FacingUser, nil
	}
	return 0, fmt.Errorf("%w: facing %q", ErrInvalidValue, s)
}

// MediaConstraints selects the stream a MediaDevices should open.
type MediaConstraints struct {
	Facing Facing
	Width  int
	Height int
}

// MediaTrack is one track of a stream.
type MediaTrack interface {
	Kind() string
	// Stop ends the track. Stopping twice is a no-op.
	Stop()
	Stopped() bool
}

// MediaStream is a live video source.
type MediaStream interface {
	Tracks() []MediaTrack
	// ReadFrame copies the latest frame into dst and reports whether a
	// frame was available. dst must match the stream's frame size.
	ReadFrame(dst *image.RGBA) bool
	// Size returns the frame dimensions.
	Size() (w, h int)
}

// MediaDevices opens camera streams. GetUserMedia may block; callers run it
// off the game loop.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, c MediaConstraints) (MediaStream, error)
	Name() string
}

// NewMediaDevices returns the device named name: "synthetic" or "none".
func NewMediaDevices(name string) (MediaDevices, error) {
	switch name {
	case "synthetic", "":
		return &SyntheticCamera{}, nil
	case "none":
		return &UnavailableCamera{}, nil
	}
	return nil, fmt.Errorf("%w: camera device %q", ErrInvalidValue, name)
}

// --- Unavailable camera ---

// UnavailableCamera fails every request.
type UnavailableCamera struct {
	// Err overrides the returned error. Nil means ErrNoCameraDevice.
	Err error
}

// GetUserMedia always fails.
func (u *UnavailableCamera) GetUserMedia(ctx context.Context, _ MediaConstraints) (MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if u.Err != nil {
		return nil, u.Err
	}
	return nil, ErrNoCameraDevice
}

// Name returns "none".
func (u *UnavailableCamera) Name() string { return "none" }

// --- Synthetic camera ---

const (
	syntheticWidth  = 320
	syntheticHeight = 180
)

// SyntheticCamera produces a procedural moving pattern, standing in for a
// real device.
type SyntheticCamera struct {
	// Delay simulates the permission prompt.
	Delay time.Duration
	live  atomic.Int32
}

// GetUserMedia opens a stream after Delay, or fails if ctx ends first.
func (c *SyntheticCamera) GetUserMedia(ctx context.Context, mc MediaConstraints) (MediaStream, error) {
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := mc.Width, mc.Height
	if w <= 0 || h <= 0 {
		w, h = syntheticWidth, syntheticHeight
	}
	s := &syntheticStream{w: w, h: h, facing: mc.Facing}
	s.track = &syntheticTrack{owner: c}
	c.live.Add(1)
	return s, nil
}

// Name returns "synthetic".
func (c *SyntheticCamera) Name() string { return "synthetic" }

// LiveTracks returns the number of opened tracks not yet stopped.
func (c *SyntheticCamera) LiveTracks() int {
	return int(c.live.Load())
}

type syntheticTrack struct {
	owner   *SyntheticCamera
	stopped atomic.Bool
}

func (t *syntheticTrack) Kind() string { return "video" }

func (t *syntheticTrack) Stop() {
	if t.stopped.CompareAndSwap(false, true) {
		t.owner.live.Add(-1)
	}
}

func (t *syntheticTrack) Stopped() bool { return t.stopped.Load() }

type syntheticStream struct {
	w, h   int
	facing Facing
	track  *syntheticTrack
	frame  int
}

func (s *syntheticStream) Tracks() []MediaTrack { return []MediaTrack{s.track} }

func (s *syntheticStream) Size() (int, int) { return s.w, s.h }

// ReadFrame paints a dim warm gradient with drifting bokeh circles.
func (s *syntheticStream) ReadFrame(dst *image.RGBA) bool {
	if s.track.Stopped() {
		return false
	}
	b := dst.Bounds()
	if b.Dx() != s.w || b.Dy() != s.h {
		return false
	}
	s.frame++
	t := float64(s.frame) / 60

	type blob struct{ x, y, r float64 }
	var blobs [5]blob
	for i := range blobs {
		fi := float64(i)
		blobs[i] = blob{
			x: (0.5 + 0.4*math.Sin(t*0.3+fi*1.7)) * float64(s.w),
			y: (0.5 + 0.3*math.Cos(t*0.2+fi*2.3)) * float64(s.h),
			r: float64(s.h) * (0.08 + 0.03*fi),
		}
	}
	for y := 0; y < s.h; y++ {
		v := float64(y) / float64(s.h)
		for x := 0; x < s.w; x++ {
			r := 0.10 + 0.08*v
			g := 0.08 + 0.05*v
			bl := 0.06 + 0.02*v
			for _, bb := range blobs {
				dx, dy := float64(x)-bb.x, float64(y)-bb.y
				d := (dx*dx + dy*dy) / (bb.r * bb.r)
				if d < 1 {
					k := (1 - d) * 0.25
					r += k
					g += k * 0.8
					bl += k * 0.4
				}
			}
			if s.facing == FacingUser {
				r, bl = bl, r
			}
			off := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			dst.Pix[off+0] = uint8(clamp01(r) * 255)
			dst.Pix[off+1] = uint8(clamp01(g) * 255)
			dst.Pix[off+2] = uint8(clamp01(bl) * 255)
			dst.Pix[off+3] = 255
		}
	}
	return true
}
