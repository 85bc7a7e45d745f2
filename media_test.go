package grandtree

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFacing(t *testing.T) {
	f, err := ParseFacing("USER")
	require.NoError(t, err)
	assert.Equal(t, FacingUser, f)

	f, err = ParseFacing("")
	require.NoError(t, err)
	assert.Equal(t, FacingEnvironment, f)

	_, err = ParseFacing("sideways")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, "user", FacingUser.String())
}

func TestNewMediaDevices(t *testing.T) {
	d, err := NewMediaDevices("synthetic")
	require.NoError(t, err)
	assert.Equal(t, "synthetic", d.Name())

	d, err = NewMediaDevices("none")
	require.NoError(t, err)
	assert.Equal(t, "none", d.Name())

	_, err = NewMediaDevices("webcam")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestUnavailableCamera(t *testing.T) {
	_, err := (&UnavailableCamera{}).GetUserMedia(context.Background(), MediaConstraints{})
	assert.ErrorIs(t, err, ErrNoCameraDevice)

	denied := &UnavailableCamera{Err: ErrPermissionDenied}
	_, err = denied.GetUserMedia(context.Background(), MediaConstraints{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = denied.GetUserMedia(ctx, MediaConstraints{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntheticCameraStream(t *testing.T) {
	cam := &SyntheticCamera{}
	s, err := cam.GetUserMedia(context.Background(), MediaConstraints{})
	require.NoError(t, err)

	w, h := s.Size()
	assert.Equal(t, syntheticWidth, w)
	assert.Equal(t, syntheticHeight, h)
	require.Len(t, s.Tracks(), 1)
	assert.Equal(t, "video", s.Tracks()[0].Kind())
	assert.Equal(t, 1, cam.LiveTracks())

	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	require.True(t, s.ReadFrame(frame))
	assert.Equal(t, uint8(255), frame.Pix[3], "frames are opaque")

	assert.False(t, s.ReadFrame(image.NewRGBA(image.Rect(0, 0, 4, 4))), "size mismatch")

	s.Tracks()[0].Stop()
	s.Tracks()[0].Stop()
	assert.Equal(t, 0, cam.LiveTracks(), "double stop is a no-op")
	assert.False(t, s.ReadFrame(frame))
}

func TestSyntheticCameraConstraintsSize(t *testing.T) {
	cam := &SyntheticCamera{}
	s, err := cam.GetUserMedia(context.Background(), MediaConstraints{Width: 64, Height: 48})
	require.NoError(t, err)
	w, h := s.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
}

func TestSyntheticCameraFacingSwapsChannels(t *testing.T) {
	env, err := (&SyntheticCamera{}).GetUserMedia(context.Background(), MediaConstraints{Width: 8, Height: 8})
	require.NoError(t, err)
	user, err := (&SyntheticCamera{}).GetUserMedia(context.Background(), MediaConstraints{Width: 8, Height: 8, Facing: FacingUser})
	require.NoError(t, err)

	a := image.NewRGBA(image.Rect(0, 0, 8, 8))
	b := image.NewRGBA(image.Rect(0, 0, 8, 8))
	require.True(t, env.ReadFrame(a))
	require.True(t, user.ReadFrame(b))
	assert.Equal(t, a.Pix[0], b.Pix[2])
	assert.Equal(t, a.Pix[2], b.Pix[0])
}

func TestSyntheticCameraDelayCancelled(t *testing.T) {
	cam := &SyntheticCamera{Delay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := cam.GetUserMedia(ctx, MediaConstraints{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 0, cam.LiveTracks())
}
