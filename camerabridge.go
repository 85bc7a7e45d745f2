package grandtree

import (
	"context"
	"image"
	"sync"

	"github.com/rs/zerolog"
)

// BridgeState is the camera bridge's acquisition state.
type BridgeState uint8

const (
	BridgeInactive  BridgeState = iota
	BridgeAcquiring             // a request is in flight
	BridgeActive                // a stream is bound
)

// String returns the state's name.
func (s BridgeState) String() string {
	switch s {
	case BridgeAcquiring:
		return "acquiring"
	case BridgeActive:
		return "active"
	}
	return "inactive"
}

// resultBuffer bounds acquisition results waiting for Poll.
const resultBuffer = 8

type acquireResult struct {
	gen    uint64
	stream MediaStream
	err    error
}

// CameraBridge binds a camera stream while useCamera is true. Acquisition
// runs on its own goroutine; results reach the game loop through Poll. At
// most one request is in flight and at most one stream is bound.
type CameraBridge struct {
	devices     MediaDevices
	updater     Updater
	constraints MediaConstraints
	logger      zerolog.Logger

	state   BridgeState
	stream  MediaStream
	gen     uint64
	cancel  context.CancelFunc
	results chan acquireResult
	wg      sync.WaitGroup

	frame *image.RGBA
}

// NewCameraBridge creates an inactive bridge. On acquisition failure it
// calls updater with useCamera=false.
func NewCameraBridge(devices MediaDevices, updater Updater, c MediaConstraints, logger zerolog.Logger) *CameraBridge {
	return &CameraBridge{
		devices:     devices,
		updater:     updater,
		constraints: c,
		logger:      logger,
		results:     make(chan acquireResult, resultBuffer),
	}
}

// State returns the current state.
func (b *CameraBridge) State() BridgeState {
	return b.state
}

// Stream returns the bound stream, or nil.
func (b *CameraBridge) Stream() MediaStream {
	return b.stream
}

// Sync moves the bridge toward useCamera. Turning on while a request is
// pending or a stream is bound is ignored. Turning off withdraws a pending
// request or stops the bound stream.
func (b *CameraBridge) Sync(useCamera bool) {
	if useCamera {
		if b.state != BridgeInactive {
			return
		}
		b.acquire()
		return
	}
	switch b.state {
	case BridgeAcquiring:
		b.withdraw()
	case BridgeActive:
		b.release()
	}
}

func (b *CameraBridge) acquire() {
	b.gen++
	gen := b.gen
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.state = BridgeAcquiring
	b.logger.Debug().Str("device", b.devices.Name()).Str("facing", b.constraints.Facing.String()).
		Msg("requesting camera")

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		stream, err := b.devices.GetUserMedia(ctx, b.constraints)
		if ctx.Err() != nil {
			// Withdrawn while pending.
			stopStream(stream)
			return
		}
		select {
		case b.results <- acquireResult{gen: gen, stream: stream, err: err}:
		default:
			stopStream(stream)
		}
	}()
}

func (b *CameraBridge) withdraw() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.gen++
	b.state = BridgeInactive
}

func (b *CameraBridge) release() {
	stopStream(b.stream)
	b.stream = nil
	b.frame = nil
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.state = BridgeInactive
	b.logger.Debug().Msg("camera released")
}

// Poll applies finished acquisitions. Call once per frame on the game loop.
func (b *CameraBridge) Poll() {
	for {
		select {
		case r := <-b.results:
			b.handle(r)
		default:
			return
		}
	}
}

func (b *CameraBridge) handle(r acquireResult) {
	if r.gen != b.gen || b.state != BridgeAcquiring {
		stopStream(r.stream)
		return
	}
	if r.err != nil {
		b.state = BridgeInactive
		b.cancel = nil
		b.logger.Error().Err(r.err).
			Str("device", b.devices.Name()).
			Str("facing", b.constraints.Facing.String()).
			Msg("camera acquisition failed")
		if err := b.updater.Update(FieldUseCamera, false); err != nil {
			b.logger.Error().Err(err).Msg("reset useCamera")
		}
		return
	}
	b.stream = r.stream
	b.state = BridgeActive
	b.logger.Info().Str("device", b.devices.Name()).Msg("camera active")
}

// ReadFrame reads the bound stream's latest frame into the bridge's buffer.
// The buffer is reused across calls.
func (b *CameraBridge) ReadFrame() (*image.RGBA, bool) {
	if b.state != BridgeActive || b.stream == nil {
		return nil, false
	}
	w, h := b.stream.Size()
	if b.frame == nil || b.frame.Rect.Dx() != w || b.frame.Rect.Dy() != h {
		b.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	if !b.stream.ReadFrame(b.frame) {
		return nil, false
	}
	return b.frame, true
}

// Close stops everything, waits for in-flight requests and releases any
// stream they produced.
func (b *CameraBridge) Close() {
	b.Sync(false)
	b.wg.Wait()
	for {
		select {
		case r := <-b.results:
			stopStream(r.stream)
		default:
			return
		}
	}
}

func stopStream(s MediaStream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
}
