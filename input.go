package grandtree

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
	pinchZoomScale      = 20.0
)

// EventType identifies a pointer event.
type EventType uint8

const (
	EventPointerDown EventType = iota
	EventPointerUp
	EventPointerMove
	EventClick
	EventDragStart
	EventDrag
	EventDragEnd
	EventWheel
	EventPinch
)

// KeyModifiers is a bitmask of held modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// PointerEvent carries one pointer interaction in screen coordinates.
type PointerEvent struct {
	Type      EventType
	X, Y      float64
	PointerID int
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (EventDragStart, EventDrag, EventDragEnd).
	StartX, StartY float64
	// DeltaX and DeltaY are the movement since the previous event, or the
	// wheel offset for EventWheel.
	DeltaX, DeltaY float64
	// Pinch fields (EventPinch).
	Scale, ScaleDelta float64
}

// PointerTarget is a screen region that receives pointer events. Targets
// added later sit on top of earlier ones.
type PointerTarget interface {
	// Contains reports whether the target owns the screen point.
	Contains(x, y float64) bool
	// HandlePointer receives events for presses that began inside the
	// target, and hover and wheel events over it.
	HandlePointer(ev PointerEvent)
}

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	target   PointerTarget
	dragging bool
	button   MouseButton // button captured at press time
}

// --- Pinch state ---

type pinchState struct {
	active      bool
	initialDist float64
	prevDist    float64
}

// --- Scene-level callbacks ---

type pointerHandler struct {
	id uint32
	fn func(PointerEvent)
}

type handlerRegistry struct {
	handlers []pointerHandler
	nextID   uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id  uint32
	reg *handlerRegistry
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	s := h.reg.handlers
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pointerHandler{}
			h.reg.handlers = s[:len(s)-1]
			return
		}
	}
}

// OnPointer registers a scene-level callback that observes every pointer
// event before it is routed to a target.
func (s *Scene) OnPointer(fn func(PointerEvent)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.handlers = append(s.handlers.handlers, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers}
}

// AddPointerTarget places t above every existing target.
func (s *Scene) AddPointerTarget(t PointerTarget) {
	s.targets = append(s.targets, t)
}

// RemovePointerTarget removes t and releases any pointer it holds.
func (s *Scene) RemovePointerTarget(t PointerTarget) {
	for i, existing := range s.targets {
		if existing == t {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			break
		}
	}
	for i := range s.pointers {
		if s.pointers[i].target == t {
			s.pointers[i].target = nil
		}
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// hitTest returns the topmost target containing (x, y). Points no overlay
// claims go to the orbit controller when it is enabled.
func (s *Scene) hitTest(x, y float64) PointerTarget {
	for i := len(s.targets) - 1; i >= 0; i-- {
		if s.targets[i].Contains(x, y) {
			return s.targets[i]
		}
	}
	if s.OrbitEnabled {
		return &s.orbit
	}
	return nil
}

// --- Orbit controller ---

// orbitController turns drags, wheel and pinch into camera orbit and zoom.
type orbitController struct {
	cam *Camera
}

func (o *orbitController) Contains(x, y float64) bool {
	return o.cam.Viewport.Contains(x, y)
}

func (o *orbitController) HandlePointer(ev PointerEvent) {
	switch ev.Type {
	case EventDrag:
		o.cam.Rotate(ev.DeltaX, ev.DeltaY)
	case EventWheel:
		o.cam.Zoom(ev.DeltaY)
	case EventPinch:
		o.cam.Zoom(ev.ScaleDelta * pinchZoomScale)
	}
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Scene.Update() to handle all mouse and touch
// input. Injected events take precedence over the real mouse.
func (s *Scene) processInput() {
	mods := readModifiers()

	if !s.processInjectedInput(mods) {
		s.processMousePointer(mods)
		s.processWheel(mods)
	}
	s.processTouchPointers(mods)
	s.detectPinch(mods)
}

// processMousePointer handles mouse input (pointer 0).
func (s *Scene) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()

	// Detect which button is pressed. If pointer is already down, the state
	// machine keeps the stored button.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	s.processPointer(0, float64(mx), float64(my), pressed, button, mods)
}

func (s *Scene) processWheel(mods KeyModifiers) {
	_, wy := ebiten.Wheel()
	if wy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	s.dispatchWheel(float64(mx), float64(my), wy, mods)
}

func (s *Scene) dispatchWheel(x, y, delta float64, mods KeyModifiers) {
	ev := PointerEvent{Type: EventWheel, X: x, Y: y, DeltaY: delta, Modifiers: mods}
	s.fire(s.hitTest(x, y), ev)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Scene) processTouchPointers(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (s *Scene) processPointer(pointerID int, x, y float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointers[pointerID]
	ev := PointerEvent{X: x, Y: y, PointerID: pointerID, Button: button, Modifiers: mods}

	switch {
	case pressed && !ps.down:
		// Just pressed: the target under the pointer keeps it until release.
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.target = s.hitTest(x, y)
		ps.dragging = false

		ev.Type = EventPointerDown
		s.fire(ps.target, ev)

	case !pressed && ps.down:
		ev.Button = ps.button
		ev.StartX, ev.StartY = ps.startX, ps.startY
		if ps.dragging {
			ev.Type = EventDragEnd
			ev.DeltaX, ev.DeltaY = x-ps.lastX, y-ps.lastY
			s.fire(ps.target, ev)
		} else if ps.target != nil && s.hitTest(x, y) == ps.target {
			ev.Type = EventClick
			s.fire(ps.target, ev)
		}
		ev.Type = EventPointerUp
		ev.DeltaX, ev.DeltaY = 0, 0
		s.fire(ps.target, ev)

		ps.down = false
		ps.target = nil
		ps.dragging = false

	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			ev.Button = ps.button
			ev.StartX, ev.StartY = ps.startX, ps.startY
			if !ps.dragging && !s.pinch.active {
				dx := x - ps.startX
				dy := y - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					ev.Type = EventDragStart
					ev.DeltaX, ev.DeltaY = dx, dy
					s.fire(ps.target, ev)
				}
			}
			if ps.dragging {
				ev.Type = EventDrag
				ev.DeltaX, ev.DeltaY = x-ps.lastX, y-ps.lastY
				s.fire(ps.target, ev)
			}
		}
		ps.lastX, ps.lastY = x, y

	default:
		// Hover move.
		if x != ps.lastX || y != ps.lastY {
			ev.Type = EventPointerMove
			s.fire(s.hitTest(x, y), ev)
			ps.lastX, ps.lastY = x, y
		}
	}
}

// fire runs scene-level callbacks, then the target.
func (s *Scene) fire(target PointerTarget, ev PointerEvent) {
	for _, h := range s.handlers.handlers {
		h.fn(ev)
	}
	if target != nil {
		target.HandlePointer(ev)
	}
}

// --- Pinch detection ---

func (s *Scene) detectPinch(mods KeyModifiers) {
	var p [2]int
	count := 0
	for i := 1; i < maxPointers; i++ {
		if s.pointers[i].down {
			if count < 2 {
				p[count] = i
			}
			count++
		}
	}

	if count != 2 {
		s.pinch.active = false
		return
	}

	ps0 := &s.pointers[p[0]]
	ps1 := &s.pointers[p[1]]
	dist := math.Hypot(ps1.lastX-ps0.lastX, ps1.lastY-ps0.lastY)
	cx := (ps0.lastX + ps1.lastX) / 2
	cy := (ps0.lastY + ps1.lastY) / 2

	if !s.pinch.active {
		s.pinch = pinchState{active: true, initialDist: dist, prevDist: dist}
	} else {
		ev := PointerEvent{Type: EventPinch, X: cx, Y: cy, Modifiers: mods, Scale: 1}
		if s.pinch.initialDist > 0 {
			ev.Scale = dist / s.pinch.initialDist
		}
		if s.pinch.prevDist > 0 {
			ev.ScaleDelta = dist/s.pinch.prevDist - 1
		}
		s.fire(s.hitTest(cx, cy), ev)
		s.pinch.prevDist = dist
	}

	// Suppress drag for the two pinch pointers.
	ps0.dragging = false
	ps1.dragging = false
}
