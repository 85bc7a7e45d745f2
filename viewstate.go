package grandtree

import (
	"fmt"
	"math"
)

// Field names a user-controllable ViewState field. The string value is the
// field's wire name used by scripts and the command line.
type Field string

const (
	FieldRotationSpeed  Field = "rotationSpeed"
	FieldLightIntensity Field = "lightIntensity"
	FieldTheme          Field = "theme"
	FieldIsSnowing      Field = "isSnowing"
	FieldUseCamera      Field = "useCamera"
)

// Fields lists every ViewState field.
var Fields = []Field{FieldRotationSpeed, FieldLightIntensity, FieldTheme, FieldIsSnowing, FieldUseCamera}

// ParseField validates a wire name.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// ViewState is the record of user-controllable visual parameters.
type ViewState struct {
	RotationSpeed  float64
	LightIntensity float64
	Theme          Theme
	IsSnowing      bool
	UseCamera      bool
}

// DefaultViewState returns the state the application starts with.
func DefaultViewState() ViewState {
	return ViewState{
		RotationSpeed:  0.2,
		LightIntensity: 1.5,
		Theme:          ThemeGold,
		IsSnowing:      true,
		UseCamera:      false,
	}
}

// Get returns the value of field f.
func (s ViewState) Get(f Field) (any, error) {
	switch f {
	case FieldRotationSpeed:
		return s.RotationSpeed, nil
	case FieldLightIntensity:
		return s.LightIntensity, nil
	case FieldTheme:
		return s.Theme, nil
	case FieldIsSnowing:
		return s.IsSnowing, nil
	case FieldUseCamera:
		return s.UseCamera, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
}

// with returns a copy of s with field f set to value, or an error if the value
// does not fit the field.
func (s ViewState) with(f Field, value any) (ViewState, error) {
	switch f {
	case FieldRotationSpeed, FieldLightIntensity:
		v, ok := toFloat(value)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return s, ErrInvalidValue
		}
		if f == FieldRotationSpeed {
			s.RotationSpeed = v
		} else {
			s.LightIntensity = v
		}
	case FieldTheme:
		switch v := value.(type) {
		case Theme:
			if v > ThemePatriot {
				return s, ErrInvalidValue
			}
			s.Theme = v
		case string:
			t, err := ParseTheme(v)
			if err != nil {
				return s, err
			}
			s.Theme = t
		default:
			return s, ErrInvalidValue
		}
	case FieldIsSnowing, FieldUseCamera:
		v, ok := value.(bool)
		if !ok {
			return s, ErrInvalidValue
		}
		if f == FieldIsSnowing {
			s.IsSnowing = v
		} else {
			s.UseCamera = v
		}
	default:
		return s, ErrUnknownField
	}
	return s, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ChangeFunc observes a ViewModel change. prev and next differ only in field.
type ChangeFunc func(field Field, prev, next ViewState)

type subscriber struct {
	id int
	fn ChangeFunc
}

// ViewModel owns the single ViewState instance. Every mutation goes through
// Update. Not safe for concurrent use; all calls belong on the game loop.
type ViewModel struct {
	state  ViewState
	subs   []subscriber
	nextID int
}

// NewViewModel creates a ViewModel holding initial.
func NewViewModel(initial ViewState) *ViewModel {
	return &ViewModel{state: initial}
}

// State returns a copy of the current state.
func (vm *ViewModel) State() ViewState {
	return vm.state
}

// Update sets field to value and notifies subscribers. It returns a
// *FieldError wrapping ErrUnknownField or ErrInvalidValue when the update is
// rejected, in which case the state is unchanged. Setting a field to its
// current value is a no-op.
func (vm *ViewModel) Update(field Field, value any) error {
	next, err := vm.state.with(field, value)
	if err != nil {
		return &FieldError{Field: field, Value: value, Err: err}
	}
	if next == vm.state {
		return nil
	}
	prev := vm.state
	vm.state = next
	for _, s := range append([]subscriber(nil), vm.subs...) {
		s.fn(field, prev, next)
	}
	return nil
}

// Subscribe registers fn to run after every accepted change. The returned
// function removes the subscription.
func (vm *ViewModel) Subscribe(fn ChangeFunc) (cancel func()) {
	vm.nextID++
	id := vm.nextID
	vm.subs = append(vm.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range vm.subs {
			if s.id == id {
				vm.subs = append(vm.subs[:i], vm.subs[i+1:]...)
				return
			}
		}
	}
}

// Updater is the single update entry point handed to writers of the state.
type Updater interface {
	Update(field Field, value any) error
}
