package grandtree

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultViewState(t *testing.T) {
	s := DefaultViewState()
	require.Equal(t, 0.2, s.RotationSpeed)
	require.Equal(t, 1.5, s.LightIntensity)
	require.Equal(t, ThemeGold, s.Theme)
	require.True(t, s.IsSnowing)
	require.False(t, s.UseCamera)
}

func TestViewModelUpdateFields(t *testing.T) {
	vm := NewViewModel(DefaultViewState())
	require.NoError(t, vm.Update(FieldRotationSpeed, 1.3))
	require.NoError(t, vm.Update(FieldLightIntensity, 2))
	require.NoError(t, vm.Update(FieldTheme, ThemeDiamond))
	require.NoError(t, vm.Update(FieldIsSnowing, false))
	require.NoError(t, vm.Update(FieldUseCamera, true))

	s := vm.State()
	require.Equal(t, 1.3, s.RotationSpeed)
	require.Equal(t, 2.0, s.LightIntensity)
	require.Equal(t, ThemeDiamond, s.Theme)
	require.False(t, s.IsSnowing)
	require.True(t, s.UseCamera)

	require.NoError(t, vm.Update(FieldTheme, "patriot"))
	require.Equal(t, ThemePatriot, vm.State().Theme)
}

func TestViewModelRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value any
		want  error
	}{
		{"unknown field", Field("sparkle"), 1.0, ErrUnknownField},
		{"negative speed", FieldRotationSpeed, -0.1, ErrInvalidValue},
		{"nan intensity", FieldLightIntensity, math.NaN(), ErrInvalidValue},
		{"inf speed", FieldRotationSpeed, math.Inf(1), ErrInvalidValue},
		{"string speed", FieldRotationSpeed, "fast", ErrInvalidValue},
		{"bad theme name", FieldTheme, "bronze", ErrInvalidValue},
		{"theme out of range", FieldTheme, Theme(7), ErrInvalidValue},
		{"theme as int", FieldTheme, 1, ErrInvalidValue},
		{"snow as string", FieldIsSnowing, "yes", ErrInvalidValue},
		{"camera as int", FieldUseCamera, 1, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewViewModel(DefaultViewState())
			err := vm.Update(tt.field, tt.value)
			require.ErrorIs(t, err, tt.want)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			require.Equal(t, tt.field, fe.Field)
			require.Equal(t, DefaultViewState(), vm.State())
		})
	}
}

func TestViewModelSubscribers(t *testing.T) {
	vm := NewViewModel(DefaultViewState())
	var seen []Field
	cancel := vm.Subscribe(func(f Field, prev, next ViewState) {
		seen = append(seen, f)
		if f == FieldIsSnowing {
			require.True(t, prev.IsSnowing)
			require.False(t, next.IsSnowing)
		}
	})

	require.NoError(t, vm.Update(FieldIsSnowing, false))
	require.NoError(t, vm.Update(FieldIsSnowing, false)) // unchanged, no notification
	require.NoError(t, vm.Update(FieldRotationSpeed, 0.5))
	require.Equal(t, []Field{FieldIsSnowing, FieldRotationSpeed}, seen)

	cancel()
	require.NoError(t, vm.Update(FieldRotationSpeed, 0.7))
	require.Len(t, seen, 2)
}

func TestViewModelNestedUpdateFromSubscriber(t *testing.T) {
	vm := NewViewModel(DefaultViewState())
	vm.Subscribe(func(f Field, _, next ViewState) {
		if f == FieldUseCamera && next.UseCamera {
			require.NoError(t, vm.Update(FieldUseCamera, false))
		}
	})
	require.NoError(t, vm.Update(FieldUseCamera, true))
	require.False(t, vm.State().UseCamera)
}

func TestViewStateGet(t *testing.T) {
	s := DefaultViewState()
	for _, f := range Fields {
		_, err := s.Get(f)
		require.NoError(t, err)
	}
	v, err := s.Get(FieldLightIntensity)
	require.NoError(t, err)
	require.Equal(t, 1.5, v)
	_, err = s.Get("bogus")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("isSnowing")
	require.NoError(t, err)
	require.Equal(t, FieldIsSnowing, f)
	_, err = ParseField("IsSnowing")
	require.ErrorIs(t, err, ErrUnknownField)
}
