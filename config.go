package grandtree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration file.
type Config struct {
	Window        WindowConfig `yaml:"window"`
	View          ViewConfig   `yaml:"view"`
	Layout        LayoutConfig `yaml:"layout"`
	Camera        CameraConfig `yaml:"camera"`
	Log           LogConfig    `yaml:"log"`
	Debug         bool         `yaml:"debug"`
	ScreenshotDir string       `yaml:"screenshot_dir" validate:"required"`
}

// WindowConfig sizes the game window.
type WindowConfig struct {
	Title   string `yaml:"title" validate:"required"`
	Width   int    `yaml:"width" validate:"gte=320,lte=7680"`
	Height  int    `yaml:"height" validate:"gte=240,lte=4320"`
	ShowFPS bool   `yaml:"show_fps"`
}

// ViewConfig is the initial ViewState.
type ViewConfig struct {
	RotationSpeed  float64 `yaml:"rotation_speed" validate:"gte=0,lte=2"`
	LightIntensity float64 `yaml:"light_intensity" validate:"gte=0.5,lte=3"`
	Theme          string  `yaml:"theme" validate:"theme"`
	Snowing        bool    `yaml:"snowing"`
	Camera         bool    `yaml:"camera"`
}

// LayoutConfig sizes the generated tree. Seed 0 picks a random seed.
type LayoutConfig struct {
	Seed      uint64 `yaml:"seed"`
	Foliage   int    `yaml:"foliage" validate:"gte=1,lte=20000"`
	Ornaments int    `yaml:"ornaments" validate:"gte=1,lte=2000"`
	Lights    int    `yaml:"lights" validate:"gte=1,lte=5000"`
}

// CameraConfig selects the backdrop camera.
type CameraConfig struct {
	Device string `yaml:"device" validate:"oneof=synthetic none"`
	Facing string `yaml:"facing" validate:"oneof=environment user"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Human bool   `yaml:"human"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	vs := DefaultViewState()
	lp := DefaultLayoutParams()
	return &Config{
		Window: WindowConfig{Title: TextTitle, Width: 1280, Height: 800},
		View: ViewConfig{
			RotationSpeed:  vs.RotationSpeed,
			LightIntensity: vs.LightIntensity,
			Theme:          vs.Theme.String(),
			Snowing:        vs.IsSnowing,
			Camera:         vs.UseCamera,
		},
		Layout:        LayoutConfig{Foliage: lp.Foliage, Ornaments: lp.Ornaments, Lights: lp.Lights},
		Camera:        CameraConfig{Device: "synthetic", Facing: FacingEnvironment.String()},
		Log:           LogConfig{Level: "info", Human: true},
		ScreenshotDir: "screenshots",
	}
}

// LoadConfig reads and validates the YAML file at path. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return ParseConfig(data, path)
}

// ParseConfig decodes data over the defaults and validates the result.
// Unknown keys are rejected. path only labels errors.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Path: path, Line: yamlErrorLine(err), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

func yamlErrorLine(err error) int {
	m := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(m) != 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Validate checks every field against its constraints. The first failure is
// returned as a *ConfigError naming the YAML field path.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		return &ConfigError{
			Field: field,
			Err:   fmt.Errorf("%w: %v failed %q", ErrInvalidValue, fe.Value(), fe.Tag()),
		}
	}
	return &ConfigError{Err: err}
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance returns the shared validator, using YAML names in field
// paths and carrying a theme rule.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
			_, err := ParseTheme(fl.Field().String())
			return err == nil
		})
		validateInst = v
	})
	return validateInst
}

// ViewState returns the configured initial state. The config must be valid.
func (c *Config) ViewState() ViewState {
	theme, _ := ParseTheme(c.View.Theme)
	return ViewState{
		RotationSpeed:  c.View.RotationSpeed,
		LightIntensity: c.View.LightIntensity,
		Theme:          theme,
		IsSnowing:      c.View.Snowing,
		UseCamera:      c.View.Camera,
	}
}

// LayoutParams returns the default tree dimensions with the configured
// counts.
func (c *Config) LayoutParams() LayoutParams {
	p := DefaultLayoutParams()
	p.Foliage = c.Layout.Foliage
	p.Ornaments = c.Layout.Ornaments
	p.Lights = c.Layout.Lights
	return p
}

// MediaConstraints returns the camera request for the configured facing.
func (c *Config) MediaConstraints() MediaConstraints {
	f, _ := ParseFacing(c.Camera.Facing)
	return MediaConstraints{Facing: f}
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
