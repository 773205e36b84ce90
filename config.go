package glyphmatrix

import (
	"fmt"
	"io"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// Config is the file form of a session. Unset keys keep DefaultConfig's
// values.
type Config struct {
	FPS     int           `yaml:"fps"`
	Modes   []ModeConfig  `yaml:"modes"`
	Render  RenderConfig  `yaml:"render"`
	Sampler SamplerConfig `yaml:"sampler"`
	Decoder DecoderConfig `yaml:"decoder"`
	Filter  AdjustConfig  `yaml:"filter"`
}

type ModeConfig struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

type RenderConfig struct {
	Mode             int     `yaml:"mode"`
	CharacterSet     string  `yaml:"characterSet"`
	BackgroundColor  string  `yaml:"backgroundColor"`
	CharacterColor   string  `yaml:"characterColor"`
	Scale            float64 `yaml:"scale"`
	CharacterSpacing float64 `yaml:"characterSpacing"`
}

type SamplerConfig struct {
	BlackPoint float64 `yaml:"blackPoint"`
	WhitePoint float64 `yaml:"whitePoint"`
}

type DecoderConfig struct {
	Kind            string `yaml:"kind"`
	PerFrameTiming  bool   `yaml:"perFrameTiming"`
	MaxDimension    int    `yaml:"maxDimension"`
	MaxBytes        int64  `yaml:"maxBytes"`
	MaxDecodedBytes int64  `yaml:"maxDecodedBytes"`
	MJPEGFPS        int    `yaml:"mjpegFPS"`
}

type AdjustConfig struct {
	Gamma           float64 `yaml:"gamma"`
	Brightness      float64 `yaml:"brightness"`
	Contrast        float64 `yaml:"contrast"`
	Sharpen         float64 `yaml:"sharpen"`
	SigmoidMidpoint float64 `yaml:"sigmoidMidpoint"`
	SigmoidFactor   float64 `yaml:"sigmoidFactor"`
	Invert          bool    `yaml:"invert"`
}

const (
	DecoderGIF   = "gif"
	DecoderMJPEG = "mjpeg"
)

func DefaultConfig() Config {
	return Config{
		FPS: DefaultFPS,
		Modes: []ModeConfig{
			{Name: "Neo", Source: "https://yyksvv7hmzwys6ev.public.blob.vercel-storage.com/Canadian%2090S%20GIF-1gtB6pgqybECygmolyCuW6X7kaKoat.gif"},
			{Name: "Bullet Time", Source: "https://hebbkx1anhila5yf.public.blob.vercel-storage.com/sci-fi%20GIF-tET8d7aAKbbeJkQCgv80X5qHs7YUaY.gif"},
			{Name: "Morpheus", Source: "https://hebbkx1anhila5yf.public.blob.vercel-storage.com/keanu%20reeves%20film%20GIF-dIVbUeIiTaFrf6SdgPSU4HlRNGd0Xc.gif"},
		},
		Render: RenderConfig{
			Mode:             0,
			CharacterSet:     "default",
			BackgroundColor:  "#000000",
			CharacterColor:   "#00FF00",
			Scale:            MaxScale,
			CharacterSpacing: 0.8,
		},
		Sampler: SamplerConfig{
			BlackPoint: defaultBlackPoint,
			WhitePoint: defaultWhitePoint,
		},
		Decoder: DecoderConfig{
			Kind:            DecoderGIF,
			MaxBytes:        DefaultMaxBytes,
			MaxDecodedBytes: DefaultMaxDecodedBytes,
			MJPEGFPS:        10,
		},
		Filter: AdjustConfig{
			Gamma:           1,
			SigmoidMidpoint: 0.5,
		},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()
	cfg, err := ParseConfig(file)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func ParseConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Modes) == 0 {
		return fmt.Errorf("config: no modes")
	}
	for i, m := range c.Modes {
		if m.Source == "" {
			return fmt.Errorf("config: mode %d has no source", i)
		}
	}
	if c.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive, got %d", c.FPS)
	}
	if c.Render.Scale < MinScale || c.Render.Scale > MaxScale {
		return fmt.Errorf("config: scale %v outside [%v, %v]", c.Render.Scale, MinScale, MaxScale)
	}
	if c.Render.CharacterSpacing <= 0 {
		return fmt.Errorf("config: characterSpacing must be positive, got %v", c.Render.CharacterSpacing)
	}
	if _, err := colorful.Hex(c.Render.BackgroundColor); err != nil {
		return fmt.Errorf("config: backgroundColor: %w", err)
	}
	if _, err := colorful.Hex(c.Render.CharacterColor); err != nil {
		return fmt.Errorf("config: characterColor: %w", err)
	}
	if c.Sampler.BlackPoint >= c.Sampler.WhitePoint {
		return fmt.Errorf("config: blackPoint %v must be below whitePoint %v", c.Sampler.BlackPoint, c.Sampler.WhitePoint)
	}
	if c.Decoder.MaxBytes <= 0 || c.Decoder.MaxDecodedBytes <= 0 {
		return fmt.Errorf("config: maxBytes and maxDecodedBytes must be positive")
	}
	switch c.Decoder.Kind {
	case DecoderGIF, DecoderMJPEG:
	default:
		return fmt.Errorf("config: unknown decoder %q", c.Decoder.Kind)
	}
	return nil
}

// RenderParams converts the render section. Invalid colors fall back to the
// defaults; call Validate first to reject them instead.
func (c Config) RenderParams() RenderParams {
	p := DefaultRenderParams()
	p.Mode = c.Render.Mode
	p.Ramp = ResolveRamp(c.Render.CharacterSet)
	p.Scale = c.Render.Scale
	p.Spacing = c.Render.CharacterSpacing
	if bg, err := colorful.Hex(c.Render.BackgroundColor); err == nil {
		p.Background = bg
	}
	if fg, err := colorful.Hex(c.Render.CharacterColor); err == nil {
		p.Foreground = fg
	}
	return p
}

func (c Config) SessionModes() []Mode {
	modes := make([]Mode, len(c.Modes))
	for i, m := range c.Modes {
		modes[i] = Mode{Name: m.Name, Source: m.Source}
		if modes[i].Name == "" {
			modes[i].Name = fmt.Sprintf("mode %d", i+1)
		}
	}
	return modes
}

func (c Config) NewSampler() *Sampler {
	return NewSampler(WithContrastWindow(c.Sampler.BlackPoint, c.Sampler.WhitePoint))
}

func (c Config) Adjustments() Adjustments {
	return Adjustments{
		MaxDimension:    c.Decoder.MaxDimension,
		Gamma:           c.Filter.Gamma,
		Brightness:      c.Filter.Brightness,
		Contrast:        c.Filter.Contrast,
		Sharpen:         c.Filter.Sharpen,
		SigmoidMidpoint: c.Filter.SigmoidMidpoint,
		SigmoidFactor:   c.Filter.SigmoidFactor,
		Invert:          c.Filter.Invert,
	}
}

// NewDecoder returns the primary decoder the config selects.
func (c Config) NewDecoder() Decoder {
	filter := c.Adjustments()
	if c.Decoder.Kind == DecoderMJPEG {
		return MJPEGDecoder{Filter: filter, FPS: c.Decoder.MJPEGFPS, MaxDecodedBytes: c.Decoder.MaxDecodedBytes}
	}
	return GIFDecoder{Filter: filter, PerFrameTiming: c.Decoder.PerFrameTiming, MaxDecodedBytes: c.Decoder.MaxDecodedBytes}
}

func (c Config) NewLoader(log logrus.FieldLogger) *Loader {
	return NewLoader(
		WithDecoder(c.NewDecoder()),
		WithFallback(StaticDecoder{Filter: c.Adjustments(), MaxDecodedBytes: c.Decoder.MaxDecodedBytes}),
		WithMaxBytes(c.Decoder.MaxBytes),
		WithLogger(log),
	)
}

// NewSession builds a session for the configured modes.
func (c Config) NewSession(log logrus.FieldLogger) *Session {
	return NewSession(c.SessionModes(), c.RenderParams(),
		WithSessionLoader(c.NewLoader(log)),
		WithSampler(c.NewSampler()),
		WithFPS(c.FPS),
		WithSessionLogger(log),
	)
}
