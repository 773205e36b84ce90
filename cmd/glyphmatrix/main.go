package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/codegangsta/cli"
	"github.com/kevin-cantwell/glyphmatrix"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	app := cli.NewApp()
	app.Version = "0.1.0"
	app.Name = "glyphmatrix"
	app.Usage = "Plays animated GIFs as a grid of glyphs picked by brightness."
	app.UsageText = "1) glyphmatrix [options] [file|url...]\n" +
		/*      */ "   2) glyphmatrix [options] < [file]"
	app.Author = "Kevin Cantwell"
	app.Email = "kevin.cantwell@gmail.com"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML `FILE` with modes, render, sampler, decoder and filter settings.",
		},
		cli.IntFlag{
			Name:  "mode,m",
			Usage: "`MODE` index to start on.",
		},
		cli.StringFlag{
			Name:  "ramp,r",
			Usage: "Glyph `RAMP`, darkest first. A preset (default, ascii, braille) or a literal string.",
		},
		cli.Float64Flag{
			Name:  "scale",
			Usage: "Glyph `SCALE` between 0.5 and 3.0.",
		},
		cli.Float64Flag{
			Name:  "spacing",
			Usage: "Horizontal cell `SPACING` as a multiple of the glyph size.",
		},
		cli.StringFlag{
			Name:  "fg",
			Usage: "Glyph `COLOR` as hex.",
		},
		cli.StringFlag{
			Name:  "bg",
			Usage: "Background `COLOR` as hex.",
		},
		cli.IntFlag{
			Name:  "fps",
			Usage: "Ticks per second.",
		},
		cli.StringFlag{
			Name:  "decoder,d",
			Usage: "`DECODER` for sources: gif or mjpeg. Still images are decoded when it fails.",
		},
		cli.BoolFlag{
			Name:  "per-frame-timing",
			Usage: "Honor each GIF frame's own delay instead of a fixed 100ms.",
		},
		cli.IntFlag{
			Name:  "max-dimension",
			Usage: "Shrink frames to fit in a `PIXELS` square before sampling.",
		},
		cli.Float64Flag{
			Name:  "gamma,g",
			Usage: "`GAMMA` = 1.0 gives the original image. GAMMA less than 1.0 darkens the image and GAMMA greater than 1.0 lightens it.",
		},
		cli.Float64Flag{
			Name:  "brightness,b",
			Usage: "`BRIGHTNESS` = 0 gives the original image. BRIGHTNESS = -100 gives solid black image. BRIGHTNESS = 100 gives solid white image.",
		},
		cli.Float64Flag{
			Name:  "contrast,c",
			Usage: "`CONTRAST` = 0 gives the original image. CONTRAST = -100 gives solid grey image. CONTRAST = 100 gives maximum contrast.",
		},
		cli.Float64Flag{
			Name:  "sharpen,s",
			Usage: "`SHARPEN` = 0 gives the original image. SHARPEN greater than 0 sharpens the image.",
		},
		cli.BoolFlag{
			Name:  "invert,i",
			Usage: "Inverts the image.",
		},
		cli.Float64Flag{
			Name:  "black-point",
			Usage: "Luminance stretched to 0.",
		},
		cli.Float64Flag{
			Name:  "white-point",
			Usage: "Luminance stretched to 1.",
		},
		cli.StringFlag{
			Name:  "png",
			Usage: "Render a single tick into PNG `FILE` instead of playing.",
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "PNG width in pixels.",
			Value: 800,
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "PNG height in pixels.",
			Value: 600,
		},
		cli.BoolFlag{
			Name:  "verbose,v",
			Usage: "Log debug output to stderr.",
		},
	}
	app.Action = func(c *cli.Context) error {
		log := logrus.New()
		log.Out = os.Stderr
		log.Level = logrus.WarnLevel
		if c.Bool("verbose") {
			log.Level = logrus.DebugLevel
		}

		cfg, err := loadConfig(c)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		if out := c.String("png"); out != "" {
			err = snapshot(cfg, log, out, c.Int("width"), c.Int("height"))
		} else {
			err = play(cfg, log)
		}
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers flags over the config file over the defaults.
func loadConfig(c *cli.Context) (glyphmatrix.Config, error) {
	cfg := glyphmatrix.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = glyphmatrix.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if args := c.Args(); len(args) > 0 {
		cfg.Modes = nil
		for _, source := range args {
			cfg.Modes = append(cfg.Modes, glyphmatrix.ModeConfig{Name: source, Source: source})
		}
	} else if !term.IsTerminal(int(os.Stdin.Fd())) && c.String("config") == "" {
		cfg.Modes = []glyphmatrix.ModeConfig{{Name: "stdin", Source: "-"}}
	}

	if c.IsSet("mode") {
		cfg.Render.Mode = c.Int("mode")
	}
	if c.IsSet("ramp") {
		cfg.Render.CharacterSet = c.String("ramp")
	}
	if c.IsSet("scale") {
		cfg.Render.Scale = c.Float64("scale")
	}
	if c.IsSet("spacing") {
		cfg.Render.CharacterSpacing = c.Float64("spacing")
	}
	if c.IsSet("fg") {
		cfg.Render.CharacterColor = c.String("fg")
	}
	if c.IsSet("bg") {
		cfg.Render.BackgroundColor = c.String("bg")
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Int("fps")
	}
	if c.IsSet("decoder") {
		cfg.Decoder.Kind = c.String("decoder")
	}
	if c.IsSet("per-frame-timing") {
		cfg.Decoder.PerFrameTiming = c.Bool("per-frame-timing")
	}
	if c.IsSet("max-dimension") {
		cfg.Decoder.MaxDimension = c.Int("max-dimension")
	}
	if c.IsSet("gamma") {
		cfg.Filter.Gamma = c.Float64("gamma")
	}
	if c.IsSet("brightness") {
		cfg.Filter.Brightness = c.Float64("brightness")
	}
	if c.IsSet("contrast") {
		cfg.Filter.Contrast = c.Float64("contrast")
	}
	if c.IsSet("sharpen") {
		cfg.Filter.Sharpen = c.Float64("sharpen")
	}
	if c.IsSet("invert") {
		cfg.Filter.Invert = c.Bool("invert")
	}
	if c.IsSet("black-point") {
		cfg.Sampler.BlackPoint = c.Float64("black-point")
	}
	if c.IsSet("white-point") {
		cfg.Sampler.WhitePoint = c.Float64("white-point")
	}
	return cfg, cfg.Validate()
}

func play(cfg glyphmatrix.Config, log *logrus.Logger) error {
	stdin := int(os.Stdin.Fd())
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols, rows = 80, 25 // Small, but a pretty standard default
	}
	// Leave the last line for the cursor.
	surface := glyphmatrix.NewTerminalSurface(os.Stdout, cols, rows-1)
	session := cfg.NewSession(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleInterrupt(cancel)

	if term.IsTerminal(stdin) {
		state, err := term.MakeRaw(stdin)
		if err != nil {
			return err
		}
		defer term.Restore(stdin, state)
		log.SetOutput(&glyphmatrix.RawModeWriter{W: os.Stderr})
		defer log.SetOutput(os.Stderr)
		go readKeys(ctx, session, cfg.Render.CharacterSet, cancel)
	}

	if err := surface.HideCursor(); err != nil {
		return err
	}
	defer surface.Close()
	return session.Run(ctx, surface)
}

// handleInterrupt stops playback on SIGINT or SIGTERM so the deferred
// terminal cleanup runs.
func handleInterrupt(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	signal.Stop(signals)
	cancel()
}

// readKeys turns key presses into session controls until ctx is done or
// stdin closes.
func readKeys(ctx context.Context, session *glyphmatrix.Session, ramp string, cancel context.CancelFunc) {
	presets := glyphmatrix.RampPresets()
	next := 0
	for i, name := range presets {
		if name == ramp {
			next = i + 1
		}
	}

	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return
		}
		var control glyphmatrix.Control
		switch key := buf[0]; {
		case key == 'q' || key == 27 || key == 3: // ESC, CTRL-C
			cancel()
			return
		case key >= '1' && key <= '9':
			control = glyphmatrix.SetMode(int(key - '1'))
		case key == '+' || key == '=':
			control = glyphmatrix.AdjustScale(0.05)
		case key == '-' || key == '_':
			control = glyphmatrix.AdjustScale(-0.05)
		case key == 'z':
			control = glyphmatrix.ZoomOut()
		case key == 'r':
			control = glyphmatrix.SetRamp(glyphmatrix.ResolveRamp(presets[next%len(presets)]))
			next++
		case key == 'i':
			stats := session.Stats()
			fmt.Fprintf(os.Stderr, "\033[s\033[1;1H tick %d  %dx%d  %d glyphs  scale %.2f \033[u",
				stats.Ticks, stats.Cols, stats.Rows, stats.Drawn, stats.Scale)
		}
		if control != nil && session.Send(ctx, control) != nil {
			return
		}
	}
}

// snapshot loads every mode and renders one tick of the selected one to a
// PNG file.
func snapshot(cfg glyphmatrix.Config, log *logrus.Logger, out string, width, height int) error {
	surface, err := glyphmatrix.NewImageSurface(width, height)
	if err != nil {
		return err
	}

	loader := cfg.NewLoader(log)
	stores := make([]*glyphmatrix.FrameStore, len(cfg.Modes))
	for i, m := range cfg.Modes {
		if i == cfg.Render.Mode {
			stores[i] = loader.Load(context.Background(), m.Source)
		}
	}
	stats := glyphmatrix.NewRasterizer(cfg.NewSampler()).Tick(surface, cfg.RenderParams(), stores, 0)
	log.WithFields(logrus.Fields{
		"cols":  stats.Cols,
		"rows":  stats.Rows,
		"drawn": stats.Drawn,
	}).Info("rendered")

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(file, surface.Image()); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
