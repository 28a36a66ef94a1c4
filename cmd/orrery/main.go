// orrery - Terminal Solar System
// A software-rasterized solar system in your terminal, or rendered to PNG.
//
// Controls:
//
//	Mouse drag  - Orbit the camera
//	Scroll      - Zoom in/out
//	W/S         - Fly forward/back
//	A/D         - Strafe left/right
//	Arrows      - Orbit the camera
//	1-9         - Warp to planet
//	B           - Toggle bird's-eye view
//	O           - Toggle orbit paths
//	H           - Toggle ship
//	Space       - Pause time
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taigrr/orrery/pkg/config"
	"github.com/taigrr/orrery/pkg/models"
	"github.com/taigrr/orrery/pkg/postfx"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/scene"
)

var (
	configPath = flag.String("config", "", "Path to a YAML config file")
	targetFPS  = flag.Int("fps", 0, "Target FPS (overrides config)")
	bgColor    = flag.String("bg", "", "Background color (R,G,B or #rrggbb, overrides config)")
	workers    = flag.Int("workers", -1, "Rasterization workers, 0 for one per CPU (overrides config)")
	shipModel  = flag.String("ship", "", "GLB model to fly instead of the built-in ship")
	snapshot   = flag.String("snapshot", "", "Render one frame to this PNG file and exit")
	frames     = flag.Int("frames", 0, "Render this many frames to -out and exit")
	outDir     = flag.String("out", "frames", "Output directory for -frames")
	scale      = flag.Int("scale", 1, "Upscale factor for PNG output")
	startTime  = flag.Float64("time", 0, "Simulation time of the first rendered frame, seconds")
	warp       = flag.Int("warp", 0, "Start at planet N (1-9), 0 for the overview camera")
	birdEye    = flag.Bool("birdeye", false, "Start in bird's-eye view")
	logPath    = flag.String("log", "", "Write logs to this file")
	verbose    = flag.Bool("v", false, "Log per-frame statistics")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "orrery - Terminal Solar System\n\n")
		fmt.Fprintf(os.Stderr, "Usage: orrery [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit the camera\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Fly and strafe\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Orbit the camera\n")
		fmt.Fprintf(os.Stderr, "  1-9         - Warp to planet\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle bird's-eye view\n")
		fmt.Fprintf(os.Stderr, "  O           - Toggle orbit paths\n")
		fmt.Fprintf(os.Stderr, "  H           - Toggle ship\n")
		fmt.Fprintf(os.Stderr, "  Space       - Pause time\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	sys, err := newSystem(cfg)
	if err != nil {
		return err
	}

	switch {
	case *snapshot != "":
		return renderSnapshot(cfg, sys, *snapshot)
	case *frames > 0:
		return renderSequence(cfg, sys, *outDir, *frames)
	default:
		return runViewer(cfg, sys)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}
	if *targetFPS > 0 {
		cfg.FPS = *targetFPS
	}
	if *bgColor != "" {
		cfg.Background = *bgColor
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *shipModel != "" {
		cfg.Ship.Model = *shipModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging routes the render and scene logs. Without -log, headless
// runs log to stderr and the terminal viewer stays silent so the screen is
// not corrupted.
func setupLogging() (func(), error) {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch {
	case *logPath != "":
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		render.SetLogger(slog.New(slog.NewTextHandler(f, opts)))
		return func() { f.Close() }, nil
	case *snapshot != "" || *frames > 0:
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
	return func() {}, nil
}

func newSystem(cfg *config.Config) (*scene.System, error) {
	opts := scene.Options{
		Bodies:    cfg.BodySpecs(),
		FPS:       cfg.FPS,
		ShipScale: cfg.Ship.Scale,
	}
	if cfg.Ship.Model != "" {
		loader := models.NewGLTFLoader()
		loader.Size = 3
		mesh, err := loader.Load(cfg.Ship.Model)
		if err != nil {
			return nil, fmt.Errorf("load ship: %w", err)
		}
		opts.Ship = mesh
	}

	sys, err := scene.New(opts)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	sys.ShowOrbits = cfg.Orbits
	sys.ShowShip = cfg.Ship.Visible
	sys.Camera.SetFOV(cfg.FOVRadians())
	sys.Camera.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)

	sys.Update(*startTime)
	if *warp > 0 {
		if err := sys.WarpTo(*warp - 1); err != nil {
			return nil, err
		}
		// Settle the spring so the first frame is already at the planet.
		for sys.Warping() {
			sys.Update(0)
		}
	}
	if *birdEye {
		sys.ToggleBirdEye()
	}
	return sys, nil
}

// viewport owns a framebuffer and everything that draws into it.
type viewport struct {
	cfg   *config.Config
	sys   *scene.System
	fb    *render.Framebuffer
	r     *render.Renderer
	bloom *postfx.Bloom
}

func newViewport(cfg *config.Config, sys *scene.System, width, height int) (*viewport, error) {
	fb, err := render.NewFramebuffer(width, height, cfg.BackgroundColor())
	if err != nil {
		return nil, err
	}
	r := render.NewRenderer(fb)
	if cfg.Workers > 0 {
		r.Workers = cfg.Workers
	}
	if cfg.TileHeight > 0 {
		r.TileHeight = cfg.TileHeight
	}
	sys.SetAspectRatio(width, height)
	return &viewport{cfg: cfg, sys: sys, fb: fb, r: r, bloom: cfg.PostFX()}, nil
}

// draw renders the system's current state and applies post processing.
func (v *viewport) draw() (render.Stats, error) {
	f := v.sys.Frame()
	f.LightDir = v.cfg.LightDir()
	stats, err := v.r.Render(f)
	if err != nil {
		return stats, err
	}
	if v.bloom != nil {
		if err := v.bloom.Apply(v.fb); err != nil {
			return stats, fmt.Errorf("bloom: %w", err)
		}
	}
	return stats, nil
}
