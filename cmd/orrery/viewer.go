package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/orrery/pkg/config"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/scene"
)

// OrbitAxis is one camera orbit angle whose velocity decays on a spring.
type OrbitAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewOrbitAxis creates an axis with a critically damped velocity spring.
func NewOrbitAxis(fps int) OrbitAxis {
	return OrbitAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Step returns the angle to apply this frame and decays the velocity
// toward 0.
func (a *OrbitAxis) Step() float64 {
	delta := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return delta
}

// ViewState holds the viewer's UI state.
type ViewState struct {
	Yaw, Pitch OrbitAxis
	Paused     bool
	ShowHUD    bool
	Status     string
}

// HUD renders an overlay with frame statistics and the current mode.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal.
func (h *HUD) Render(width, height int, vs *ViewState, sys *scene.System, stats render.Stats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works.
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if vs.Status != "" {
		msg := fmt.Sprintf("%s%s%s %s %s", bgBlack, bold, fgYellow, vs.Status, reset)
		fmt.Print(moveTo(height, max((width-len(vs.Status))/2, 1)) + msg)
	}
	if !vs.ShowHUD {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	title := fmt.Sprintf("t=%.1fs", sys.Time())
	if vs.Paused {
		title += " (paused)"
	}
	fmt.Print(moveTo(1, max((width-len(title)-2)/2, 1)) +
		fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, title, reset))

	tris := fmt.Sprintf("%d tris", stats.Triangles)
	fmt.Print(moveTo(1, max(width-len(tris)-2, 1)) +
		fmt.Sprintf("%s%s%s %s %s", bgBlack, fgCyan, bold, tris, reset))

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modes := fmt.Sprintf("%s%s %s Orbits  %s Ship  %s Bird's-eye %s",
		bgBlack, fgWhite, check(sys.ShowOrbits), check(sys.ShowShip), check(sys.BirdEye()), reset)
	fmt.Print(moveTo(height, 1) + modes)
}

var planetKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}

// planetKey returns the zero-based planet index for a digit key, or -1.
func planetKey(ev uv.KeyPressEvent) int {
	for i, k := range planetKeys {
		if ev.MatchString(k) {
			return i
		}
	}
	return -1
}

func runViewer(cfg *config.Config, sys *scene.System) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	// Each terminal cell shows two framebuffer rows.
	vp, err := newViewport(cfg, sys, width, height*2)
	if err != nil {
		return err
	}
	render.Logger().Info("viewer started", "cols", width, "rows", height)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	vs := &ViewState{
		Yaw:   NewOrbitAxis(cfg.FPS),
		Pitch: NewOrbitAxis(cfg.FPS),
	}
	hud := NewHUD()

	const (
		moveStep  = 0.5
		orbitKick = 0.04
		zoomStep  = 1.0
	)
	var mouseDown bool
	var lastMouseX, lastMouseY int

	// handle applies one input event. It runs on the render goroutine, so
	// the scene is never touched concurrently.
	handle := func(ev uv.Event) error {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			next, err := newViewport(cfg, sys, width, height*2)
			if err != nil {
				return err
			}
			vp = next
			render.Logger().Info("viewer resized", "cols", width, "rows", height)

		case uv.KeyPressEvent:
			vs.Status = ""
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				cancel()
			case ev.MatchString("w"):
				if !sys.Move(moveStep, 0) {
					vs.Status = "collision"
				}
			case ev.MatchString("s"):
				if !sys.Move(-moveStep, 0) {
					vs.Status = "collision"
				}
			case ev.MatchString("a"):
				if !sys.Move(0, -moveStep) {
					vs.Status = "collision"
				}
			case ev.MatchString("d"):
				if !sys.Move(0, moveStep) {
					vs.Status = "collision"
				}
			case ev.MatchString("left"):
				vs.Yaw.Velocity -= orbitKick
			case ev.MatchString("right"):
				vs.Yaw.Velocity += orbitKick
			case ev.MatchString("up"):
				vs.Pitch.Velocity += orbitKick
			case ev.MatchString("down"):
				vs.Pitch.Velocity -= orbitKick
			case planetKey(ev) >= 0:
				n := planetKey(ev)
				if err := sys.WarpTo(n); err != nil {
					vs.Status = err.Error()
				} else {
					vs.Status = "warping to " + sys.Planets()[n].Name
				}
			case ev.MatchString("b"):
				sys.ToggleBirdEye()
			case ev.MatchString("o"):
				sys.ShowOrbits = !sys.ShowOrbits
			case ev.MatchString("h"):
				sys.ShowShip = !sys.ShowShip
			case ev.MatchString("space"):
				vs.Paused = !vs.Paused
			case ev.MatchString("+", "="):
				sys.Camera.Zoom(zoomStep)
			case ev.MatchString("-", "_"):
				sys.Camera.Zoom(-zoomStep)
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				vs.ShowHUD = !vs.ShowHUD
			}

		case uv.MouseClickEvent:
			mouseDown = true
			lastMouseX, lastMouseY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			mouseDown = false

		case uv.MouseMotionEvent:
			if mouseDown {
				vs.Yaw.Velocity += float64(ev.X-lastMouseX) * 0.01
				vs.Pitch.Velocity += float64(ev.Y-lastMouseY) * 0.01
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				sys.Camera.Zoom(zoomStep)
			case uv.MouseWheelDown:
				sys.Camera.Zoom(-zoomStep)
			}
		}
		return nil
	}

	targetDuration := time.Second / time.Duration(cfg.FPS)
	lastFrame := time.Now()
	events := term.Events()

	for {
		// Drain pending input before drawing.
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if err := handle(ev); err != nil {
					return err
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		if yaw, pitch := vs.Yaw.Step(), vs.Pitch.Step(); (yaw != 0 || pitch != 0) && !sys.Warping() {
			sys.Camera.Orbit(yaw, pitch)
		}
		if vs.Paused {
			dt = 0
		}
		sys.Update(dt)

		stats, err := vp.draw()
		if err != nil {
			return err
		}
		vp.fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, vs, sys, stats)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
