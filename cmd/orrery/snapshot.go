package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/taigrr/orrery/pkg/config"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/scene"
)

// renderSnapshot renders the current state to a single PNG.
func renderSnapshot(cfg *config.Config, sys *scene.System, path string) error {
	vp, err := newViewport(cfg, sys, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	stats, err := vp.draw()
	if err != nil {
		return err
	}
	if err := vp.fb.SavePNG(path, *scale); err != nil {
		return err
	}
	render.Logger().Info("snapshot written",
		"path", path,
		"triangles", stats.Triangles,
		"fragments", stats.Fragments,
		"elapsed", stats.Elapsed,
	)
	return nil
}

// renderSequence renders n frames one FPS tick apart into dir.
func renderSequence(cfg *config.Config, sys *scene.System, dir string, n int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	vp, err := newViewport(cfg, sys, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}

	pb := progressbar.Default(int64(n), "rendering")
	defer pb.Close()

	dt := 1 / float64(cfg.FPS)
	for i := range n {
		if _, err := vp.draw(); err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		if err := vp.fb.SavePNG(path, *scale); err != nil {
			return err
		}
		sys.Update(dt)
		pb.Add(1)
	}
	return nil
}
