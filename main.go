package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
	"github.com/df07/go-blackhole-raytracer/pkg/scene"
)

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Scene preset name or path to a JSON scene file")
	configPath := flag.String("config", "", "JSON file overriding values of the selected scene")
	width := flag.Int("width", 0, "Output width in pixels (0 = scene default)")
	height := flag.Int("height", 0, "Output height in pixels (0 = scene default)")
	oversample := flag.Int("oversample", 0, "Rays per pixel along each axis (0 = scene default)")
	frames := flag.Int("frames", -1, "Number of frames to render (-1 = scene default)")
	workers := flag.Int("workers", -1, "Number of worker goroutines (0 = CPU count, -1 = scene default)")
	skyboxDir := flag.String("skybox", "", "Directory holding px/nx/py/ny/pz/nz cube map faces")
	blackbodyPath := flag.String("blackbody", "", "Blackbody lookup table image (empty = procedural)")
	outDir := flag.String("out", "output", "Base output directory")
	gifPath := flag.String("gif", "", "Also write the sequence as an animated GIF to this path")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Black Hole Raytracer")
		fmt.Println("Usage: blackhole [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.ListBuiltInScenes() {
			fmt.Printf("  %-8s - %s\n", info.ID, info.Description)
		}
		fmt.Println()
		fmt.Println("Output will be saved to <out>/<scene>/frame_<index>.png")
		return
	}

	fmt.Println("Starting Black Hole Raytracer...")

	selectedScene, err := createScene(*sceneType)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if *configPath != "" {
		selectedScene, err = scene.LoadConfig(*configPath, selectedScene)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	applyOverrides(selectedScene, overrides{
		width:      *width,
		height:     *height,
		oversample: *oversample,
		frames:     *frames,
		workers:    *workers,
		skyboxDir:  *skyboxDir,
		blackbody:  *blackbodyPath,
	})

	session, err := selectedScene.NewSession(renderer.NewDefaultLogger())
	if err != nil {
		fmt.Printf("Error creating session: %v\n", err)
		os.Exit(1)
	}

	// Create output directory for this scene
	outputDir := createOutputDir(*outDir, *sceneType)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	images, err := render(ctx, selectedScene, session, outputDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Render interrupted")
		} else {
			fmt.Printf("Render failed: %v\n", err)
			os.Exit(1)
		}
	}

	if *gifPath != "" && len(images) > 0 {
		delay := gifDelay(selectedScene.Animation.FramesPerSecond)
		if err := SaveAnimatedGIF(images, *gifPath, delay); err != nil {
			fmt.Printf("Error saving GIF: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Animation saved as %s\n", *gifPath)
	}
}

// render drains the session's channels, writing one PNG per finished frame.
// It returns the resolved images in frame order.
func render(ctx context.Context, s *scene.Scene, session *renderer.Session, outputDir string) ([]*image.RGBA, error) {
	passChan, frameChan, errChan := session.RenderSequence(ctx, s.Animation)
	dither := scene.NewDither()
	startTime := time.Now()

	var images []*image.RGBA
	for passChan != nil || frameChan != nil {
		select {
		case update, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			fmt.Printf("Frame %d pass %d: %.1f%% resolved (%d steps, %d crossings)\n",
				update.Frame, update.Pass, update.Stats.Progress()*100, update.Last.Steps, update.Last.Crossings)

		case frame, ok := <-frameChan:
			if !ok {
				frameChan = nil
				continue
			}
			img := s.ResolveFrame(frame, dither)
			images = append(images, img)

			filename := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.png", frame.Index))
			if err := savePNG(filename, img); err != nil {
				// Keep going so one bad write does not lose the rest of a sequence
				fmt.Printf("Error saving PNG: %v\n", err)
				continue
			}
			status := "complete"
			if !frame.Complete {
				status = fmt.Sprintf("%d rays unresolved", frame.Stats.Unresolved)
			}
			fmt.Printf("Frame %d saved as %s (%d passes, %s)\n", frame.Index, filename, frame.Stats.Passes, status)
		}
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	if err, ok := <-errChan; ok && err != nil {
		return images, err
	}
	return images, nil
}

// overrides are command line values that replace scene settings when set
type overrides struct {
	width, height, oversample int
	frames, workers           int
	skyboxDir, blackbody      string
}

func applyOverrides(s *scene.Scene, o overrides) {
	if o.width > 0 {
		s.Render.Width = o.width
	}
	if o.height > 0 {
		s.Render.Height = o.height
	}
	if o.oversample > 0 {
		s.Render.Oversample = o.oversample
	}
	if o.frames >= 0 {
		s.Animation.FrameCount = o.frames
	}
	if o.workers >= 0 {
		s.Render.NumWorkers = o.workers
	}
	if o.skyboxDir != "" {
		s.Skybox.Type = scene.CubeMap
		s.Skybox.Path = o.skyboxDir
	}
	if o.blackbody != "" {
		s.Blackbody.Path = o.blackbody
	}
}

// createScene returns a preset by name or loads a JSON scene file by path
func createScene(sceneType string) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, fmt.Errorf("no scene given")
	}
	if strings.HasSuffix(sceneType, ".json") {
		return scene.LoadConfig(sceneType, nil)
	}
	return scene.Create(sceneType)
}

// createOutputDir returns <base>/<scene name>, using the file stem for JSON scenes
func createOutputDir(base, sceneType string) string {
	name := sceneType
	if strings.HasSuffix(name, ".json") {
		name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return filepath.Join(base, name)
}

func savePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return nil
}
