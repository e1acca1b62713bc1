package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/edl"
	"github.com/clipforge/clipforge/internal/ffmpeg"
	"github.com/clipforge/clipforge/pkg/util"
)

// Engine is the external media-processing engine invoked for the combined
// transform pass. Production implementation is ffmpeg.Executor.
type Engine interface {
	Run(ctx context.Context, opts ffmpeg.RunOptions) error
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
}

// Pipeline executes an EDL against raw media as a single blocking transform.
// A pipeline holds no per-render state; concurrent renders are isolated by
// unique scratch naming, not by synchronization.
type Pipeline struct {
	logger zerolog.Logger
	cfg    *config.Config
	engine Engine

	// OnProgress, when set, receives engine progress updates during a render
	OnProgress ffmpeg.ProgressFunc
}

// New creates a render pipeline over the given engine
func New(logger zerolog.Logger, cfg *config.Config, engine Engine) *Pipeline {
	return &Pipeline{
		logger: logger.With().Str("component", "render").Logger(),
		cfg:    cfg,
		engine: engine,
	}
}

// Render validates the EDL, applies its operation sequence to input as one
// combined engine pass, and returns the encoded output bytes. Scratch files
// are removed on every exit path, success or failure.
func (p *Pipeline) Render(ctx context.Context, input []byte, e *edl.EditDecisionList) ([]byte, error) {
	if err := edl.Validate(e); err != nil {
		return nil, err
	}

	if err := util.EnsureDir(p.cfg.TempDir); err != nil {
		return nil, &ResourceError{Op: "create", Path: p.cfg.TempDir, Err: err}
	}

	// Timestamp plus random suffix keeps concurrent renders out of each
	// other's namespace
	stamp := fmt.Sprintf("%d_%s", time.Now().UnixNano(), uuid.NewString()[:8])
	inputPath := filepath.Join(p.cfg.TempDir, "clipforge_"+stamp+"_in.mp4")
	outputPath := filepath.Join(p.cfg.TempDir, "clipforge_"+stamp+"_out.mp4")
	defer util.CleanupFiles(inputPath, outputPath)

	if err := os.WriteFile(inputPath, input, 0644); err != nil {
		return nil, &ResourceError{Op: "write", Path: inputPath, Err: err}
	}

	if info, err := p.engine.Probe(ctx, inputPath); err == nil {
		p.logger.Debug().
			Dur("duration", info.Duration).
			Int("width", info.Width).
			Int("height", info.Height).
			Bool("has_audio", info.HasAudio).
			Msg("input probed")
	}

	args := []string{"-i", inputPath}

	// The first timeline segment sets the processing window; no segments
	// means the entire input is processed
	if len(e.Timeline.Segments) > 0 {
		segment := e.Timeline.Segments[0]
		args = append(args,
			"-ss", util.FormatDuration(util.Seconds(segment.StartSec)),
			"-t", util.FormatDuration(util.Seconds(segment.EndSec-segment.StartSec)),
		)
		if len(e.Timeline.Segments) > 1 {
			p.logger.Warn().
				Int("segments", len(e.Timeline.Segments)).
				Msg("only the first timeline segment sets the render window")
		}
	}

	graph := BuildGraph(e)
	if filters := graph.VideoFilters(); len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	if graph.Mute() {
		args = append(args, "-an")
	} else {
		args = append(args, "-c:a", p.cfg.Render.AudioCodec)
	}

	args = append(args,
		"-c:v", p.cfg.Render.VideoCodec,
		"-pix_fmt", p.cfg.Render.PixelFormat,
		"-preset", p.cfg.FFmpeg.Preset,
		"-crf", fmt.Sprintf("%d", p.cfg.Render.CRF),
		outputPath,
	)

	p.logger.Info().
		Int("ops", len(graph.Ops)).
		Int("width", graph.Width).
		Int("height", graph.Height).
		Msg("starting render")

	if err := p.engine.Run(ctx, ffmpeg.RunOptions{Args: args, OnProgress: p.OnProgress}); err != nil {
		var exitErr *ffmpeg.ExitError
		if errors.As(err, &exitErr) {
			return nil, &RenderError{Detail: exitErr.Output, Err: exitErr.Err}
		}
		return nil, &RenderError{Err: err}
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, &ResourceError{Op: "read", Path: outputPath, Err: err}
	}

	p.logger.Info().Int("bytes", len(output)).Msg("render completed")
	return output, nil
}
