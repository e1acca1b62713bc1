package render

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/edl"
	"github.com/clipforge/clipforge/internal/ffmpeg"
)

// stubEngine stands in for ffmpeg: it records the invocation and writes the
// configured bytes to the output path (the final argument).
type stubEngine struct {
	args       []string
	runErr     error
	output     []byte
	skipOutput bool
}

func (s *stubEngine) Run(ctx context.Context, opts ffmpeg.RunOptions) error {
	s.args = opts.Args
	if s.runErr != nil {
		return s.runErr
	}
	if s.skipOutput {
		return nil
	}
	outputPath := opts.Args[len(opts.Args)-1]
	return os.WriteFile(outputPath, s.output, 0644)
}

func (s *stubEngine) Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error) {
	return nil, errors.New("probe unavailable")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("/nonexistent/clipforge.yaml")
	if err != nil {
		t.Fatalf("failed to load default config: %v", err)
	}
	cfg.TempDir = t.TempDir()
	return cfg
}

func testPipeline(t *testing.T, engine Engine) (*Pipeline, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	return New(zerolog.Nop(), cfg, engine), cfg
}

func scratchCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read scratch dir: %v", err)
	}
	return len(entries)
}

func TestRenderSuccess(t *testing.T) {
	engine := &stubEngine{output: []byte("encoded video")}
	pipe, cfg := testPipeline(t, engine)

	out, err := pipe.Render(context.Background(), []byte("raw video"), baseEDL())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if string(out) != "encoded video" {
		t.Errorf("unexpected output bytes: %q", out)
	}
	if n := scratchCount(t, cfg.TempDir); n != 0 {
		t.Errorf("expected no scratch files after render, found %d", n)
	}
}

func TestRenderArgs(t *testing.T) {
	engine := &stubEngine{output: []byte("x")}
	pipe, _ := testPipeline(t, engine)

	e := baseEDL()
	e.Timeline.Segments = []edl.Segment{{StartSec: 2, EndSec: 5}}
	e.Audio.MusicEnabled = true

	if _, err := pipe.Render(context.Background(), []byte("raw"), e); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	joined := strings.Join(engine.args, " ")
	for _, want := range []string{
		"-ss 00:00:02.000",
		"-t 00:00:03.000",
		"-vf scale=-1:1920,crop=1080:1920",
		"-c:v libx264",
		"-c:a aac",
		"-pix_fmt yuv420p",
		"-preset fast",
		"-crf 23",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("engine args missing %q: %s", want, joined)
		}
	}
	if strings.Contains(joined, "-an") {
		t.Errorf("audio should not be stripped when music is enabled: %s", joined)
	}
}

func TestRenderMutesAudio(t *testing.T) {
	engine := &stubEngine{output: []byte("x")}
	pipe, _ := testPipeline(t, engine)

	e := baseEDL()
	e.Audio.MusicEnabled = false

	if _, err := pipe.Render(context.Background(), []byte("raw"), e); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	joined := strings.Join(engine.args, " ")
	if !strings.Contains(joined, "-an") {
		t.Errorf("expected -an when music is disabled: %s", joined)
	}
	if strings.Contains(joined, "-c:a") {
		t.Errorf("muted render should not carry an audio codec: %s", joined)
	}
}

func TestRenderWholeInputWithoutSegments(t *testing.T) {
	engine := &stubEngine{output: []byte("x")}
	pipe, _ := testPipeline(t, engine)

	if _, err := pipe.Render(context.Background(), []byte("raw"), baseEDL()); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	joined := strings.Join(engine.args, " ")
	if strings.Contains(joined, "-ss") || strings.Contains(joined, "-t ") {
		t.Errorf("no segments should mean no processing window: %s", joined)
	}
}

func TestRenderEngineFailure(t *testing.T) {
	engine := &stubEngine{
		runErr: &ffmpeg.ExitError{Err: errors.New("exit status 1"), Output: "moov atom not found"},
	}
	pipe, cfg := testPipeline(t, engine)

	_, err := pipe.Render(context.Background(), []byte("raw"), baseEDL())

	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected *RenderError, got %T: %v", err, err)
	}
	if !strings.Contains(renderErr.Detail, "moov atom not found") {
		t.Errorf("render error should carry the engine diagnostic, got %q", renderErr.Detail)
	}
	if n := scratchCount(t, cfg.TempDir); n != 0 {
		t.Errorf("expected no scratch files after failed render, found %d", n)
	}
}

func TestRenderMissingOutput(t *testing.T) {
	// Engine exits cleanly but never produces the output file
	engine := &stubEngine{skipOutput: true}
	pipe, cfg := testPipeline(t, engine)

	_, err := pipe.Render(context.Background(), []byte("raw"), baseEDL())

	var resourceErr *ResourceError
	if !errors.As(err, &resourceErr) {
		t.Fatalf("expected *ResourceError, got %T: %v", err, err)
	}
	if resourceErr.Op != "read" {
		t.Errorf("expected a read failure, got op %q", resourceErr.Op)
	}
	if n := scratchCount(t, cfg.TempDir); n != 0 {
		t.Errorf("expected no scratch files after failed render, found %d", n)
	}
}

func TestRenderValidationError(t *testing.T) {
	engine := &stubEngine{output: []byte("x")}
	pipe, _ := testPipeline(t, engine)

	e := baseEDL()
	e.Filters = []edl.Filter{{Name: "warm", Intensity: 2}}

	_, err := pipe.Render(context.Background(), []byte("raw"), e)

	var validationErr *edl.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *edl.ValidationError, got %T: %v", err, err)
	}
	if engine.args != nil {
		t.Error("engine must not be invoked for an invalid EDL")
	}
}

func TestRenderNilEDL(t *testing.T) {
	engine := &stubEngine{output: []byte("x")}
	pipe, _ := testPipeline(t, engine)

	if _, err := pipe.Render(context.Background(), []byte("raw"), nil); err == nil {
		t.Fatal("expected error for nil EDL")
	}
}
