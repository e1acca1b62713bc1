package ffmpeg

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New(zerolog.Nop(), "", 4)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if e.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if e.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
}

func TestExecutorExplicitBinaryPath(t *testing.T) {
	e, err := New(zerolog.Nop(), "/opt/media/bin/ffmpeg", 0)
	if err != nil {
		t.Fatalf("explicit binary path should not require PATH lookup: %v", err)
	}
	if e.ffprobePath != "/opt/media/bin/ffprobe" {
		t.Errorf("ffprobe should sit next to ffmpeg, got %s", e.ffprobePath)
	}
}

func TestRunRequiresArgs(t *testing.T) {
	e := &Executor{logger: zerolog.Nop(), ffmpegPath: "ffmpeg"}
	if err := e.Run(context.Background(), RunOptions{}); err == nil {
		t.Fatal("expected error for empty args")
	}
}

func TestStreamOutputProgress(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}

	transcript := strings.Join([]string{
		"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':",
		"frame=120",
		"fps=30.0",
		"bitrate=1200.5kbits/s",
		"time=00:00:04.00",
		"speed=2.01x",
		"progress=continue",
		"frame=240",
		"fps=29.5",
		"time=00:00:08.00",
		"speed=1.98x",
		"progress=end",
	}, "\n")

	var updates []Progress
	tail := e.streamOutput(strings.NewReader(transcript), func(p *Progress) {
		updates = append(updates, *p)
	})

	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}
	if updates[0].Frame != 120 || updates[0].Speed != "2.01x" {
		t.Errorf("first update: %+v", updates[0])
	}
	if updates[1].Frame != 240 || updates[1].Time != "00:00:08.00" {
		t.Errorf("second update: %+v", updates[1])
	}

	if len(tail) != 1 || !strings.Contains(tail[0], "Input #0") {
		t.Errorf("tail should hold only non-progress lines, got %v", tail)
	}
}

func TestStreamOutputTailBounded(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}

	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, "diagnostic line")
	}
	tail := e.streamOutput(strings.NewReader(strings.Join(lines, "\n")), nil)

	if len(tail) != stderrTailLines {
		t.Errorf("tail should be bounded to %d lines, got %d", stderrTailLines, len(tail))
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := &ExitError{Err: errors.New("exit status 1"), Output: "moov atom not found"}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Errorf("exit error should carry the engine output: %v", err)
	}
	if !errors.Is(err, err.Err) {
		t.Error("exit error should unwrap to the process error")
	}
}
