package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// stderrTailLines bounds how much engine output is retained for diagnostics
const stderrTailLines = 30

// Executor invokes ffmpeg/ffprobe with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// ExitError reports an abnormal engine exit. Output carries the tail of the
// engine's own stderr verbatim for operator debugging.
type ExitError struct {
	Err    error
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ffmpeg: %v: %s", e.Err, e.Output)
}

func (e *ExitError) Unwrap() error { return e.Err }

// New creates an executor. An empty binaryPath resolves ffmpeg from PATH;
// an explicit path expects ffprobe to sit next to it.
func New(logger zerolog.Logger, binaryPath string, threads int) (*Executor, error) {
	var ffmpegPath, ffprobePath string
	var err error

	if binaryPath == "" || binaryPath == "ffmpeg" {
		ffmpegPath, err = exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
		ffprobePath, err = exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
		}
	} else {
		ffmpegPath = binaryPath
		ffprobePath = filepath.Join(filepath.Dir(binaryPath), "ffprobe")
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     threads,
	}, nil
}

// Run executes ffmpeg with the given arguments, streaming progress from
// stderr. The calling goroutine blocks until the engine exits.
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	baseArgs := []string{"-y", "-hide_banner", "-loglevel", "info"}

	if e.threads > 0 {
		baseArgs = append(baseArgs, "-threads", fmt.Sprintf("%d", e.threads))
	}

	baseArgs = append(baseArgs, "-progress", "pipe:2")
	args := append(baseArgs, opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var wg sync.WaitGroup
	var tail []string

	wg.Add(1)
	go func() {
		defer wg.Done()
		tail = e.streamOutput(stderr, opts.OnProgress)
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.Canceled {
			return ctx.Err()
		}
		return &ExitError{Err: err, Output: strings.Join(tail, "\n")}
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// streamOutput parses progress blocks from the engine's stderr and retains
// the tail of the non-progress lines for failure diagnostics.
func (e *Executor) streamOutput(r io.Reader, onProgress ProgressFunc) []string {
	scanner := bufio.NewScanner(r)
	progress := &Progress{}
	var tail []string

	for scanner.Scan() {
		line := scanner.Text()
		e.logger.Debug().Str("ffmpeg", line).Msg("engine output")

		switch {
		case strings.HasPrefix(line, "frame="):
			fmt.Sscanf(line, "frame=%d", &progress.Frame)
		case strings.HasPrefix(line, "fps="):
			fmt.Sscanf(line, "fps=%f", &progress.FPS)
		case strings.HasPrefix(line, "bitrate="):
			progress.Bitrate = valueAfterEquals(line)
		case strings.HasPrefix(line, "time="):
			progress.Time = valueAfterEquals(line)
		case strings.HasPrefix(line, "speed="):
			progress.Speed = valueAfterEquals(line)
		case strings.HasPrefix(line, "progress="):
			// End of progress block
			if onProgress != nil && progress.Frame > 0 {
				onProgress(progress)
			}
			progress = &Progress{}
		default:
			tail = append(tail, line)
			if len(tail) > stderrTailLines {
				tail = tail[1:]
			}
		}
	}

	return tail
}

func valueAfterEquals(line string) string {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
