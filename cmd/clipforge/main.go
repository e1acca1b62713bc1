package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/edl"
	"github.com/clipforge/clipforge/internal/ffmpeg"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/platform"
	"github.com/clipforge/clipforge/internal/render"
	"github.com/clipforge/clipforge/internal/still"
	"github.com/clipforge/clipforge/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipforge",
	Short: "clipforge - EDL video rendering and platform-capability routing",
	Long:  "Renders declarative edit decision lists against raw media and decides which edits run server-side versus on a target platform's native tools.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./clipforge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(burnCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(probeCmd)
}

var (
	renderOutput string

	renderCmd = &cobra.Command{
		Use:   "render [input video] [edl json]",
		Short: "Render an edit decision list against a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())

			if !util.FileExists(args[0]) {
				return fmt.Errorf("input not found: %s", args[0])
			}

			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			doc, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			list, err := edl.Parse(doc)
			if err != nil {
				return err
			}

			engine, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
			if err != nil {
				return err
			}

			pipe := render.New(log.Logger, cfg, engine)
			pipe.OnProgress = func(p *ffmpeg.Progress) {
				log.Debug().
					Int("frame", p.Frame).
					Str("time", p.Time).
					Str("speed", p.Speed).
					Msg("render progress")
			}

			output, err := pipe.Render(cmd.Context(), input, list)
			if err != nil {
				return err
			}

			if err := os.WriteFile(renderOutput, output, 0644); err != nil {
				return err
			}

			log.Info().Str("output", renderOutput).Int("bytes", len(output)).Msg("render complete")
			return nil
		},
	}
)

var (
	burnOutput string

	burnCmd = &cobra.Command{
		Use:   "burn [input image] [text]",
		Short: "Burn a wrapped text block onto a still image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			output := still.New(log.Logger).BurnText(input, args[1])

			target := burnOutput
			if target == "" {
				target = args[0]
			}
			if err := os.WriteFile(target, output, 0644); err != nil {
				return err
			}

			log.Info().Str("output", target).Msg("burn complete")
			return nil
		},
	}
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Platform capability commands",
}

var platformsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known platforms and their capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		return printJSON(cfg.Registry())
	},
}

var (
	resolveScheduleAt string
	resolveTrimStart  float64
	resolveTrimEnd    float64
	resolveCrop       string
	resolveAudioTrack string
	resolveOverlays   []string
	resolveSubtitles  bool
	resolveFilters    []string

	platformsResolveCmd = &cobra.Command{
		Use:   "resolve [platform]",
		Short: "Resolve an edit intent against a platform's native capabilities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())

			intent := edl.EditIntent{
				CropAspect:        resolveCrop,
				AudioTrackURL:     resolveAudioTrack,
				GenerateSubtitles: resolveSubtitles,
				Filters:           resolveFilters,
			}
			if cmd.Flags().Changed("trim-start") || cmd.Flags().Changed("trim-end") {
				intent.Trim = &edl.TrimIntent{StartSec: resolveTrimStart, EndSec: resolveTrimEnd}
			}
			for _, text := range resolveOverlays {
				intent.TextOverlays = append(intent.TextOverlays, edl.TextOverlay{Text: text, PositionZone: "bottom"})
			}

			var scheduleAt *time.Time
			if resolveScheduleAt != "" {
				at, err := time.Parse(time.RFC3339, resolveScheduleAt)
				if err != nil {
					return fmt.Errorf("invalid --schedule-at: %w", err)
				}
				scheduleAt = &at
			}

			resolver := platform.NewResolver(cfg.Registry())
			return printJSON(resolver.Resolve(args[0], scheduleAt, intent))
		},
	}
)

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Print media metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		engine, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		info, err := engine.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %dx%d, %.2f fps, %v", info.FilePath, info.Width, info.Height, info.FPS, info.Duration)
		if info.HasAudio {
			fmt.Printf(", audio %s", info.AudioCodec)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "output.mp4", "output file")
	burnCmd.Flags().StringVarP(&burnOutput, "output", "o", "", "output file (default: overwrite input)")

	platformsResolveCmd.Flags().StringVar(&resolveScheduleAt, "schedule-at", "", "requested publish time (RFC 3339)")
	platformsResolveCmd.Flags().Float64Var(&resolveTrimStart, "trim-start", 0, "trim window start, seconds")
	platformsResolveCmd.Flags().Float64Var(&resolveTrimEnd, "trim-end", 0, "trim window end, seconds")
	platformsResolveCmd.Flags().StringVar(&resolveCrop, "crop", "", "target aspect ratio (e.g. 9:16)")
	platformsResolveCmd.Flags().StringVar(&resolveAudioTrack, "audio-track", "", "background audio track URL")
	platformsResolveCmd.Flags().StringArrayVar(&resolveOverlays, "overlay", nil, "text overlay (repeatable)")
	platformsResolveCmd.Flags().BoolVar(&resolveSubtitles, "subtitles", false, "generate subtitles")
	platformsResolveCmd.Flags().StringArrayVar(&resolveFilters, "filter", nil, "look filter name (repeatable)")

	platformsCmd.AddCommand(platformsListCmd)
	platformsCmd.AddCommand(platformsResolveCmd)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
