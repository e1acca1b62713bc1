package render

import (
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/edl"
)

// OpKind identifies a transform stage within the graph
type OpKind int

const (
	// OpFrame scales and center-crops to the target frame
	OpFrame OpKind = iota
	// OpOverlay draws one timed text overlay
	OpOverlay
	// OpLook applies the color/look adjustment
	OpLook
	// OpAudio enables or strips the audio stream
	OpAudio
)

// Op is one transform operation within the graph. Video ops carry an ffmpeg
// -vf expression; the audio op carries only the mute flag.
type Op struct {
	Kind    OpKind
	Filter  string
	Start   float64 // overlay enable window, seconds
	End     float64
	YOffset int // overlay vertical placement, pixels
	Mute    bool
}

// Graph is the ordered operation sequence derived from one EDL. Order is
// fixed at frame -> overlays -> look -> audio; reordering changes the visual
// result.
type Graph struct {
	Width  int
	Height int
	Ops    []Op
}

// VideoFilters returns the -vf expressions of the video ops, in graph order
func (g *Graph) VideoFilters() []string {
	filters := make([]string, 0, len(g.Ops))
	for _, op := range g.Ops {
		if op.Kind != OpAudio && op.Filter != "" {
			filters = append(filters, op.Filter)
		}
	}
	return filters
}

// Mute reports whether the audio stream should be stripped
func (g *Graph) Mute() bool {
	for _, op := range g.Ops {
		if op.Kind == OpAudio {
			return op.Mute
		}
	}
	return false
}

// Target frame sizes per aspect ratio
var frameSizes = map[string][2]int{
	"9:16": {1080, 1920},
	"16:9": {1920, 1080},
	"1:1":  {1080, 1080},
	"4:5":  {1080, 1350},
}

const defaultAspectRatio = "9:16"

// Overlay placement defaults, pixels
const (
	overlayFontSize     = 56
	overlayTopOffset    = 160
	overlayBottomMargin = 320
)

// BuildGraph translates an EDL into the ordered transform sequence. It never
// fails for a well-formed EDL; an EDL with no overlays or filters yields a
// minimal frame-only graph.
func BuildGraph(e *edl.EditDecisionList) *Graph {
	width, height := frameSize(e.Crop.AspectRatio)
	g := &Graph{Width: width, Height: height}

	// Scale to target height, then center-crop to the exact frame
	g.Ops = append(g.Ops, Op{
		Kind:   OpFrame,
		Filter: fmt.Sprintf("scale=-1:%d,crop=%d:%d", height, width, height),
	})

	for _, overlay := range e.TextOverlays {
		y := overlayY(overlay.PositionZone, e.Crop.SafeZone, height)
		g.Ops = append(g.Ops, Op{
			Kind:    OpOverlay,
			Filter:  drawTextFilter(overlay, y),
			Start:   overlay.StartSec,
			End:     overlay.EndSec,
			YOffset: y,
		})
	}

	if len(e.Filters) > 0 {
		if filter := lookFilter(e.Filters[0]); filter != "" {
			g.Ops = append(g.Ops, Op{Kind: OpLook, Filter: filter})
		}
	}

	g.Ops = append(g.Ops, Op{Kind: OpAudio, Mute: !e.Audio.MusicEnabled})

	return g
}

func frameSize(aspectRatio string) (int, int) {
	size, ok := frameSizes[aspectRatio]
	if !ok {
		size = frameSizes[defaultAspectRatio]
	}
	return size[0], size[1]
}

// overlayY resolves a position zone to a vertical pixel offset. Bottom
// placements land strictly above the bottom safe margin; top placements at or
// below the top safe margin.
func overlayY(zone string, safe edl.SafeZone, frameHeight int) int {
	switch zone {
	case "top":
		offset := overlayTopOffset
		if safe.TopPx > offset {
			offset = safe.TopPx
		}
		return offset
	case "bottom":
		margin := overlayBottomMargin
		if safe.BottomPx+overlayFontSize >= margin {
			margin = safe.BottomPx + overlayFontSize
		}
		return frameHeight - margin
	default: // center
		return (frameHeight - overlayFontSize) / 2
	}
}

func drawTextFilter(overlay edl.TextOverlay, y int) string {
	return fmt.Sprintf(
		"drawtext=text='%s':x=(w-text_w)/2:y=%d:fontsize=%d:fontcolor=white:borderw=2:bordercolor=black@0.6:enable='between(t,%.2f,%.2f)'",
		escapeDrawText(overlay.Text), y, overlayFontSize, overlay.StartSec, overlay.EndSec)
}

// lookFilter maps a named look onto a color transform. Names outside the
// table (vibrant, clean) are schema-valid but pass through untouched.
func lookFilter(f edl.Filter) string {
	switch f.Name {
	case "warm":
		shift := 0.3 * f.Intensity
		return fmt.Sprintf("colorbalance=rs=%.2f:bs=%.2f", shift, -shift)
	case "cool":
		shift := 0.3 * f.Intensity
		return fmt.Sprintf("colorbalance=rs=%.2f:bs=%.2f", -shift, shift)
	case "bw":
		return "hue=s=0"
	default:
		return ""
	}
}

// escapeDrawText escapes text content for use inside a drawtext expression
func escapeDrawText(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return replacer.Replace(s)
}
