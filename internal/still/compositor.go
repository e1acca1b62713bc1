// Package still burns a wrapped text block onto still images. Unlike the
// video pipeline it never surfaces failures: a missing overlay is preferable
// to failing an otherwise-successful asset upload, so every internal error
// degrades to returning the original image bytes.
package still

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	// Broader decode support for caller-supplied assets
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Text band placement, fractions of the frame
const (
	bandLeftFrac   = 0.10
	bandRightFrac  = 0.90
	bandTopFrac    = 0.70
	bandBottomFrac = 0.90
)

const (
	bandAlpha   = 150
	textPadding = 24
	jpegQuality = 90
)

var loadFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// Compositor burns text onto still images
type Compositor struct {
	logger zerolog.Logger
}

// New creates a still-image compositor
func New(logger zerolog.Logger) *Compositor {
	return &Compositor{
		logger: logger.With().Str("component", "still").Logger(),
	}
}

// BurnText composites text onto the image and returns the encoded result.
// Blank text returns the input unchanged, and any internal failure returns
// the original bytes rather than an error.
func (c *Compositor) BurnText(imageBytes []byte, text string) []byte {
	if strings.TrimSpace(text) == "" {
		return imageBytes
	}

	out, err := c.burn(imageBytes, text)
	if err != nil {
		c.logger.Warn().Err(err).Msg("text burn failed, returning original image")
		return imageBytes
	}
	return out
}

func (c *Compositor) burn(imageBytes []byte, text string) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img := imaging.Clone(src)
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	band := image.Rect(
		int(float64(width)*bandLeftFrac),
		int(float64(height)*bandTopFrac),
		int(float64(width)*bandRightFrac),
		int(float64(height)*bandBottomFrac),
	)

	// Semi-opaque backing keeps the text readable on busy frames
	draw.Draw(img, band, &image.Uniform{color.NRGBA{0, 0, 0, bandAlpha}}, image.Point{}, draw.Over)

	face, err := newFace(float64(width) / 22)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	lines := wrapText(drawer, text, band.Dx()-2*textPadding)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	startY := band.Min.Y + (band.Dy()-len(lines)*lineHeight)/2 + metrics.Ascent.Ceil()

	for i, line := range lines {
		lineWidth := drawer.MeasureString(line).Ceil()
		drawer.Dot = fixed.P((width-lineWidth)/2, startY+i*lineHeight)
		drawer.DrawString(line)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func newFace(size float64) (font.Face, error) {
	ft, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// wrapText greedily packs words into lines no wider than maxWidth pixels.
// A single word wider than the band gets its own line rather than being cut.
func wrapText(drawer *font.Drawer, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		candidate := current + " " + word
		if drawer.MeasureString(candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}

	return append(lines, current)
}
