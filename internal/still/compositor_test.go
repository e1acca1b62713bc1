package still

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
)

func testImage(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestBurnTextBlankText(t *testing.T) {
	c := New(zerolog.Nop())
	input := testImage(t, 200, 300)

	for _, text := range []string{"", "   ", "\n\t"} {
		out := c.BurnText(input, text)
		if !bytes.Equal(out, input) {
			t.Errorf("blank text %q should return the input unchanged", text)
		}
	}
}

func TestBurnTextCorruptImage(t *testing.T) {
	c := New(zerolog.Nop())
	input := []byte("definitely not an image")

	out := c.BurnText(input, "hello")
	if !bytes.Equal(out, input) {
		t.Error("corrupt input should come back unchanged rather than failing")
	}
}

func TestBurnTextComposites(t *testing.T) {
	c := New(zerolog.Nop())
	input := testImage(t, 640, 960)

	out := c.BurnText(input, "the quick brown fox jumps over the lazy dog")
	if bytes.Equal(out, input) {
		t.Fatal("expected composited output to differ from the input")
	}

	decoded, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output should decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	if decoded.Bounds().Dx() != 640 || decoded.Bounds().Dy() != 960 {
		t.Errorf("output dimensions changed: %v", decoded.Bounds())
	}
}

func TestBurnTextLongTextWraps(t *testing.T) {
	c := New(zerolog.Nop())
	input := testImage(t, 400, 700)

	long := "this caption is intentionally much longer than one line so the greedy wrapper has to split it across several lines inside the band"
	out := c.BurnText(input, long)
	if bytes.Equal(out, input) {
		t.Fatal("long text should still composite")
	}
}

func TestWrapTextSingleWideWord(t *testing.T) {
	c := New(zerolog.Nop())
	input := testImage(t, 120, 200)

	// One word wider than the band must not loop or drop the text
	out := c.BurnText(input, "incomprehensibilities")
	if bytes.Equal(out, input) {
		t.Fatal("oversized word should still composite on its own line")
	}
}
